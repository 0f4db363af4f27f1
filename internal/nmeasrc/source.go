// Package nmeasrc reads position fixes from an NMEA sentence log. It exists
// for ground testing: a GPS receiver on a bench produces the same fix
// sequence shape as the flight EXIF decoder, so the whole pipeline can be
// exercised without a camera.
package nmeasrc

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	nmea "github.com/adrianmo/go-nmea"

	"github.com/signalsfoundry/groundtrack-estimator/model"
)

// ReadFixes parses RMC sentences from r into a fix sequence, in input
// order. Sentences that fail to parse, are not RMC, or carry a void
// validity flag become nil entries so gaps stay visible to the processor.
// Non-sentence lines (blank, comments) contribute no entry at all.
func ReadFixes(r io.Reader) ([]*model.PositionFix, error) {
	var fixes []*model.PositionFix

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.HasPrefix(line, "$") {
			continue
		}

		sentence, err := nmea.Parse(line)
		if err != nil {
			// Noisy receivers emit partial sentences; keep the gap.
			fixes = append(fixes, nil)
			continue
		}
		if sentence.DataType() != nmea.TypeRMC {
			continue
		}

		rmc := sentence.(nmea.RMC)
		if rmc.Validity != nmea.ValidRMC {
			fixes = append(fixes, nil)
			continue
		}

		fixes = append(fixes, &model.PositionFix{
			Latitude:  rmc.Latitude,
			Longitude: rmc.Longitude,
			Timestamp: rmcTime(rmc),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read nmea log: %w", err)
	}
	return fixes, nil
}

// rmcTime combines the RMC date and time-of-day fields into a UTC timestamp.
// RMC years are two-digit; receivers in service today mean 20xx.
func rmcTime(rmc nmea.RMC) time.Time {
	return time.Date(
		2000+rmc.Date.YY, time.Month(rmc.Date.MM), rmc.Date.DD,
		rmc.Time.Hour, rmc.Time.Minute, rmc.Time.Second,
		rmc.Time.Millisecond*int(time.Millisecond),
		time.UTC,
	)
}
