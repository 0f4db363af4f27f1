package nmeasrc

import (
	"fmt"
	"math"
	"strings"
	"testing"
)

// sentence appends the NMEA checksum to a raw sentence body.
func sentence(body string) string {
	var sum byte
	for i := 0; i < len(body); i++ {
		sum ^= body[i]
	}
	return fmt.Sprintf("$%s*%02X", body, sum)
}

func TestReadFixes_ParsesValidRMC(t *testing.T) {
	log := strings.Join([]string{
		sentence("GPRMC,120000,A,4807.038,N,01131.000,E,022.4,084.4,010324,003.1,W"),
		sentence("GPRMC,120010,A,4807.038,N,01132.000,E,022.4,084.4,010324,003.1,W"),
	}, "\n")

	fixes, err := ReadFixes(strings.NewReader(log))
	if err != nil {
		t.Fatalf("ReadFixes: %v", err)
	}
	if len(fixes) != 2 {
		t.Fatalf("len(fixes) = %d, want 2", len(fixes))
	}
	for i, fix := range fixes {
		if fix == nil {
			t.Fatalf("fixes[%d] = nil, want valid fix", i)
		}
	}

	if math.Abs(fixes[0].Latitude-48.1173) > 1e-4 {
		t.Errorf("Latitude = %v, want ~48.1173", fixes[0].Latitude)
	}
	if math.Abs(fixes[0].Longitude-11.5167) > 1e-4 {
		t.Errorf("Longitude = %v, want ~11.5167", fixes[0].Longitude)
	}

	elapsed := fixes[1].Timestamp.Sub(fixes[0].Timestamp).Seconds()
	if elapsed != 10 {
		t.Errorf("elapsed = %vs, want 10s", elapsed)
	}
	if got := fixes[0].Timestamp.Year(); got != 2024 {
		t.Errorf("year = %d, want 2024", got)
	}
}

func TestReadFixes_VoidFixBecomesGap(t *testing.T) {
	log := strings.Join([]string{
		sentence("GPRMC,120000,A,4807.038,N,01131.000,E,022.4,084.4,010324,003.1,W"),
		sentence("GPRMC,120005,V,4807.038,N,01131.500,E,022.4,084.4,010324,003.1,W"),
		sentence("GPRMC,120010,A,4807.038,N,01132.000,E,022.4,084.4,010324,003.1,W"),
	}, "\n")

	fixes, err := ReadFixes(strings.NewReader(log))
	if err != nil {
		t.Fatalf("ReadFixes: %v", err)
	}
	if len(fixes) != 3 {
		t.Fatalf("len(fixes) = %d, want 3", len(fixes))
	}
	if fixes[1] != nil {
		t.Errorf("void sentence produced a fix: %+v", fixes[1])
	}
	if fixes[0] == nil || fixes[2] == nil {
		t.Error("valid sentences around the gap were dropped")
	}
}

func TestReadFixes_IgnoresNoiseAndOtherSentences(t *testing.T) {
	log := strings.Join([]string{
		"",
		"# bench log 2024-03-01",
		"garbage without dollar sign",
		sentence("GPGGA,120000,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,"),
		sentence("GPRMC,120000,A,4807.038,N,01131.000,E,022.4,084.4,010324,003.1,W"),
		"$GPRMC,broken,checksum*00",
	}, "\n")

	fixes, err := ReadFixes(strings.NewReader(log))
	if err != nil {
		t.Fatalf("ReadFixes: %v", err)
	}

	// One valid RMC plus one gap for the corrupt sentence; GGA and
	// non-sentence lines contribute nothing.
	if len(fixes) != 2 {
		t.Fatalf("len(fixes) = %d, want 2", len(fixes))
	}
	if fixes[0] == nil {
		t.Error("valid RMC dropped")
	}
	if fixes[1] != nil {
		t.Error("corrupt sentence should be a gap")
	}
}
