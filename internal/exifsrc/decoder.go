// Package exifsrc turns geotagged image files into position fixes. It is
// the boundary between raw image metadata and the pipeline: everything past
// here works on model.PositionFix values, never on EXIF bytes.
package exifsrc

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/signalsfoundry/groundtrack-estimator/internal/logging"
	"github.com/signalsfoundry/groundtrack-estimator/model"
)

// Decoder extracts position fixes from image files. Decode failures are
// expected in normal operation (frames over oceans at night often carry no
// GPS tags) and are reported as absent fixes, not errors.
type Decoder struct {
	log logging.Logger
}

// NewDecoder builds a decoder; a nil logger is replaced with a noop one.
func NewDecoder(log logging.Logger) *Decoder {
	if log == nil {
		log = logging.Noop()
	}
	return &Decoder{log: log}
}

// DecodeFix reads one image file and returns its position fix, or nil when
// the file has no usable GPS coordinates or original timestamp. Only I/O
// failures opening the file surface as errors.
func (d *Decoder) DecodeFix(ctx context.Context, path string) (*model.PositionFix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image %s: %w", path, err)
	}
	defer f.Close()

	fix, reason := decodeFix(f)
	if fix == nil {
		d.log.Debug(ctx, "image yielded no fix",
			logging.String("path", path),
			logging.String("reason", reason),
		)
	}
	return fix, nil
}

// FixSequence decodes every image in dir, in lexical filename order (capture
// filenames embed the timestamp, so lexical order is capture order). Images
// without usable metadata occupy their position in the sequence as nil so
// the processor can account for the gap.
func (d *Decoder) FixSequence(ctx context.Context, dir string) ([]*model.PositionFix, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read image dir %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".jpeg":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	fixes := make([]*model.PositionFix, 0, len(paths))
	for _, p := range paths {
		fix, err := d.DecodeFix(ctx, p)
		if err != nil {
			// Unreadable file: treat like a missing fix but keep the slot.
			d.log.Warn(ctx, "skipping unreadable image", logging.String("path", p), logging.String("error", err.Error()))
			fixes = append(fixes, nil)
			continue
		}
		fixes = append(fixes, fix)
	}
	return fixes, nil
}

// decodeFix does the actual EXIF work over a reader. It returns the fix or
// nil plus a short reason for the gap.
func decodeFix(r io.Reader) (*model.PositionFix, string) {
	x, err := exif.Decode(r)
	if err != nil {
		return nil, "no exif data: " + err.Error()
	}

	lat, lon, err := x.LatLong()
	if err != nil {
		return nil, "no gps tags: " + err.Error()
	}

	ts, err := x.DateTime()
	if err != nil {
		return nil, "no original timestamp: " + err.Error()
	}

	return &model.PositionFix{
		Latitude:  lat,
		Longitude: lon,
		Timestamp: ts,
	}, ""
}
