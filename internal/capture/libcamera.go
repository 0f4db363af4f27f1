package capture

import (
	"context"
	"fmt"
	"os/exec"
)

// LibCameraStill captures frames by invoking the libcamera-still CLI, the
// stock stills path on current Raspberry Pi OS images.
type LibCameraStill struct {
	// Binary is the executable to run; empty means "libcamera-still".
	Binary string
	// ExtraArgs are appended after the defaults, e.g. exposure overrides.
	ExtraArgs []string
}

// Capture writes one JPEG to path. Width/height match the flight
// configuration of the original experiment.
func (c LibCameraStill) Capture(ctx context.Context, path string) error {
	binary := c.Binary
	if binary == "" {
		binary = "libcamera-still"
	}

	args := []string{
		"--nopreview",
		"--width", "2592",
		"--height", "1944",
		"-o", path,
	}
	args = append(args, c.ExtraArgs...)

	cmd := exec.CommandContext(ctx, binary, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", binary, err, out)
	}
	return nil
}
