package clipper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"

	"yt-clipper/internal/encoder"
	"yt-clipper/internal/logging"
	"yt-clipper/internal/probe"
)

// ErrInvalidRange is returned when the requested end offset is not
// strictly after the start offset.
var ErrInvalidRange = errors.New("end time must be greater than start time")

// maxStderr bounds the diagnostic excerpt kept from a failed ffmpeg run.
const maxStderr = 4000

// TranscodeError reports a non-zero ffmpeg exit, carrying a bounded
// excerpt of its stderr for the job record.
type TranscodeError struct {
	Err    error
	Stderr string
}

func (e *TranscodeError) Error() string {
	return fmt.Sprintf("ffmpeg failed: %s", e.Stderr)
}

func (e *TranscodeError) Unwrap() error { return e.Err }

// Clipper encodes clips with the profile chosen at startup.
type Clipper struct {
	profile encoder.Profile
}

// New creates a Clipper bound to the detected encoder profile.
func New(profile encoder.Profile) *Clipper {
	return &Clipper{profile: profile}
}

// scaleFilter bounds the output to the orientation cap while keeping
// the aspect ratio. The min() terms make the policy decrease-only: a
// source smaller than the cap passes through at its native size.
func scaleFilter(portrait bool) string {
	if portrait {
		return "scale='min(1080,iw)':'min(1920,ih)':force_original_aspect_ratio=decrease:flags=lanczos"
	}
	return "scale='min(1920,iw)':'min(1080,ih)':force_original_aspect_ratio=decrease:flags=lanczos"
}

// buildArgs assembles the full ffmpeg argument list for one cut.
func (c *Clipper) buildArgs(input string, start, end float64, portrait bool, output string) []string {
	args := []string{"-hide_banner", "-y"}
	args = append(args, c.profile.InputArgs...)
	args = append(args,
		"-ss", formatSeconds(start),
		"-i", input,
		"-t", formatSeconds(end-start),
		"-vf", scaleFilter(portrait),
		"-c:v", c.profile.Name,
	)
	args = append(args, c.profile.OutputArgs...)
	args = append(args,
		"-profile:v", "high",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", "320k",
		"-movflags", "+faststart",
		output,
	)
	return args
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Cut extracts [start, end) from input into output. The input is
// probed for orientation first; a failed probe classifies as landscape
// rather than failing the cut.
func (c *Clipper) Cut(ctx context.Context, input string, start, end float64, output string) error {
	if end <= start {
		return ErrInvalidRange
	}

	w, h, err := probe.Dimensions(ctx, input)
	if err != nil {
		logging.Warn("orientation probe failed for %s, assuming landscape: %v", input, err)
	}
	portrait := probe.Portrait(w, h)

	args := c.buildArgs(input, start, end, portrait, output)
	logging.Debug("ffmpeg %v", args)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		excerpt := stderr.String()
		if len(excerpt) > maxStderr {
			excerpt = excerpt[:maxStderr]
		}
		return &TranscodeError{Err: err, Stderr: excerpt}
	}
	return nil
}
