package probe

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Dimensions returns the pixel width and height of the first video
// stream in the file. A failed or unparseable probe returns (0, 0) and
// an error; callers treat that as "orientation unknown" rather than a
// hard failure.
func Dimensions(ctx context.Context, path string) (int, int, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "csv=p=0:s=x",
		path,
	)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return 0, 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	return parseDimensions(out.String())
}

func parseDimensions(output string) (int, int, error) {
	line := strings.TrimSpace(output)
	// Some containers emit a trailing blank record; keep the first line.
	if idx := strings.IndexAny(line, "\r\n"); idx != -1 {
		line = line[:idx]
	}

	w, h, ok := strings.Cut(line, "x")
	if !ok {
		return 0, 0, fmt.Errorf("unexpected ffprobe output %q", line)
	}

	width, err := strconv.Atoi(strings.TrimSpace(w))
	if err != nil {
		return 0, 0, fmt.Errorf("unexpected ffprobe width %q", w)
	}
	height, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil {
		return 0, 0, fmt.Errorf("unexpected ffprobe height %q", h)
	}
	return width, height, nil
}

// Portrait classifies an orientation from probed dimensions. Zero or
// unknown dimensions classify as landscape.
func Portrait(width, height int) bool {
	return height > width && width > 0 && height > 0
}
