package encoder

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"yt-clipper/internal/logging"
)

// Profile describes the encoder chosen for this process: the codec
// name passed to -c:v, arguments that must precede the input (hwaccel
// selection), and arguments that follow the codec (rate control).
type Profile struct {
	Name       string
	InputArgs  []string
	OutputArgs []string
}

// Hardware reports whether the profile uses a hardware encoder.
func (p Profile) Hardware() bool {
	return p.Name != "libx264"
}

// candidate pairs an encoder identifier with its tuned argument sets.
// Order matters: the first candidate whose identifier appears in the
// ffmpeg encoder listing wins.
type candidate struct {
	profile Profile
}

var fallbackChain = []candidate{
	{Profile{
		Name:       "h264_nvenc",
		InputArgs:  []string{"-hwaccel", "cuda"},
		OutputArgs: []string{"-preset", "p7", "-rc", "vbr", "-cq", "16", "-qmin", "16", "-qmax", "18", "-b:v", "8M"},
	}},
	{Profile{
		Name:       "h264_qsv",
		InputArgs:  []string{"-hwaccel", "qsv"},
		OutputArgs: []string{"-global_quality", "18", "-b:v", "8M"},
	}},
	{Profile{
		Name:       "h264_amf",
		InputArgs:  []string{"-hwaccel", "d3d11va"},
		OutputArgs: []string{"-quality", "quality", "-rc", "vbr_peak", "-b:v", "8M"},
	}},
	{Profile{
		Name:       "h264_videotoolbox",
		OutputArgs: []string{"-b:v", "8M", "-q:v", "60"},
	}},
	{Profile{
		Name:       "h264_vaapi",
		InputArgs:  []string{"-hwaccel", "vaapi", "-vaapi_device", "/dev/dri/renderD128"},
		OutputArgs: []string{"-vf", "format=nv12,hwupload", "-rc_mode", "2", "-b:v", "8M"},
	}},
}

// softwareProfile is the last link of the chain: x264 tuned for
// quality, used when ffmpeg lists no hardware encoder.
func softwareProfile() Profile {
	return Profile{
		Name:       "libx264",
		OutputArgs: []string{"-preset", "slower", "-crf", "16"},
	}
}

// conservativeProfile is used when the encoder enumeration itself
// fails and nothing is known about the ffmpeg build.
func conservativeProfile() Profile {
	return Profile{
		Name:       "libx264",
		OutputArgs: []string{"-preset", "medium", "-crf", "20"},
	}
}

// selectProfile picks the highest-priority encoder whose identifier
// appears in the ffmpeg -encoders listing.
func selectProfile(listing string) Profile {
	for _, c := range fallbackChain {
		if strings.Contains(listing, c.profile.Name) {
			return c.profile
		}
	}
	return softwareProfile()
}

// Detect enumerates the available ffmpeg encoders and returns the
// profile to use for all clip encodes. It never fails: if ffmpeg
// cannot be invoked, the software profile with conservative defaults
// is returned.
func Detect(ctx context.Context) Profile {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "ffmpeg", "-hide_banner", "-encoders")
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		logging.Warn("encoder enumeration failed, using software defaults: %v", err)
		return conservativeProfile()
	}

	profile := selectProfile(out.String())
	logging.Info("Using encoder: %s", profile.Name)
	return profile
}
