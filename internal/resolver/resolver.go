package resolver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"yt-clipper/internal/logging"
	"yt-clipper/internal/metrics"
	"yt-clipper/internal/probe"
)

// Height caps per orientation; both capped at 60 fps in the selector.
const (
	maxHeightLandscape = 1080
	maxHeightPortrait  = 1920

	// qualityFloor is the landscape height below which a completed
	// download gets a warning (the source itself was limited).
	qualityFloor = 720
)

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// maxDiagnostic bounds how much yt-dlp stderr is kept on failure.
const maxDiagnostic = 4000

// FetchError reports an unrecoverable extraction or download failure
// for a source URL.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Resolver resolves remote URLs to cached local source files under
// cacheDir. The cache has no population lock: two concurrent first
// fetches of the same id may both download, with the second rename
// winning.
type Resolver struct {
	cacheDir string
}

// New creates a resolver caching sources in cacheDir.
func New(cacheDir string) *Resolver {
	return &Resolver{cacheDir: cacheDir}
}

// Probe extracts metadata for the URL without downloading anything.
func (r *Resolver) Probe(ctx context.Context, url string) (Metadata, error) {
	info, err := r.extract(ctx, url)
	if err != nil {
		return Metadata{}, err
	}
	return info.metadata(), nil
}

// extract runs a metadata-only yt-dlp query and parses the JSON dump.
func (r *Resolver) extract(ctx context.Context, url string) (*extractorInfo, error) {
	cmd := exec.CommandContext(ctx, "yt-dlp", "-J", "--no-playlist", "--no-warnings", url)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("%w: %s", err, excerpt(stderr.String()))}
	}

	var info extractorInfo
	if err := json.Unmarshal(stdout.Bytes(), &info); err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("parse extractor output: %w", err)}
	}
	if info.ID == "" {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("extractor returned no video id")}
	}
	return &info, nil
}

// formatSelector builds the prioritized yt-dlp format chain for the
// given height cap: adaptive DASH within the cap first, then
// progressively relaxed merges, then muxed "best", then an HLS
// fallback.
func formatSelector(maxHeight int) string {
	return strings.Join([]string{
		fmt.Sprintf("bestvideo[protocol^=http_dash_segments][height<=%d][fps<=60]+bestaudio[ext=m4a]", maxHeight),
		fmt.Sprintf("bestvideo[protocol^=http_dash_segments][height<=%d][fps<=60]+bestaudio", maxHeight),
		fmt.Sprintf("bestvideo[ext=mp4][vcodec*=avc1][height<=%d][fps<=60]+bestaudio[ext=m4a]", maxHeight),
		fmt.Sprintf("bestvideo[ext=mp4][height<=%d][fps<=60]+bestaudio", maxHeight),
		fmt.Sprintf("best[height<=%d]", maxHeight),
		"(bv*+ba/b)[protocol^=m3u8]",
	}, "/")
}

// cachePath is the canonical on-disk location for a video id.
func (r *Resolver) cachePath(id string) string {
	return filepath.Join(r.cacheDir, id+".mp4")
}

// ResolveAndFetch resolves the URL to its canonical id and returns a
// local path to the source file, downloading it on a cache miss.
func (r *Resolver) ResolveAndFetch(ctx context.Context, url string) (string, error) {
	info, err := r.extract(ctx, url)
	if err != nil {
		return "", err
	}

	cached := r.cachePath(info.ID)
	if _, err := os.Stat(cached); err == nil {
		logging.Info("source cache hit for %s: %s", info.ID, cached)
		metrics.SourceCacheHits.Inc()
		return cached, nil
	}
	metrics.SourceCacheMisses.Inc()

	maxHeight := maxHeightLandscape
	if info.isVertical() {
		maxHeight = maxHeightPortrait
	}

	start := time.Now()
	produced, err := r.download(ctx, url, info.ID, maxHeight)
	if err != nil {
		metrics.SourceDownloads.WithLabelValues("error").Inc()
		return "", err
	}
	metrics.SourceDownloads.WithLabelValues("success").Inc()
	metrics.SourceDownloadDuration.Observe(time.Since(start).Seconds())

	if err := normalize(produced, cached); err != nil {
		return "", &FetchError{URL: url, Err: err}
	}

	if w, h, err := probe.Dimensions(ctx, cached); err == nil {
		logging.Info("cached source %s dimensions: %dx%d", filepath.Base(cached), w, h)
		if maxHeight == maxHeightLandscape && h < qualityFloor {
			logging.Warn("landscape source below %dp; source likely limited", qualityFloor)
		}
	}

	return cached, nil
}

// download invokes yt-dlp for one source and returns the produced file
// path (from the after-move print, with a directory scan as backup).
func (r *Resolver) download(ctx context.Context, url, id string, maxHeight int) (string, error) {
	args := []string{
		"--no-playlist",
		"-f", formatSelector(maxHeight),
		"-o", filepath.Join(r.cacheDir, id+".%(ext)s"),
		"--merge-output-format", "mp4",
		"--recode-video", "mp4",
		"--force-overwrites",
		"--retries", "10",
		"--fragment-retries", "10",
		"--concurrent-fragments", "5",
		"--format-sort", "ext:mp4:m4a,vcodec:avc1,acodec:mp4a,codec:h264,res,fps",
		"--user-agent", browserUserAgent,
		"--add-header", "Accept:*/*",
		"--add-header", "Accept-Language:en-US,en;q=0.9",
		"--add-header", "Origin:https://www.youtube.com",
		"--add-header", "Referer:https://www.youtube.com/",
		"--no-progress",
		"--print", "after_move:filepath",
		"--no-simulate",
		url,
	}

	cmd := exec.CommandContext(ctx, "yt-dlp", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logging.Info("downloading %s (cap %dp)", id, maxHeight)
	if err := cmd.Run(); err != nil {
		return "", &FetchError{URL: url, Err: fmt.Errorf("%w: %s", err, excerpt(stderr.String()))}
	}

	if path := lastLine(stdout.String()); path != "" {
		return path, nil
	}

	// Older yt-dlp builds without the print hook: scan for the id.
	if path := r.findProduced(id); path != "" {
		return path, nil
	}
	return "", &FetchError{URL: url, Err: fmt.Errorf("download produced no file for id %s", id)}
}

// findProduced locates a downloaded file for the id when yt-dlp did
// not report the final path.
func (r *Resolver) findProduced(id string) string {
	matches, err := filepath.Glob(filepath.Join(r.cacheDir, id+".*"))
	if err != nil {
		return ""
	}
	for _, m := range matches {
		if strings.HasSuffix(m, ".part") || strings.HasSuffix(m, ".ytdl") {
			continue
		}
		return m
	}
	return ""
}

// normalize moves the produced file to the canonical cache path,
// falling back to copy-then-replace when rename fails across devices.
func normalize(produced, cached string) error {
	if produced == cached {
		return nil
	}
	if err := os.Rename(produced, cached); err == nil {
		return nil
	}
	if err := copyReplace(produced, cached); err != nil {
		return fmt.Errorf("normalize %s: %w", produced, err)
	}
	_ = os.Remove(produced)
	return nil
}

// copyReplace copies src to a temp file beside dst and renames it into
// place, keeping the replacement atomic on the destination side.
func copyReplace(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := io.Copy(tmp, in); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, dst)
}

// lastLine returns the final non-empty line of s.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}

// excerpt bounds diagnostic output kept from a failed subprocess.
func excerpt(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxDiagnostic {
		s = s[:maxDiagnostic]
	}
	return s
}
