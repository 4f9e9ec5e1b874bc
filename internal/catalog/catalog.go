package catalog

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"yt-clipper/internal/batch"
	"yt-clipper/internal/logging"
	"yt-clipper/internal/metrics"
)

// Entry describes one clip in the current batch.
type Entry struct {
	File  string `json:"file"`
	URL   string `json:"url"`
	Bytes int64  `json:"bytes"`
}

// ResetResult reports what a batch reset did. Archived names the
// files moved into the archive folder, oldest batch first as listed.
type ResetResult struct {
	Counter    int      `json:"counter"`
	TmpDeleted int      `json:"tmp_deleted"`
	Archived   []string `json:"archived"`
	Folder     string   `json:"folder,omitempty"`
}

// Catalog reads the clips directory through the lens of the batch
// store: only files modified at or after the last reset belong to the
// current batch.
type Catalog struct {
	clipsDir string
	tmpDir   string
	store    *batch.Store
}

func New(clipsDir, tmpDir string, store *batch.Store) *Catalog {
	return &Catalog{clipsDir: clipsDir, tmpDir: tmpDir, store: store}
}

// ListCurrentBatch returns the current batch's clips, newest first.
// Subdirectories (archive folders) and dotfiles are skipped.
func (c *Catalog) ListCurrentBatch() ([]Entry, error) {
	st := c.store.Status()

	entries, err := os.ReadDir(c.clipsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, err
	}

	type dated struct {
		entry Entry
		mtime float64
	}
	var files []dated
	for _, de := range entries {
		if de.IsDir() || strings.HasPrefix(de.Name(), ".") {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		mtime := float64(info.ModTime().UnixNano()) / 1e9
		if mtime < st.LastReset {
			continue
		}
		files = append(files, dated{
			entry: Entry{
				File:  de.Name(),
				URL:   "/clips/" + de.Name(),
				Bytes: info.Size(),
			},
			mtime: mtime,
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].mtime > files[j].mtime })

	out := make([]Entry, 0, len(files))
	for _, f := range files {
		out = append(out, f.entry)
	}
	return out, nil
}

// ResetBatch archives the current batch (when folder is non-empty),
// resets the counter, and purges the source cache. Archival and purge
// are best-effort per file; a file that refuses to move or delete is
// logged and skipped, never fatal.
func (c *Catalog) ResetBatch(folder string) ResetResult {
	result := ResetResult{Archived: []string{}}

	if folder != "" {
		// A folder name, never a path: strip any directory components
		// so a reset request cannot write outside the clips dir.
		folder = filepath.Base(strings.TrimSpace(folder))
		if folder == "." || folder == string(filepath.Separator) {
			folder = ""
		}
	}

	if folder != "" {
		result.Folder = folder
		result.Archived = c.archive(folder)
	}

	st := c.store.Reset()
	result.Counter = st.Counter
	metrics.BatchResets.Inc()
	metrics.BatchCounter.Set(float64(st.Counter))

	result.TmpDeleted = c.purgeTmp()

	logging.Info("batch reset: counter=%d archived=%d tmp_deleted=%d folder=%q",
		result.Counter, len(result.Archived), result.TmpDeleted, result.Folder)
	return result
}

// archive moves the current batch's clips into clipsDir/folder and
// returns the names that actually moved. Never nil, so the field
// marshals as [] rather than null.
func (c *Catalog) archive(folder string) []string {
	moved := []string{}

	current, err := c.ListCurrentBatch()
	if err != nil {
		logging.Warn("archive skipped, cannot list clips: %v", err)
		return moved
	}
	if len(current) == 0 {
		return moved
	}

	dest := filepath.Join(c.clipsDir, folder)
	if err := os.MkdirAll(dest, 0o755); err != nil {
		logging.Warn("archive skipped, cannot create %s: %v", dest, err)
		return moved
	}

	for _, e := range current {
		src := filepath.Join(c.clipsDir, e.File)
		if err := os.Rename(src, filepath.Join(dest, e.File)); err != nil {
			logging.Warn("failed to archive %s: %v", e.File, err)
			continue
		}
		moved = append(moved, e.File)
	}
	return moved
}

// purgeTmp deletes cached source files so the next batch starts from
// fresh downloads. Returns the number of files removed.
func (c *Catalog) purgeTmp() int {
	entries, err := os.ReadDir(c.tmpDir)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Warn("tmp purge skipped: %v", err)
		}
		return 0
	}

	deleted := 0
	for _, de := range entries {
		if de.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(c.tmpDir, de.Name())); err != nil {
			logging.Warn("failed to delete %s: %v", de.Name(), err)
			continue
		}
		deleted++
	}
	return deleted
}
