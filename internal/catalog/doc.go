// Package catalog lists the clip files belonging to the current batch
// and performs batch resets (optional archival of finished clips,
// counter reset, source cache purge).
package catalog
