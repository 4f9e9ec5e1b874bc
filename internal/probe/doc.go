// Package probe wraps ffprobe queries against local media files.
package probe
