// Package encoder probes FFmpeg once at startup for hardware H.264
// encoders and selects the best available one, falling back to
// software x264. The selected profile is immutable for the process
// lifetime and consumed by the clip transcoder.
package encoder
