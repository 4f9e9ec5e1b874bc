// Package clipper cuts a time range out of a local source file and
// re-encodes it for delivery using FFmpeg.
//
// Output is always MP4 (H.264 high profile + AAC 320k) with faststart
// container layout, bounded to 1920x1080 for landscape sources and
// 1080x1920 for portrait ones, never upscaling.
package clipper
