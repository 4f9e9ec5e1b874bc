// Package resolver turns a remote media URL into a local source file.
//
// Resolution is a metadata-only yt-dlp probe that yields the canonical
// video id; the id keys a disk cache of downloaded sources, so a clip
// of an already-fetched video never touches the network again. Fetches
// prefer adaptive streams within an orientation-aware resolution cap
// and relax through muxed fallbacks, always merging to MP4.
package resolver
