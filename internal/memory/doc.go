// Package memory configures Go's runtime memory limit for containerized
// deployments.
//
// GOMEMLIMIT is not auto-detected from cgroup limits the way GOMAXPROCS
// is, so a container that caps memory will OOM-kill the process before
// the garbage collector ever feels pressure. [ConfigureFromEnv] derives
// GOMEMLIMIT from the container limit (passed via the Kubernetes
// Downward API as MEMORY_LIMIT) and reserves a slice of it for the
// ffmpeg and yt-dlp subprocesses the clip pipeline spawns.
//
// Environment variables:
//
//   - GOMEMLIMIT: standard Go variable; takes precedence when set.
//   - MEMORY_LIMIT: container memory limit in bytes.
//   - MEMORY_RATIO: fraction of MEMORY_LIMIT given to the Go heap
//     (default 0.85). Lower it when clips run large.
//
// Call [ConfigureFromEnv] first thing in main, before significant
// allocations.
package memory
