// Package jobs holds the in-memory job registry, the FIFO admission
// queue and the single background worker that drives each job through
// its lifecycle.
//
// Job state only ever moves forward: queued, working, downloading,
// clipping, then done or error. The sequence index and output filename
// are fixed at submission time, before the job is queued, and never
// change afterwards.
package jobs
