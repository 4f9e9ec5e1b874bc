// Package batch persists the clip numbering state shared by every
// submission path.
//
// The state is a single JSON record holding the next sequence index and
// the timestamp of the last batch reset. All mutations are full
// read-modify-write cycles under one lock, so concurrent reservations
// never produce duplicate or skipped indices. An unreadable or corrupt
// state file is silently replaced by the default state rather than
// surfaced to callers.
package batch
