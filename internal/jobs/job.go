package jobs

import "fmt"

// State is a job lifecycle stage.
type State string

const (
	StateQueued      State = "queued"
	StateWorking     State = "working"
	StateDownloading State = "downloading"
	StateClipping    State = "clipping"
	StateDone        State = "done"
	StateError       State = "error"
)

// stateRank orders states for the forward-only invariant. Terminal
// states share the highest rank; a terminal job never changes again.
var stateRank = map[State]int{
	StateQueued:      0,
	StateWorking:     1,
	StateDownloading: 2,
	StateClipping:    3,
	StateDone:        4,
	StateError:       4,
}

// Terminal reports whether the state is done or error.
func (s State) Terminal() bool {
	return s == StateDone || s == StateError
}

// Job is one clip request. Index and Filename are assigned before the
// job is queued and are immutable; Error is meaningful only in state
// error, ResultURL only in state done.
type Job struct {
	ID        string  `json:"id"`
	URL       string  `json:"url"`
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	State     State   `json:"state"`
	Index     int     `json:"index"`
	Filename  string  `json:"filename"`
	QueuedAt  float64 `json:"queued_at"`
	Error     string  `json:"error,omitempty"`
	ResultURL string  `json:"result_url,omitempty"`
}

// mmss formats an offset as zero-padded minutes and seconds, clamping
// negatives to zero.
func mmss(seconds float64) string {
	s := int(seconds)
	if s < 0 {
		s = 0
	}
	return fmt.Sprintf("%02d%02d", s/60, s%60)
}

// Filename derives the deterministic output name for a reserved index
// and time range, e.g. index 3, 65s-125s -> "(3) 0105-0205.mp4".
func Filename(index int, start, end float64) string {
	return fmt.Sprintf("(%d) %s-%s.mp4", index, mmss(start), mmss(end))
}
