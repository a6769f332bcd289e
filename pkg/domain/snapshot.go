package domain

import "time"

// Snapshot is a point-in-time view of a tree instance, taken between ticks.
type Snapshot struct {
	TreeID    string      `json:"tree_id"`
	Name      string      `json:"name,omitempty"`
	Tick      uint64      `json:"tick"`
	Path      []FrameInfo `json:"path"`
	Last      Result      `json:"last"`
	Failed    bool        `json:"failed,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Active returns the innermost frame of the main path, if any.
func (s *Snapshot) Active() (FrameInfo, bool) {
	if s == nil || len(s.Path) == 0 {
		return FrameInfo{}, false
	}
	return s.Path[len(s.Path)-1], true
}
