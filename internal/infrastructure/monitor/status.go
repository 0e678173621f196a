package monitor

import "time"

// Status is the last observed health of every registered component.
type Status struct {
	Components map[string]bool `json:"components"`
	Advisory   map[string]bool `json:"advisory,omitempty"`
	BufferSize int             `json:"buffer_size"`
	LastCheck  time.Time       `json:"last_check"`
}

// Healthy reports whether every component passed its last check. Advisory
// results are not considered.
func (s Status) Healthy() bool {
	for _, ok := range s.Components {
		if !ok {
			return false
		}
	}
	return true
}
