package process

import (
	"errors"
	"fmt"
)

var ErrInvalidPriority = errors.New("invalid process priority")

// Priority is the tier a process is queued and reserved under.
// The numeric values match the workload encoding: 1 high, 2 medium, 3 low.
type Priority int

const (
	High Priority = iota + 1
	Medium
	Low
)

// Tiers lists the priorities in dispatch order.
var Tiers = [...]Priority{High, Medium, Low}

func ParsePriority(v int) (Priority, error) {
	p := Priority(v)
	if !p.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidPriority, v)
	}
	return p, nil
}

func (p Priority) Valid() bool {
	switch p {
	case High, Medium, Low:
		return true
	default:
		return false
	}
}

// Index maps a tier onto 0..2 for array-backed per-tier storage.
func (p Priority) Index() int {
	return int(p) - 1
}

func (p Priority) String() string {
	switch p {
	case High:
		return "high"
	case Medium:
		return "medium"
	case Low:
		return "low"
	default:
		return fmt.Sprintf("priority(%d)", int(p))
	}
}
