package process

import (
	"errors"
	"fmt"
)

var ErrNoBursts = errors.New("process has no bursts")

// Record is the process control block the engine mutates every tick.
// CpuBursts and IoBursts hold what is left of the alternating burst
// sequence; the head of each slice is the burst currently being served.
type Record struct {
	Pid      int
	Arrival  int
	Priority Priority
	State    State

	CpuBursts []int
	IoBursts  []int

	Turnaround int
	Wait       int
	Response   int
}

// NewRecord splits an alternating cpu,io,cpu,... burst list into its cpu and io
// halves. The record starts Ready with zeroed counters.
func NewRecord(pid, arrival int, priority Priority, bursts []int) (*Record, error) {
	if !priority.Valid() {
		return nil, fmt.Errorf("pid %d: %w: %d", pid, ErrInvalidPriority, int(priority))
	}
	if len(bursts) == 0 {
		return nil, fmt.Errorf("pid %d: %w", pid, ErrNoBursts)
	}

	r := &Record{
		Pid:       pid,
		Arrival:   arrival,
		Priority:  priority,
		State:     Ready,
		CpuBursts: make([]int, 0, (len(bursts)+1)/2),
		IoBursts:  make([]int, 0, len(bursts)/2),
	}
	for i, b := range bursts {
		if i%2 == 0 {
			r.CpuBursts = append(r.CpuBursts, b)
		} else {
			r.IoBursts = append(r.IoBursts, b)
		}
	}
	return r, nil
}

func (r *Record) HeadCpu() (int, bool) {
	if len(r.CpuBursts) == 0 {
		return 0, false
	}
	return r.CpuBursts[0], true
}

func (r *Record) HeadIo() (int, bool) {
	if len(r.IoBursts) == 0 {
		return 0, false
	}
	return r.IoBursts[0], true
}

func (r *Record) SetHeadCpu(v int) { r.CpuBursts[0] = v }

func (r *Record) SetHeadIo(v int) { r.IoBursts[0] = v }

func (r *Record) PopCpu() { r.CpuBursts = r.CpuBursts[1:] }

func (r *Record) PopIo() { r.IoBursts = r.IoBursts[1:] }

// RemainingBursts counts the cpu and io bursts not yet completed.
func (r *Record) RemainingBursts() int {
	return len(r.CpuBursts) + len(r.IoBursts)
}

// Exhausted reports whether both burst sequences are empty.
func (r *Record) Exhausted() bool {
	return r.RemainingBursts() == 0
}

func (r *Record) String() string {
	return fmt.Sprintf("pid %d (%s, %s) cpu=%v io=%v tat=%d wait=%d resp=%d",
		r.Pid, r.Priority, r.State, r.CpuBursts, r.IoBursts, r.Turnaround, r.Wait, r.Response)
}
