package process

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound  = errors.New("process not found")
	ErrDuplicate = errors.New("duplicate process id")
)

// Table owns the records of one run and resolves pids to records.
type Table struct {
	records map[int]*Record
	order   []int
}

func NewTable() *Table {
	return &Table{records: make(map[int]*Record)}
}

func (t *Table) Add(r *Record) error {
	if _, ok := t.records[r.Pid]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicate, r.Pid)
	}
	t.records[r.Pid] = r
	t.order = append(t.order, r.Pid)
	return nil
}

func (t *Table) Get(pid int) (*Record, error) {
	r, ok := t.records[pid]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, pid)
	}
	return r, nil
}

// Records returns every record in insertion order.
func (t *Table) Records() []*Record {
	out := make([]*Record, 0, len(t.order))
	for _, pid := range t.order {
		out = append(out, t.records[pid])
	}
	return out
}

// Each visits records in insertion order.
func (t *Table) Each(fn func(*Record)) {
	for _, pid := range t.order {
		fn(t.records[pid])
	}
}

func (t *Table) Len() int {
	return len(t.order)
}

// CountState returns how many records are currently in state s.
func (t *Table) CountState(s State) int {
	n := 0
	for _, r := range t.records {
		if r.State == s {
			n++
		}
	}
	return n
}

// RemainingBursts sums the unfinished cpu and io bursts over every record.
func (t *Table) RemainingBursts() int {
	n := 0
	for _, r := range t.records {
		n += r.RemainingBursts()
	}
	return n
}
