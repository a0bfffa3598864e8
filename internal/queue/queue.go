package queue

import (
	"strconv"
	"strings"

	"tiered-scheduler/internal/process"
)

// Queue is a fifo of process ids. Insertion order is the only ordering.
type Queue struct {
	q []int
}

func New() *Queue {
	return &Queue{q: make([]int, 0)}
}

func (q *Queue) String() string {
	parts := make([]string, 0, len(q.q))
	for _, pid := range q.q {
		parts = append(parts, strconv.Itoa(pid))
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func (q *Queue) Enq(pid int) {
	q.q = append(q.q, pid)
}

func (q *Queue) Deq() (int, bool) {
	if len(q.q) == 0 {
		return 0, false
	}
	pid := q.q[0]
	q.q = q.q[1:]
	return pid, true
}

func (q *Queue) Front() (int, bool) {
	if len(q.q) == 0 {
		return 0, false
	}
	return q.q[0], true
}

func (q *Queue) Len() int {
	return len(q.q)
}

func (q *Queue) Empty() bool {
	return len(q.q) == 0
}

// Items returns a copy of the queued pids, front first.
func (q *Queue) Items() []int {
	out := make([]int, len(q.q))
	copy(out, q.q)
	return out
}

// ReadyQueues holds one ready queue per priority tier.
type ReadyQueues struct {
	tiers [len(process.Tiers)]*Queue
}

func NewReadyQueues() *ReadyQueues {
	r := &ReadyQueues{}
	for i := range r.tiers {
		r.tiers[i] = New()
	}
	return r
}

// For returns the queue serving tier p. p must be a valid priority.
func (r *ReadyQueues) For(p process.Priority) *Queue {
	return r.tiers[p.Index()]
}

// Deq pops from the highest tier that has work, high first.
func (r *ReadyQueues) Deq() (int, bool) {
	for _, q := range r.tiers {
		if pid, ok := q.Deq(); ok {
			return pid, true
		}
	}
	return 0, false
}

func (r *ReadyQueues) Empty() bool {
	return r.Len() == 0
}

func (r *ReadyQueues) Len() int {
	n := 0
	for _, q := range r.tiers {
		n += q.Len()
	}
	return n
}
