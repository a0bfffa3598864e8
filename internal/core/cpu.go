package core

import (
	"errors"
	"fmt"

	"github.com/markphelps/optional"

	"tiered-scheduler/internal/process"
	"tiered-scheduler/internal/queue"
)

var ErrPartitionMisconfiguration = errors.New("core partition misconfigured")

// Partition reserves contiguous core ranges per tier, laid out high, medium, low.
type Partition struct {
	High   int `json:"high" mapstructure:"high"`
	Medium int `json:"medium" mapstructure:"medium"`
	Low    int `json:"low" mapstructure:"low"`
}

// DefaultPartition is the 16 core layout: half high, a third medium, the rest low.
var DefaultPartition = Partition{High: 8, Medium: 5, Low: 3}

func (p Partition) Total() int {
	return p.High + p.Medium + p.Low
}

func (p Partition) Validate(coreCount int) error {
	if coreCount <= 0 {
		return fmt.Errorf("%w: core count must be positive, got %d", ErrPartitionMisconfiguration, coreCount)
	}
	if p.High < 0 || p.Medium < 0 || p.Low < 0 {
		return fmt.Errorf("%w: negative reservation %+v", ErrPartitionMisconfiguration, p)
	}
	if p.Total() != coreCount {
		return fmt.Errorf("%w: reservations %d+%d+%d != %d cores",
			ErrPartitionMisconfiguration, p.High, p.Medium, p.Low, coreCount)
	}
	return nil
}

// Range returns the half-open slot range [start, end) reserved for tier.
func (p Partition) Range(tier process.Priority) (start, end int) {
	switch tier {
	case process.High:
		return 0, p.High
	case process.Medium:
		return p.High, p.High + p.Medium
	case process.Low:
		return p.High + p.Medium, p.Total()
	default:
		return 0, 0
	}
}

// CpuMetric accumulates idle time over a run. CoreIdle counts every idle
// slot, CpuIdle counts at most one idle quantum per tick.
type CpuMetric struct {
	CoreIdle int
	CpuIdle  int
}

// Pool is the fixed set of core slots. A slot holds a pid or nothing.
type Pool struct {
	slots     []optional.Int
	partition Partition
}

func NewPool(coreCount int, partition Partition) (*Pool, error) {
	if err := partition.Validate(coreCount); err != nil {
		return nil, err
	}
	return &Pool{
		slots:     make([]optional.Int, coreCount),
		partition: partition,
	}, nil
}

func (p *Pool) Size() int {
	return len(p.slots)
}

func (p *Pool) Partition() Partition {
	return p.partition
}

// Get returns the pid held by slot i.
func (p *Pool) Get(i int) (int, bool) {
	pid, err := p.slots[i].Get()
	if err != nil {
		return 0, false
	}
	return pid, true
}

func (p *Pool) Assign(i, pid int) {
	p.slots[i] = optional.NewInt(pid)
}

// Clear empties every slot.
func (p *Pool) Clear() {
	for i := range p.slots {
		p.slots[i] = optional.Int{}
	}
}

func (p *Pool) Occupied() int {
	n := 0
	for _, s := range p.slots {
		if s.Present() {
			n++
		}
	}
	return n
}

func (p *Pool) Empty() bool {
	return p.Occupied() == 0
}

// Pids lists the occupied slots' pids in slot order.
func (p *Pool) Pids() []int {
	out := make([]int, 0, len(p.slots))
	for i := range p.slots {
		if pid, ok := p.Get(i); ok {
			out = append(out, pid)
		}
	}
	return out
}

// Dispatch fills the pool from the ready queues. Each tier first fills its own
// reserved range fcfs; every slot still open afterwards goes to the next
// process from high, then medium, then low. placed is called once per process
// put on a core.
func (p *Pool) Dispatch(ready *queue.ReadyQueues, placed func(slot, pid int) error) error {
	for _, tier := range process.Tiers {
		start, end := p.partition.Range(tier)
		q := ready.For(tier)
		for i := start; i < end && !q.Empty(); i++ {
			if p.slots[i].Present() {
				continue
			}
			pid, _ := q.Deq()
			p.Assign(i, pid)
			if err := placed(i, pid); err != nil {
				return err
			}
		}
	}

	for i := range p.slots {
		if p.slots[i].Present() {
			continue
		}
		pid, ok := ready.Deq()
		if !ok {
			break
		}
		p.Assign(i, pid)
		if err := placed(i, pid); err != nil {
			return err
		}
	}
	return nil
}
