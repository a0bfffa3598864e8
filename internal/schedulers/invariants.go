package schedulers

import (
	"fmt"

	"tiered-scheduler/internal/process"
)

// check verifies, between ticks, that every pid sits in exactly one place,
// that its state matches that place, and that its bursts still alternate.
func (s *TieredRoundRobin) check(phase Phase) error {
	if !s.opts.CheckInvariants {
		return nil
	}

	where := make(map[int]string, s.table.Len())
	place := func(pid int, location string, want process.State) error {
		if prev, ok := where[pid]; ok {
			return s.violation(pid, phase, fmt.Sprintf("found in %s and %s", prev, location), nil)
		}
		where[pid] = location
		r, err := s.table.Get(pid)
		if err != nil {
			return s.violation(pid, phase, location+" holds unknown pid", err)
		}
		if r.State != want {
			return s.violation(pid, phase, fmt.Sprintf("in %s with state %s", location, r.State), nil)
		}
		return nil
	}

	for _, tier := range process.Tiers {
		for _, pid := range s.ready.For(tier).Items() {
			if err := place(pid, tier.String()+" ready queue", process.Ready); err != nil {
				return err
			}
		}
	}
	for _, pid := range s.waiting.Items() {
		if err := place(pid, "wait queue", process.Waiting); err != nil {
			return err
		}
	}
	for _, pid := range s.pool.Pids() {
		if err := place(pid, "core", process.Running); err != nil {
			return err
		}
	}

	for _, r := range s.table.Records() {
		if _, ok := where[r.Pid]; !ok && r.State != process.Finished {
			return s.violation(r.Pid, phase, fmt.Sprintf("state %s but in no queue or core", r.State), nil)
		}
		if err := s.checkBursts(r, phase); err != nil {
			return err
		}
	}
	return nil
}

func (s *TieredRoundRobin) checkBursts(r *process.Record, phase Phase) error {
	cpu, io := len(r.CpuBursts), len(r.IoBursts)
	var ok bool
	switch r.State {
	case process.Ready, process.Running:
		ok = cpu > 0 && (cpu == io || cpu == io+1)
	case process.Waiting:
		ok = io > 0 && (io == cpu || io == cpu+1)
	case process.Finished:
		ok = r.Exhausted()
	default:
		return s.violation(r.Pid, phase, fmt.Sprintf("unknown state %s", r.State), nil)
	}
	if !ok {
		return s.violation(r.Pid, phase,
			fmt.Sprintf("%s with %d cpu and %d io bursts left", r.State, cpu, io), nil)
	}
	return nil
}
