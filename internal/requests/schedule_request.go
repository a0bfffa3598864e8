package requests

import (
	"errors"
	"fmt"

	"tiered-scheduler/internal/process"
)

var ErrMalformedRecord = errors.New("malformed workload record")

// Job is one workload descriptor. Bursts alternate cpu, io, cpu, ... and
// always start with a cpu burst.
type Job struct {
	ProcessId   int   `json:"process_id"`
	ArrivalTime int   `json:"arrival_time"`
	Priority    int   `json:"priority"`
	Bursts      []int `json:"bursts"`
}

type ScheduleRequests struct {
	Jobs []Job `json:"jobs"`
}

// Validate checks the shape of a single job. Priority is checked separately
// so that callers can tell the two failure kinds apart.
func (j Job) Validate() error {
	if len(j.Bursts) == 0 {
		return fmt.Errorf("%w: pid %d has no bursts", ErrMalformedRecord, j.ProcessId)
	}
	for i, b := range j.Bursts {
		if b <= 0 {
			return fmt.Errorf("%w: pid %d burst %d is %d, must be positive", ErrMalformedRecord, j.ProcessId, i+1, b)
		}
	}
	if _, err := process.ParsePriority(j.Priority); err != nil {
		return fmt.Errorf("pid %d: %w", j.ProcessId, err)
	}
	return nil
}

// Validate checks every job and rejects duplicate pids.
func (r ScheduleRequests) Validate() error {
	seen := make(map[int]struct{}, len(r.Jobs))
	for _, j := range r.Jobs {
		if err := j.Validate(); err != nil {
			return err
		}
		if _, ok := seen[j.ProcessId]; ok {
			return fmt.Errorf("%w: duplicate pid %d", ErrMalformedRecord, j.ProcessId)
		}
		seen[j.ProcessId] = struct{}{}
	}
	return nil
}

// MaxCpuBurst returns the longest cpu burst over all jobs.
func (r ScheduleRequests) MaxCpuBurst() int {
	longest := 0
	for _, j := range r.Jobs {
		for i := 0; i < len(j.Bursts); i += 2 {
			longest = max(longest, j.Bursts[i])
		}
	}
	return longest
}
