package schedulers

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"tiered-scheduler/internal/core"
	"tiered-scheduler/internal/logging"
	"tiered-scheduler/internal/process"
	"tiered-scheduler/internal/queue"
	"tiered-scheduler/internal/requests"
)

// Options configures one tiered round robin run.
type Options struct {
	TimeQuantum     int
	CoreCount       int
	Partition       core.Partition
	MaxTicks        int
	CheckInvariants bool
	Logger          *slog.Logger
}

func (o Options) Validate() error {
	if o.TimeQuantum <= 0 {
		return fmt.Errorf("%w: time quantum must be positive, got %d", ErrInvalidOptions, o.TimeQuantum)
	}
	if o.MaxTicks <= 0 {
		return fmt.Errorf("%w: max ticks must be positive, got %d", ErrInvalidOptions, o.MaxTicks)
	}
	return o.Partition.Validate(o.CoreCount)
}

// TieredRoundRobin is the state of a single simulation run. It is not safe for
// concurrent use; independent runs each get their own instance.
type TieredRoundRobin struct {
	opts   Options
	logger *slog.Logger

	table   *process.Table
	pool    *core.Pool
	ready   *queue.ReadyQueues
	waiting *queue.Queue
	io      core.IoDevice

	metric    core.CpuMetric
	tick      int
	clock     int
	cpuBursts int
	done      bool
}

// NewTieredRoundRobin admits every job into its tier's ready queue, in
// arrival order, and performs the first dispatch so that tick 1 starts with
// the cores already loaded.
func NewTieredRoundRobin(request *requests.ScheduleRequests, opts Options) (*TieredRoundRobin, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := request.Validate(); err != nil {
		return nil, err
	}

	pool, err := core.NewPool(opts.CoreCount, opts.Partition)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	s := &TieredRoundRobin{
		opts:    opts,
		logger:  logger,
		table:   process.NewTable(),
		pool:    pool,
		ready:   queue.NewReadyQueues(),
		waiting: queue.New(),
		io:      core.IoDevice{Quantum: opts.TimeQuantum},
	}

	jobs := make([]requests.Job, len(request.Jobs))
	copy(jobs, request.Jobs)
	sort.SliceStable(jobs, func(i, j int) bool {
		return jobs[i].ArrivalTime < jobs[j].ArrivalTime
	})

	for _, job := range jobs {
		priority, err := process.ParsePriority(job.Priority)
		if err != nil {
			return nil, fmt.Errorf("pid %d: %w", job.ProcessId, err)
		}
		bursts := make([]int, len(job.Bursts))
		copy(bursts, job.Bursts)
		r, err := process.NewRecord(job.ProcessId, job.ArrivalTime, priority, bursts)
		if err != nil {
			return nil, err
		}
		if err := s.table.Add(r); err != nil {
			return nil, err
		}
		s.ready.For(priority).Enq(r.Pid)
	}

	if longest := request.MaxCpuBurst(); longest > 0 && opts.TimeQuantum >= longest {
		logger.Warn("time quantum covers every cpu burst, scheduling degenerates to fcfs",
			slog.Int("time_quantum", opts.TimeQuantum),
			slog.Int("max_cpu_burst", longest))
	}

	s.accrueResponse()
	if err := s.dispatch(); err != nil {
		return nil, err
	}
	if err := s.check(PhaseAdmit); err != nil {
		return nil, err
	}
	s.done = s.drained()

	logger.Info("run admitted",
		slog.Int("processes", s.table.Len()),
		slog.Int("cores", opts.CoreCount),
		slog.Int("reserved_high", pool.Partition().High),
		slog.Int("reserved_medium", pool.Partition().Medium),
		slog.Int("reserved_low", pool.Partition().Low),
		slog.Int("time_quantum", opts.TimeQuantum))

	return s, nil
}

// Run advances the scheduler until every process has finished.
func (s *TieredRoundRobin) Run(ctx context.Context) error {
	for !s.done {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.Step(); err != nil {
			return err
		}
	}

	s.logger.Info("run finished",
		slog.Int("ticks", s.tick),
		slog.Int("finished", s.table.CountState(process.Finished)),
		slog.Int("total_time", s.clock),
		slog.Int("completed_cpu_bursts", s.cpuBursts))
	return nil
}

// Step executes one tick: turnaround accrual, core service, response accrual,
// core dispatch and io service, in that order.
func (s *TieredRoundRobin) Step() error {
	if s.done {
		return nil
	}
	if s.tick >= s.opts.MaxTicks {
		return fmt.Errorf("%w: %d ticks", ErrTickLimit, s.opts.MaxTicks)
	}
	s.tick++
	q := s.opts.TimeQuantum

	s.accrueTurnaround()

	cpuSpan, err := s.serviceCores()
	if err != nil {
		return err
	}

	s.accrueResponse()

	if err := s.dispatch(); err != nil {
		return err
	}

	io, err := s.io.Service(s.waiting, s.table, s.ready)
	if err != nil {
		pid, _ := s.waiting.Front()
		return s.violation(pid, PhaseIo, "wait queue service failed", err)
	}

	s.clock += q
	if s.drained() {
		// the last tick is charged the cpu slice and the io it actually completed
		s.clock += cpuSpan + io.Consumed - q
		s.done = true
	}

	if s.logger.Enabled(context.Background(), slog.LevelDebug) {
		s.logger.Debug("tick",
			slog.Int("tick", s.tick),
			slog.Int("clock", s.clock),
			slog.Any("running", s.pool.Pids()),
			slog.String("wait_queue", s.waiting.String()),
			slog.Int("ready", s.ready.Len()),
			slog.Int("io_consumed", io.Consumed),
			slog.Int("io_completed", len(io.Completed)),
			slog.Int("io_finished", len(io.Finished)),
			slog.Int("finished", s.table.CountState(process.Finished)))
	}

	return s.check(PhaseCheck)
}

func (s *TieredRoundRobin) accrueTurnaround() {
	q := s.opts.TimeQuantum
	s.table.Each(func(r *process.Record) {
		if r.State != process.Finished {
			r.Turnaround += q
		}
	})
}

// serviceCores runs every loaded core for one quantum and returns the
// longest cpu slice used on any core.
func (s *TieredRoundRobin) serviceCores() (int, error) {
	q := s.opts.TimeQuantum
	span := 0
	idle := false

	for i := 0; i < s.pool.Size(); i++ {
		pid, ok := s.pool.Get(i)
		if !ok {
			if !idle {
				s.metric.CpuIdle += q
				idle = true
			}
			s.metric.CoreIdle += q
			continue
		}

		r, err := s.table.Get(pid)
		if err != nil {
			return 0, s.violation(pid, PhaseCore, "core holds unknown pid", err)
		}
		burst, ok := r.HeadCpu()
		if !ok {
			return 0, s.violation(pid, PhaseCore, "running process has no cpu burst", nil)
		}

		if remaining := burst - q; remaining > 0 {
			r.SetHeadCpu(remaining)
			r.State = process.Ready
			s.ready.For(r.Priority).Enq(pid)
			span = q
			continue
		}

		// turnaround was charged a full quantum, the burst only needed part of it
		r.Turnaround += burst - q
		r.PopCpu()
		s.cpuBursts++
		span = max(span, burst)

		if len(r.IoBursts) > 0 {
			r.State = process.Waiting
			s.waiting.Enq(pid)
		} else {
			r.State = process.Finished
		}
	}

	s.pool.Clear()
	return span, nil
}

func (s *TieredRoundRobin) accrueResponse() {
	q := s.opts.TimeQuantum
	s.table.Each(func(r *process.Record) {
		if r.State == process.Ready {
			r.Response += q
		}
	})
}

func (s *TieredRoundRobin) dispatch() error {
	return s.pool.Dispatch(s.ready, func(slot, pid int) error {
		r, err := s.table.Get(pid)
		if err != nil {
			return s.violation(pid, PhaseDispatch, fmt.Sprintf("slot %d given unknown pid", slot), err)
		}
		r.State = process.Running
		return nil
	})
}

func (s *TieredRoundRobin) drained() bool {
	return s.ready.Empty() && s.waiting.Empty() && s.pool.Empty()
}

func (s *TieredRoundRobin) violation(pid int, phase Phase, reason string, err error) error {
	v := &InvariantViolation{Pid: pid, Tick: s.tick, Phase: phase, Reason: reason, Err: err}
	s.logger.Error("run aborted", slog.Int("pid", pid), slog.Int("tick", s.tick),
		slog.String("phase", string(phase)), logging.ErrAttr(v))
	return v
}

func (s *TieredRoundRobin) Done() bool { return s.done }

func (s *TieredRoundRobin) Tick() int { return s.tick }

// Clock is the simulated time elapsed so far.
func (s *TieredRoundRobin) Clock() int { return s.clock }

func (s *TieredRoundRobin) CompletedCpuBursts() int { return s.cpuBursts }

func (s *TieredRoundRobin) Metric() core.CpuMetric { return s.metric }

func (s *TieredRoundRobin) Record(pid int) (*process.Record, error) {
	return s.table.Get(pid)
}

func (s *TieredRoundRobin) Records() []*process.Record {
	return s.table.Records()
}

func (s *TieredRoundRobin) ReadyPids(tier process.Priority) []int {
	return s.ready.For(tier).Items()
}

func (s *TieredRoundRobin) WaitingPids() []int {
	return s.waiting.Items()
}

// RunningPids lists the pids loaded on cores, in slot order.
func (s *TieredRoundRobin) RunningPids() []int {
	return s.pool.Pids()
}

// RemainingBursts sums unfinished cpu and io bursts over the whole run.
func (s *TieredRoundRobin) RemainingBursts() int {
	return s.table.RemainingBursts()
}
