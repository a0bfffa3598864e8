package simulation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rs/xid"

	"tiered-scheduler/internal/logging"
	"tiered-scheduler/internal/responses"
	"tiered-scheduler/internal/schedulers"
	"tiered-scheduler/internal/store"
	"tiered-scheduler/internal/util"
	"tiered-scheduler/internal/workload"
)

var ErrInvalidBatch = errors.New("invalid simulation batch")

// Builder configures a Simulator.
type Builder struct {
	options  schedulers.Options
	workload workload.Config
	workers  int
	seed     int64
	recorder store.Recorder
	logger   *slog.Logger
}

func MakeBuilder() Builder {
	return Builder{
		workload: workload.DefaultConfig,
		workers:  1,
		seed:     1,
	}
}

// WithOptions sets the engine options every run uses.
func (b Builder) WithOptions(o schedulers.Options) Builder {
	b.options = o
	return b
}

func (b Builder) WithWorkload(c workload.Config) Builder {
	b.workload = c
	return b
}

// WithWorkers sets how many runs execute at the same time.
func (b Builder) WithWorkers(n int) Builder {
	b.workers = n
	return b
}

// WithSeed sets the base seed. Run i uses seed+i, so a batch is reproducible
// regardless of which worker picks which run.
func (b Builder) WithSeed(seed int64) Builder {
	b.seed = seed
	return b
}

func (b Builder) WithRecorder(r store.Recorder) Builder {
	b.recorder = r
	return b
}

func (b Builder) WithLogger(l *slog.Logger) Builder {
	b.logger = l
	return b
}

func (b Builder) Build() (*Simulator, error) {
	if err := b.options.Validate(); err != nil {
		return nil, err
	}
	if err := b.workload.Validate(); err != nil {
		return nil, err
	}
	if b.workers <= 0 {
		return nil, fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidBatch, b.workers)
	}
	logger := b.logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Simulator{
		options:  b.options,
		workload: b.workload,
		workers:  b.workers,
		seed:     b.seed,
		recorder: b.recorder,
		logger:   logger,
	}, nil
}

// Simulator runs batches of independent simulations. Each run owns its
// workload and scheduler; only the finished summaries are shared.
type Simulator struct {
	options  schedulers.Options
	workload workload.Config
	workers  int
	seed     int64
	recorder store.Recorder
	logger   *slog.Logger
}

// Run executes runs simulations on the worker pool and averages them. The first
// failing run cancels the rest of the batch.
func (s *Simulator) Run(ctx context.Context, runs int) (responses.SimulationReport, error) {
	if runs <= 0 {
		return responses.SimulationReport{}, fmt.Errorf("%w: runs must be positive, got %d", ErrInvalidBatch, runs)
	}

	batchID := xid.New().String()
	logger := s.logger.With(slog.String("batch", batchID))
	logger.Info("batch started", slog.Int("runs", runs), slog.Int("workers", s.workers))

	parent := ctx
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	var (
		wg        sync.WaitGroup
		failOnce  sync.Once
		firstErr  error
		summaries = make([]responses.ScheduleResponse, runs)
		indexes   = make(chan int)
	)
	fail := func(err error) {
		failOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	wg.Add(s.workers)
	for w := 0; w < s.workers; w++ {
		go func() {
			defer wg.Done()
			for i := range indexes {
				summary, err := s.runOne(ctx, i, logger)
				if err != nil {
					fail(fmt.Errorf("run %d: %w", i, err))
					continue
				}
				summaries[i] = summary
				if s.recorder == nil {
					continue
				}
				if err := s.recorder.RecordRun(batchID, summary); err != nil {
					fail(fmt.Errorf("record run %d: %w", i, err))
				}
			}
		}()
	}

feed:
	for i := 0; i < runs; i++ {
		select {
		case indexes <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(indexes)
	wg.Wait()

	if firstErr != nil {
		logger.Error("batch failed", logging.ErrAttr(firstErr))
		return responses.SimulationReport{}, firstErr
	}
	if err := parent.Err(); err != nil {
		return responses.SimulationReport{}, err
	}
	if s.recorder != nil {
		if err := s.recorder.Flush(); err != nil {
			return responses.SimulationReport{}, fmt.Errorf("flush batch %s: %w", batchID, err)
		}
	}

	report := util.CalculateAverage(summaries)
	report.BatchID = batchID
	logger.Info("batch finished",
		slog.Float64("average_turn_around_time", report.AverageTurnAroundTime.Mean),
		slog.Float64("cpu_throughput", report.CpuThroughput.Mean))
	return report, nil
}

func (s *Simulator) runOne(ctx context.Context, i int, logger *slog.Logger) (responses.ScheduleResponse, error) {
	request := workload.NewGenerator(s.workload, s.seed+int64(i)).Generate()

	opts := s.options
	opts.Logger = logger.With(slog.Int("run", i))

	summary, err := schedulers.ScheduleTieredRoundRobin(ctx, request, opts)
	if err != nil {
		return responses.ScheduleResponse{}, err
	}
	summary.RunIndex = i
	summary.Details = nil
	return summary, nil
}
