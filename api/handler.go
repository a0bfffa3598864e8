package api

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"tiered-scheduler/config"
	"tiered-scheduler/internal/logging"
	"tiered-scheduler/internal/process"
	"tiered-scheduler/internal/requests"
	"tiered-scheduler/internal/schedulers"
	"tiered-scheduler/internal/simulation"
	"tiered-scheduler/internal/store"
	"tiered-scheduler/internal/util"
)

// MaxRuns caps the batch size a single request may ask for.
const MaxRuns = 1000

type SchedulerHandler interface {
	TieredRoundRobin(ctx *fiber.Ctx) error
	TieredRoundRobinText(ctx *fiber.Ctx) error
	Simulate(ctx *fiber.Ctx) error
	Batch(ctx *fiber.Ctx) error
	Batches(ctx *fiber.Ctx) error
	Config(ctx *fiber.Ctx) error
}

// Store is the persistence the handler needs for batches.
type Store interface {
	store.Recorder
	store.Reader
}

type SchedulerHandlerImpl struct {
	config *config.SchedulerConfig
	logger *slog.Logger
	store  Store
}

// NewSchedulerHandlerImpl builds a handler. st may be nil, in which case
// batches are not persisted and cannot be looked up.
func NewSchedulerHandlerImpl(config *config.SchedulerConfig, logger *slog.Logger, st Store) *SchedulerHandlerImpl {
	if logger == nil {
		logger = logging.Discard()
	}
	return &SchedulerHandlerImpl{config: config, logger: logger, store: st}
}

// Register mounts the handler under /api/v1.
func Register(app *fiber.App, h SchedulerHandler) {
	api := app.Group("/api")

	v1 := api.Group("/v1")
	{
		v1.Post("/trr", h.TieredRoundRobin)
		v1.Post("/trr/text", h.TieredRoundRobinText)
		v1.Get("/simulations", h.Simulate)
		v1.Get("/simulations/:batch", h.Batch)
		v1.Get("/batches", h.Batches)
		v1.Get("/config", h.Config)
	}
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, requests.ErrMalformedRecord),
		errors.Is(err, process.ErrInvalidPriority),
		errors.Is(err, schedulers.ErrTickLimit),
		errors.Is(err, simulation.ErrInvalidBatch):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func (s *SchedulerHandlerImpl) fail(ctx *fiber.Ctx, status int, err error) error {
	if status >= fiber.StatusInternalServerError {
		s.logger.Error("request failed", slog.String("path", ctx.Path()), logging.ErrAttr(err))
	}
	return ctx.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func (s *SchedulerHandlerImpl) options() schedulers.Options {
	opts := s.config.SchedulerOptions()
	opts.Logger = s.logger
	return opts
}

func (s *SchedulerHandlerImpl) schedule(ctx *fiber.Ctx, request *requests.ScheduleRequests) error {
	response, err := schedulers.ScheduleTieredRoundRobin(ctx.UserContext(), request, s.options())
	if err != nil {
		return s.fail(ctx, statusOf(err), err)
	}
	return ctx.JSON(response)
}

func (s *SchedulerHandlerImpl) TieredRoundRobin(ctx *fiber.Ctx) error {
	request := &requests.ScheduleRequests{}
	if err := ctx.BodyParser(request); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request format",
		})
	}
	return s.schedule(ctx, request)
}

// TieredRoundRobinText accepts the comma separated workload format, one
// process per line.
func (s *SchedulerHandlerImpl) TieredRoundRobinText(ctx *fiber.Ctx) error {
	request, err := requests.ParseWorkload(bytes.NewReader(ctx.Body()))
	if err != nil {
		return s.fail(ctx, fiber.StatusBadRequest, err)
	}
	return s.schedule(ctx, request)
}

func queryInt(ctx *fiber.Ctx, key string, fallback int64) (int64, error) {
	raw := ctx.Query(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: query %s=%q is not an integer", simulation.ErrInvalidBatch, key, raw)
	}
	return v, nil
}

func (s *SchedulerHandlerImpl) Simulate(ctx *fiber.Ctx) error {
	runs, err := queryInt(ctx, "runs", int64(s.config.Simulation.RunCount))
	if err != nil {
		return s.fail(ctx, fiber.StatusBadRequest, err)
	}
	if runs > MaxRuns {
		return s.fail(ctx, fiber.StatusBadRequest,
			fmt.Errorf("%w: at most %d runs per request, got %d", simulation.ErrInvalidBatch, MaxRuns, runs))
	}
	seed, err := queryInt(ctx, "seed", s.config.Simulation.Seed)
	if err != nil {
		return s.fail(ctx, fiber.StatusBadRequest, err)
	}

	b := simulation.MakeBuilder().
		WithOptions(s.options()).
		WithWorkload(s.config.Workload).
		WithWorkers(s.config.Simulation.Workers).
		WithSeed(seed).
		WithLogger(s.logger)
	if s.store != nil {
		b = b.WithRecorder(s.store)
	}
	sim, err := b.Build()
	if err != nil {
		return s.fail(ctx, fiber.StatusInternalServerError, err)
	}

	report, err := sim.Run(ctx.UserContext(), int(runs))
	if err != nil {
		return s.fail(ctx, statusOf(err), err)
	}
	return ctx.JSON(report)
}

func (s *SchedulerHandlerImpl) Batch(ctx *fiber.Ctx) error {
	batchID := ctx.Params("batch")
	if s.store == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no store configured"})
	}

	summaries, err := s.store.ListRuns(batchID)
	if err != nil {
		return s.fail(ctx, fiber.StatusInternalServerError, err)
	}
	if len(summaries) == 0 {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "batch " + batchID + " not found"})
	}

	report := util.CalculateAverage(summaries)
	report.BatchID = batchID
	return ctx.JSON(report)
}

func (s *SchedulerHandlerImpl) Batches(ctx *fiber.Ctx) error {
	if s.store == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no store configured"})
	}
	batches, err := s.store.ListBatches()
	if err != nil {
		return s.fail(ctx, fiber.StatusInternalServerError, err)
	}
	if batches == nil {
		batches = []string{}
	}
	return ctx.JSON(fiber.Map{"batches": batches})
}

func (s *SchedulerHandlerImpl) Config(ctx *fiber.Ctx) error {
	return ctx.JSON(s.config)
}
