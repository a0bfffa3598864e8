package schedulers

import (
	"context"

	"github.com/rs/xid"

	"tiered-scheduler/internal/process"
	"tiered-scheduler/internal/requests"
	"tiered-scheduler/internal/responses"
	"tiered-scheduler/internal/util"
)

// generateResponse reduces a finished run into its summary. Response time is
// averaged per completed cpu burst, turnaround and wait per process.
func generateResponse(s *TieredRoundRobin) responses.ScheduleResponse {
	records := s.Records()
	details := make([]responses.ProcessResponse, 0, len(records))
	turnaround := make([]int, 0, len(records))
	wait := make([]int, 0, len(records))
	response := make([]int, 0, len(records))

	for _, r := range records {
		details = append(details, generateProcessDetails(r))
		turnaround = append(turnaround, r.Turnaround)
		wait = append(wait, r.Wait)
		response = append(response, r.Response)
	}

	processCount := len(records)
	metric := s.Metric()
	capacity := s.opts.CoreCount * s.Tick() * s.opts.TimeQuantum

	return responses.ScheduleResponse{
		RunID:                 xid.New().String(),
		TotalTime:             s.Clock(),
		Ticks:                 s.Tick(),
		ProcessCount:          processCount,
		CompletedCpuBursts:    s.CompletedCpuBursts(),
		CoreIdleTime:          metric.CoreIdle,
		CpuIdleTime:           metric.CpuIdle,
		AverageTurnAroundTime: util.Ratio(util.Sum(turnaround), processCount),
		AverageWaitingTime:    util.Ratio(util.Sum(wait), processCount),
		AverageResponseTime:   util.Ratio(util.Sum(response), s.CompletedCpuBursts()),
		CpuUtilization:        utilization(metric.CoreIdle, capacity),
		CpuThroughput:         util.Ratio(processCount, s.Clock()),
		Details:               details,
	}
}

func utilization(coreIdle, capacity int) float64 {
	if capacity == 0 {
		return 0
	}
	return 1 - util.Ratio(coreIdle, capacity)
}

func generateProcessDetails(r *process.Record) responses.ProcessResponse {
	return responses.ProcessResponse{
		ProcessId:      r.Pid,
		Priority:       r.Priority.String(),
		ResponseTime:   r.Response,
		TurnAroundTime: r.Turnaround,
		WaitingTime:    r.Wait,
	}
}

// ScheduleTieredRoundRobin runs a workload to completion and summarizes it.
func ScheduleTieredRoundRobin(ctx context.Context, request *requests.ScheduleRequests, opts Options) (responses.ScheduleResponse, error) {
	s, err := NewTieredRoundRobin(request, opts)
	if err != nil {
		return responses.ScheduleResponse{}, err
	}
	if err := s.Run(ctx); err != nil {
		return responses.ScheduleResponse{}, err
	}
	return generateResponse(s), nil
}
