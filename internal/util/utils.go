package util

import (
	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/stat"

	"tiered-scheduler/internal/responses"
)

type Number interface {
	constraints.Integer | constraints.Float
}

func Sum[T Number](values []T) T {
	var sum T
	for _, v := range values {
		sum += v
	}
	return sum
}

// Ratio divides and returns 0 instead of NaN or Inf on a zero denominator.
func Ratio[N, D Number](numerator N, denominator D) float64 {
	if denominator == 0 {
		return 0
	}
	return float64(numerator) / float64(denominator)
}

func statistic(summaries []responses.ScheduleResponse, field func(responses.ScheduleResponse) float64) responses.Statistic {
	if len(summaries) == 0 {
		return responses.Statistic{}
	}
	values := make([]float64, len(summaries))
	for i, s := range summaries {
		values[i] = field(s)
	}
	if len(values) == 1 {
		return responses.Statistic{Mean: values[0]}
	}
	mean, std := stat.MeanStdDev(values, nil)
	return responses.Statistic{Mean: mean, StdDev: std}
}

// CalculateAverage reduces run summaries into the batch report's statistics.
func CalculateAverage(summaries []responses.ScheduleResponse) responses.SimulationReport {
	return responses.SimulationReport{
		Runs: len(summaries),
		TotalTime: statistic(summaries, func(s responses.ScheduleResponse) float64 {
			return float64(s.TotalTime)
		}),
		CpuThroughput: statistic(summaries, func(s responses.ScheduleResponse) float64 {
			return s.CpuThroughput
		}),
		AverageTurnAroundTime: statistic(summaries, func(s responses.ScheduleResponse) float64 {
			return s.AverageTurnAroundTime
		}),
		AverageWaitingTime: statistic(summaries, func(s responses.ScheduleResponse) float64 {
			return s.AverageWaitingTime
		}),
		AverageResponseTime: statistic(summaries, func(s responses.ScheduleResponse) float64 {
			return s.AverageResponseTime
		}),
		CoreIdleTime: statistic(summaries, func(s responses.ScheduleResponse) float64 {
			return float64(s.CoreIdleTime)
		}),
		CpuIdleTime: statistic(summaries, func(s responses.ScheduleResponse) float64 {
			return float64(s.CpuIdleTime)
		}),
		CpuUtilization: statistic(summaries, func(s responses.ScheduleResponse) float64 {
			return s.CpuUtilization
		}),
		Summaries: summaries,
	}
}
