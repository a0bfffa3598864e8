package workload

import (
	"errors"
	"fmt"
	"math/rand"

	"tiered-scheduler/internal/requests"
)

var ErrInvalidConfig = errors.New("invalid workload generator config")

// Config bounds a random workload. Every range is half open, [min, max),
// except that min == max always yields min.
type Config struct {
	ProcessMin int `json:"process_min" mapstructure:"process_min"`
	ProcessMax int `json:"process_max" mapstructure:"process_max"`
	PidMin     int `json:"pid_min" mapstructure:"pid_min"`
	BurstMin   int `json:"burst_min" mapstructure:"burst_min"`
	BurstMax   int `json:"burst_max" mapstructure:"burst_max"`
	CpuMin     int `json:"cpu_min" mapstructure:"cpu_min"`
	CpuMax     int `json:"cpu_max" mapstructure:"cpu_max"`
	IoMin      int `json:"io_min" mapstructure:"io_min"`
	IoMax      int `json:"io_max" mapstructure:"io_max"`
}

var DefaultConfig = Config{
	ProcessMin: 50,
	ProcessMax: 100,
	PidMin:     30,
	BurstMin:   1,
	BurstMax:   8,
	CpuMin:     30,
	CpuMax:     60,
	IoMin:      5,
	IoMax:      10,
}

func (c Config) Validate() error {
	ranges := []struct {
		name   string
		lo, hi int
	}{
		{"process", c.ProcessMin, c.ProcessMax},
		{"burst", c.BurstMin, c.BurstMax},
		{"cpu", c.CpuMin, c.CpuMax},
		{"io", c.IoMin, c.IoMax},
	}
	for _, r := range ranges {
		if r.lo <= 0 {
			return fmt.Errorf("%w: %s min must be positive, got %d", ErrInvalidConfig, r.name, r.lo)
		}
		if r.hi < r.lo {
			return fmt.Errorf("%w: %s max %d below min %d", ErrInvalidConfig, r.name, r.hi, r.lo)
		}
	}
	if c.PidMin < 0 {
		return fmt.Errorf("%w: pid min must not be negative, got %d", ErrInvalidConfig, c.PidMin)
	}
	return nil
}

// Generator produces random workloads. It is not safe for concurrent use;
// give every run its own generator.
type Generator struct {
	cfg Config
	rnd *rand.Rand
}

func NewGenerator(cfg Config, seed int64) *Generator {
	return &Generator{cfg: cfg, rnd: rand.New(rand.NewSource(seed))}
}

func (g *Generator) between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return g.rnd.Intn(hi-lo) + lo
}

// Generate draws a process count, then for every process a priority and an
// alternating cpu/io burst list starting with cpu. Pids are consecutive from
// PidMin and the arrival index is the position in the list.
func (g *Generator) Generate() *requests.ScheduleRequests {
	n := g.between(g.cfg.ProcessMin, g.cfg.ProcessMax)
	jobs := make([]requests.Job, 0, n)
	for i := 0; i < n; i++ {
		count := g.between(g.cfg.BurstMin, g.cfg.BurstMax)
		bursts := make([]int, count)
		for j := range bursts {
			if j%2 == 1 {
				bursts[j] = g.between(g.cfg.IoMin, g.cfg.IoMax)
			} else {
				bursts[j] = g.between(g.cfg.CpuMin, g.cfg.CpuMax)
			}
		}
		jobs = append(jobs, requests.Job{
			ProcessId:   g.cfg.PidMin + i,
			ArrivalTime: i,
			Priority:    g.rnd.Intn(3) + 1,
			Bursts:      bursts,
		})
	}
	return &requests.ScheduleRequests{Jobs: jobs}
}
