package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"tiered-scheduler/internal/core"
	"tiered-scheduler/internal/schedulers"
	"tiered-scheduler/internal/workload"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type TieredRoundRobinConfig struct {
	TimeQuantum     int            `json:"time_quantum" mapstructure:"time_quantum"`
	CoreCount       int            `json:"core_count" mapstructure:"core_count"`
	Reserved        core.Partition `json:"reserved" mapstructure:"reserved"`
	MaxTicks        int            `json:"max_ticks" mapstructure:"max_ticks"`
	CheckInvariants bool           `json:"check_invariants" mapstructure:"check_invariants"`
}

type SimulationConfig struct {
	RunCount int   `json:"run_count" mapstructure:"run_count"`
	Workers  int   `json:"workers" mapstructure:"workers"`
	Seed     int64 `json:"seed" mapstructure:"seed"`
	Verbose  bool  `json:"verbose" mapstructure:"verbose"`
}

type StoreConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

type LogConfig struct {
	Level  string `json:"level" mapstructure:"level"`
	Format string `json:"format" mapstructure:"format"`
}

type SchedulerConfig struct {
	Port             int                    `json:"port" mapstructure:"port"`
	TieredRoundRobin TieredRoundRobinConfig `json:"tiered_round_robin" mapstructure:"tiered_round_robin"`
	Simulation       SimulationConfig       `json:"simulation" mapstructure:"simulation"`
	Workload         workload.Config        `json:"workload" mapstructure:"workload"`
	Store            StoreConfig            `json:"store" mapstructure:"store"`
	Log              LogConfig              `json:"log" mapstructure:"log"`
}

var once sync.Once
var config *SchedulerConfig

// GetSchedulerConfig loads ./config.yaml once and exits on an invalid file.
func GetSchedulerConfig() *SchedulerConfig {
	once.Do(func() {
		c, err := Load("")
		if err != nil {
			log.Fatalln(err)
		}
		config = c
	})

	return config
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 9095)

	v.SetDefault("tiered_round_robin.time_quantum", 40)
	v.SetDefault("tiered_round_robin.core_count", 16)
	v.SetDefault("tiered_round_robin.reserved.high", core.DefaultPartition.High)
	v.SetDefault("tiered_round_robin.reserved.medium", core.DefaultPartition.Medium)
	v.SetDefault("tiered_round_robin.reserved.low", core.DefaultPartition.Low)
	v.SetDefault("tiered_round_robin.max_ticks", 100000)
	v.SetDefault("tiered_round_robin.check_invariants", true)

	v.SetDefault("simulation.run_count", 100)
	v.SetDefault("simulation.workers", 4)
	v.SetDefault("simulation.seed", 1)
	v.SetDefault("simulation.verbose", false)

	w := workload.DefaultConfig
	v.SetDefault("workload.process_min", w.ProcessMin)
	v.SetDefault("workload.process_max", w.ProcessMax)
	v.SetDefault("workload.pid_min", w.PidMin)
	v.SetDefault("workload.burst_min", w.BurstMin)
	v.SetDefault("workload.burst_max", w.BurstMax)
	v.SetDefault("workload.cpu_min", w.CpuMin)
	v.SetDefault("workload.cpu_max", w.CpuMax)
	v.SetDefault("workload.io_min", w.IoMin)
	v.SetDefault("workload.io_max", w.IoMax)

	v.SetDefault("store.path", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Load reads the configuration from path, or from config.yaml in the working
// directory when path is empty. A missing default file is not an error.
// A .env file, when present, is loaded first so that SCHED_* variables in it
// take part in the override. A .env that does not parse is an error.
func Load(path string) (*SchedulerConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("SCHED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	c := &SchedulerConfig{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *SchedulerConfig) Validate() error {
	if err := c.SchedulerOptions().Validate(); err != nil {
		return err
	}
	if c.Simulation.RunCount <= 0 {
		return fmt.Errorf("%w: simulation.run_count must be positive, got %d", ErrInvalidConfig, c.Simulation.RunCount)
	}
	if c.Simulation.Workers <= 0 {
		return fmt.Errorf("%w: simulation.workers must be positive, got %d", ErrInvalidConfig, c.Simulation.Workers)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Port)
	}
	return c.Workload.Validate()
}

// SchedulerOptions converts the tiered round robin section into engine options.
// The logger is left for the caller to set.
func (c *SchedulerConfig) SchedulerOptions() schedulers.Options {
	t := c.TieredRoundRobin
	return schedulers.Options{
		TimeQuantum:     t.TimeQuantum,
		CoreCount:       t.CoreCount,
		Partition:       t.Reserved,
		MaxTicks:        t.MaxTicks,
		CheckInvariants: t.CheckInvariants,
	}
}
