package responses

type ProcessResponse struct {
	ProcessId      int    `json:"process_id"`
	Priority       string `json:"priority"`
	ResponseTime   int    `json:"response_time"`
	TurnAroundTime int    `json:"turn_around_time"`
	WaitingTime    int    `json:"waiting_time"`
}

// ScheduleResponse is the summary of one simulation run.
type ScheduleResponse struct {
	RunIndex              int               `json:"run_index"`
	RunID                 string            `json:"run_id"`
	TotalTime             int               `json:"total_time"`
	Ticks                 int               `json:"ticks"`
	ProcessCount          int               `json:"process_count"`
	CompletedCpuBursts    int               `json:"completed_cpu_bursts"`
	CoreIdleTime          int               `json:"core_idle_time"`
	CpuIdleTime           int               `json:"cpu_idle_time"`
	AverageWaitingTime    float64           `json:"average_waiting_time"`
	AverageResponseTime   float64           `json:"average_response_time"`
	AverageTurnAroundTime float64           `json:"average_turn_around_time"`
	CpuUtilization        float64           `json:"cpu_utilization"`
	CpuThroughput         float64           `json:"cpu_throughput"`
	Details               []ProcessResponse `json:"details,omitempty"`
}

// Statistic is the mean and standard deviation of one metric over a batch.
type Statistic struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// SimulationReport aggregates a batch of independent runs.
type SimulationReport struct {
	BatchID               string             `json:"batch_id"`
	Runs                  int                `json:"runs"`
	TotalTime             Statistic          `json:"total_time"`
	CpuThroughput         Statistic          `json:"cpu_throughput"`
	AverageTurnAroundTime Statistic          `json:"average_turn_around_time"`
	AverageWaitingTime    Statistic          `json:"average_waiting_time"`
	AverageResponseTime   Statistic          `json:"average_response_time"`
	CoreIdleTime          Statistic          `json:"core_idle_time"`
	CpuIdleTime           Statistic          `json:"cpu_idle_time"`
	CpuUtilization        Statistic          `json:"cpu_utilization"`
	Summaries             []ScheduleResponse `json:"summaries,omitempty"`
}
