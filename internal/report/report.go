package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"tiered-scheduler/internal/responses"
	"tiered-scheduler/internal/util"
)

func fixed(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func percent(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

// Summary prints the headline metrics of a single run.
func Summary(w io.Writer, s responses.ScheduleResponse) {
	_, _ = fmt.Fprintf(w, "Run %s\n", s.RunID)
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Metric", "Value"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.AppendBulk([][]string{
		{"Processes", strconv.Itoa(s.ProcessCount)},
		{"Ticks", strconv.Itoa(s.Ticks)},
		{"Total time", strconv.Itoa(s.TotalTime)},
		{"Completed cpu bursts", strconv.Itoa(s.CompletedCpuBursts)},
		{"Average turnaround", fixed(s.AverageTurnAroundTime)},
		{"Average wait", fixed(s.AverageWaitingTime)},
		{"Average response", fixed(s.AverageResponseTime)},
		{"Core idle time", strconv.Itoa(s.CoreIdleTime)},
		{"Cpu idle time", strconv.Itoa(s.CpuIdleTime)},
		{"Cpu utilization", percent(s.CpuUtilization)},
		{"Throughput", fmt.Sprintf("%.4f/t", s.CpuThroughput)},
	})
	table.Render()
}

// Details prints one row per process with averages in the footer.
func Details(w io.Writer, details []responses.ProcessResponse) {
	rows := make([][]string, 0, len(details))
	turnaround := make([]int, 0, len(details))
	wait := make([]int, 0, len(details))
	response := make([]int, 0, len(details))
	for _, d := range details {
		rows = append(rows, []string{
			strconv.Itoa(d.ProcessId),
			d.Priority,
			strconv.Itoa(d.TurnAroundTime),
			strconv.Itoa(d.WaitingTime),
			strconv.Itoa(d.ResponseTime),
		})
		turnaround = append(turnaround, d.TurnAroundTime)
		wait = append(wait, d.WaitingTime)
		response = append(response, d.ResponseTime)
	}

	_, _ = fmt.Fprintln(w, "Process table")
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Priority", "Turnaround", "Wait", "Response"})
	table.AppendBulk(rows)
	table.SetFooter([]string{"", "",
		fmt.Sprintf("Average\n%s", fixed(util.Ratio(util.Sum(turnaround), len(details)))),
		fmt.Sprintf("Average\n%s", fixed(util.Ratio(util.Sum(wait), len(details)))),
		fmt.Sprintf("Total\n%d", util.Sum(response))})
	table.Render()
}

// Runs prints one row per run of a batch.
func Runs(w io.Writer, summaries []responses.ScheduleResponse) {
	_, _ = fmt.Fprintln(w, "Runs")
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Run", "Processes", "Total time", "Turnaround", "Wait", "Response", "Core idle", "Cpu idle", "Utilization", "Throughput"})
	for _, s := range summaries {
		table.Append([]string{
			strconv.Itoa(s.RunIndex + 1),
			strconv.Itoa(s.ProcessCount),
			strconv.Itoa(s.TotalTime),
			fixed(s.AverageTurnAroundTime),
			fixed(s.AverageWaitingTime),
			fixed(s.AverageResponseTime),
			strconv.Itoa(s.CoreIdleTime),
			strconv.Itoa(s.CpuIdleTime),
			percent(s.CpuUtilization),
			fmt.Sprintf("%.4f", s.CpuThroughput),
		})
	}
	table.Render()
}

func statRow(name string, s responses.Statistic, format func(float64) string) []string {
	return []string{name, format(s.Mean), format(s.StdDev)}
}

// Average prints the batch statistics.
func Average(w io.Writer, r responses.SimulationReport) {
	_, _ = fmt.Fprintf(w, "Over %d runs (batch %s)\n", r.Runs, r.BatchID)
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Metric", "Mean", "Std dev"})
	table.AppendBulk([][]string{
		statRow("Total time", r.TotalTime, fixed),
		statRow("Average turnaround", r.AverageTurnAroundTime, fixed),
		statRow("Average wait", r.AverageWaitingTime, fixed),
		statRow("Average response", r.AverageResponseTime, fixed),
		statRow("Core idle time", r.CoreIdleTime, fixed),
		statRow("Cpu idle time", r.CpuIdleTime, fixed),
		statRow("Cpu utilization", r.CpuUtilization, percent),
		statRow("Throughput", r.CpuThroughput, func(v float64) string { return fmt.Sprintf("%.4f", v) }),
	})
	table.Render()
}
