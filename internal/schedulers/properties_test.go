package schedulers

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"tiered-scheduler/internal/process"
	"tiered-scheduler/internal/workload"
)

// locate collects every pid the scheduler can currently see and fails if
// one shows up twice.
func locate(s *TieredRoundRobin) map[int]string {
	seen := make(map[int]string)
	add := func(pid int, where string) {
		prev, dup := seen[pid]
		Expect(dup).To(BeFalse(), "pid %d in %s and %s", pid, prev, where)
		seen[pid] = where
	}
	for _, tier := range process.Tiers {
		for _, pid := range s.ReadyPids(tier) {
			add(pid, "ready")
		}
	}
	for _, pid := range s.WaitingPids() {
		add(pid, "waiting")
	}
	for _, pid := range s.RunningPids() {
		add(pid, "core")
	}
	for _, r := range s.Records() {
		if r.State == process.Finished {
			add(r.Pid, "finished")
		}
	}
	return seen
}

var _ = Describe("TieredRoundRobin properties", func() {
	for _, seed := range []int64{1, 2, 3, 17, 99} {
		seed := seed

		It("should keep every pid in exactly one place and never regress", func() {
			request := workload.NewGenerator(workload.DefaultConfig, seed).Generate()
			s, err := NewTieredRoundRobin(request, defaultOptions())
			Expect(err).NotTo(HaveOccurred())

			total := len(request.Jobs)
			Expect(locate(s)).To(HaveLen(total))

			remaining := s.RemainingBursts()
			counters := make(map[int][3]int)
			for !s.Done() {
				Expect(s.Step()).To(Succeed())
				Expect(locate(s)).To(HaveLen(total))

				now := s.RemainingBursts()
				Expect(now).To(BeNumerically("<=", remaining))
				remaining = now

				for _, r := range s.Records() {
					prev := counters[r.Pid]
					Expect(r.Turnaround).To(BeNumerically(">=", prev[0]))
					Expect(r.Wait).To(BeNumerically(">=", prev[1]))
					Expect(r.Response).To(BeNumerically(">=", prev[2]))
					counters[r.Pid] = [3]int{r.Turnaround, r.Wait, r.Response}
				}
			}

			Expect(remaining).To(BeZero())
			for _, r := range s.Records() {
				Expect(r.State).To(Equal(process.Finished))
			}
		})
	}

	It("should complete a lone burst within its length over the quantum", func() {
		s, err := NewTieredRoundRobin(jobsOf(job(1, 2, 170)), defaultOptions())
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Run(context.Background())).To(Succeed())

		// 170 / 40 rounds up to 5 ticks
		Expect(s.Tick()).To(Equal(5))
		Expect(s.Clock()).To(Equal(170))
		Expect(mustRecord(s, 1).Turnaround).To(Equal(170))
	})

	It("should count every cpu burst exactly once", func() {
		request := workload.NewGenerator(workload.DefaultConfig, 5).Generate()
		cpuBursts := 0
		for _, j := range request.Jobs {
			cpuBursts += (len(j.Bursts) + 1) / 2
		}

		summary, err := ScheduleTieredRoundRobin(context.Background(), request, defaultOptions())
		Expect(err).NotTo(HaveOccurred())
		Expect(summary.CompletedCpuBursts).To(Equal(cpuBursts))
		Expect(summary.ProcessCount).To(Equal(len(request.Jobs)))
		Expect(summary.CpuThroughput).To(BeNumerically(">", 0))
	})
})
