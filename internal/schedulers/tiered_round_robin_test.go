package schedulers

import (
	"bytes"
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"tiered-scheduler/internal/core"
	"tiered-scheduler/internal/logging"
	"tiered-scheduler/internal/process"
	"tiered-scheduler/internal/requests"
)

func defaultOptions() Options {
	return Options{
		TimeQuantum:     40,
		CoreCount:       16,
		Partition:       core.DefaultPartition,
		MaxTicks:        10000,
		CheckInvariants: true,
	}
}

func jobsOf(jobs ...requests.Job) *requests.ScheduleRequests {
	return &requests.ScheduleRequests{Jobs: jobs}
}

func job(pid, priority int, bursts ...int) requests.Job {
	return requests.Job{ProcessId: pid, ArrivalTime: pid, Priority: priority, Bursts: bursts}
}

func mustRecord(s *TieredRoundRobin, pid int) *process.Record {
	r, err := s.Record(pid)
	Expect(err).NotTo(HaveOccurred())
	return r
}

var _ = Describe("TieredRoundRobin", func() {
	var (
		opts Options
		ctx  context.Context
	)

	BeforeEach(func() {
		opts = defaultOptions()
		ctx = context.Background()
	})

	Context("construction", func() {
		It("should reject a partition that does not cover the cores", func() {
			opts.Partition = core.Partition{High: 8, Medium: 5, Low: 2}
			_, err := NewTieredRoundRobin(jobsOf(job(1, 1, 30)), opts)
			Expect(err).To(MatchError(core.ErrPartitionMisconfiguration))
		})

		It("should reject a non-positive quantum", func() {
			opts.TimeQuantum = 0
			_, err := NewTieredRoundRobin(jobsOf(job(1, 1, 30)), opts)
			Expect(err).To(MatchError(ErrInvalidOptions))
		})

		It("should reject an invalid priority", func() {
			_, err := NewTieredRoundRobin(jobsOf(job(1, 7, 30)), opts)
			Expect(err).To(MatchError(process.ErrInvalidPriority))
		})

		It("should reject a malformed job", func() {
			_, err := NewTieredRoundRobin(jobsOf(job(1, 1, 30, 0, 10)), opts)
			Expect(err).To(MatchError(requests.ErrMalformedRecord))
		})

		It("should credit response and load cores before the first tick", func() {
			s, err := NewTieredRoundRobin(jobsOf(job(1, 1, 30)), opts)
			Expect(err).NotTo(HaveOccurred())

			Expect(s.Tick()).To(Equal(0))
			Expect(s.Clock()).To(Equal(0))
			Expect(s.RunningPids()).To(Equal([]int{1}))
			r := mustRecord(s, 1)
			Expect(r.State).To(Equal(process.Running))
			Expect(r.Response).To(Equal(40))
			Expect(r.Turnaround).To(Equal(0))
		})

		It("should admit in arrival order", func() {
			opts.CoreCount = 1
			opts.Partition = core.Partition{High: 1}
			s, err := NewTieredRoundRobin(jobsOf(
				requests.Job{ProcessId: 5, ArrivalTime: 2, Priority: 1, Bursts: []int{10}},
				requests.Job{ProcessId: 6, ArrivalTime: 0, Priority: 1, Bursts: []int{10}},
				requests.Job{ProcessId: 7, ArrivalTime: 1, Priority: 1, Bursts: []int{10}},
			), opts)
			Expect(err).NotTo(HaveOccurred())

			Expect(s.RunningPids()).To(Equal([]int{6}))
			Expect(s.ReadyPids(process.High)).To(Equal([]int{7, 5}))
		})

		It("should finish an empty workload immediately", func() {
			summary, err := ScheduleTieredRoundRobin(ctx, jobsOf(), opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(summary.Ticks).To(Equal(0))
			Expect(summary.TotalTime).To(Equal(0))
			Expect(summary.CpuThroughput).To(Equal(0.0))
			Expect(summary.AverageResponseTime).To(Equal(0.0))
		})
	})

	Context("a single cpu burst shorter than the quantum", func() {
		It("should finish in one tick with exact turnaround", func() {
			s, err := NewTieredRoundRobin(jobsOf(job(1, 1, 30)), opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Run(ctx)).To(Succeed())

			r := mustRecord(s, 1)
			Expect(s.Tick()).To(Equal(1))
			Expect(r.State).To(Equal(process.Finished))
			Expect(r.Turnaround).To(Equal(30))
			Expect(r.Wait).To(Equal(0))
			Expect(r.Response).To(Equal(40))
			Expect(s.CompletedCpuBursts()).To(Equal(1))
			Expect(s.Clock()).To(Equal(30))
		})

		It("should only count the used time of the final tick", func() {
			s, err := NewTieredRoundRobin(jobsOf(job(1, 3, 1)), opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Run(ctx)).To(Succeed())

			Expect(s.Tick()).To(Equal(1))
			Expect(s.Clock()).To(Equal(1))
		})

		It("should count idle cores and an idle cpu once per tick", func() {
			s, err := NewTieredRoundRobin(jobsOf(job(1, 1, 30)), opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Run(ctx)).To(Succeed())

			Expect(s.Metric()).To(Equal(core.CpuMetric{CoreIdle: 15 * 40, CpuIdle: 40}))
		})
	})

	Context("a cpu burst longer than the quantum", func() {
		It("should be preempted and finish on the second tick", func() {
			s, err := NewTieredRoundRobin(jobsOf(job(1, 1, 50)), opts)
			Expect(err).NotTo(HaveOccurred())

			Expect(s.Step()).To(Succeed())
			r := mustRecord(s, 1)
			Expect(r.CpuBursts).To(Equal([]int{10}))
			Expect(r.Turnaround).To(Equal(40))
			Expect(r.State).To(Equal(process.Running))
			Expect(s.Done()).To(BeFalse())

			Expect(s.Step()).To(Succeed())
			Expect(s.Done()).To(BeTrue())
			Expect(s.Tick()).To(Equal(2))
			Expect(r.Turnaround).To(Equal(50))
			Expect(r.Response).To(Equal(80))
			Expect(s.CompletedCpuBursts()).To(Equal(1))
			Expect(s.Clock()).To(Equal(50))
		})
	})

	Context("io service", func() {
		BeforeEach(func() {
			opts.CoreCount = 2
			opts.Partition = core.Partition{High: 2}
		})

		It("should credit every waiting process with the consumed io time", func() {
			s, err := NewTieredRoundRobin(jobsOf(
				job(1, 1, 40, 50, 10),
				job(2, 1, 40, 5, 10),
			), opts)
			Expect(err).NotTo(HaveOccurred())

			Expect(s.Step()).To(Succeed())

			p1, p2 := mustRecord(s, 1), mustRecord(s, 2)
			Expect(s.WaitingPids()).To(Equal([]int{1, 2}))
			Expect(p1.IoBursts).To(Equal([]int{10}))
			Expect(p2.IoBursts).To(Equal([]int{5}))
			Expect(p1.Wait).To(Equal(40))
			Expect(p2.Wait).To(Equal(40))
			Expect(p1.State).To(Equal(process.Waiting))
			Expect(p2.State).To(Equal(process.Waiting))
		})

		It("should run the io scenario to completion", func() {
			summary, err := ScheduleTieredRoundRobin(ctx, jobsOf(
				job(1, 1, 40, 50, 10),
				job(2, 1, 40, 5, 10),
			), opts)
			Expect(err).NotTo(HaveOccurred())

			Expect(summary.Ticks).To(Equal(4))
			Expect(summary.TotalTime).To(Equal(130))
			Expect(summary.CompletedCpuBursts).To(Equal(4))
			Expect(summary.CoreIdleTime).To(Equal(160))
			Expect(summary.CpuIdleTime).To(Equal(80))
			Expect(summary.AverageTurnAroundTime).To(BeNumerically("~", 130, 1e-9))
			Expect(summary.AverageWaitingTime).To(BeNumerically("~", 52.5, 1e-9))
			Expect(summary.AverageResponseTime).To(BeNumerically("~", 40, 1e-9))
			Expect(summary.CpuThroughput).To(BeNumerically("~", 2.0/130, 1e-12))
			Expect(summary.CpuUtilization).To(BeNumerically("~", 0.5, 1e-9))
			Expect(summary.RunID).NotTo(BeEmpty())
			Expect(summary.Details).To(HaveLen(2))
			Expect(summary.Details[0].WaitingTime).To(Equal(50))
			Expect(summary.Details[1].WaitingTime).To(Equal(55))
		})

		It("should finish a process whose last burst is io", func() {
			s, err := NewTieredRoundRobin(jobsOf(job(1, 2, 20, 15)), opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Run(ctx)).To(Succeed())

			r := mustRecord(s, 1)
			Expect(r.State).To(Equal(process.Finished))
			Expect(r.Wait).To(Equal(15))
			Expect(s.Tick()).To(Equal(1))
			Expect(s.Clock()).To(Equal(35))
		})

		It("should charge the final tick with both the last cpu slice and the last io burst", func() {
			summary, err := ScheduleTieredRoundRobin(ctx, jobsOf(
				job(1, 1, 30),
				job(2, 1, 10, 5),
			), opts)
			Expect(err).NotTo(HaveOccurred())

			Expect(summary.Ticks).To(Equal(1))
			Expect(summary.TotalTime).To(Equal(35))
			Expect(summary.CpuThroughput).To(BeNumerically("~", 2.0/35, 1e-12))
		})

		It("should log io completions and finished processes per tick", func() {
			var buf bytes.Buffer
			opts.Logger = logging.BuildLoggerTo(&buf, "debug", "text")

			s, err := NewTieredRoundRobin(jobsOf(job(1, 1, 20, 15), job(2, 1, 60)), opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Step()).To(Succeed())

			out := buf.String()
			Expect(out).To(ContainSubstring("reserved_high=2"))
			Expect(out).To(ContainSubstring("wait_queue=[]"))
			Expect(out).To(ContainSubstring("io_completed=1"))
			Expect(out).To(ContainSubstring("io_finished=1"))
			Expect(out).To(ContainSubstring("finished=1"))
		})
	})

	Context("core reservation", func() {
		It("should keep high processes to their reserved range when other tiers are busy", func() {
			jobs := make([]requests.Job, 0)
			for pid := 1; pid <= 20; pid++ {
				jobs = append(jobs, job(pid, 1, 400))
			}
			for pid := 101; pid <= 110; pid++ {
				jobs = append(jobs, job(pid, 2, 400))
			}
			for pid := 201; pid <= 210; pid++ {
				jobs = append(jobs, job(pid, 3, 400))
			}
			s, err := NewTieredRoundRobin(jobsOf(jobs...), opts)
			Expect(err).NotTo(HaveOccurred())

			var highOrder []int
			for tick := 0; tick <= 10; tick++ {
				if tick > 0 {
					Expect(s.Step()).To(Succeed())
				}
				running := s.RunningPids()
				Expect(running).To(HaveLen(16))
				for _, pid := range running[:8] {
					Expect(pid).To(BeNumerically("<=", 20))
				}
				for _, pid := range running[8:13] {
					Expect(pid).To(BeNumerically(">", 100))
					Expect(pid).To(BeNumerically("<", 200))
				}
				for _, pid := range running[13:] {
					Expect(pid).To(BeNumerically(">", 200))
				}
				highOrder = append(highOrder, running[:8]...)
			}

			for i, pid := range highOrder {
				Expect(pid).To(Equal(i%20 + 1))
			}
			Expect(s.ReadyPids(process.High)).To(HaveLen(12))
		})

		It("should spill idle reserved cores over to other tiers", func() {
			jobs := make([]requests.Job, 0)
			for pid := 1; pid <= 20; pid++ {
				jobs = append(jobs, job(pid, 1, 400))
			}
			s, err := NewTieredRoundRobin(jobsOf(jobs...), opts)
			Expect(err).NotTo(HaveOccurred())

			Expect(s.RunningPids()).To(HaveLen(16))
			Expect(s.ReadyPids(process.High)).To(Equal([]int{17, 18, 19, 20}))
		})

		It("should fill a low reservation from the high queue when low is empty", func() {
			opts.CoreCount = 3
			opts.Partition = core.Partition{High: 1, Medium: 1, Low: 1}
			s, err := NewTieredRoundRobin(jobsOf(
				job(1, 1, 100), job(2, 1, 100), job(3, 2, 100), job(4, 2, 100),
			), opts)
			Expect(err).NotTo(HaveOccurred())

			Expect(s.RunningPids()).To(Equal([]int{1, 3, 2}))
			Expect(s.ReadyPids(process.Medium)).To(Equal([]int{4}))
		})
	})

	Context("failure handling", func() {
		It("should abort when a running process has no cpu burst", func() {
			s, err := NewTieredRoundRobin(jobsOf(job(1, 1, 50)), opts)
			Expect(err).NotTo(HaveOccurred())
			mustRecord(s, 1).CpuBursts = nil

			err = s.Step()
			Expect(err).To(MatchError(ErrInvariantViolation))
			var v *InvariantViolation
			Expect(err).To(BeAssignableToTypeOf(v))
			v = err.(*InvariantViolation)
			Expect(v.Pid).To(Equal(1))
			Expect(v.Tick).To(Equal(1))
			Expect(v.Phase).To(Equal(PhaseCore))
		})

		It("should detect a pid in two places", func() {
			s, err := NewTieredRoundRobin(jobsOf(job(1, 1, 50), job(2, 1, 50)), opts)
			Expect(err).NotTo(HaveOccurred())
			s.ready.For(process.High).Enq(1)

			Expect(s.check(PhaseCheck)).To(MatchError(ErrInvariantViolation))
		})

		It("should detect a lost process", func() {
			s, err := NewTieredRoundRobin(jobsOf(job(1, 1, 50)), opts)
			Expect(err).NotTo(HaveOccurred())
			s.pool.Clear()

			Expect(s.check(PhaseCheck)).To(MatchError(ErrInvariantViolation))
		})

		It("should stop at the tick ceiling", func() {
			opts.MaxTicks = 1
			s, err := NewTieredRoundRobin(jobsOf(job(1, 1, 50)), opts)
			Expect(err).NotTo(HaveOccurred())

			Expect(s.Run(ctx)).To(MatchError(ErrTickLimit))
			Expect(s.Tick()).To(Equal(1))
		})

		It("should stop when the context is cancelled", func() {
			s, err := NewTieredRoundRobin(jobsOf(job(1, 1, 500)), opts)
			Expect(err).NotTo(HaveOccurred())
			cancelled, cancel := context.WithCancel(ctx)
			cancel()

			Expect(s.Run(cancelled)).To(MatchError(context.Canceled))
			Expect(s.Tick()).To(Equal(0))
		})
	})
})
