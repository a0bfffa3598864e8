package core

import (
	"errors"
	"fmt"

	"tiered-scheduler/internal/process"
	"tiered-scheduler/internal/queue"
)

var ErrNoIoBurst = errors.New("waiting process has no io burst")

// IoDevice serves the wait queue, one quantum of io time per tick.
type IoDevice struct {
	Quantum int
}

// IoTick describes what one Service call did.
type IoTick struct {
	Consumed  int
	Completed []int
	Finished  []int
}

// Service works through the wait queue front to back until the quantum is
// used up or the queue drains. Every process in the Waiting state is credited
// with the io time consumed at each step, not only the one at the front.
// A burst that does not fit keeps the remainder and stays at the front.
func (d IoDevice) Service(waiting *queue.Queue, table *process.Table, ready *queue.ReadyQueues) (IoTick, error) {
	var tick IoTick

	for tick.Consumed < d.Quantum {
		pid, ok := waiting.Front()
		if !ok {
			break
		}
		r, err := table.Get(pid)
		if err != nil {
			return tick, err
		}
		burst, ok := r.HeadIo()
		if !ok {
			return tick, fmt.Errorf("%w: pid %d", ErrNoIoBurst, pid)
		}

		consumed := min(burst, d.Quantum-tick.Consumed)
		table.Each(func(w *process.Record) {
			if w.State == process.Waiting {
				w.Wait += consumed
			}
		})
		tick.Consumed += consumed

		if consumed < burst {
			r.SetHeadIo(burst - consumed)
			break
		}

		r.PopIo()
		waiting.Deq()
		tick.Completed = append(tick.Completed, pid)
		if len(r.CpuBursts) > 0 {
			r.State = process.Ready
			ready.For(r.Priority).Enq(pid)
		} else {
			r.State = process.Finished
			tick.Finished = append(tick.Finished, pid)
		}
	}

	return tick, nil
}
