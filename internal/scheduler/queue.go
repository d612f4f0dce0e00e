package scheduler

import (
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

type pendingTask struct {
	seq  uint64
	due  time.Time
	task func()
}

// Queue is a virtual-time scheduler. Nothing runs until Advance moves the
// fake clock past a task's due time; tasks then run synchronously on the
// caller's goroutine. Tasks due at the same instant run in scheduling order.
type Queue struct {
	mu    sync.Mutex
	clock clockwork.FakeClock
	tasks []pendingTask
	seq   uint64
}

// NewQueue creates a queue driven by the given fake clock
func NewQueue(clock clockwork.FakeClock) *Queue {
	return &Queue{clock: clock}
}

// Schedule implements Scheduler
func (q *Queue) Schedule(delay time.Duration, task func()) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.seq++
	q.tasks = append(q.tasks, pendingTask{
		seq:  q.seq,
		due:  q.clock.Now().Add(delay),
		task: task,
	})
}

// Advance moves virtual time forward by d, running every task that becomes
// due in due-time order. Tasks scheduled by running tasks are picked up when
// they fall inside the window.
func (q *Queue) Advance(d time.Duration) {
	target := q.clock.Now().Add(d)

	for {
		next, ok := q.popDue(target)
		if !ok {
			break
		}

		if wait := next.due.Sub(q.clock.Now()); wait > 0 {
			q.clock.Advance(wait)
		}
		next.task()
	}

	if rest := target.Sub(q.clock.Now()); rest > 0 {
		q.clock.Advance(rest)
	}
}

// RunAll advances time until no task is pending.
func (q *Queue) RunAll() {
	for {
		q.mu.Lock()
		if len(q.tasks) == 0 {
			q.mu.Unlock()
			return
		}
		last := q.tasks[0].due
		for _, t := range q.tasks[1:] {
			if t.due.After(last) {
				last = t.due
			}
		}
		q.mu.Unlock()

		wait := last.Sub(q.clock.Now())
		if wait < 0 {
			wait = 0
		}
		q.Advance(wait)
	}
}

// Pending returns the number of tasks that have not run yet.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

func (q *Queue) popDue(target time.Time) (pendingTask, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.tasks) == 0 {
		return pendingTask{}, false
	}

	sort.SliceStable(q.tasks, func(i, j int) bool {
		if q.tasks[i].due.Equal(q.tasks[j].due) {
			return q.tasks[i].seq < q.tasks[j].seq
		}
		return q.tasks[i].due.Before(q.tasks[j].due)
	})

	next := q.tasks[0]
	if next.due.After(target) {
		return pendingTask{}, false
	}

	q.tasks = q.tasks[1:]
	return next, true
}
