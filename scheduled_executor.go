package reactor

import (
	"sort"

	"github.com/ygrebnov/reactor/metrics"
	"github.com/ygrebnov/reactor/pool"
)

// timerEntry is a single scheduled callback. Cancellation is lazy: a
// cancelled entry stays in the sorted queue until it is scanned over
// at firing time, matching the spec's lazy-deletion requirement.
type timerEntry struct {
	id        int64
	expiry    int64
	cb        func()
	cancelled bool
}

type scheduledMetrics struct {
	pendingTimers metrics.UpDownCounter
}

// ScheduledExecutor extends Executor with a sorted queue of delayed
// callbacks and a monotonic simulated clock. Run advances the clock to
// the next pending expiry only once the immediate queue is empty,
// guaranteeing that immediate work scheduled by a firing timer is
// observed before the clock advances further.
type ScheduledExecutor struct {
	*Executor

	timers      []*timerEntry
	currentTime int64
	nextID      int64

	entryPool pool.Pool
	sm        scheduledMetrics
}

// NewScheduledExecutor constructs a ScheduledExecutor whose clock
// starts at 0.
func NewScheduledExecutor(opts ...Option) *ScheduledExecutor {
	cfg := buildRuntimeConfig(opts)

	entryPool := cfg.timerPool
	if entryPool == nil {
		entryPool = pool.NewDynamic(func() interface{} { return &timerEntry{} })
	}

	return &ScheduledExecutor{
		Executor:  newExecutorFromConfig(cfg),
		entryPool: entryPool,
		sm: scheduledMetrics{
			pendingTimers: cfg.metricsProvider.UpDownCounter("reactor_scheduled_executor_pending_timers"),
		},
	}
}

// newExecutorFromConfig builds an Executor reusing an already-assembled
// runtimeConfig, so ScheduledExecutor doesn't build it twice.
func newExecutorFromConfig(cfg runtimeConfig) *Executor {
	return &Executor{
		logger: cfg.logger,
		m: execMetrics{
			ticks:      cfg.metricsProvider.Counter("reactor_executor_thunks_total"),
			queueDepth: cfg.metricsProvider.UpDownCounter("reactor_executor_queue_depth"),
		},
	}
}

// ScheduleDelayed enqueues cb to fire after delay time units, with a
// minimum enforced delay of 1 so a zero-delay schedule never fires at
// the current instant (which would otherwise race immediate next_tick
// work). It returns a fresh, monotonically increasing id.
func (se *ScheduledExecutor) ScheduleDelayed(cb func(), delay int64) int64 {
	if delay < 1 {
		delay = 1
	}

	id := se.nextID
	se.nextID++

	entry := se.entryPool.Get().(*timerEntry)
	entry.id = id
	entry.expiry = se.currentTime + delay
	entry.cb = cb
	entry.cancelled = false

	se.insert(entry)
	se.sm.pendingTimers.Add(1)
	return id
}

// insert keeps se.timers sorted non-decreasing by expiry, ties broken
// by insertion (id) order. The common case — a new expiry at or after
// the last entry — is an O(1) append; otherwise it splices via binary
// search.
func (se *ScheduledExecutor) insert(entry *timerEntry) {
	n := len(se.timers)
	if n == 0 || entry.expiry >= se.timers[n-1].expiry {
		se.timers = append(se.timers, entry)
		return
	}
	idx := sort.Search(n, func(i int) bool { return se.timers[i].expiry > entry.expiry })
	se.timers = append(se.timers, nil)
	copy(se.timers[idx+1:], se.timers[idx:])
	se.timers[idx] = entry
}

// CancelScheduled marks the timer with the given id cancelled. It
// returns 1 if a non-cancelled timer with that id was found, 0
// otherwise (never an error — cancelling an absent timer is not a
// failure).
func (se *ScheduledExecutor) CancelScheduled(id int64) int {
	for _, t := range se.timers {
		if t.id == id && !t.cancelled {
			t.cancelled = true
			se.sm.pendingTimers.Add(-1)
			return 1
		}
	}
	return 0
}

// CurrentTime returns the scheduler's simulated clock.
func (se *ScheduledExecutor) CurrentTime() int64 { return se.currentTime }

// TimerCount returns the number of pending, non-cancelled timers.
func (se *ScheduledExecutor) TimerCount() int {
	n := 0
	for _, t := range se.timers {
		if !t.cancelled {
			n++
		}
	}
	return n
}

// IsDone overrides Executor.IsDone: a ScheduledExecutor still has work
// while any non-cancelled timer is pending, even with an empty
// immediate queue.
func (se *ScheduledExecutor) IsDone() bool {
	return se.Executor.IsDone() && se.TimerCount() == 0
}

// Run loops: drain the immediate queue first; if it's empty, advance
// the clock to the next pending expiry and fire every timer due at
// that instant (in id order for ties); only once both are exhausted
// does it fall through to the chained next executor. This ordering is
// the fix the spec calls out explicitly: immediate callbacks must
// flush before time advances, or a callback cancelling a near-future
// timer could miss it.
func (se *ScheduledExecutor) Run() {
	for {
		if !se.Executor.IsDone() {
			se.Executor.Tick()
			continue
		}
		if se.fireDueTimers() {
			continue
		}
		if se.next != nil && !se.next.IsDone() {
			se.next.Run()
			continue
		}
		break
	}
}

// fireDueTimers advances the clock to the earliest pending expiry and
// fires every entry due at that instant. It returns false if there was
// nothing pending.
func (se *ScheduledExecutor) fireDueTimers() bool {
	minExpiry, found := int64(0), false
	for _, t := range se.timers {
		if t.cancelled {
			continue
		}
		if !found || t.expiry < minExpiry {
			minExpiry = t.expiry
			found = true
		}
	}
	if !found {
		return false
	}

	se.currentTime = minExpiry

	var due []*timerEntry
	remaining := se.timers[:0]
	for _, t := range se.timers {
		if t.expiry <= minExpiry {
			due = append(due, t)
		} else {
			remaining = append(remaining, t)
		}
	}
	se.timers = remaining

	sort.Slice(due, func(i, j int) bool { return due[i].id < due[j].id })

	for _, t := range due {
		cancelled, cb := t.cancelled, t.cb
		if !cancelled {
			se.sm.pendingTimers.Add(-1)
		}
		t.cb = nil
		se.entryPool.Put(t)
		if !cancelled {
			cb()
		}
	}
	return true
}
