// Package monitor keeps an order list fresh while any order is still
// being processed upstream.
//
// After every fetch the list is inspected: if an order is pending or
// processing, exactly one silent re-fetch is armed after the poll
// interval, replacing any timer already armed. Once every order is
// completed nothing is armed and the monitor goes idle until Refresh.
package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jcmexdev/order-console/internal/console/core/domain/entity"
	"github.com/jcmexdev/order-console/internal/console/core/ports"
)

const DefaultInterval = 5 * time.Second

// Timer is the part of *time.Timer the monitor needs.
type Timer interface {
	Stop() bool
}

// Scheduler arms f to run once after d.
type Scheduler func(d time.Duration, f func()) Timer

func afterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// Snapshot is the state a view renders.
type Snapshot struct {
	Orders      []entity.Order
	Loading     bool
	Err         error
	LastRefresh time.Time
	// Polling reports whether a re-fetch is armed.
	Polling bool
	Stats   map[entity.Status]int
}

// Initial reports whether nothing has been loaded yet, the only case in
// which a view should block on the loading indicator.
func (s Snapshot) Initial() bool {
	return s.LastRefresh.IsZero() && s.Err == nil
}

type Option func(*Monitor)

func WithInterval(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.interval = d
		}
	}
}

func WithScheduler(s Scheduler) Option {
	return func(m *Monitor) { m.schedule = s }
}

func WithClock(now func() time.Time) Option {
	return func(m *Monitor) { m.now = now }
}

type Monitor struct {
	orders   ports.OrderService
	interval time.Duration
	schedule Scheduler
	now      func() time.Time

	mu      sync.Mutex
	ctx     context.Context
	snap    Snapshot
	timer   Timer
	seq     uint64
	started bool
	stopped bool
	updates chan Snapshot
}

func New(orders ports.OrderService, opts ...Option) *Monitor {
	m := &Monitor{
		orders:   orders,
		interval: DefaultInterval,
		schedule: afterFunc,
		now:      time.Now,
		updates:  make(chan Snapshot, 1),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start performs the first fetch and returns once it has been applied.
// Cancelling ctx stops the monitor: the armed timer is disarmed, results
// of fetches still in flight are discarded and Updates is closed.
func (m *Monitor) Start(ctx context.Context) {
	if !m.begin(ctx) {
		return
	}
	m.fetch(ctx, false)
}

// StartArmed is Start for a view that already rendered a fresh list: no
// fetch happens now, a silent re-fetch is armed after one interval and
// nothing is published until it lands.
func (m *Monitor) StartArmed(ctx context.Context) {
	if !m.begin(ctx) {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return
	}
	m.arm()
}

func (m *Monitor) begin(ctx context.Context) bool {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return false
	}
	m.started = true
	m.ctx = ctx
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.stop()
	}()
	return true
}

// Refresh fetches immediately, showing the loading state, and re-evaluates
// the poll schedule.
func (m *Monitor) Refresh(ctx context.Context) {
	m.fetch(ctx, false)
}

// Snapshot returns the current state.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap.clone()
}

// Updates delivers the latest snapshot after every applied change. Slow
// readers only see the most recent one. The channel closes on stop.
func (m *Monitor) Updates() <-chan Snapshot {
	return m.updates
}

func (m *Monitor) fetch(ctx context.Context, silent bool) {
	m.mu.Lock()
	if m.stopped || !m.started {
		m.mu.Unlock()
		return
	}
	m.seq++
	seq := m.seq
	if !silent {
		m.snap.Loading = true
		m.publish()
	}
	m.mu.Unlock()

	orders, err := m.orders.ListOrders(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()

	// Liveness: the view is gone or a newer fetch superseded this one.
	if m.stopped || ctx.Err() != nil || seq != m.seq {
		return
	}

	if err != nil {
		slog.WarnContext(ctx, "order list refresh failed", "error", err, "silent", silent)
		m.snap.Err = err
	} else {
		m.snap.Orders = orders
		m.snap.Stats = entity.CountByStatus(orders)
		m.snap.Err = nil
		m.snap.LastRefresh = m.now()
	}
	m.snap.Loading = false

	m.reschedule()
	m.publish()
}

// reschedule arms at most one re-fetch, keyed off the list just applied.
// After a failed fetch that is the previously rendered list. Caller holds mu.
func (m *Monitor) reschedule() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.snap.Polling = false

	if !entity.AnyInFlight(m.snap.Orders) {
		return
	}
	m.arm()
}

// arm schedules the silent re-fetch. Caller holds mu with no timer armed.
func (m *Monitor) arm() {
	ctx := m.ctx
	m.timer = m.schedule(m.interval, func() { m.fetch(ctx, true) })
	m.snap.Polling = true
}

// publish replaces any unread snapshot with the current one. Caller holds mu.
func (m *Monitor) publish() {
	if m.stopped {
		return
	}
	select {
	case <-m.updates:
	default:
	}
	m.updates <- m.snap.clone()
}

func (m *Monitor) stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return
	}
	m.stopped = true
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.snap.Polling = false
	close(m.updates)
}

func (s Snapshot) clone() Snapshot {
	out := s
	out.Orders = append([]entity.Order(nil), s.Orders...)
	if s.Stats != nil {
		out.Stats = make(map[entity.Status]int, len(s.Stats))
		for k, v := range s.Stats {
			out.Stats[k] = v
		}
	}
	return out
}
