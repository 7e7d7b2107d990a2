package monitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/order-console/internal/console/core/domain/entity"
)

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

// fakeScheduler records armed timers; tests fire them by hand.
type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (s *fakeScheduler) schedule(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{d: d, f: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *fakeScheduler) armed() []*fakeTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*fakeTimer
	for _, t := range s.timers {
		if !t.stopped {
			out = append(out, t)
		}
	}
	return out
}

func (s *fakeScheduler) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

type result struct {
	orders []entity.Order
	err    error
}

// scriptedOrders answers ListOrders from a queue; the last answer repeats.
type scriptedOrders struct {
	mu      sync.Mutex
	answers []result
	calls   int
	block   chan struct{}
}

func (s *scriptedOrders) ListOrders(ctx context.Context) ([]entity.Order, error) {
	s.mu.Lock()
	i := s.calls
	s.calls++
	if i >= len(s.answers) {
		i = len(s.answers) - 1
	}
	r := s.answers[i]
	block := s.block
	s.mu.Unlock()

	if block != nil {
		<-block
	}
	return r.orders, r.err
}

func (s *scriptedOrders) GetOrder(ctx context.Context, id int) (*entity.Order, error) { return nil, nil }

func (s *scriptedOrders) CreateOrder(ctx context.Context, req entity.CreateOrderRequest) (*entity.Order, error) {
	return nil, nil
}

func (s *scriptedOrders) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func orders(statuses ...entity.Status) []entity.Order {
	out := make([]entity.Order, len(statuses))
	for i, st := range statuses {
		out[i] = entity.Order{ID: i + 1, OrderNumber: "ORD-" + string(st), Status: st}
	}
	return out
}

func TestMonitorSchedule(t *testing.T) {
	t.Run("in-flight orders arm exactly one repoll after the interval", func(t *testing.T) {
		sched := &fakeScheduler{}
		svc := &scriptedOrders{answers: []result{{orders: orders(entity.StatusCompleted, entity.StatusPending)}}}
		m := New(svc, WithScheduler(sched.schedule))

		m.Start(context.Background())

		armed := sched.armed()
		require.Len(t, armed, 1)
		assert.Equal(t, 5*time.Second, armed[0].d)
		snap := m.Snapshot()
		assert.True(t, snap.Polling)
		assert.False(t, snap.Loading)
		assert.Len(t, snap.Orders, 2)
		assert.Equal(t, 1, snap.Stats[entity.StatusPending])
	})

	t.Run("completed orders arm nothing", func(t *testing.T) {
		sched := &fakeScheduler{}
		svc := &scriptedOrders{answers: []result{{orders: orders(entity.StatusCompleted, entity.StatusCompleted)}}}
		m := New(svc, WithScheduler(sched.schedule))

		m.Start(context.Background())

		assert.Zero(t, sched.count())
		assert.False(t, m.Snapshot().Polling)
	})

	t.Run("polling stops once everything completes", func(t *testing.T) {
		sched := &fakeScheduler{}
		svc := &scriptedOrders{answers: []result{
			{orders: orders(entity.StatusPending)},
			{orders: orders(entity.StatusProcessing)},
			{orders: orders(entity.StatusCompleted)},
		}}
		m := New(svc, WithScheduler(sched.schedule))
		m.Start(context.Background())

		sched.armed()[0].f()
		assert.Equal(t, entity.StatusProcessing, m.Snapshot().Orders[0].Status)
		require.Len(t, sched.armed(), 1)

		sched.armed()[0].f()
		assert.Equal(t, entity.StatusCompleted, m.Snapshot().Orders[0].Status)
		assert.Empty(t, sched.armed())
		assert.Equal(t, 3, svc.callCount())
	})

	t.Run("refresh replaces the armed timer", func(t *testing.T) {
		sched := &fakeScheduler{}
		svc := &scriptedOrders{answers: []result{{orders: orders(entity.StatusPending)}}}
		m := New(svc, WithScheduler(sched.schedule), WithInterval(time.Second))
		m.Start(context.Background())
		first := sched.armed()[0]

		m.Refresh(context.Background())

		assert.True(t, first.stopped)
		armed := sched.armed()
		require.Len(t, armed, 1)
		assert.NotSame(t, first, armed[0])
		assert.Equal(t, time.Second, armed[0].d)
	})

	t.Run("failed fetch keeps the list and its schedule", func(t *testing.T) {
		sched := &fakeScheduler{}
		boom := errors.New("Order Service is unavailable")
		svc := &scriptedOrders{answers: []result{
			{orders: orders(entity.StatusPending)},
			{err: boom},
		}}
		at := time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)
		m := New(svc, WithScheduler(sched.schedule), WithClock(func() time.Time { return at }))
		m.Start(context.Background())
		refreshed := m.Snapshot().LastRefresh
		require.Equal(t, at, refreshed)
		at = at.Add(time.Minute)

		sched.armed()[0].f()

		snap := m.Snapshot()
		assert.ErrorIs(t, snap.Err, boom)
		assert.Len(t, snap.Orders, 1)
		assert.Equal(t, refreshed, snap.LastRefresh)
		assert.Len(t, sched.armed(), 1)
	})

	t.Run("failed first fetch arms nothing", func(t *testing.T) {
		sched := &fakeScheduler{}
		svc := &scriptedOrders{answers: []result{{err: errors.New("down")}}}
		m := New(svc, WithScheduler(sched.schedule))
		m.Start(context.Background())

		assert.Zero(t, sched.count())
		assert.Error(t, m.Snapshot().Err)
		assert.False(t, m.Snapshot().Initial())
	})

	t.Run("armed start waits one interval, then fetches silently", func(t *testing.T) {
		sched := &fakeScheduler{}
		svc := &scriptedOrders{answers: []result{
			{orders: orders(entity.StatusProcessing)},
			{orders: orders(entity.StatusCompleted)},
		}}
		m := New(svc, WithScheduler(sched.schedule), WithInterval(2*time.Second))

		m.StartArmed(context.Background())

		assert.Zero(t, svc.callCount())
		armed := sched.armed()
		require.Len(t, armed, 1)
		assert.Equal(t, 2*time.Second, armed[0].d)
		assert.True(t, m.Snapshot().Polling)
		select {
		case <-m.Updates():
			t.Fatal("nothing should be published before the first fetch")
		default:
		}

		armed[0].f()

		assert.Equal(t, 1, svc.callCount())
		snap := <-m.Updates()
		assert.False(t, snap.Loading)
		assert.Equal(t, entity.StatusProcessing, snap.Orders[0].Status)
		require.Len(t, sched.armed(), 1)

		sched.armed()[0].f()
		assert.Empty(t, sched.armed())
		assert.Equal(t, 2, svc.callCount())
	})

	t.Run("armed start on a started monitor does nothing", func(t *testing.T) {
		sched := &fakeScheduler{}
		svc := &scriptedOrders{answers: []result{{orders: orders(entity.StatusPending)}}}
		m := New(svc, WithScheduler(sched.schedule))
		m.Start(context.Background())
		before := sched.count()

		m.StartArmed(context.Background())

		assert.Equal(t, before, sched.count())
		assert.Equal(t, 1, svc.callCount())
	})
}

func TestMonitorLiveness(t *testing.T) {
	t.Run("cancel disarms the timer and closes updates", func(t *testing.T) {
		sched := &fakeScheduler{}
		svc := &scriptedOrders{answers: []result{{orders: orders(entity.StatusPending)}}}
		m := New(svc, WithScheduler(sched.schedule))
		ctx, cancel := context.WithCancel(context.Background())
		m.Start(ctx)
		timer := sched.armed()[0]

		cancel()

		for range m.Updates() {
		}
		assert.True(t, timer.stopped)
		assert.False(t, m.Snapshot().Polling)

		// A timer that fired anyway must not fetch.
		timer.f()
		assert.Equal(t, 1, svc.callCount())
	})

	t.Run("result of a fetch outliving its view is dropped", func(t *testing.T) {
		sched := &fakeScheduler{}
		svc := &scriptedOrders{answers: []result{
			{orders: orders(entity.StatusPending)},
			{orders: orders(entity.StatusCompleted)},
		}}
		m := New(svc, WithScheduler(sched.schedule))
		ctx, cancel := context.WithCancel(context.Background())
		m.Start(ctx)
		timer := sched.armed()[0]

		block := make(chan struct{})
		svc.mu.Lock()
		svc.block = block
		svc.mu.Unlock()

		done := make(chan struct{})
		go func() {
			timer.f()
			close(done)
		}()
		require.Eventually(t, func() bool { return svc.callCount() == 2 }, time.Second, time.Millisecond)

		cancel()
		for range m.Updates() {
		}
		close(block)
		<-done

		assert.Equal(t, entity.StatusPending, m.Snapshot().Orders[0].Status)
	})

	t.Run("superseded fetch is dropped", func(t *testing.T) {
		sched := &fakeScheduler{}
		svc := &scriptedOrders{answers: []result{
			{orders: orders(entity.StatusPending)},
			{orders: orders(entity.StatusProcessing)},
			{orders: orders(entity.StatusCompleted)},
		}}
		m := New(svc, WithScheduler(sched.schedule))
		m.Start(context.Background())

		block := make(chan struct{})
		svc.mu.Lock()
		svc.block = block
		svc.mu.Unlock()

		slow := make(chan struct{})
		go func() {
			sched.armed()[0].f()
			close(slow)
		}()
		require.Eventually(t, func() bool { return svc.callCount() == 2 }, time.Second, time.Millisecond)

		svc.mu.Lock()
		svc.block = nil
		svc.mu.Unlock()
		m.Refresh(context.Background())
		assert.Equal(t, entity.StatusCompleted, m.Snapshot().Orders[0].Status)

		close(block)
		<-slow
		assert.Equal(t, entity.StatusCompleted, m.Snapshot().Orders[0].Status)
		assert.Empty(t, sched.armed())
	})
}

func TestMonitorUpdates(t *testing.T) {
	svc := &scriptedOrders{answers: []result{{orders: orders(entity.StatusCompleted)}}}
	m := New(svc, WithScheduler((&fakeScheduler{}).schedule))
	m.Start(context.Background())

	select {
	case snap := <-m.Updates():
		assert.False(t, snap.Loading)
		assert.Len(t, snap.Orders, 1)
	default:
		t.Fatal("no snapshot published")
	}
}
