package staff

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/matiahasmasan/GreenUp/internal/logger"
	"github.com/matiahasmasan/GreenUp/internal/models"
)

// fakeFetcher serves scripted order lists and counts calls.
type fakeFetcher struct {
	mu     sync.Mutex
	orders []models.Order
	calls  int
	err    error
}

func (f *fakeFetcher) ListOrders(ctx context.Context) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]models.Order(nil), f.orders...), nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeFetcher) setOrders(orders []models.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders = orders
}

func ordersOfLen(n int) []models.Order {
	orders := make([]models.Order, n)
	for i := range orders {
		orders[i] = makeOrder(n-i, models.StatusPending)
	}
	return orders
}

func newTestPoller(fetcher *fakeFetcher, displayFor time.Duration) (*Poller, *Dashboard) {
	dash := NewDashboard()
	log := logger.New("staff-test")
	return NewPoller(fetcher, dash, log, time.Hour, displayFor), dash
}

func TestPoller_InitialFetchSetsBaseline(t *testing.T) {
	fetcher := &fakeFetcher{orders: ordersOfLen(5)}
	poller, dash := newTestPoller(fetcher, time.Hour)

	poller.fetch(context.Background(), false)

	if dash.Count() != 5 {
		t.Fatalf("expected 5 cached orders, got %d", dash.Count())
	}
	if dash.Loading() {
		t.Errorf("loading must clear after the initial fetch")
	}
	if dash.NewOrdersCount() != 0 {
		t.Errorf("the initial fetch must not raise the badge")
	}
}

func TestPoller_TickSuppressedWhileModalOpen(t *testing.T) {
	fetcher := &fakeFetcher{orders: ordersOfLen(2)}
	poller, dash := newTestPoller(fetcher, time.Hour)

	poller.fetch(context.Background(), false)
	baseline := fetcher.callCount()

	dash.SetModalOpen(true)
	for i := 0; i < 5; i++ {
		poller.tick(context.Background())
	}
	if got := fetcher.callCount(); got != baseline {
		t.Fatalf("ticks while a session is open must not fetch: %d extra calls", got-baseline)
	}

	// The flag is read at tick time, so closing takes effect immediately.
	dash.SetModalOpen(false)
	poller.tick(context.Background())
	if got := fetcher.callCount(); got != baseline+1 {
		t.Fatalf("first tick after close should fetch, calls=%d", got)
	}
}

func TestPoller_TickSuppressedWhileHidden(t *testing.T) {
	fetcher := &fakeFetcher{orders: ordersOfLen(1)}
	poller, _ := newTestPoller(fetcher, time.Hour)

	poller.fetch(context.Background(), false)
	baseline := fetcher.callCount()

	poller.mu.Lock()
	poller.visible = false
	poller.mu.Unlock()

	poller.tick(context.Background())
	if fetcher.callCount() != baseline {
		t.Fatalf("hidden terminal must not fetch")
	}
}

func TestPoller_NewOrderDelta(t *testing.T) {
	fetcher := &fakeFetcher{orders: ordersOfLen(5)}
	poller, dash := newTestPoller(fetcher, 50*time.Millisecond)

	// Blocking mount fetch records the baseline of 5.
	poller.fetch(context.Background(), false)

	// A 6th order arrives; the next silent poll reports a delta of 1.
	fetcher.setOrders(ordersOfLen(6))
	poller.tick(context.Background())

	if got := dash.NewOrdersCount(); got != 1 {
		t.Fatalf("expected new-orders delta of 1, got %d", got)
	}

	// The badge auto-clears after the display duration.
	time.Sleep(120 * time.Millisecond)
	if got := dash.NewOrdersCount(); got != 0 {
		t.Errorf("expected badge to auto-clear, got %d", got)
	}
}

func TestPoller_ShrinkProducesNoSignal(t *testing.T) {
	fetcher := &fakeFetcher{orders: ordersOfLen(5)}
	poller, dash := newTestPoller(fetcher, time.Hour)

	poller.fetch(context.Background(), false)

	fetcher.setOrders(ordersOfLen(3))
	poller.tick(context.Background())
	if dash.NewOrdersCount() != 0 {
		t.Errorf("net shrinkage must not raise the badge")
	}

	// Growth is measured against the latest baseline, not the high-water mark.
	fetcher.setOrders(ordersOfLen(4))
	poller.tick(context.Background())
	if dash.NewOrdersCount() != 1 {
		t.Errorf("expected delta 1 from the post-shrink baseline, got %d", dash.NewOrdersCount())
	}
}

func TestPoller_ManualRefreshBypassesSuppressionAndZeroesBadge(t *testing.T) {
	fetcher := &fakeFetcher{orders: ordersOfLen(2)}
	poller, dash := newTestPoller(fetcher, time.Hour)

	poller.fetch(context.Background(), false)
	dash.AddNewOrders(2)
	dash.SetModalOpen(true)
	baseline := fetcher.callCount()

	poller.ManualRefresh(context.Background())

	if fetcher.callCount() != baseline+1 {
		t.Errorf("manual refresh must fetch even while a modal is open")
	}
	if dash.NewOrdersCount() != 0 {
		t.Errorf("manual refresh must zero the badge, got %d", dash.NewOrdersCount())
	}
}

func TestPoller_SilentFailureKeepsTableIntact(t *testing.T) {
	fetcher := &fakeFetcher{orders: ordersOfLen(3)}
	poller, dash := newTestPoller(fetcher, time.Hour)

	poller.fetch(context.Background(), false)

	fetcher.mu.Lock()
	fetcher.err = context.DeadlineExceeded
	fetcher.mu.Unlock()

	poller.tick(context.Background())

	if dash.Count() != 3 {
		t.Errorf("a failed silent fetch must not disturb the cache")
	}
	if dash.Error() != "" {
		t.Errorf("a silent failure must not surface an error, got %q", dash.Error())
	}
}

func TestPoller_ForegroundFailureSurfacesError(t *testing.T) {
	fetcher := &fakeFetcher{err: context.DeadlineExceeded}
	poller, dash := newTestPoller(fetcher, time.Hour)

	poller.fetch(context.Background(), false)

	if dash.Error() == "" {
		t.Errorf("foreground fetch failure must surface in the error slot")
	}
	if dash.Loading() {
		t.Errorf("loading must clear even on failure")
	}
}

func TestPoller_VisibilityRestartsTimer(t *testing.T) {
	fetcher := &fakeFetcher{orders: ordersOfLen(1)}
	dash := NewDashboard()
	log := logger.New("staff-test")
	poller := NewPoller(fetcher, dash, log, 20*time.Millisecond, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		poller.Run(ctx)
		close(done)
	}()

	// Wait for the initial fetch plus at least one tick.
	time.Sleep(70 * time.Millisecond)
	if fetcher.callCount() < 2 {
		t.Fatalf("expected ticks while visible, calls=%d", fetcher.callCount())
	}

	poller.SetVisible(false)
	time.Sleep(30 * time.Millisecond)
	if poller.State() != PollerStopped {
		t.Fatalf("hidden terminal should stop the timer")
	}
	hiddenCalls := fetcher.callCount()
	time.Sleep(70 * time.Millisecond)
	if fetcher.callCount() != hiddenCalls {
		t.Fatalf("no fetches may happen while hidden")
	}

	// Becoming visible fetches immediately and resumes ticking.
	poller.SetVisible(true)
	time.Sleep(30 * time.Millisecond)
	if poller.State() != PollerRunning {
		t.Fatalf("visible terminal should restart the timer")
	}
	if fetcher.callCount() <= hiddenCalls {
		t.Fatalf("expected an immediate fetch on becoming visible")
	}

	cancel()
	<-done
}
