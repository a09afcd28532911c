package staff

import (
	"context"
	"sync"
	"time"

	"github.com/matiahasmasan/GreenUp/internal/logger"
	"github.com/matiahasmasan/GreenUp/internal/models"
)

// ListFetcher fetches the full order collection.
type ListFetcher interface {
	ListOrders(ctx context.Context) ([]models.Order, error)
}

// PollerState is the interval timer state: stopped while the terminal is
// hidden, running otherwise.
type PollerState int

const (
	PollerStopped PollerState = iota
	PollerRunning
)

// Poller keeps the dashboard approximately fresh: one blocking fetch on
// start, then a silent refetch on a fixed interval. A tick is skipped
// outright when the terminal is hidden or a view/edit session is open.
type Poller struct {
	fetcher    ListFetcher
	dash       *Dashboard
	logger     *logger.Logger
	interval   time.Duration
	displayFor time.Duration

	mu        sync.Mutex
	state     PollerState
	visible   bool
	prevCount int

	visibilityCh chan bool
}

// NewPoller creates a poller over the given fetcher and dashboard.
func NewPoller(fetcher ListFetcher, dash *Dashboard, log *logger.Logger, interval, displayFor time.Duration) *Poller {
	return &Poller{
		fetcher:      fetcher,
		dash:         dash,
		logger:       log,
		interval:     interval,
		displayFor:   displayFor,
		visible:      true,
		visibilityCh: make(chan bool, 1),
	}
}

// Run performs the initial blocking fetch, then polls until the context is
// cancelled. Visibility transitions stop and restart the interval timer;
// the timer is always cleared before being rescheduled, so a stopped timer
// can never double-fire.
func (p *Poller) Run(ctx context.Context) error {
	p.fetch(ctx, false)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	p.setState(PollerRunning)

	for {
		select {
		case <-ctx.Done():
			p.setState(PollerStopped)
			return ctx.Err()

		case visible := <-p.visibilityCh:
			p.mu.Lock()
			p.visible = visible
			p.mu.Unlock()

			ticker.Stop()
			if visible {
				ticker = time.NewTicker(p.interval)
				p.setState(PollerRunning)
				// Coming back to the foreground refreshes immediately.
				p.fetch(ctx, true)
			} else {
				p.setState(PollerStopped)
			}

		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

// tick decides whether this interval performs a silent fetch. The
// suppression flag is read at the instant the tick fires, so an opened or
// closed session takes effect on the very next tick.
func (p *Poller) tick(ctx context.Context) {
	p.mu.Lock()
	visible := p.visible
	p.mu.Unlock()

	if !visible || p.dash.ModalOpen() {
		p.logger.Debug("poll_skipped", "Poll tick suppressed", "", map[string]interface{}{
			"visible":    visible,
			"modal_open": p.dash.ModalOpen(),
		})
		return
	}

	p.fetch(ctx, true)
}

// SetVisible signals a terminal visibility transition. Hidden stops the
// interval timer; visible restarts it and triggers one immediate silent
// fetch.
func (p *Poller) SetVisible(visible bool) {
	p.visibilityCh <- visible
}

// ManualRefresh bypasses suppression, performs a blocking fetch and zeroes
// the new-orders badge.
func (p *Poller) ManualRefresh(ctx context.Context) {
	p.fetch(ctx, false)
	p.dash.ResetNewOrders()
}

// SilentRefetch performs one background fetch, used to reconcile the table
// after an edit session saves.
func (p *Poller) SilentRefetch(ctx context.Context) {
	go p.fetch(ctx, true)
}

// State returns the current interval timer state.
func (p *Poller) State() PollerState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Poller) setState(state PollerState) {
	p.mu.Lock()
	p.state = state
	p.mu.Unlock()
}

// fetch performs one round-trip to the list endpoint. Foreground fetches
// drive the loading and error slots; silent failures are swallowed so a
// flaky poll never disturbs the visible table.
func (p *Poller) fetch(ctx context.Context, silent bool) {
	if silent {
		p.dash.SetRefreshing(true)
		defer p.dash.SetRefreshing(false)
	} else {
		p.dash.SetLoading(true)
		defer p.dash.SetLoading(false)
	}

	orders, err := p.fetcher.ListOrders(ctx)
	if err != nil {
		if !silent {
			p.dash.SetError("Failed to load orders")
		}
		p.logger.Error("fetch_failed", "Failed to fetch orders", "", err, map[string]interface{}{
			"silent": silent,
		})
		return
	}

	// Stamped on arrival: a later-dispatched but earlier-completed fetch
	// wins over this one if it already populated the cache.
	if !p.dash.ApplyFetch(orders, time.Now()) {
		p.logger.Debug("fetch_discarded", "Stale fetch response dropped", "", nil)
		return
	}

	p.recordCount(len(orders), silent)
}

// recordCount updates the length baseline and raises the new-orders badge
// when a silent fetch comes back longer than the previous one. This is a
// net-growth heuristic, not an identity diff.
func (p *Poller) recordCount(count int, silent bool) {
	p.mu.Lock()
	prev := p.prevCount
	p.prevCount = count
	p.mu.Unlock()

	if silent && prev > 0 && count > prev {
		p.dash.AddNewOrders(count - prev)
		time.AfterFunc(p.displayFor, p.dash.ResetNewOrders)
	}
}
