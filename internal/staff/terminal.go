package staff

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/matiahasmasan/GreenUp/internal/logger"
)

// Terminal is the staff-facing order table: it wires the API client, the
// shared dashboard, the poller and a session controller together and
// renders the cached collection on an interval.
type Terminal struct {
	client  *Client
	dash    *Dashboard
	poller  *Poller
	session *Session
	logger  *logger.Logger

	renderEvery time.Duration
	shutdown    chan os.Signal
}

// NewTerminal builds a staff terminal against the given API base URL.
func NewTerminal(apiURL string, pollInterval, displayFor time.Duration, log *logger.Logger) *Terminal {
	client := NewClient(apiURL)
	dash := NewDashboard()
	poller := NewPoller(client, dash, log, pollInterval, displayFor)
	session := NewSession(client, dash, log, poller.SilentRefetch)

	return &Terminal{
		client:      client,
		dash:        dash,
		poller:      poller,
		session:     session,
		logger:      log,
		renderEvery: 2 * time.Second,
		shutdown:    make(chan os.Signal, 1),
	}
}

// Session returns the terminal's view/edit session controller.
func (t *Terminal) Session() *Session { return t.session }

// Poller returns the terminal's synchronization poller.
func (t *Terminal) Poller() *Poller { return t.poller }

// Dashboard returns the shared order table state.
func (t *Terminal) Dashboard() *Dashboard { return t.dash }

// Run starts the poller and renders the order table until the context is
// cancelled or a shutdown signal arrives.
func (t *Terminal) Run(ctx context.Context) error {
	requestID := logger.GenerateRequestID()
	signal.Notify(t.shutdown, syscall.SIGINT, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		if err := t.poller.Run(ctx); err != nil && ctx.Err() == nil {
			t.logger.Error("poller_failed", "Order poller stopped unexpectedly", requestID, err, nil)
		}
	}()

	t.logger.Info("service_started", "Staff terminal started", requestID, map[string]interface{}{
		"render_interval": t.renderEvery.Seconds(),
	})

	ticker := time.NewTicker(t.renderEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.shutdown:
			t.logger.Info("graceful_shutdown", "Received shutdown signal", requestID, nil)
			return nil
		case <-ticker.C:
			t.render()
		}
	}
}

// render prints the current order table snapshot to stdout.
func (t *Terminal) render() {
	if t.dash.Loading() {
		fmt.Println("Loading orders...")
		return
	}
	if msg := t.dash.Error(); msg != "" {
		fmt.Printf("⚠ %s\n", msg)
		return
	}

	orders := t.dash.Orders()
	if len(orders) == 0 {
		fmt.Println("No orders yet.")
		return
	}

	if count := t.dash.NewOrdersCount(); count > 0 {
		fmt.Printf("🔔 %d new order(s)\n", count)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-6s %-20s %-8s %-8s %-10s %-11s %s\n",
		"ID", "CUSTOMER", "TABLE", "PAYMENT", "TOTAL", "STATUS", "UPDATED")
	for _, order := range orders {
		fmt.Fprintf(&b, "#%-5d %-20s %-8s %-8s $%-9.2f %-11s %s\n",
			order.ID,
			order.CustomerName,
			order.TableNumber,
			order.PaymentMethod,
			order.TotalAmount,
			order.CurrentStatus(),
			order.UpdatedAt.Local().Format("15:04:05"),
		)
	}
	fmt.Print(b.String())
}
