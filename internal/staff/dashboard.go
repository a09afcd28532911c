package staff

import (
	"sync"
	"time"

	"github.com/matiahasmasan/GreenUp/internal/models"
)

// Dashboard is the shared state container behind the staff order table.
// It owns the cached order collection, the new-orders counter and the
// modal-open suppression flag, and is the only state shared between the
// poller and the edit sessions.
type Dashboard struct {
	mu         sync.Mutex
	orders     []models.Order
	newOrders  int
	modalOpen  bool
	loading    bool
	refreshing bool
	errMsg     string
	appliedAt  time.Time
}

// NewDashboard creates an empty dashboard in the loading state.
func NewDashboard() *Dashboard {
	return &Dashboard{loading: true}
}

// Orders returns a snapshot copy of the cached order collection.
func (d *Dashboard) Orders() []models.Order {
	d.mu.Lock()
	defer d.mu.Unlock()
	snapshot := make([]models.Order, len(d.orders))
	copy(snapshot, d.orders)
	return snapshot
}

// Count returns how many orders are cached.
func (d *Dashboard) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.orders)
}

// ApplyFetch replaces the cached collection with a freshly fetched one.
// The stamp is the wall clock taken when the response arrived; a response
// older than the one already applied is dropped, so a slow fetch can never
// clobber newer data. Reports whether the fetch was applied.
func (d *Dashboard) ApplyFetch(orders []models.Order, stamp time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if stamp.Before(d.appliedAt) {
		return false
	}
	d.orders = orders
	d.appliedAt = stamp
	d.errMsg = ""
	return true
}

// PatchStatus replaces the status and update timestamp of one cached order
// in place, without refetching, so the table reflects a saved transition
// before the next poll lands. Reports whether the order was found.
func (d *Dashboard) PatchStatus(id int, status models.OrderStatus, updatedAt time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.orders {
		if d.orders[i].ID == id {
			d.orders[i].SetStatus(status)
			d.orders[i].UpdatedAt = updatedAt
			return true
		}
	}
	return false
}

// SetModalOpen flips the suppression flag consumed by the poller.
func (d *Dashboard) SetModalOpen(open bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.modalOpen = open
}

// ModalOpen reports whether a view/edit session is currently open. The
// poller reads this at the instant each tick fires, never caches it.
func (d *Dashboard) ModalOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.modalOpen
}

// AddNewOrders bumps the new-orders badge by the given delta.
func (d *Dashboard) AddNewOrders(delta int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.newOrders += delta
}

// ResetNewOrders zeroes the new-orders badge.
func (d *Dashboard) ResetNewOrders() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.newOrders = 0
}

// NewOrdersCount returns the current new-orders badge value.
func (d *Dashboard) NewOrdersCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.newOrders
}

// SetLoading marks a foreground (blocking) fetch in progress.
func (d *Dashboard) SetLoading(loading bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.loading = loading
}

// Loading reports whether a foreground fetch is in progress. Loading is
// distinct from an empty order list.
func (d *Dashboard) Loading() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loading
}

// SetRefreshing marks a silent background fetch in progress.
func (d *Dashboard) SetRefreshing(refreshing bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.refreshing = refreshing
}

// Refreshing reports whether a silent fetch is in progress.
func (d *Dashboard) Refreshing() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.refreshing
}

// SetError records a foreground fetch failure for display.
func (d *Dashboard) SetError(msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.errMsg = msg
}

// Error returns the current foreground error message, if any.
func (d *Dashboard) Error() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.errMsg
}
