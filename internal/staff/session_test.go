package staff

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matiahasmasan/GreenUp/internal/logger"
	"github.com/matiahasmasan/GreenUp/internal/models"
)

// fakeAPI stands in for the HTTP client and counts every network call.
type fakeAPI struct {
	order       *models.Order
	getErr      error
	updateErr   error
	getCalls    int
	updateCalls int
}

func (f *fakeAPI) GetOrder(ctx context.Context, id int) (*models.Order, error) {
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	o := *f.order
	return &o, nil
}

func (f *fakeAPI) UpdateStatus(ctx context.Context, id int, status models.OrderStatus) (*models.Order, error) {
	f.updateCalls++
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	o := *f.order
	o.SetStatus(status)
	o.UpdatedAt = time.Now()
	return &o, nil
}

func newTestSession(api *fakeAPI) (*Session, *Dashboard, *int) {
	dash := NewDashboard()
	log := logger.New("staff-test")
	reconciles := 0
	session := NewSession(api, dash, log, func(ctx context.Context) { reconciles++ })
	return session, dash, &reconciles
}

func TestSession_OpenRaisesSuppressionFlag(t *testing.T) {
	order := makeOrder(7, models.StatusPending)
	api := &fakeAPI{order: &order}
	session, dash, _ := newTestSession(api)

	session.OpenEdit(context.Background(), 7)

	if session.State() != SessionReady {
		t.Fatalf("expected ready state, got %v", session.State())
	}
	if !dash.ModalOpen() {
		t.Errorf("opening a session must raise the suppression flag")
	}
	if session.Candidate() != models.StatusPending {
		t.Errorf("candidate should start at the order's current status, got %q", session.Candidate())
	}
}

func TestSession_OpenNotFound(t *testing.T) {
	api := &fakeAPI{getErr: models.ErrNotFound}
	session, dash, _ := newTestSession(api)

	session.OpenView(context.Background(), 999)

	if session.State() != SessionReady {
		t.Fatalf("a failed load must still reach the ready state")
	}
	if session.Order() != nil {
		t.Errorf("no order should be held after a failed load")
	}
	if session.Err() != "Order not found" {
		t.Errorf("expected not-found message, got %q", session.Err())
	}
	if dash.ModalOpen() {
		t.Errorf("a failed load must not raise the suppression flag")
	}
}

func TestSession_SaveUnchangedStatusSkipsNetwork(t *testing.T) {
	order := makeOrder(3, models.StatusPreparing)
	api := &fakeAPI{order: &order}
	session, _, _ := newTestSession(api)

	session.OpenEdit(context.Background(), 3)
	err := session.Save(context.Background())

	if !errors.Is(err, models.ErrNoChange) {
		t.Fatalf("expected ErrNoChange, got %v", err)
	}
	if api.updateCalls != 0 {
		t.Fatalf("an unchanged save must never reach the network, got %d calls", api.updateCalls)
	}
	if session.State() != SessionReady {
		t.Errorf("a rejected save keeps the session open")
	}
}

func TestSession_SavePatchesCacheAndCloses(t *testing.T) {
	order := makeOrder(3, models.StatusPending)
	api := &fakeAPI{order: &order}
	session, dash, reconciles := newTestSession(api)
	dash.ApplyFetch([]models.Order{order}, time.Now())

	session.OpenEdit(context.Background(), 3)
	session.ChangeStatus(models.StatusCompleted)
	if err := session.Save(context.Background()); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if api.updateCalls != 1 {
		t.Fatalf("expected exactly one update call, got %d", api.updateCalls)
	}
	cached := dash.Orders()[0]
	if cached.CurrentStatus() != models.StatusCompleted {
		t.Errorf("the cached row must carry the saved status, got %q", cached.CurrentStatus())
	}
	if session.State() != SessionClosed {
		t.Errorf("a successful save closes the session")
	}
	if dash.ModalOpen() {
		t.Errorf("closing the session must lower the suppression flag")
	}
	if *reconciles != 1 {
		t.Errorf("expected one background reconcile, got %d", *reconciles)
	}
}

func TestSession_SaveFailureKeepsSessionOpen(t *testing.T) {
	order := makeOrder(5, models.StatusPending)
	api := &fakeAPI{order: &order}
	session, dash, reconciles := newTestSession(api)
	dash.ApplyFetch([]models.Order{order}, time.Now())

	session.OpenEdit(context.Background(), 5)
	session.ChangeStatus(models.StatusCancelled)
	api.updateErr = errors.New("connection refused")

	if err := session.Save(context.Background()); err == nil {
		t.Fatalf("expected an error from a failed save")
	}

	if session.State() != SessionReady {
		t.Errorf("a failed save keeps the session open for retry")
	}
	if session.Err() != "Failed to update order status" {
		t.Errorf("unexpected error message %q", session.Err())
	}
	if cached := dash.Orders()[0]; cached.CurrentStatus() != models.StatusPending {
		t.Errorf("a failed save must not touch the cache, got %q", cached.CurrentStatus())
	}
	if *reconciles != 0 {
		t.Errorf("a failed save must not trigger a reconcile")
	}
}

func TestSession_SaveInViewModeRejected(t *testing.T) {
	order := makeOrder(2, models.StatusPending)
	api := &fakeAPI{order: &order}
	session, _, _ := newTestSession(api)

	session.OpenView(context.Background(), 2)
	session.ChangeStatus(models.StatusCompleted)

	if err := session.Save(context.Background()); err == nil {
		t.Fatalf("a read-only session must reject saves")
	}
	if api.updateCalls != 0 {
		t.Errorf("read-only rejection must happen before the network")
	}
}

func TestSession_CloseIsSafeFromAnyState(t *testing.T) {
	api := &fakeAPI{getErr: errors.New("boom")}
	session, dash, _ := newTestSession(api)

	// Closed session, never opened.
	session.Close()

	// After a failed open.
	session.OpenEdit(context.Background(), 1)
	session.Close()

	if session.State() != SessionClosed || session.Order() != nil || session.Err() != "" {
		t.Errorf("close must reset the session completely")
	}
	if dash.ModalOpen() {
		t.Errorf("close must lower the suppression flag")
	}
}
