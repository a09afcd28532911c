package staff

import (
	"context"
	"errors"
	"fmt"

	"github.com/matiahasmasan/GreenUp/internal/logger"
	"github.com/matiahasmasan/GreenUp/internal/models"
)

// OrderAPI is the part of the API client a session needs.
type OrderAPI interface {
	GetOrder(ctx context.Context, id int) (*models.Order, error)
	UpdateStatus(ctx context.Context, id int, status models.OrderStatus) (*models.Order, error)
}

// SessionState tracks the single-order focus lifecycle.
type SessionState int

const (
	SessionClosed SessionState = iota
	SessionLoading
	SessionReady
)

// SessionMode distinguishes read-only view from editable sessions.
type SessionMode int

const (
	ModeView SessionMode = iota
	ModeEdit
)

// Session is the single-order focus used by view and edit interactions.
// While one is open it raises the dashboard's suppression flag, which
// pauses background polling until the session closes.
type Session struct {
	client    OrderAPI
	dash      *Dashboard
	logger    *logger.Logger
	reconcile func(ctx context.Context)

	state     SessionState
	mode      SessionMode
	order     *models.Order
	candidate models.OrderStatus
	errMsg    string
}

// NewSession creates a session controller. reconcile, if non-nil, is
// invoked after a successful save to trigger one silent background refetch.
func NewSession(client OrderAPI, dash *Dashboard, log *logger.Logger, reconcile func(ctx context.Context)) *Session {
	return &Session{
		client:    client,
		dash:      dash,
		logger:    log,
		reconcile: reconcile,
	}
}

// OpenView opens a read-only session on one order.
func (s *Session) OpenView(ctx context.Context, id int) {
	s.open(ctx, id, ModeView)
}

// OpenEdit opens an editable session on one order.
func (s *Session) OpenEdit(ctx context.Context, id int) {
	s.open(ctx, id, ModeEdit)
}

// open fetches the order. A failed load still lands in the ready state,
// with the error attached, so the caller is never stuck in loading.
func (s *Session) open(ctx context.Context, id int, mode SessionMode) {
	s.state = SessionLoading
	s.mode = mode
	s.order = nil
	s.errMsg = ""

	order, err := s.client.GetOrder(ctx, id)
	s.state = SessionReady
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.errMsg = "Order not found"
		} else {
			s.errMsg = "Failed to load order details"
		}
		s.logger.Error("session_load_failed", "Failed to load order", "", err, map[string]interface{}{
			"order_id": id,
		})
		return
	}

	s.order = order
	s.candidate = order.CurrentStatus()
	s.dash.SetModalOpen(true)

	s.logger.Debug("session_opened", fmt.Sprintf("Order %d opened", id), "", map[string]interface{}{
		"order_id": id,
		"mode":     mode,
	})
}

// ChangeStatus records a candidate status locally. No network involved.
func (s *Session) ChangeStatus(status models.OrderStatus) {
	s.candidate = status
}

// Save applies the candidate status. A candidate equal to the current
// status is rejected locally with ErrNoChange before any network call.
// On success the shared cache is patched in place, the session closes and
// one silent refetch reconciles whatever the patch did not touch.
func (s *Session) Save(ctx context.Context) error {
	if s.state != SessionReady || s.order == nil {
		return fmt.Errorf("no order open")
	}
	if s.mode != ModeEdit {
		return fmt.Errorf("session is read-only")
	}

	if s.candidate == s.order.CurrentStatus() {
		s.errMsg = models.ErrNoChange.Error()
		return models.ErrNoChange
	}

	updated, err := s.client.UpdateStatus(ctx, s.order.ID, s.candidate)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.errMsg = "Order not found"
		} else {
			s.errMsg = "Failed to update order status"
		}
		s.logger.Error("status_update_failed", "Failed to update order status", "", err, map[string]interface{}{
			"order_id": s.order.ID,
			"status":   string(s.candidate),
		})
		return err
	}

	// Replace, not merge: the server's record wins over the local copy.
	s.dash.PatchStatus(updated.ID, updated.CurrentStatus(), updated.UpdatedAt)

	s.logger.Info("status_saved", fmt.Sprintf("Order %d saved as %s", updated.ID, updated.CurrentStatus()), "", map[string]interface{}{
		"order_id": updated.ID,
		"status":   string(updated.CurrentStatus()),
	})

	s.Close()

	if s.reconcile != nil {
		s.reconcile(ctx)
	}

	return nil
}

// Close discards the local copy, clears any error and lowers the
// suppression flag. Safe to call from any state, including mid-loading.
func (s *Session) Close() {
	s.state = SessionClosed
	s.order = nil
	s.candidate = ""
	s.errMsg = ""
	s.dash.SetModalOpen(false)
}

// State returns the session lifecycle state.
func (s *Session) State() SessionState { return s.state }

// Mode returns the session mode.
func (s *Session) Mode() SessionMode { return s.mode }

// Order returns the locally held order copy, or nil.
func (s *Session) Order() *models.Order { return s.order }

// Candidate returns the locally selected status.
func (s *Session) Candidate() models.OrderStatus { return s.candidate }

// Err returns the session's error message, if any.
func (s *Session) Err() string { return s.errMsg }
