package models

import (
	"errors"
	"testing"
)

func TestParseStatus(t *testing.T) {
	for _, status := range AllStatuses {
		parsed, err := ParseStatus(string(status))
		if err != nil {
			t.Fatalf("ParseStatus(%q) returned error: %v", status, err)
		}
		if parsed != status {
			t.Errorf("ParseStatus(%q) = %q", status, parsed)
		}
	}

	for _, raw := range []string{"", "cooking", "PENDING", "done"} {
		if _, err := ParseStatus(raw); !errors.Is(err, ErrInvalidStatus) {
			t.Errorf("ParseStatus(%q) expected ErrInvalidStatus, got %v", raw, err)
		}
	}
}

func TestParsePaymentMethod(t *testing.T) {
	if _, err := ParsePaymentMethod("card"); err != nil {
		t.Errorf("card should be valid: %v", err)
	}
	if _, err := ParsePaymentMethod("cash"); err != nil {
		t.Errorf("cash should be valid: %v", err)
	}
	if _, err := ParsePaymentMethod("bitcoin"); err == nil {
		t.Errorf("expected error for unknown payment method")
	}
}

func TestOrder_CurrentStatus_CoercesMissingToPending(t *testing.T) {
	var order Order
	if order.CurrentStatus() != StatusPending {
		t.Errorf("nil status should read as pending, got %q", order.CurrentStatus())
	}

	empty := OrderStatus("")
	order.Status = &empty
	if order.CurrentStatus() != StatusPending {
		t.Errorf("empty status should read as pending, got %q", order.CurrentStatus())
	}

	order.SetStatus(StatusPreparing)
	if order.CurrentStatus() != StatusPreparing {
		t.Errorf("expected preparing, got %q", order.CurrentStatus())
	}
}

func TestOrder_Normalize(t *testing.T) {
	var order Order
	order.Normalize()
	if order.Status == nil || *order.Status != StatusPending {
		t.Fatalf("Normalize should pin status to pending, got %v", order.Status)
	}
}

func TestCreateOrderRequest_Validate(t *testing.T) {
	valid := CreateOrderRequest{
		CustomerName:  "Ana",
		TableNumber:   "4",
		PaymentMethod: "cash",
		Items:         []CartItemInput{{Name: "Latte", Price: 4.50, Quantity: 2}},
	}

	tests := []struct {
		name    string
		mutate  func(*CreateOrderRequest)
		wantErr bool
	}{
		{"valid", func(r *CreateOrderRequest) {}, false},
		{"blank customer name", func(r *CreateOrderRequest) { r.CustomerName = "  " }, true},
		{"blank table number", func(r *CreateOrderRequest) { r.TableNumber = "" }, true},
		{"bad payment method", func(r *CreateOrderRequest) { r.PaymentMethod = "check" }, true},
		{"no items", func(r *CreateOrderRequest) { r.Items = nil }, true},
		{"item without name", func(r *CreateOrderRequest) { r.Items[0].Name = "" }, true},
		{"zero quantity", func(r *CreateOrderRequest) { r.Items[0].Quantity = 0 }, true},
		{"negative price", func(r *CreateOrderRequest) { r.Items[0].Price = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			req.Items = append([]CartItemInput(nil), valid.Items...)
			tt.mutate(&req)

			err := req.Validate()
			if tt.wantErr && err == nil {
				t.Fatalf("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr {
				var vErr *ValidationError
				if !errors.As(err, &vErr) {
					t.Fatalf("expected *ValidationError, got %T", err)
				}
			}
		})
	}
}

func TestCreateOrderRequest_CalculateTotalAmount(t *testing.T) {
	req := CreateOrderRequest{
		Items: []CartItemInput{
			{Name: "Latte", Price: 4.50, Quantity: 2},
			{Name: "Bagel", Price: 3.25, Quantity: 1},
		},
	}
	if got := req.CalculateTotalAmount(); got != 12.25 {
		t.Errorf("expected 12.25, got %v", got)
	}
}
