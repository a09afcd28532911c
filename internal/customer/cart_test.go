package customer

import "testing"

func TestCart_AddMergesSameLine(t *testing.T) {
	cart := NewCart()
	cart.Add("Latte", 4.50, 1)
	cart.Add("Croissant", 3.20, 2)
	cart.Add("Latte", 4.50, 2)

	if cart.Len() != 2 {
		t.Fatalf("expected 2 distinct lines, got %d", cart.Len())
	}
	items := cart.Items()
	if items[0].Name != "Latte" || items[0].Quantity != 3 {
		t.Errorf("expected Latte x3 as the first line, got %s x%d", items[0].Name, items[0].Quantity)
	}
	if cart.ItemCount() != 5 {
		t.Errorf("expected 5 units total, got %d", cart.ItemCount())
	}
}

func TestCart_SamePriceDifferentNameStaysSeparate(t *testing.T) {
	cart := NewCart()
	cart.Add("Latte", 4.50, 1)
	cart.Add("Mocha", 4.50, 1)

	if cart.Len() != 2 {
		t.Errorf("lines are keyed by name and price together, got %d lines", cart.Len())
	}
}

func TestCart_SetQuantity(t *testing.T) {
	cart := NewCart()
	cart.Add("Latte", 4.50, 3)

	cart.SetQuantity("Latte", 4.50, 1)
	if got := cart.Items()[0].Quantity; got != 1 {
		t.Errorf("expected quantity 1, got %d", got)
	}

	// Zero removes the line entirely.
	cart.SetQuantity("Latte", 4.50, 0)
	if cart.Len() != 0 {
		t.Errorf("expected empty cart, got %d lines", cart.Len())
	}
}

func TestCart_Total(t *testing.T) {
	cart := NewCart()
	cart.Add("Latte", 4.50, 2)
	cart.Add("Croissant", 3.20, 1)

	if got := cart.Total(); got != 12.20 {
		t.Errorf("expected total 12.20, got %.2f", got)
	}
}

func TestCart_ItemsReturnsCopy(t *testing.T) {
	cart := NewCart()
	cart.Add("Latte", 4.50, 1)

	items := cart.Items()
	items[0].Quantity = 99

	if got := cart.Items()[0].Quantity; got != 1 {
		t.Errorf("mutating the snapshot must not touch the cart, got %d", got)
	}
}

func TestCart_AddIgnoresNonPositiveQuantity(t *testing.T) {
	cart := NewCart()
	cart.Add("Latte", 4.50, 0)
	cart.Add("Latte", 4.50, -1)

	if cart.Len() != 0 {
		t.Errorf("non-positive quantities must be ignored, got %d lines", cart.Len())
	}
}
