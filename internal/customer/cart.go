package customer

import "github.com/matiahasmasan/GreenUp/internal/models"

// Cart is the ephemeral, client-held collection of items a customer
// intends to order. Lines are keyed by name and price, so adding the same
// product twice merges quantities.
type Cart struct {
	lines []models.CartItemInput
}

// NewCart creates an empty cart.
func NewCart() *Cart {
	return &Cart{}
}

// Add puts quantity units of an item into the cart, merging with an
// existing line for the same name and price.
func (c *Cart) Add(name string, price float64, quantity int) {
	if quantity < 1 {
		return
	}
	for i := range c.lines {
		if c.lines[i].Name == name && c.lines[i].Price == price {
			c.lines[i].Quantity += quantity
			return
		}
	}
	c.lines = append(c.lines, models.CartItemInput{Name: name, Price: price, Quantity: quantity})
}

// SetQuantity replaces a line's quantity; zero or less removes the line.
func (c *Cart) SetQuantity(name string, price float64, quantity int) {
	for i := range c.lines {
		if c.lines[i].Name == name && c.lines[i].Price == price {
			if quantity <= 0 {
				c.lines = append(c.lines[:i], c.lines[i+1:]...)
			} else {
				c.lines[i].Quantity = quantity
			}
			return
		}
	}
}

// Remove deletes a line from the cart.
func (c *Cart) Remove(name string, price float64) {
	c.SetQuantity(name, price, 0)
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.lines = nil
}

// Items returns a snapshot copy of the cart lines, in insertion order.
func (c *Cart) Items() []models.CartItemInput {
	items := make([]models.CartItemInput, len(c.lines))
	copy(items, c.lines)
	return items
}

// Total returns the sum of the line subtotals.
func (c *Cart) Total() float64 {
	var total float64
	for _, line := range c.lines {
		total += line.Subtotal()
	}
	return total
}

// ItemCount returns the total unit count across all lines.
func (c *Cart) ItemCount() int {
	var count int
	for _, line := range c.lines {
		count += line.Quantity
	}
	return count
}

// Len returns the number of distinct lines.
func (c *Cart) Len() int {
	return len(c.lines)
}
