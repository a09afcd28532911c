package order

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/matiahasmasan/GreenUp/internal/models"
)

// fakeStore is an in-memory Store used by the handler and service tests.
// Creation is all-or-nothing like the real transaction: a forced failure
// leaves no trace of the order or its items.
type fakeStore struct {
	mu         sync.Mutex
	orders     map[int]*models.Order
	nextID     int
	failCreate bool
	nowFunc    func() time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		orders:  make(map[int]*models.Order),
		nextID:  1,
		nowFunc: time.Now,
	}
}

func (f *fakeStore) CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failCreate {
		return nil, fmt.Errorf("insert failed, transaction rolled back")
	}

	now := f.nowFunc()
	order := &models.Order{
		ID:            f.nextID,
		CustomerName:  req.CustomerName,
		TableNumber:   req.TableNumber,
		PaymentMethod: models.PaymentMethod(req.PaymentMethod),
		TotalAmount:   req.CalculateTotalAmount(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	order.SetStatus(models.StatusPending)
	for i, input := range req.Items {
		order.Items = append(order.Items, models.OrderItem{
			ID:       i + 1,
			OrderID:  order.ID,
			Name:     input.Name,
			Price:    input.Price,
			Quantity: input.Quantity,
			Subtotal: input.Subtotal(),
		})
	}

	f.orders[order.ID] = order
	f.nextID++

	return copyOrder(order), nil
}

func (f *fakeStore) GetOrder(ctx context.Context, id int) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	order, ok := f.orders[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return copyOrder(order), nil
}

func (f *fakeStore) ListOrders(ctx context.Context) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	orders := make([]models.Order, 0, len(f.orders))
	for _, order := range f.orders {
		orders = append(orders, *copyOrder(order))
	}
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return orders[i].ID > orders[j].ID
	})
	return orders, nil
}

func (f *fakeStore) SetStatus(ctx context.Context, id int, status models.OrderStatus) (*models.Order, error) {
	if _, err := models.ParseStatus(string(status)); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	order, ok := f.orders[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	order.SetStatus(status)
	order.UpdatedAt = f.nowFunc()

	return copyOrder(order), nil
}

func (f *fakeStore) Ping(ctx context.Context) error {
	return nil
}

func (f *fakeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.orders)
}

func copyOrder(order *models.Order) *models.Order {
	clone := *order
	if order.Status != nil {
		status := *order.Status
		clone.Status = &status
	}
	clone.Items = append([]models.OrderItem(nil), order.Items...)
	return &clone
}
