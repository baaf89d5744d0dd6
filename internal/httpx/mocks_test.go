package httpx

import (
	"context"

	"github.com/ariefcatur/storefront/internal/catalog"
	"github.com/ariefcatur/storefront/internal/checkout"
	"github.com/ariefcatur/storefront/internal/orders"
	"github.com/ariefcatur/storefront/internal/reconcile"
)

type MockCatalog struct {
	Products []catalog.Product
	Err      error
}

func (m *MockCatalog) ListProducts(context.Context) ([]catalog.Product, error) {
	return m.Products, m.Err
}

type MockCheckout struct {
	Result checkout.Result
	Err    error
	Got    []checkout.Request
}

func (m *MockCheckout) Checkout(_ context.Context, req checkout.Request) (checkout.Result, error) {
	m.Got = append(m.Got, req)
	return m.Result, m.Err
}

type MockReconciler struct {
	Ack     reconcile.Ack
	Err     error
	Payload []byte
	Sig     string
}

func (m *MockReconciler) Handle(_ context.Context, payload []byte, sig, _ string) (reconcile.Ack, error) {
	m.Payload, m.Sig = payload, sig
	return m.Ack, m.Err
}

type MockOrders struct {
	Orders    map[int64]orders.Order
	Items     map[int64][]orders.OrderItem
	Err       error
	LastLimit int
}

func (m *MockOrders) GetOrder(_ context.Context, id int64) (*orders.Order, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	o, ok := m.Orders[id]
	if !ok {
		return nil, orders.ErrOrderNotFound
	}
	return &o, nil
}

func (m *MockOrders) ListItems(_ context.Context, id int64) ([]orders.OrderItem, error) {
	return m.Items[id], m.Err
}

func (m *MockOrders) ListOrders(_ context.Context, limit int) ([]orders.Order, error) {
	m.LastLimit = limit
	if m.Err != nil {
		return nil, m.Err
	}
	out := []orders.Order{}
	for _, o := range m.Orders {
		out = append(out, o)
	}
	return out, nil
}
