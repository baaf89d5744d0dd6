package checkout

import (
	"context"
	"errors"

	"github.com/ariefcatur/storefront/internal/cart"
	"github.com/ariefcatur/storefront/internal/catalog"
	"github.com/ariefcatur/storefront/internal/payment"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

type MockCatalog struct {
	Products []catalog.Product
	Err      error
}

func (m *MockCatalog) ListProducts(context.Context) ([]catalog.Product, error) {
	return m.Products, m.Err
}

type storedOrder struct {
	ID         int64
	Email      string
	Cart       cart.Normalized
	SessionRef string
}

// MockStore records orders in memory.
type MockStore struct {
	Orders    []*storedOrder
	CreateErr error
	AttachErr error
}

func (m *MockStore) CreatePendingOrder(_ context.Context, email string, c cart.Normalized) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	o := &storedOrder{ID: int64(len(m.Orders) + 1), Email: email, Cart: c}
	m.Orders = append(m.Orders, o)
	return o.ID, nil
}

func (m *MockStore) AttachSessionReference(_ context.Context, orderID int64, ref string) error {
	if m.AttachErr != nil {
		return m.AttachErr
	}
	for _, o := range m.Orders {
		if o.ID == orderID {
			o.SessionRef = ref
			return nil
		}
	}
	return errors.New("order not found")
}

type MockGateway struct {
	Handle   payment.SessionHandle
	Err      error
	Requests []payment.SessionRequest
}

func (m *MockGateway) CreateSession(_ context.Context, req payment.SessionRequest) (payment.SessionHandle, error) {
	m.Requests = append(m.Requests, req)
	return m.Handle, m.Err
}

type MockPublisher struct{ Topics []string }

func (m *MockPublisher) Publish(topic string, _, _ []byte, _ ...kafkago.Header) bool {
	m.Topics = append(m.Topics, topic)
	return true
}

func testProducts() []catalog.Product {
	return []catalog.Product{
		{ID: 1, Name: "Canvas Tote", Price: decimal.RequireFromString("18.00"), Img: "/img/tote.jpg"},
		{ID: 7, Name: "Logo Tee", Price: decimal.RequireFromString("12.50"), Img: "https://cdn.example.com/tee.jpg"},
	}
}
