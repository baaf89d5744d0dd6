package orders

import "time"

type Order struct {
	ID         int64     `json:"id"`
	Email      *string   `json:"email"`
	SessionRef *string   `json:"session_ref"`
	Status     Status    `json:"status"`
	TotalCents int64     `json:"total_cents"`
	Currency   string    `json:"currency"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// OrderItem snapshots product name and price at checkout time.
type OrderItem struct {
	ID             int64  `json:"id"`
	OrderID        int64  `json:"order_id"`
	ProductID      int64  `json:"product_id"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Quantity       int    `json:"quantity"`
}

func (it OrderItem) SubtotalCents() int64 { return it.UnitPriceCents * int64(it.Quantity) }
