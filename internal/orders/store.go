package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/storefront/internal/cart"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrOrderNotFound = errors.New("order not found")

const orderColumns = `id, email, session_ref, status, total_cents, currency, created_at, updated_at`

type Store struct {
	DB       *pgxpool.Pool
	Currency string
}

// CreatePendingOrder writes the order row and its items in one transaction.
// An empty email is stored as NULL.
func (s *Store) CreatePendingOrder(ctx context.Context, email string, c cart.Normalized) (int64, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var emailArg *string
	if email != "" {
		emailArg = &email
	}

	var orderID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO orders(email, session_ref, status, total_cents, currency)
		VALUES ($1, NULL, $2, $3, $4)
		RETURNING id`,
		emailArg, string(StatusPending), c.TotalMinor, s.Currency,
	).Scan(&orderID)
	if err != nil {
		return 0, fmt.Errorf("insert order: %w", err)
	}

	for _, l := range c.Lines {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items(order_id, product_id, name, unit_price_cents, quantity)
			VALUES ($1, $2, $3, $4, $5)`,
			orderID, l.Product.ID, l.Product.Name, l.UnitMinor, l.Quantity,
		)
		if err != nil {
			return 0, fmt.Errorf("insert item product=%d: %w", l.Product.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit order: %w", err)
	}
	return orderID, nil
}

// AttachSessionReference links the provider session to the order. Writing the
// same reference twice is harmless.
func (s *Store) AttachSessionReference(ctx context.Context, orderID int64, sessionRef string) error {
	ct, err := s.DB.Exec(ctx,
		`UPDATE orders SET session_ref=$2, updated_at=now() WHERE id=$1`, orderID, sessionRef)
	if err != nil {
		return fmt.Errorf("attach session: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (s *Store) MarkPaid(ctx context.Context, sessionRef string) (int64, error) {
	return s.transition(ctx, sessionRef, StatusPaid)
}

func (s *Store) MarkCanceled(ctx context.Context, sessionRef string) (int64, error) {
	return s.transition(ctx, sessionRef, StatusCanceled)
}

// transition only moves orders that are still pending. Terminal orders are
// left alone and count as 0, which is how replays and racing deliveries
// become no-ops.
func (s *Store) transition(ctx context.Context, sessionRef string, to Status) (int64, error) {
	if !CanTransition(StatusPending, to) {
		return 0, fmt.Errorf("illegal transition %s -> %s", StatusPending, to)
	}
	ct, err := s.DB.Exec(ctx, `
		UPDATE orders SET status=$2, updated_at=now()
		WHERE session_ref=$1 AND status=$3`,
		sessionRef, string(to), string(StatusPending),
	)
	if err != nil {
		return 0, fmt.Errorf("mark %s: %w", to, err)
	}
	return ct.RowsAffected(), nil
}

func (s *Store) GetOrder(ctx context.Context, orderID int64) (*Order, error) {
	row := s.DB.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, orderID)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}
	return o, nil
}

func (s *Store) ListItems(ctx context.Context, orderID int64) ([]OrderItem, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT id, order_id, product_id, name, unit_price_cents, quantity
		FROM order_items WHERE order_id=$1 ORDER BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	out := []OrderItem{}
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Name, &it.UnitPriceCents, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// ListOrders returns the newest orders first.
func (s *Store) ListOrders(ctx context.Context, limit int) ([]Order, error) {
	rows, err := s.DB.Query(ctx,
		`SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	out := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var status string
	if err := row.Scan(&o.ID, &o.Email, &o.SessionRef, &status, &o.TotalCents, &o.Currency, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	o.Status = Status(status)
	return &o, nil
}
