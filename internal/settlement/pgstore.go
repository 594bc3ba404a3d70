package settlement

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore implements Store over a pgx pool. Every RunInTx call is one
// Postgres transaction; account and product reads lock their rows with
// FOR UPDATE so concurrent settlements against the same documents serialize
// instead of racing the checks.
type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func (s *PGStore) RunInTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) Account(ctx context.Context, id string) (*Account, error) {
	var a Account
	err := t.tx.QueryRow(ctx,
		`SELECT id, role, balance, pending_balance FROM users WHERE id = $1 FOR UPDATE`,
		id,
	).Scan(&a.ID, &a.Role, &a.Balance, &a.PendingBalance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, newError(KindNotFound, "account not found")
		}
		return nil, err
	}
	return &a, nil
}

func (t *pgTx) AdjustBalance(ctx context.Context, id string, deltaBalance, deltaPending int64) error {
	res, err := t.tx.Exec(ctx,
		`UPDATE users SET balance = balance + $1, pending_balance = pending_balance + $2 WHERE id = $3`,
		deltaBalance, deltaPending, id,
	)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return newError(KindNotFound, "account not found")
	}
	return nil
}

func (t *pgTx) Product(ctx context.Context, id string) (*Product, error) {
	var p Product
	err := t.tx.QueryRow(ctx,
		`SELECT id, seller_id, name, price, stock FROM products WHERE id = $1 FOR UPDATE`,
		id,
	).Scan(&p.ID, &p.SellerID, &p.Name, &p.Price, &p.Stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, newError(KindNotFound, "product not found")
		}
		return nil, err
	}
	return &p, nil
}

func (t *pgTx) AdjustStock(ctx context.Context, id string, delta int) error {
	res, err := t.tx.Exec(ctx,
		`UPDATE products SET stock = stock + $1 WHERE id = $2`,
		delta, id,
	)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return newError(KindNotFound, "product not found")
	}
	return nil
}

func (t *pgTx) CartItems(ctx context.Context, buyerID string) ([]CartItem, error) {
	rows, err := t.tx.Query(ctx,
		`SELECT product_id, quantity FROM cart_items WHERE user_id = $1 ORDER BY product_id`,
		buyerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []CartItem
	for rows.Next() {
		var item CartItem
		if err := rows.Scan(&item.ProductID, &item.Quantity); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (t *pgTx) ClearCart(ctx context.Context, buyerID string) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, buyerID)
	return err
}

func (t *pgTx) CreateOrder(ctx context.Context, o *Order) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO orders (id, buyer_id, total_amount, payment_method, status, shipping_address, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		o.ID, o.BuyerID, o.TotalAmount, o.PaymentMethod, o.Status, o.ShippingAddress, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return err
	}
	for _, line := range o.Items {
		_, err := t.tx.Exec(ctx,
			`INSERT INTO order_items (order_id, product_id, seller_id, name, price, quantity)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			o.ID, line.ProductID, line.SellerID, line.Name, line.Price, line.Quantity,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *pgTx) Order(ctx context.Context, id string) (*Order, error) {
	var o Order
	err := t.tx.QueryRow(ctx,
		`SELECT id, buyer_id, total_amount, payment_method, status, shipping_address, created_at, updated_at
		 FROM orders WHERE id = $1 FOR UPDATE`,
		id,
	).Scan(&o.ID, &o.BuyerID, &o.TotalAmount, &o.PaymentMethod, &o.Status, &o.ShippingAddress, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, newError(KindNotFound, "order not found")
		}
		return nil, err
	}

	rows, err := t.tx.Query(ctx,
		`SELECT product_id, seller_id, name, price, quantity FROM order_items WHERE order_id = $1`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var line LineItem
		if err := rows.Scan(&line.ProductID, &line.SellerID, &line.Name, &line.Price, &line.Quantity); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, line)
	}
	return &o, rows.Err()
}

func (t *pgTx) SetOrderStatus(ctx context.Context, id string, status Status) error {
	res, err := t.tx.Exec(ctx,
		`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return newError(KindNotFound, "order not found")
	}
	return nil
}
