package settlement

import "context"

// Tx is the transactional view of the account, catalog, order and cart
// stores. Every method sees and mutates state scoped to one transaction;
// nothing becomes visible to other operations until the transaction commits.
//
// Implementations must return *Error with KindNotFound when a document does
// not exist.
type Tx interface {
	// Account store.
	Account(ctx context.Context, id string) (*Account, error)
	// AdjustBalance atomically increments balance and pendingBalance by the
	// given deltas, either of which may be negative.
	AdjustBalance(ctx context.Context, id string, deltaBalance, deltaPending int64) error

	// Catalog store.
	Product(ctx context.Context, id string) (*Product, error)
	// AdjustStock increments stock by delta (negative to decrement).
	AdjustStock(ctx context.Context, id string, delta int) error

	// Cart store.
	CartItems(ctx context.Context, buyerID string) ([]CartItem, error)
	ClearCart(ctx context.Context, buyerID string) error

	// Order store.
	CreateOrder(ctx context.Context, o *Order) error
	Order(ctx context.Context, id string) (*Order, error)
	SetOrderStatus(ctx context.Context, id string, status Status) error
}

// Store opens transactions over the settlement state. RunInTx runs fn inside
// one transaction: if fn returns an error nothing is applied, otherwise all
// of fn's writes commit together.
type Store interface {
	RunInTx(ctx context.Context, fn func(tx Tx) error) error
}
