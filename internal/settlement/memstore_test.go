package settlement

import (
	"context"
	"sync"
)

// memStore is an in-memory Store for engine tests. RunInTx snapshots all
// state up front and restores it when fn fails, matching the commit/abort
// contract of the Postgres store.
type memStore struct {
	mu       sync.Mutex
	accounts map[string]*Account
	products map[string]*Product
	carts    map[string][]CartItem
	orders   map[string]*Order
}

func newMemStore() *memStore {
	return &memStore{
		accounts: map[string]*Account{},
		products: map[string]*Product{},
		carts:    map[string][]CartItem{},
		orders:   map[string]*Order{},
	}
}

func (s *memStore) RunInTx(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(&memTx{s: s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type memSnapshot struct {
	accounts map[string]*Account
	products map[string]*Product
	carts    map[string][]CartItem
	orders   map[string]*Order
}

func (s *memStore) snapshot() memSnapshot {
	snap := memSnapshot{
		accounts: map[string]*Account{},
		products: map[string]*Product{},
		carts:    map[string][]CartItem{},
		orders:   map[string]*Order{},
	}
	for id, a := range s.accounts {
		cp := *a
		snap.accounts[id] = &cp
	}
	for id, p := range s.products {
		cp := *p
		snap.products[id] = &cp
	}
	for id, items := range s.carts {
		snap.carts[id] = append([]CartItem(nil), items...)
	}
	for id, o := range s.orders {
		cp := *o
		cp.Items = append([]LineItem(nil), o.Items...)
		snap.orders[id] = &cp
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.accounts = snap.accounts
	s.products = snap.products
	s.carts = snap.carts
	s.orders = snap.orders
}

type memTx struct {
	s *memStore
}

func (t *memTx) Account(ctx context.Context, id string) (*Account, error) {
	a, ok := t.s.accounts[id]
	if !ok {
		return nil, newError(KindNotFound, "account not found")
	}
	cp := *a
	return &cp, nil
}

func (t *memTx) AdjustBalance(ctx context.Context, id string, deltaBalance, deltaPending int64) error {
	a, ok := t.s.accounts[id]
	if !ok {
		return newError(KindNotFound, "account not found")
	}
	a.Balance += deltaBalance
	a.PendingBalance += deltaPending
	return nil
}

func (t *memTx) Product(ctx context.Context, id string) (*Product, error) {
	p, ok := t.s.products[id]
	if !ok {
		return nil, newError(KindNotFound, "product not found")
	}
	cp := *p
	return &cp, nil
}

func (t *memTx) AdjustStock(ctx context.Context, id string, delta int) error {
	p, ok := t.s.products[id]
	if !ok {
		return newError(KindNotFound, "product not found")
	}
	p.Stock += delta
	return nil
}

func (t *memTx) CartItems(ctx context.Context, buyerID string) ([]CartItem, error) {
	return append([]CartItem(nil), t.s.carts[buyerID]...), nil
}

func (t *memTx) ClearCart(ctx context.Context, buyerID string) error {
	delete(t.s.carts, buyerID)
	return nil
}

func (t *memTx) CreateOrder(ctx context.Context, o *Order) error {
	cp := *o
	cp.Items = append([]LineItem(nil), o.Items...)
	t.s.orders[o.ID] = &cp
	return nil
}

func (t *memTx) Order(ctx context.Context, id string) (*Order, error) {
	o, ok := t.s.orders[id]
	if !ok {
		return nil, newError(KindNotFound, "order not found")
	}
	cp := *o
	cp.Items = append([]LineItem(nil), o.Items...)
	return &cp, nil
}

func (t *memTx) SetOrderStatus(ctx context.Context, id string, status Status) error {
	o, ok := t.s.orders[id]
	if !ok {
		return newError(KindNotFound, "order not found")
	}
	o.Status = status
	return nil
}
