// Package settlement owns every balance mutation tied to the order
// lifecycle: deducting the buyer and crediting sellers' pending balances at
// placement, shifting pending to available on release, returning funds on
// refund or cancellation. Each operation runs inside a single store
// transaction, so a failure anywhere leaves balances, stock and the order
// untouched.
package settlement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Jaybeey1507/cartify-group3/internal/metrics"
)

// Engine implements the settlement operations over a Store.
type Engine struct {
	store Store
	log   *zap.Logger
}

func NewEngine(store Store, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{store: store, log: log}
}

// PlaceOrderRequest is the input to PlaceOrder. Line items come from the
// buyer's cart, read inside the placement transaction.
type PlaceOrderRequest struct {
	BuyerID         string
	ShippingAddress string
	PaymentMethod   PaymentMethod
}

// PlaceOrder checks stock and buyer funds, then in one transaction:
// decrements stock per item, debits the buyer by the order total, credits
// each seller's pending balance with that seller's aggregated share, creates
// the order as pending and clears the cart.
func (e *Engine) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Order, error) {
	switch req.PaymentMethod {
	case PayWithBalance:
	case PayWithCard:
		return nil, e.fail(newError(KindUnsupported, "card payments are not supported yet"))
	default:
		return nil, e.fail(newError(KindValidation, "invalid payment method %q", req.PaymentMethod))
	}
	if req.ShippingAddress == "" {
		return nil, e.fail(newError(KindValidation, "shipping address is required"))
	}

	var order *Order
	err := e.store.RunInTx(ctx, func(tx Tx) error {
		buyer, err := tx.Account(ctx, req.BuyerID)
		if err != nil {
			return err
		}

		items, err := tx.CartItems(ctx, buyer.ID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return newError(KindValidation, "cart is empty")
		}

		var (
			total        int64
			lines        = make([]LineItem, 0, len(items))
			sellerShares = map[string]int64{}
		)
		for _, item := range items {
			product, err := tx.Product(ctx, item.ProductID)
			if err != nil {
				return err
			}
			if item.Quantity <= 0 {
				return newError(KindValidation, "invalid quantity for %s", product.Name)
			}
			if item.Quantity > product.Stock {
				return newError(KindInsufficientStock, "not enough stock for %s", product.Name)
			}

			share := product.Price * int64(item.Quantity)
			total += share
			sellerShares[product.SellerID] += share
			lines = append(lines, LineItem{
				ProductID: product.ID,
				SellerID:  product.SellerID,
				Name:      product.Name,
				Price:     product.Price,
				Quantity:  item.Quantity,
			})
		}

		if buyer.Balance < total {
			return newError(KindInsufficientFunds, "insufficient balance")
		}

		for _, line := range lines {
			if err := tx.AdjustStock(ctx, line.ProductID, -line.Quantity); err != nil {
				return err
			}
		}
		if err := tx.AdjustBalance(ctx, buyer.ID, -total, 0); err != nil {
			return err
		}
		for sellerID, amount := range sellerShares {
			if err := tx.AdjustBalance(ctx, sellerID, 0, amount); err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		order = &Order{
			ID:              uuid.New().String(),
			BuyerID:         buyer.ID,
			Items:           lines,
			TotalAmount:     total,
			PaymentMethod:   req.PaymentMethod,
			Status:          StatusPending,
			ShippingAddress: req.ShippingAddress,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}
		return tx.ClearCart(ctx, buyer.ID)
	})
	if err != nil {
		return nil, e.fail(err)
	}

	metrics.OrdersPlaced.Inc()
	metrics.OrderAmount.Observe(float64(order.TotalAmount))
	e.log.Info("order placed",
		zap.String("order_id", order.ID),
		zap.String("buyer_id", order.BuyerID),
		zap.Int64("total", order.TotalAmount))
	return order, nil
}

// SetPayoutStatus finalizes an order. Admin only; target must be released or
// refunded; an already settled order is rejected with Conflict inside the
// transaction, so double release/refund cannot slip through a racing read.
//
// Seller shares are recomputed from the current product price at call time,
// while a refund returns the snapshot TotalAmount to the buyer. If prices
// changed since placement the two sides disagree; that asymmetry is inherited
// behavior and callers relying on exact conservation should keep prices
// stable until settlement.
func (e *Engine) SetPayoutStatus(ctx context.Context, orderID string, target Status, actor Actor) (*Order, error) {
	if actor.Role != RoleAdmin {
		return nil, e.fail(newError(KindUnauthorized, "only admin can release or refund orders"))
	}
	if target != StatusReleased && target != StatusRefunded {
		return nil, e.fail(newError(KindValidation, "invalid payout status %q", target))
	}

	var order *Order
	err := e.store.RunInTx(ctx, func(tx Tx) error {
		var err error
		order, err = tx.Order(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status.Settled() {
			return newError(KindConflict, "order already %s", order.Status)
		}
		if err := canTransition(order.Status, target, actor.Role, false); err != nil {
			return err
		}

		shares, err := e.sellerShares(ctx, tx, order)
		if err != nil {
			return err
		}

		switch target {
		case StatusReleased:
			for sellerID, amount := range shares {
				if err := tx.AdjustBalance(ctx, sellerID, amount, -amount); err != nil {
					return err
				}
			}
		case StatusRefunded:
			if err := tx.AdjustBalance(ctx, order.BuyerID, order.TotalAmount, 0); err != nil {
				return err
			}
			for sellerID, amount := range shares {
				if err := tx.AdjustBalance(ctx, sellerID, 0, -amount); err != nil {
					return err
				}
			}
		}

		return tx.SetOrderStatus(ctx, order.ID, target)
	})
	if err != nil {
		return nil, e.fail(err)
	}

	order.Status = target
	if target == StatusReleased {
		metrics.OrdersReleased.Inc()
	} else {
		metrics.OrdersRefunded.Inc()
	}
	e.log.Info("order settled",
		zap.String("order_id", order.ID),
		zap.String("status", string(target)),
		zap.String("admin_id", actor.ID))
	return order, nil
}

// UpdateStatus performs a shipping-lifecycle transition (paid, shipped,
// delivered, cancelled). Release and refund must go through SetPayoutStatus.
// Cancellation reverses the placement: the buyer gets TotalAmount back, each
// seller's pending balance drops by the snapshot share and stock is restored.
func (e *Engine) UpdateStatus(ctx context.Context, orderID string, target Status, actor Actor) (*Order, error) {
	if target == StatusReleased || target == StatusRefunded {
		return nil, e.fail(newError(KindValidation, "status %s requires the payout operation", target))
	}

	var order *Order
	err := e.store.RunInTx(ctx, func(tx Tx) error {
		var err error
		order, err = tx.Order(ctx, orderID)
		if err != nil {
			return err
		}
		if err := canTransition(order.Status, target, actor.Role, actor.ID == order.BuyerID); err != nil {
			return err
		}

		if target == StatusCancelled {
			if err := e.reversePlacement(ctx, tx, order); err != nil {
				return err
			}
		}
		return tx.SetOrderStatus(ctx, order.ID, target)
	})
	if err != nil {
		return nil, e.fail(err)
	}

	order.Status = target
	if target == StatusCancelled {
		metrics.OrdersCancelled.Inc()
	}
	e.log.Info("order status updated",
		zap.String("order_id", order.ID),
		zap.String("status", string(target)),
		zap.String("actor_id", actor.ID))
	return order, nil
}

// GetOrder loads one order.
func (e *Engine) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	var order *Order
	err := e.store.RunInTx(ctx, func(tx Tx) error {
		var err error
		order, err = tx.Order(ctx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// reversePlacement undoes what PlaceOrder did, from the order snapshot:
// refund the buyer, pull each seller's share back out of pending and restock
// every line item still in the catalog.
func (e *Engine) reversePlacement(ctx context.Context, tx Tx, order *Order) error {
	if err := tx.AdjustBalance(ctx, order.BuyerID, order.TotalAmount, 0); err != nil {
		return err
	}
	shares := map[string]int64{}
	for _, line := range order.Items {
		shares[line.SellerID] += line.Price * int64(line.Quantity)
		if err := tx.AdjustStock(ctx, line.ProductID, line.Quantity); err != nil {
			if KindOf(err) == KindNotFound {
				// Product deleted since placement; nothing to restock.
				continue
			}
			return err
		}
	}
	for sellerID, amount := range shares {
		if err := tx.AdjustBalance(ctx, sellerID, 0, -amount); err != nil {
			return err
		}
	}
	return nil
}

// sellerShares aggregates price*quantity per distinct seller across the
// order's line items, reading the current product price at call time. If the
// product price changed since placement the sum across sellers no longer
// matches TotalAmount; see SetPayoutStatus. A line whose product was deleted
// falls back to its placement snapshot.
func (e *Engine) sellerShares(ctx context.Context, tx Tx, order *Order) (map[string]int64, error) {
	shares := map[string]int64{}
	for _, line := range order.Items {
		product, err := tx.Product(ctx, line.ProductID)
		if err != nil {
			if KindOf(err) == KindNotFound {
				shares[line.SellerID] += line.Price * int64(line.Quantity)
				continue
			}
			return nil, err
		}
		shares[product.SellerID] += product.Price * int64(line.Quantity)
	}
	return shares, nil
}

func (e *Engine) fail(err error) error {
	metrics.SettlementErrors.WithLabelValues(KindOf(err).String()).Inc()
	return err
}
