package settlement

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Shared fixture: a buyer with balance 100 ordering 2 units of a 30-priced
// product from seller S and 1 unit of a 10-priced product from seller T.
const (
	buyerID  = "buyer-1"
	sellerS  = "seller-s"
	sellerT  = "seller-t"
	productA = "product-a"
	productB = "product-b"
)

func newTestStore() *memStore {
	s := newMemStore()
	s.accounts[buyerID] = &Account{ID: buyerID, Role: RoleBuyer, Balance: 100}
	s.accounts[sellerS] = &Account{ID: sellerS, Role: RoleSeller}
	s.accounts[sellerT] = &Account{ID: sellerT, Role: RoleSeller}
	s.products[productA] = &Product{ID: productA, SellerID: sellerS, Name: "Walnut Bowl", Price: 30, Stock: 10}
	s.products[productB] = &Product{ID: productB, SellerID: sellerT, Name: "Linen Tote", Price: 10, Stock: 5}
	s.carts[buyerID] = []CartItem{
		{ProductID: productA, Quantity: 2},
		{ProductID: productB, Quantity: 1},
	}
	return s
}

func placeRequest() PlaceOrderRequest {
	return PlaceOrderRequest{
		BuyerID:         buyerID,
		ShippingAddress: "1 Commerce St",
		PaymentMethod:   PayWithBalance,
	}
}

var (
	admin = Actor{ID: "admin-1", Role: RoleAdmin}
	buyer = Actor{ID: buyerID, Role: RoleBuyer}
)

func TestPlaceOrder(t *testing.T) {
	store := newTestStore()
	eng := NewEngine(store, zap.NewNop())

	order, err := eng.PlaceOrder(context.Background(), placeRequest())
	require.NoError(t, err)

	assert.Equal(t, int64(70), order.TotalAmount)
	assert.Equal(t, StatusPending, order.Status)
	require.Len(t, order.Items, 2)
	assert.Equal(t, int64(30), order.Items[0].Price)
	assert.Equal(t, sellerS, order.Items[0].SellerID)

	assert.Equal(t, int64(30), store.accounts[buyerID].Balance)
	assert.Equal(t, int64(60), store.accounts[sellerS].PendingBalance)
	assert.Equal(t, int64(10), store.accounts[sellerT].PendingBalance)
	assert.Equal(t, int64(0), store.accounts[sellerS].Balance)
	assert.Equal(t, 8, store.products[productA].Stock)
	assert.Equal(t, 4, store.products[productB].Stock)
	assert.Empty(t, store.carts[buyerID], "cart must be cleared after placement")
}

func TestPlaceOrderInsufficientFunds(t *testing.T) {
	store := newTestStore()
	store.accounts[buyerID].Balance = 50
	eng := NewEngine(store, zap.NewNop())

	_, err := eng.PlaceOrder(context.Background(), placeRequest())
	require.Error(t, err)
	assert.Equal(t, KindInsufficientFunds, KindOf(err))

	assert.Equal(t, int64(50), store.accounts[buyerID].Balance)
	assert.Equal(t, int64(0), store.accounts[sellerS].PendingBalance)
	assert.Equal(t, 10, store.products[productA].Stock)
	assert.Equal(t, 5, store.products[productB].Stock)
	assert.Len(t, store.carts[buyerID], 2)
	assert.Empty(t, store.orders)
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	store := newTestStore()
	store.carts[buyerID] = []CartItem{{ProductID: productB, Quantity: 6}}
	eng := NewEngine(store, zap.NewNop())

	_, err := eng.PlaceOrder(context.Background(), placeRequest())
	require.Error(t, err)
	assert.Equal(t, KindInsufficientStock, KindOf(err))
	assert.Equal(t, int64(100), store.accounts[buyerID].Balance)
	assert.Equal(t, 5, store.products[productB].Stock)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	store := newTestStore()
	store.carts[buyerID] = nil
	eng := NewEngine(store, zap.NewNop())

	_, err := eng.PlaceOrder(context.Background(), placeRequest())
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestPlaceOrderCardNotImplemented(t *testing.T) {
	store := newTestStore()
	eng := NewEngine(store, zap.NewNop())

	req := placeRequest()
	req.PaymentMethod = PayWithCard
	_, err := eng.PlaceOrder(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, KindUnsupported, KindOf(err))
}

func TestPlaceOrderValidation(t *testing.T) {
	store := newTestStore()
	eng := NewEngine(store, zap.NewNop())

	req := placeRequest()
	req.PaymentMethod = "cheque"
	_, err := eng.PlaceOrder(context.Background(), req)
	assert.Equal(t, KindValidation, KindOf(err))

	req = placeRequest()
	req.ShippingAddress = ""
	_, err = eng.PlaceOrder(context.Background(), req)
	assert.Equal(t, KindValidation, KindOf(err))

	req = placeRequest()
	req.BuyerID = "nobody"
	_, err = eng.PlaceOrder(context.Background(), req)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestRelease(t *testing.T) {
	store := newTestStore()
	eng := NewEngine(store, zap.NewNop())

	order, err := eng.PlaceOrder(context.Background(), placeRequest())
	require.NoError(t, err)

	released, err := eng.SetPayoutStatus(context.Background(), order.ID, StatusReleased, admin)
	require.NoError(t, err)
	assert.Equal(t, StatusReleased, released.Status)
	assert.Equal(t, StatusReleased, store.orders[order.ID].Status)

	assert.Equal(t, int64(60), store.accounts[sellerS].Balance)
	assert.Equal(t, int64(0), store.accounts[sellerS].PendingBalance)
	assert.Equal(t, int64(10), store.accounts[sellerT].Balance)
	assert.Equal(t, int64(0), store.accounts[sellerT].PendingBalance)
	// Buyer untouched by release.
	assert.Equal(t, int64(30), store.accounts[buyerID].Balance)
}

func TestReleaseUsesCurrentPrice(t *testing.T) {
	store := newTestStore()
	eng := NewEngine(store, zap.NewNop())

	order, err := eng.PlaceOrder(context.Background(), placeRequest())
	require.NoError(t, err)

	// Seller raises the price between placement and release: the payout is
	// recomputed from the current price, not the snapshot.
	store.products[productA].Price = 40

	_, err = eng.SetPayoutStatus(context.Background(), order.ID, StatusReleased, admin)
	require.NoError(t, err)

	assert.Equal(t, int64(80), store.accounts[sellerS].Balance)
	assert.Equal(t, int64(60-80), store.accounts[sellerS].PendingBalance)
	assert.Equal(t, int64(10), store.accounts[sellerT].Balance)
}

func TestReleaseTwiceConflicts(t *testing.T) {
	store := newTestStore()
	eng := NewEngine(store, zap.NewNop())

	order, err := eng.PlaceOrder(context.Background(), placeRequest())
	require.NoError(t, err)
	_, err = eng.SetPayoutStatus(context.Background(), order.ID, StatusReleased, admin)
	require.NoError(t, err)

	_, err = eng.SetPayoutStatus(context.Background(), order.ID, StatusReleased, admin)
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
	// No balance movement on the rejected attempt.
	assert.Equal(t, int64(60), store.accounts[sellerS].Balance)
	assert.Equal(t, int64(0), store.accounts[sellerS].PendingBalance)

	_, err = eng.SetPayoutStatus(context.Background(), order.ID, StatusRefunded, admin)
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestRefund(t *testing.T) {
	store := newTestStore()
	eng := NewEngine(store, zap.NewNop())

	order, err := eng.PlaceOrder(context.Background(), placeRequest())
	require.NoError(t, err)

	refunded, err := eng.SetPayoutStatus(context.Background(), order.ID, StatusRefunded, admin)
	require.NoError(t, err)
	assert.Equal(t, StatusRefunded, refunded.Status)

	assert.Equal(t, int64(100), store.accounts[buyerID].Balance)
	assert.Equal(t, int64(0), store.accounts[sellerS].PendingBalance)
	assert.Equal(t, int64(0), store.accounts[sellerT].PendingBalance)
	assert.Equal(t, int64(0), store.accounts[sellerS].Balance)
}

func TestPayoutRequiresAdmin(t *testing.T) {
	store := newTestStore()
	eng := NewEngine(store, zap.NewNop())

	order, err := eng.PlaceOrder(context.Background(), placeRequest())
	require.NoError(t, err)

	for _, actor := range []Actor{buyer, {ID: sellerS, Role: RoleSeller}} {
		_, err := eng.SetPayoutStatus(context.Background(), order.ID, StatusReleased, actor)
		require.Error(t, err)
		assert.Equal(t, KindUnauthorized, KindOf(err))
	}
	assert.Equal(t, int64(0), store.accounts[sellerS].Balance)
}

func TestPayoutValidation(t *testing.T) {
	store := newTestStore()
	eng := NewEngine(store, zap.NewNop())

	_, err := eng.SetPayoutStatus(context.Background(), "missing", StatusReleased, admin)
	assert.Equal(t, KindNotFound, KindOf(err))

	order, err := eng.PlaceOrder(context.Background(), placeRequest())
	require.NoError(t, err)

	_, err = eng.SetPayoutStatus(context.Background(), order.ID, StatusShipped, admin)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestReleaseRollsBackOnFailure(t *testing.T) {
	store := newTestStore()
	eng := NewEngine(store, zap.NewNop())

	order, err := eng.PlaceOrder(context.Background(), placeRequest())
	require.NoError(t, err)

	// One of the two sellers disappears: the whole release must abort with no
	// partial payout to the surviving seller.
	delete(store.accounts, sellerT)

	_, err = eng.SetPayoutStatus(context.Background(), order.ID, StatusReleased, admin)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, int64(0), store.accounts[sellerS].Balance)
	assert.Equal(t, int64(60), store.accounts[sellerS].PendingBalance)
	assert.Equal(t, StatusPending, store.orders[order.ID].Status)
}

// Cancelling a pending order returns the buyer's money, backs the shares out
// of the sellers' pending balances and restores stock. The legacy behavior
// kept the buyer's funds; that is treated as a bug, not a feature.
func TestCancelPendingRefundsBuyer(t *testing.T) {
	store := newTestStore()
	eng := NewEngine(store, zap.NewNop())

	order, err := eng.PlaceOrder(context.Background(), placeRequest())
	require.NoError(t, err)

	cancelled, err := eng.UpdateStatus(context.Background(), order.ID, StatusCancelled, buyer)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)

	assert.Equal(t, int64(100), store.accounts[buyerID].Balance)
	assert.Equal(t, int64(0), store.accounts[sellerS].PendingBalance)
	assert.Equal(t, int64(0), store.accounts[sellerT].PendingBalance)
	assert.Equal(t, 10, store.products[productA].Stock)
	assert.Equal(t, 5, store.products[productB].Stock)

	// A cancelled order is settled: no late release or refund.
	_, err = eng.SetPayoutStatus(context.Background(), order.ID, StatusReleased, admin)
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestBuyerCanOnlyCancelOwnPendingOrder(t *testing.T) {
	store := newTestStore()
	store.accounts["buyer-2"] = &Account{ID: "buyer-2", Role: RoleBuyer, Balance: 10}
	eng := NewEngine(store, zap.NewNop())

	order, err := eng.PlaceOrder(context.Background(), placeRequest())
	require.NoError(t, err)

	_, err = eng.UpdateStatus(context.Background(), order.ID, StatusCancelled, Actor{ID: "buyer-2", Role: RoleBuyer})
	assert.Equal(t, KindUnauthorized, KindOf(err))

	_, err = eng.UpdateStatus(context.Background(), order.ID, StatusShipped, buyer)
	assert.Equal(t, KindUnauthorized, KindOf(err))

	// Once shipped, the buyer can no longer cancel.
	_, err = eng.UpdateStatus(context.Background(), order.ID, StatusShipped, admin)
	require.NoError(t, err)
	_, err = eng.UpdateStatus(context.Background(), order.ID, StatusCancelled, buyer)
	assert.Equal(t, KindUnauthorized, KindOf(err))
}

func TestShippingLifecycleHasNoBalanceEffect(t *testing.T) {
	store := newTestStore()
	eng := NewEngine(store, zap.NewNop())

	order, err := eng.PlaceOrder(context.Background(), placeRequest())
	require.NoError(t, err)

	seller := Actor{ID: sellerS, Role: RoleSeller}
	for _, status := range []Status{StatusPaid, StatusShipped, StatusDelivered} {
		_, err := eng.UpdateStatus(context.Background(), order.ID, status, seller)
		require.NoError(t, err)
	}

	assert.Equal(t, int64(30), store.accounts[buyerID].Balance)
	assert.Equal(t, int64(60), store.accounts[sellerS].PendingBalance)
	assert.Equal(t, StatusDelivered, store.orders[order.ID].Status)
}

func TestUpdateStatusRejectsPayoutTargets(t *testing.T) {
	store := newTestStore()
	eng := NewEngine(store, zap.NewNop())

	order, err := eng.PlaceOrder(context.Background(), placeRequest())
	require.NoError(t, err)

	for _, status := range []Status{StatusReleased, StatusRefunded} {
		_, err := eng.UpdateStatus(context.Background(), order.ID, status, admin)
		require.Error(t, err)
		assert.Equal(t, KindValidation, KindOf(err))
	}
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	eng := NewEngine(newTestStore(), zap.NewNop())
	_, err := eng.UpdateStatus(context.Background(), "missing", StatusShipped, admin)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestMultipleItemsSameSellerAggregate(t *testing.T) {
	store := newTestStore()
	store.products["product-c"] = &Product{ID: "product-c", SellerID: sellerS, Name: "Oak Tray", Price: 5, Stock: 3}
	store.carts[buyerID] = append(store.carts[buyerID], CartItem{ProductID: "product-c", Quantity: 2})
	eng := NewEngine(store, zap.NewNop())

	order, err := eng.PlaceOrder(context.Background(), placeRequest())
	require.NoError(t, err)

	assert.Equal(t, int64(80), order.TotalAmount)
	// 2x30 + 2x5 booked against seller S as one aggregated share.
	assert.Equal(t, int64(70), store.accounts[sellerS].PendingBalance)
	assert.Equal(t, int64(10), store.accounts[sellerT].PendingBalance)
}
