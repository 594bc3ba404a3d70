// Package order exposes the settlement engine over HTTP and the read-side
// order queries (buyer history, admin listing, seller reports).
package order

import (
	"context"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/Jaybeey1507/cartify-group3/internal/alerts"
	"github.com/Jaybeey1507/cartify-group3/internal/db"
	"github.com/Jaybeey1507/cartify-group3/internal/settlement"
)

var engine *settlement.Engine

// Init wires the handlers to a settlement engine. Must be called before the
// routes are mounted.
func Init(e *settlement.Engine) {
	engine = e
}

// httpStatus maps settlement error kinds onto HTTP status codes.
func httpStatus(err error) int {
	switch settlement.KindOf(err) {
	case settlement.KindNotFound:
		return http.StatusNotFound
	case settlement.KindValidation, settlement.KindInsufficientFunds, settlement.KindInsufficientStock:
		return http.StatusBadRequest
	case settlement.KindUnauthorized:
		return http.StatusForbidden
	case settlement.KindConflict:
		return http.StatusConflict
	case settlement.KindUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func fail(c echo.Context, err error) error {
	status := httpStatus(err)
	if status == http.StatusInternalServerError {
		return c.JSON(status, echo.Map{"error": "internal error"})
	}
	return c.JSON(status, echo.Map{"error": err.Error()})
}

func actorFromContext(c echo.Context) settlement.Actor {
	id, _ := c.Get("user_id").(string)
	role, _ := c.Get("role").(string)
	return settlement.Actor{ID: id, Role: settlement.Role(role)}
}

type PlaceRequest struct {
	ShippingAddress string `json:"shipping_address"`
	PaymentMethod   string `json:"payment_method"`
}

// Place creates an order from the caller's cart
func Place(c echo.Context) error {
	buyerID, ok := c.Get("user_id").(string)
	if !ok || buyerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	req := new(PlaceRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	order, err := engine.PlaceOrder(c.Request().Context(), settlement.PlaceOrderRequest{
		BuyerID:         buyerID,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   settlement.PaymentMethod(req.PaymentMethod),
	})
	if err != nil {
		return fail(c, err)
	}

	notifyBuyer(alerts.TaskOrderPlaced, order)
	return c.JSON(http.StatusCreated, order)
}

type StatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus drives the shipping lifecycle and buyer cancellation.
// Release and refund go through PayoutStatus instead.
func UpdateStatus(c echo.Context) error {
	actor := actorFromContext(c)
	if actor.ID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	req := new(StatusRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	order, err := engine.UpdateStatus(c.Request().Context(), c.Param("orderId"), settlement.Status(req.Status), actor)
	if err != nil {
		return fail(c, err)
	}

	if order.Status == settlement.StatusCancelled {
		notifyBuyer(alerts.TaskOrderCancelled, order)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": string(order.Status)})
}

// PayoutStatus releases funds to sellers or refunds the buyer. Admin only,
// guarded at the route level.
func PayoutStatus(c echo.Context) error {
	actor := actorFromContext(c)

	req := new(StatusRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	order, err := engine.SetPayoutStatus(c.Request().Context(), c.Param("orderId"), settlement.Status(req.Status), actor)
	if err != nil {
		return fail(c, err)
	}

	if order.Status == settlement.StatusRefunded {
		notifyBuyer(alerts.TaskOrderRefunded, order)
	} else {
		notifySellers(alerts.TaskOrderReleased, order)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "order marked as " + string(order.Status)})
}

type EditShippingRequest struct {
	ShippingAddress string `json:"shipping_address"`
}

// EditShipping changes the shipping address of the caller's own order while
// it is still pending.
func EditShipping(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	req := new(EditShippingRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.ShippingAddress == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "shipping address is required"})
	}

	orderID := c.Param("orderId")
	var buyerID, status string
	err := db.Conn.QueryRow(context.Background(),
		`SELECT buyer_id, status FROM orders WHERE id = $1`, orderID).Scan(&buyerID, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch order"})
	}
	if buyerID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you can only edit your own order"})
	}
	if status != string(settlement.StatusPending) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only pending orders can be edited"})
	}

	_, err = db.Conn.Exec(context.Background(),
		`UPDATE orders SET shipping_address = $1, updated_at = NOW() WHERE id = $2`,
		req.ShippingAddress, orderID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update order"})
	}

	order, err := engine.GetOrder(c.Request().Context(), orderID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// GetOrder returns one order. Buyer of the order or admin only.
func GetOrder(c echo.Context) error {
	actor := actorFromContext(c)

	order, err := engine.GetOrder(c.Request().Context(), c.Param("orderId"))
	if err != nil {
		return fail(c, err)
	}
	if order.BuyerID != actor.ID && actor.Role != settlement.RoleAdmin {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "unauthorized access to order"})
	}
	return c.JSON(http.StatusOK, order)
}

// notifyBuyer enqueues an order event for the order's buyer. Enqueue failures
// are swallowed; notifications are best effort.
func notifyBuyer(task string, order *settlement.Order) {
	var email string
	if err := db.Conn.QueryRow(context.Background(),
		`SELECT email FROM users WHERE id = $1`, order.BuyerID).Scan(&email); err != nil {
		return
	}
	_ = alerts.EnqueueOrderEvent(task, order.ID, order.BuyerID, email, string(order.Status), order.TotalAmount)
}

// notifySellers enqueues an order event for every seller with a line in the
// order, with that seller's share as the amount.
func notifySellers(task string, order *settlement.Order) {
	shares := map[string]int64{}
	for _, it := range order.Items {
		shares[it.SellerID] += it.Price * int64(it.Quantity)
	}
	for sellerID, amount := range shares {
		var email string
		if err := db.Conn.QueryRow(context.Background(),
			`SELECT email FROM users WHERE id = $1`, sellerID).Scan(&email); err != nil {
			continue
		}
		_ = alerts.EnqueueOrderEvent(task, order.ID, sellerID, email, string(order.Status), amount)
	}
}
