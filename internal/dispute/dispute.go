// Package dispute lets order participants raise disputes and admins resolve
// them. A resolution of release or refund settles the order through the
// settlement engine; "none" closes the dispute with no money movement.
package dispute

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/Jaybeey1507/cartify-group3/internal/db"
	"github.com/Jaybeey1507/cartify-group3/internal/settlement"
)

var engine *settlement.Engine

// Init wires the resolve handler to a settlement engine
func Init(e *settlement.Engine) {
	engine = e
}

type Dispute struct {
	ID         string     `json:"id"`
	OrderID    string     `json:"order_id"`
	BuyerID    string     `json:"buyer_id"`
	SellerID   string     `json:"seller_id"`
	Reason     string     `json:"reason"`
	Status     string     `json:"status"`
	Resolution *string    `json:"resolution,omitempty"`
	ResolvedBy *string    `json:"resolved_by,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

const disputeColumns = `id, order_id, buyer_id, seller_id, reason, status, resolution, resolved_by, created_at, resolved_at`

type OpenRequest struct {
	OrderID string `json:"order_id"`
	Reason  string `json:"reason"`
}

// Open raises a dispute on an order. Only the buyer of the order or a seller
// with a line in it may open one, and an order carries at most one open
// dispute.
func Open(c echo.Context) error {
	userID, _ := c.Get("user_id").(string)
	if userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	req := new(OpenRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.OrderID == "" || req.Reason == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "order_id and reason are required"})
	}

	var buyerID string
	err := db.Conn.QueryRow(context.Background(),
		`SELECT buyer_id FROM orders WHERE id = $1`, req.OrderID).Scan(&buyerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch order"})
	}

	// The dispute is recorded against the first seller in the order, the
	// same way the legacy system attributed multi-seller orders.
	var sellerID string
	err = db.Conn.QueryRow(context.Background(),
		`SELECT seller_id FROM order_items WHERE order_id = $1 LIMIT 1`, req.OrderID).Scan(&sellerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not determine seller"})
	}

	isParticipant := userID == buyerID
	if !isParticipant {
		err = db.Conn.QueryRow(context.Background(),
			`SELECT EXISTS (SELECT 1 FROM order_items WHERE order_id = $1 AND seller_id = $2)`,
			req.OrderID, userID).Scan(&isParticipant)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check order"})
		}
	}
	if !isParticipant {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only order participants can open a dispute"})
	}

	var hasOpen bool
	err = db.Conn.QueryRow(context.Background(),
		`SELECT EXISTS (SELECT 1 FROM disputes WHERE order_id = $1 AND status = 'open')`,
		req.OrderID).Scan(&hasOpen)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check disputes"})
	}
	if hasOpen {
		return c.JSON(http.StatusConflict, echo.Map{"error": "order already has an open dispute"})
	}

	d := Dispute{
		ID:        uuid.New().String(),
		OrderID:   req.OrderID,
		BuyerID:   buyerID,
		SellerID:  sellerID,
		Reason:    req.Reason,
		Status:    "open",
		CreatedAt: time.Now(),
	}
	_, err = db.Conn.Exec(context.Background(), `
        INSERT INTO disputes (id, order_id, buyer_id, seller_id, reason, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `, d.ID, d.OrderID, d.BuyerID, d.SellerID, d.Reason, d.Status, d.CreatedAt)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create dispute"})
	}

	return c.JSON(http.StatusCreated, d)
}

// ListMine returns disputes where the caller is buyer or seller
func ListMine(c echo.Context) error {
	userID, _ := c.Get("user_id").(string)
	if userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return listDisputes(c, `
        SELECT `+disputeColumns+` FROM disputes
        WHERE buyer_id = $1 OR seller_id = $1
        ORDER BY created_at DESC`, userID)
}

// ListAll returns every dispute. Admin only, guarded at the route level.
func ListAll(c echo.Context) error {
	return listDisputes(c, `SELECT `+disputeColumns+` FROM disputes ORDER BY created_at DESC`)
}

type ResolveRequest struct {
	Resolution string `json:"resolution"`
}

// Resolve closes a dispute. Resolutions release and refund settle the
// disputed order through the engine first; if settlement fails the dispute
// stays open.
func Resolve(c echo.Context) error {
	adminID, _ := c.Get("user_id").(string)
	role, _ := c.Get("role").(string)

	req := new(ResolveRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Resolution != "release" && req.Resolution != "refund" && req.Resolution != "none" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "resolution must be release, refund or none"})
	}

	disputeID := c.Param("id")
	var d Dispute
	err := db.Conn.QueryRow(context.Background(),
		`SELECT `+disputeColumns+` FROM disputes WHERE id = $1`, disputeID,
	).Scan(&d.ID, &d.OrderID, &d.BuyerID, &d.SellerID, &d.Reason, &d.Status,
		&d.Resolution, &d.ResolvedBy, &d.CreatedAt, &d.ResolvedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "dispute not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch dispute"})
	}
	if d.Status != "open" {
		return c.JSON(http.StatusConflict, echo.Map{"error": "dispute already resolved"})
	}

	if req.Resolution != "none" {
		target := settlement.StatusReleased
		if req.Resolution == "refund" {
			target = settlement.StatusRefunded
		}
		actor := settlement.Actor{ID: adminID, Role: settlement.Role(role)}
		if _, err := engine.SetPayoutStatus(c.Request().Context(), d.OrderID, target, actor); err != nil {
			return failSettlement(c, err)
		}
	}

	_, err = db.Conn.Exec(context.Background(), `
        UPDATE disputes SET status = 'resolved', resolution = $1, resolved_by = $2, resolved_at = NOW()
        WHERE id = $3
    `, req.Resolution, adminID, disputeID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update dispute"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "dispute resolved", "resolution": req.Resolution})
}

func failSettlement(c echo.Context, err error) error {
	switch settlement.KindOf(err) {
	case settlement.KindNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case settlement.KindConflict:
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case settlement.KindValidation, settlement.KindUnauthorized:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

func listDisputes(c echo.Context, query string, args ...any) error {
	rows, err := db.Conn.Query(context.Background(), query, args...)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch disputes"})
	}
	defer rows.Close()

	disputes := []Dispute{}
	for rows.Next() {
		var d Dispute
		if err := rows.Scan(&d.ID, &d.OrderID, &d.BuyerID, &d.SellerID, &d.Reason, &d.Status,
			&d.Resolution, &d.ResolvedBy, &d.CreatedAt, &d.ResolvedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to parse record"})
		}
		disputes = append(disputes, d)
	}
	return c.JSON(http.StatusOK, disputes)
}
