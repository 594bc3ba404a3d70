package order

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Jaybeey1507/cartify-group3/internal/db"
	"github.com/Jaybeey1507/cartify-group3/internal/settlement"
)

// ListUserOrders returns a buyer's order history, newest first. Owner or
// admin only.
func ListUserOrders(c echo.Context) error {
	actor := actorFromContext(c)
	targetID := c.Param("userId")
	if actor.ID != targetID && actor.Role != settlement.RoleAdmin {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "unauthorized access to orders"})
	}
	return listOrders(c, `
        SELECT id, buyer_id, total_amount, payment_method, status, shipping_address, created_at, updated_at
        FROM orders WHERE buyer_id = $1 ORDER BY created_at DESC`, targetID)
}

// ListAll returns every order. Admin or seller only (guarded at the route
// level).
func ListAll(c echo.Context) error {
	return listOrders(c, `
        SELECT id, buyer_id, total_amount, payment_method, status, shipping_address, created_at, updated_at
        FROM orders ORDER BY created_at DESC`)
}

// SellerOrders returns every order containing at least one of the caller's
// products.
func SellerOrders(c echo.Context) error {
	sellerID, ok := c.Get("user_id").(string)
	if !ok || sellerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return listOrders(c, `
        SELECT DISTINCT o.id, o.buyer_id, o.total_amount, o.payment_method, o.status, o.shipping_address,
               o.created_at, o.updated_at
        FROM orders o
        JOIN order_items oi ON oi.order_id = o.id
        WHERE oi.seller_id = $1
        ORDER BY o.created_at DESC`, sellerID)
}

type ProductSales struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	TotalSold int64  `json:"total_sold"`
}

// SalesByProduct returns the caller's products ranked by units sold
func SalesByProduct(c echo.Context) error {
	sellerID, ok := c.Get("user_id").(string)
	if !ok || sellerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	rows, err := db.Conn.Query(context.Background(), `
        SELECT product_id, MAX(name), SUM(quantity)
        FROM order_items
        WHERE seller_id = $1
        GROUP BY product_id
        ORDER BY SUM(quantity) DESC
    `, sellerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch sales"})
	}
	defer rows.Close()

	sales := []ProductSales{}
	for rows.Next() {
		var s ProductSales
		if err := rows.Scan(&s.ProductID, &s.Name, &s.TotalSold); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to parse record"})
		}
		sales = append(sales, s)
	}
	return c.JSON(http.StatusOK, sales)
}

// SellerSummary returns total units sold and revenue for the caller's
// products, valued at the snapshot line prices.
func SellerSummary(c echo.Context) error {
	sellerID, ok := c.Get("user_id").(string)
	if !ok || sellerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var totalSold, totalRevenue int64
	err := db.Conn.QueryRow(context.Background(), `
        SELECT COALESCE(SUM(quantity), 0), COALESCE(SUM(price * quantity), 0)
        FROM order_items WHERE seller_id = $1
    `, sellerID).Scan(&totalSold, &totalRevenue)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch summary"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"total_sold":    totalSold,
		"total_revenue": totalRevenue,
	})
}

func listOrders(c echo.Context, query string, args ...any) error {
	rows, err := db.Conn.Query(context.Background(), query, args...)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch orders"})
	}
	defer rows.Close()

	orders := []settlement.Order{}
	index := map[string]int{}
	ids := []string{}
	for rows.Next() {
		var o settlement.Order
		if err := rows.Scan(&o.ID, &o.BuyerID, &o.TotalAmount, &o.PaymentMethod, &o.Status,
			&o.ShippingAddress, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to parse record"})
		}
		index[o.ID] = len(orders)
		ids = append(ids, o.ID)
		orders = append(orders, o)
	}
	rows.Close()

	if len(ids) > 0 {
		itemRows, err := db.Conn.Query(context.Background(), `
            SELECT order_id, product_id, seller_id, name, price, quantity
            FROM order_items WHERE order_id = ANY($1::uuid[])
        `, ids)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch order items"})
		}
		defer itemRows.Close()

		for itemRows.Next() {
			var orderID string
			var it settlement.LineItem
			if err := itemRows.Scan(&orderID, &it.ProductID, &it.SellerID, &it.Name, &it.Price, &it.Quantity); err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to parse record"})
			}
			if i, ok := index[orderID]; ok {
				orders[i].Items = append(orders[i].Items, it)
			}
		}
	}

	return c.JSON(http.StatusOK, orders)
}
