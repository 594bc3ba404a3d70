package admin

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Jaybeey1507/cartify-group3/internal/db"
)

type TopProduct struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Quantity int64  `json:"quantity"`
}

// Stats returns the admin dashboard summary: user counts, total revenue
// across all orders, and the five best selling products by quantity.
func Stats(c echo.Context) error {
	ctx := context.Background()

	var totalUsers, adminCount int
	var totalRevenue int64

	_ = db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role <> 'admin'`).Scan(&totalUsers)
	_ = db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role = 'admin'`).Scan(&adminCount)
	_ = db.Conn.QueryRow(ctx, `SELECT COALESCE(SUM(total_amount), 0) FROM orders`).Scan(&totalRevenue)

	rows, err := db.Conn.Query(ctx, `
        SELECT MAX(oi.name), COALESCE(MAX(p.category), 'Uncategorized'), SUM(oi.quantity)
        FROM order_items oi
        LEFT JOIN products p ON p.id = oi.product_id
        GROUP BY oi.product_id
        ORDER BY SUM(oi.quantity) DESC
        LIMIT 5
    `)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch stats"})
	}
	defer rows.Close()

	topProducts := []TopProduct{}
	for rows.Next() {
		var tp TopProduct
		if err := rows.Scan(&tp.Name, &tp.Category, &tp.Quantity); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to parse record"})
		}
		topProducts = append(topProducts, tp)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"total_users":   totalUsers,
		"admin_count":   adminCount,
		"total_revenue": totalRevenue,
		"top_products":  topProducts,
	})
}
