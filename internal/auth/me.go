package auth

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Jaybeey1507/cartify-group3/internal/db"
	"github.com/Jaybeey1507/cartify-group3/internal/user"
)

// Me returns the currently authenticated user's profile, including the
// balances the settlement engine maintains.
func Me(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var u user.User
	err := db.Conn.QueryRow(context.Background(), `
        SELECT id, name, email, role, phone, country, state, city, address1, address2, company_name,
               balance, pending_balance, created_at
        FROM users WHERE id = $1
    `, userID).Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Phone, &u.Country, &u.State, &u.City,
		&u.Address1, &u.Address2, &u.CompanyName, &u.Balance, &u.PendingBalance, &u.CreatedAt)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	return c.JSON(http.StatusOK, u)
}
