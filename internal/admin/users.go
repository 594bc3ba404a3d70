package admin

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Jaybeey1507/cartify-group3/internal/db"
	"github.com/Jaybeey1507/cartify-group3/internal/user"
)

type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Role     *string `json:"role"`
	Phone    *string `json:"phone"`
	Country  *string `json:"country"`
	State    *string `json:"state"`
	City     *string `json:"city"`
	Address1 *string `json:"address1"`
	Address2 *string `json:"address2"`
}

// UpdateUser lets an admin change a user's profile fields and role.
// Balances go through UpdateBalance, passwords are never editable here.
func UpdateUser(c echo.Context) error {
	req := new(UpdateUserRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Role != nil && *req.Role != "admin" && *req.Role != "seller" && *req.Role != "buyer" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role"})
	}

	var u user.User
	err := db.Conn.QueryRow(context.Background(), `
        UPDATE users SET
            name = COALESCE($1, name),
            email = COALESCE($2, email),
            role = COALESCE($3, role),
            phone = COALESCE($4, phone),
            country = COALESCE($5, country),
            state = COALESCE($6, state),
            city = COALESCE($7, city),
            address1 = COALESCE($8, address1),
            address2 = COALESCE($9, address2)
        WHERE id = $10
        RETURNING id, name, email, role, phone, country, state, city, address1, address2, company_name,
                  balance, pending_balance, created_at
    `, req.Name, req.Email, req.Role, req.Phone, req.Country, req.State, req.City,
		req.Address1, req.Address2, c.Param("id"),
	).Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Phone, &u.Country, &u.State, &u.City,
		&u.Address1, &u.Address2, &u.CompanyName, &u.Balance, &u.PendingBalance, &u.CreatedAt)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	return c.JSON(http.StatusOK, u)
}

type UpdateBalanceRequest struct {
	Balance        *int64 `json:"balance"`
	PendingBalance *int64 `json:"pending_balance"`
}

// UpdateBalance sets a user's balances directly. This bypasses the
// settlement ledger and exists for support corrections only.
func UpdateBalance(c echo.Context) error {
	req := new(UpdateBalanceRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Balance == nil && req.PendingBalance == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "balance or pending_balance is required"})
	}
	if (req.Balance != nil && *req.Balance < 0) || (req.PendingBalance != nil && *req.PendingBalance < 0) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "balances cannot be negative"})
	}

	res, err := db.Conn.Exec(context.Background(), `
        UPDATE users SET
            balance = COALESCE($1, balance),
            pending_balance = COALESCE($2, pending_balance)
        WHERE id = $3
    `, req.Balance, req.PendingBalance, c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update balance"})
	}
	if res.RowsAffected() == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "balance updated"})
}

// DeleteUser removes a user account
func DeleteUser(c echo.Context) error {
	res, err := db.Conn.Exec(context.Background(), `DELETE FROM users WHERE id = $1`, c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete user"})
	}
	if res.RowsAffected() == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "user deleted successfully"})
}
