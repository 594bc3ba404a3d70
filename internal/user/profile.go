package user

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Jaybeey1507/cartify-group3/internal/db"
)

// GetPublicProfile returns the public part of a user's profile
func GetPublicProfile(c echo.Context) error {
	userID := c.Param("id")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing user id"})
	}

	var name, role, companyName, country string
	err := db.Conn.QueryRow(context.Background(),
		`SELECT name, role, company_name, country FROM users WHERE id = $1`, userID).
		Scan(&name, &role, &companyName, &country)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"id":           userID,
		"name":         name,
		"role":         role,
		"company_name": companyName,
		"country":      country,
	})
}

type UpdateProfileRequest struct {
	Name        *string `json:"name"`
	Phone       *string `json:"phone"`
	Country     *string `json:"country"`
	State       *string `json:"state"`
	City        *string `json:"city"`
	Address1    *string `json:"address1"`
	Address2    *string `json:"address2"`
	CompanyName *string `json:"companyName"`
}

// UpdateProfile lets the authenticated user change their own profile fields.
// Role, password and balances are not editable through this path.
func UpdateProfile(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	req := new(UpdateProfileRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	res, err := db.Conn.Exec(context.Background(), `
        UPDATE users SET
            name = COALESCE($1, name),
            phone = COALESCE($2, phone),
            country = COALESCE($3, country),
            state = COALESCE($4, state),
            city = COALESCE($5, city),
            address1 = COALESCE($6, address1),
            address2 = COALESCE($7, address2),
            company_name = COALESCE($8, company_name)
        WHERE id = $9
    `, req.Name, req.Phone, req.Country, req.State, req.City, req.Address1, req.Address2, req.CompanyName, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update profile"})
	}
	if res.RowsAffected() == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "profile updated"})
}

// ListUsers returns all users without passwords. Admin only (guarded at the
// route level).
func ListUsers(c echo.Context) error {
	return listUsers(c, `
        SELECT id, name, email, role, phone, country, state, city, address1, address2, company_name,
               balance, pending_balance, created_at
        FROM users ORDER BY created_at DESC`)
}

// ListUsersByRole returns users with the given role. Admin only.
func ListUsersByRole(c echo.Context) error {
	role := c.Param("role")
	if role != "admin" && role != "seller" && role != "buyer" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role"})
	}
	return listUsers(c, `
        SELECT id, name, email, role, phone, country, state, city, address1, address2, company_name,
               balance, pending_balance, created_at
        FROM users WHERE role = $1 ORDER BY created_at DESC`, role)
}

func listUsers(c echo.Context, query string, args ...any) error {
	rows, err := db.Conn.Query(context.Background(), query, args...)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch users"})
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Phone, &u.Country, &u.State, &u.City,
			&u.Address1, &u.Address2, &u.CompanyName, &u.Balance, &u.PendingBalance, &u.CreatedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to parse record"})
		}
		users = append(users, u)
	}

	return c.JSON(http.StatusOK, users)
}
