package auth

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/Jaybeey1507/cartify-group3/internal/alerts"
	"github.com/Jaybeey1507/cartify-group3/internal/db"
)

type RegisterRequest struct {
	Name         string `json:"name" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=6"`
	Role         string `json:"role"`
	Phone        string `json:"phone"`
	Country      string `json:"country"`
	State        string `json:"state"`
	City         string `json:"city"`
	Address1     string `json:"address1"`
	Address2     string `json:"address2"`
	CompanyName  string `json:"companyName"`
	AdminPasskey string `json:"adminPasskey"`
}

type RegisterResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Register creates a user account. Registering an admin requires the
// ADMIN_PASSKEY; sellers and buyers must supply contact details.
func Register(c echo.Context) error {
	req := new(RegisterRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, email and password are required"})
	}

	role := req.Role
	if role == "" {
		role = "buyer"
	}
	switch role {
	case "admin":
		if req.AdminPasskey != os.Getenv("ADMIN_PASSKEY") {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid admin passkey"})
		}
	case "seller", "buyer":
		if req.Phone == "" || req.Country == "" || req.State == "" || req.City == "" || req.Address1 == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "phone, country, state, city and address1 are required"})
		}
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}

	ctx := context.Background()
	userID := uuid.New().String()
	_, err = db.Conn.Exec(ctx, `
        INSERT INTO users (id, name, email, password, role, phone, country, state, city, address1, address2, company_name, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
    `, userID, req.Name, req.Email, string(hashed), role,
		req.Phone, req.Country, req.State, req.City, req.Address1, req.Address2, req.CompanyName, time.Now())
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email already exists"})
	}

	_ = alerts.EnqueueWelcomeEmail(userID, req.Email, req.Name)

	return c.JSON(http.StatusCreated, RegisterResponse{ID: userID, Email: req.Email, Role: role})
}
