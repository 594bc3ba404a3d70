// Package review implements product reviews: buyers write one review per
// product, owners edit, owners or admins delete.
package review

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/Jaybeey1507/cartify-group3/internal/db"
)

type Review struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name,omitempty"`
	ProductID string    `json:"product_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateRequest struct {
	ProductID string `json:"product_id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

// Create posts a new review. Buyers only, one review per product.
func Create(c echo.Context) error {
	userID, _ := c.Get("user_id").(string)
	role, _ := c.Get("role").(string)
	if userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if role != "buyer" {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only buyers can write reviews"})
	}

	req := new(CreateRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.ProductID == "" || req.Rating < 1 || req.Rating > 5 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "product_id and a rating from 1 to 5 are required"})
	}

	var exists bool
	err := db.Conn.QueryRow(context.Background(),
		`SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, req.ProductID).Scan(&exists)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check product"})
	}
	if !exists {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	}

	err = db.Conn.QueryRow(context.Background(),
		`SELECT EXISTS (SELECT 1 FROM reviews WHERE user_id = $1 AND product_id = $2)`,
		userID, req.ProductID).Scan(&exists)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check existing review"})
	}
	if exists {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "you already reviewed this product"})
	}

	r := Review{
		ID:        uuid.New().String(),
		UserID:    userID,
		ProductID: req.ProductID,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: time.Now(),
	}
	_, err = db.Conn.Exec(context.Background(), `
        INSERT INTO reviews (id, user_id, product_id, rating, comment, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, r.ID, r.UserID, r.ProductID, r.Rating, r.Comment, r.CreatedAt)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create review"})
	}

	return c.JSON(http.StatusCreated, r)
}

type UpdateRequest struct {
	Rating  *int    `json:"rating"`
	Comment *string `json:"comment"`
}

// Update edits an existing review. Owner only.
func Update(c echo.Context) error {
	userID, _ := c.Get("user_id").(string)
	if userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	reviewID := c.Param("reviewId")

	req := new(UpdateRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rating must be from 1 to 5"})
	}

	var ownerID string
	err := db.Conn.QueryRow(context.Background(),
		`SELECT user_id FROM reviews WHERE id = $1`, reviewID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch review"})
	}
	if ownerID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you can only edit your own reviews"})
	}

	var updated Review
	err = db.Conn.QueryRow(context.Background(), `
        UPDATE reviews SET
            rating = COALESCE($1, rating),
            comment = COALESCE($2, comment)
        WHERE id = $3
        RETURNING id, user_id, product_id, rating, comment, created_at
    `, req.Rating, req.Comment, reviewID).Scan(
		&updated.ID, &updated.UserID, &updated.ProductID, &updated.Rating, &updated.Comment, &updated.CreatedAt)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update review"})
	}

	return c.JSON(http.StatusOK, updated)
}

// Delete removes a review. Owner or admin only.
func Delete(c echo.Context) error {
	userID, _ := c.Get("user_id").(string)
	role, _ := c.Get("role").(string)
	if userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	reviewID := c.Param("reviewId")

	var ownerID string
	err := db.Conn.QueryRow(context.Background(),
		`SELECT user_id FROM reviews WHERE id = $1`, reviewID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch review"})
	}
	if ownerID != userID && role != "admin" {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you are not allowed to delete this review"})
	}

	if _, err := db.Conn.Exec(context.Background(), `DELETE FROM reviews WHERE id = $1`, reviewID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete review"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "review deleted successfully"})
}

// ListForProduct returns all reviews for a product with reviewer names.
// Public, no auth.
func ListForProduct(c echo.Context) error {
	rows, err := db.Conn.Query(context.Background(), `
        SELECT r.id, r.user_id, u.name, r.product_id, r.rating, r.comment, r.created_at
        FROM reviews r
        JOIN users u ON u.id = r.user_id
        WHERE r.product_id = $1
        ORDER BY r.created_at DESC
    `, c.Param("productId"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch reviews"})
	}
	defer rows.Close()

	reviews := []Review{}
	for rows.Next() {
		var r Review
		if err := rows.Scan(&r.ID, &r.UserID, &r.UserName, &r.ProductID, &r.Rating, &r.Comment, &r.CreatedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to parse record"})
		}
		reviews = append(reviews, r)
	}
	return c.JSON(http.StatusOK, reviews)
}
