package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/Jaybeey1507/cartify-group3/internal/db"
)

const productColumns = `id, seller_id, name, description, price, category, stock, image, created_at`

type ProductRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       *int64 `json:"price"`
	Category    string `json:"category"`
	Stock       *int   `json:"stock"`
	Image       string `json:"image"`
}

// CreateProduct lets a seller list a new product
func CreateProduct(c echo.Context) error {
	sellerID, ok := c.Get("user_id").(string)
	if !ok || sellerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	req := new(ProductRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Name == "" || req.Price == nil || *req.Price < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and a non-negative price are required"})
	}

	stock := 0
	if req.Stock != nil {
		if *req.Stock < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "stock cannot be negative"})
		}
		stock = *req.Stock
	}

	p := Product{
		ID:          uuid.New().String(),
		SellerID:    sellerID,
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		Category:    req.Category,
		Stock:       stock,
		Image:       req.Image,
		CreatedAt:   time.Now(),
	}
	_, err := db.Conn.Exec(context.Background(), `
        INSERT INTO products (id, seller_id, name, description, price, category, stock, image, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `, p.ID, p.SellerID, p.Name, p.Description, p.Price, p.Category, p.Stock, p.Image, p.CreatedAt)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create product"})
	}

	return c.JSON(http.StatusCreated, p)
}

// UpdateProduct updates fields on an existing product. Only the owning
// seller may edit it.
func UpdateProduct(c echo.Context) error {
	sellerID, ok := c.Get("user_id").(string)
	if !ok || sellerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	productID := c.Param("id")

	req := new(ProductRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	var ownerID string
	err := db.Conn.QueryRow(context.Background(),
		`SELECT seller_id FROM products WHERE id = $1`, productID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch product"})
	}
	if ownerID != sellerID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you can only edit your own products"})
	}

	var updated Product
	err = db.Conn.QueryRow(context.Background(), `
        UPDATE products SET
            name = COALESCE(NULLIF($1, ''), name),
            description = COALESCE(NULLIF($2, ''), description),
            price = COALESCE($3, price),
            category = COALESCE(NULLIF($4, ''), category),
            stock = COALESCE($5, stock),
            image = COALESCE(NULLIF($6, ''), image)
        WHERE id = $7
        RETURNING `+productColumns,
		req.Name, req.Description, req.Price, req.Category, req.Stock, req.Image, productID,
	).Scan(&updated.ID, &updated.SellerID, &updated.Name, &updated.Description, &updated.Price,
		&updated.Category, &updated.Stock, &updated.Image, &updated.CreatedAt)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update product"})
	}

	return c.JSON(http.StatusOK, updated)
}

// DeleteProduct removes a product. Owner or admin only.
func DeleteProduct(c echo.Context) error {
	userID, _ := c.Get("user_id").(string)
	role, _ := c.Get("role").(string)
	productID := c.Param("id")

	var ownerID string
	err := db.Conn.QueryRow(context.Background(),
		`SELECT seller_id FROM products WHERE id = $1`, productID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch product"})
	}
	if ownerID != userID && role != "admin" {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you can only delete your own products"})
	}

	if _, err := db.Conn.Exec(context.Background(), `DELETE FROM products WHERE id = $1`, productID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete product"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "product deleted successfully"})
}

// ListProducts is the public catalog with optional search and range filters:
// ?search=&minPrice=&maxPrice=&minStock=&maxStock=&sort=&order=
func ListProducts(c echo.Context) error {
	query := `SELECT ` + productColumns + ` FROM products`
	var (
		conds []string
		args  []any
	)
	add := func(cond string, val any) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if search := c.QueryParam("search"); search != "" {
		add(`name ILIKE '%%' || $%d || '%%'`, search)
	}
	if v := c.QueryParam("minPrice"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			add(`price >= $%d`, n)
		}
	}
	if v := c.QueryParam("maxPrice"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			add(`price <= $%d`, n)
		}
	}
	if v := c.QueryParam("minStock"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			add(`stock >= $%d`, n)
		}
	}
	if v := c.QueryParam("maxStock"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			add(`stock <= $%d`, n)
		}
	}
	for i, cond := range conds {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}

	sortField := "created_at"
	switch c.QueryParam("sort") {
	case "price":
		sortField = "price"
	case "name":
		sortField = "name"
	case "stock":
		sortField = "stock"
	}
	direction := "ASC"
	if c.QueryParam("order") == "desc" {
		direction = "DESC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s", sortField, direction)

	return listProducts(c, query, args...)
}

// GetProduct returns one product by id
func GetProduct(c echo.Context) error {
	var p Product
	err := db.Conn.QueryRow(context.Background(),
		`SELECT `+productColumns+` FROM products WHERE id = $1`, c.Param("id"),
	).Scan(&p.ID, &p.SellerID, &p.Name, &p.Description, &p.Price, &p.Category, &p.Stock, &p.Image, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch product"})
	}
	return c.JSON(http.StatusOK, p)
}

// ListByCategory returns products in a category
func ListByCategory(c echo.Context) error {
	return listProducts(c,
		`SELECT `+productColumns+` FROM products WHERE category = $1 ORDER BY created_at DESC`,
		c.Param("category"))
}

// ListLowStock returns products below a stock threshold (default 5)
func ListLowStock(c echo.Context) error {
	threshold := 5
	if v := c.QueryParam("threshold"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			threshold = n
		}
	}
	return listProducts(c,
		`SELECT `+productColumns+` FROM products WHERE stock < $1 ORDER BY stock ASC`, threshold)
}

// ListMine returns the authenticated seller's products
func ListMine(c echo.Context) error {
	sellerID, ok := c.Get("user_id").(string)
	if !ok || sellerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return listProducts(c,
		`SELECT `+productColumns+` FROM products WHERE seller_id = $1 ORDER BY created_at DESC`, sellerID)
}

func listProducts(c echo.Context, query string, args ...any) error {
	rows, err := db.Conn.Query(context.Background(), query, args...)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch products"})
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.SellerID, &p.Name, &p.Description, &p.Price,
			&p.Category, &p.Stock, &p.Image, &p.CreatedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to parse record"})
		}
		products = append(products, p)
	}
	return c.JSON(http.StatusOK, products)
}
