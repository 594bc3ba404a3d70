// Command seed wipes the database and loads a development fixture:
// 10 buyers, 5 sellers, 1 admin, 4 products per seller, plus an order,
// a cart and a review for each buyer.
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Jaybeey1507/cartify-group3/internal/config"
	"github.com/Jaybeey1507/cartify-group3/internal/db"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	db.Init(cfg.DatabaseURL)

	ctx := context.Background()

	_, err = db.Conn.Exec(ctx,
		`TRUNCATE users, products, cart_items, orders, order_items, reviews, disputes, notifications CASCADE`)
	if err != nil {
		log.Fatalf("failed to clear tables: %v", err)
	}
	log.Println("old data cleared")

	var buyerIDs, sellerIDs []string

	for i := 1; i <= 10; i++ {
		id := insertUser(ctx, fmt.Sprintf("Buyer %d", i), fmt.Sprintf("buyer%d@mail.com", i),
			fmt.Sprintf("buyerpass%d", i), "buyer", fmt.Sprintf("12345678%d", i), fmt.Sprintf("Street %d", i), "")
		buyerIDs = append(buyerIDs, id)
	}
	for i := 1; i <= 5; i++ {
		id := insertUser(ctx, fmt.Sprintf("Seller %d", i), fmt.Sprintf("seller%d@mail.com", i),
			fmt.Sprintf("sellerpass%d", i), "seller", fmt.Sprintf("98765432%d", i),
			fmt.Sprintf("Commerce St %d", i), fmt.Sprintf("Store %d", i))
		sellerIDs = append(sellerIDs, id)
	}
	insertUser(ctx, "Admin User", "admin@mail.com", "admin123", "admin", "", "", "")
	log.Printf("inserted %d users", len(buyerIDs)+len(sellerIDs)+1)

	// 4 products per seller, prices in minor units
	type seedProduct struct {
		id       string
		sellerID string
		price    int64
	}
	var products []seedProduct
	for i, sellerID := range sellerIDs {
		for j := 1; j <= 4; j++ {
			p := seedProduct{
				id:       uuid.New().String(),
				sellerID: sellerID,
				price:    int64(rand.Intn(9000)+1000) / 100 * 100,
			}
			_, err := db.Conn.Exec(ctx, `
                INSERT INTO products (id, seller_id, name, description, price, category, stock, created_at)
                VALUES ($1, $2, $3, $4, $5, 'General', $6, NOW())
            `, p.id, p.sellerID, fmt.Sprintf("Product %d by Seller %d", j, i+1),
				fmt.Sprintf("Description for product %d", j), p.price, rand.Intn(50)+1)
			if err != nil {
				log.Fatalf("failed to insert product: %v", err)
			}
			products = append(products, p)
		}
	}
	log.Printf("inserted %d products", len(products))

	// one paid order with two lines per buyer
	for i, buyerID := range buyerIDs {
		a, b := products[i], products[i+1]
		total := a.price + 2*b.price
		orderID := uuid.New().String()
		_, err := db.Conn.Exec(ctx, `
            INSERT INTO orders (id, buyer_id, total_amount, payment_method, status, shipping_address, created_at, updated_at)
            VALUES ($1, $2, $3, 'balance', 'paid', $4, NOW(), NOW())
        `, orderID, buyerID, total, fmt.Sprintf("Street %d", i+1))
		if err != nil {
			log.Fatalf("failed to insert order: %v", err)
		}
		insertOrderItem(ctx, orderID, a.id, a.sellerID, a.price, 1)
		insertOrderItem(ctx, orderID, b.id, b.sellerID, b.price, 2)
	}
	log.Printf("inserted %d orders", len(buyerIDs))

	// one cart with two items per buyer
	for i, buyerID := range buyerIDs {
		insertCartItem(ctx, buyerID, products[i].id, 1)
		insertCartItem(ctx, buyerID, products[i+1].id, 3)
	}
	log.Printf("inserted %d carts", len(buyerIDs))

	// each buyer reviews one product
	for i, buyerID := range buyerIDs {
		_, err := db.Conn.Exec(ctx, `
            INSERT INTO reviews (id, user_id, product_id, rating, comment, created_at)
            VALUES ($1, $2, $3, $4, $5, NOW())
        `, uuid.New().String(), buyerID, products[i].id, rand.Intn(5)+1, fmt.Sprintf("Nice product %d", i+1))
		if err != nil {
			log.Fatalf("failed to insert review: %v", err)
		}
	}
	log.Printf("inserted %d reviews", len(buyerIDs))

	log.Println("seeding complete")
}

func insertUser(ctx context.Context, name, email, password, role, phone, address1, company string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}
	id := uuid.New().String()
	_, err = db.Conn.Exec(ctx, `
        INSERT INTO users (id, name, email, password, role, phone, country, state, city, address1, company_name)
        VALUES ($1, $2, $3, $4, $5, $6, 'CountryX', 'StateY', 'CityZ', $7, $8)
    `, id, name, email, string(hash), role, phone, address1, company)
	if err != nil {
		log.Fatalf("failed to insert user %s: %v", email, err)
	}
	return id
}

func insertOrderItem(ctx context.Context, orderID, productID, sellerID string, price int64, qty int) {
	var name string
	if err := db.Conn.QueryRow(ctx, `SELECT name FROM products WHERE id = $1`, productID).Scan(&name); err != nil {
		log.Fatalf("failed to load product name: %v", err)
	}
	_, err := db.Conn.Exec(ctx, `
        INSERT INTO order_items (order_id, product_id, seller_id, name, price, quantity)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, orderID, productID, sellerID, name, price, qty)
	if err != nil {
		log.Fatalf("failed to insert order item: %v", err)
	}
}

func insertCartItem(ctx context.Context, userID, productID string, qty int) {
	_, err := db.Conn.Exec(ctx, `
        INSERT INTO cart_items (user_id, product_id, quantity) VALUES ($1, $2, $3)
    `, userID, productID, qty)
	if err != nil {
		log.Fatalf("failed to insert cart item: %v", err)
	}
}
