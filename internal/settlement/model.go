package settlement

import "time"

// Role mirrors the users.role column.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleSeller Role = "seller"
	RoleBuyer  Role = "buyer"
)

// Actor identifies who is performing a settlement operation.
type Actor struct {
	ID   string
	Role Role
}

// PaymentMethod is how the buyer pays at placement.
type PaymentMethod string

const (
	PayWithBalance PaymentMethod = "balance"
	PayWithCard    PaymentMethod = "card"
)

// Status is the order lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
	StatusReleased  Status = "released"
	StatusRefunded  Status = "refunded"
)

// Settled reports whether the order's financial outcome is final. No money
// may move for a settled order.
func (s Status) Settled() bool {
	return s == StatusReleased || s == StatusRefunded || s == StatusCancelled
}

// Account is the settlement view of a user: spendable funds plus funds
// earned but not yet released (seller semantics).
type Account struct {
	ID             string
	Role           Role
	Balance        int64
	PendingBalance int64
}

// Product is the settlement view of a catalog entry.
type Product struct {
	ID       string
	SellerID string
	Name     string
	Price    int64
	Stock    int
}

// CartItem is one entry of a buyer's cart.
type CartItem struct {
	ProductID string
	Quantity  int
}

// LineItem is an order line with the seller, name and price captured at
// placement.
type LineItem struct {
	ProductID string `json:"product_id"`
	SellerID  string `json:"seller_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

// Order is the order document. TotalAmount is computed once at placement and
// never recomputed afterwards.
type Order struct {
	ID              string        `json:"id"`
	BuyerID         string        `json:"buyer_id"`
	Items           []LineItem    `json:"items"`
	TotalAmount     int64         `json:"total_amount"`
	PaymentMethod   PaymentMethod `json:"payment_method"`
	Status          Status        `json:"status"`
	ShippingAddress string        `json:"shipping_address"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}
