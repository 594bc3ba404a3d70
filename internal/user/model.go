package user

import "time"

type User struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Password       string    `json:"-"` // never return
	Role           string    `json:"role"`
	Phone          string    `json:"phone,omitempty"`
	Country        string    `json:"country,omitempty"`
	State          string    `json:"state,omitempty"`
	City           string    `json:"city,omitempty"`
	Address1       string    `json:"address1,omitempty"`
	Address2       string    `json:"address2,omitempty"`
	CompanyName    string    `json:"company_name,omitempty"`
	Balance        int64     `json:"balance"`
	PendingBalance int64     `json:"pending_balance"`
	CreatedAt      time.Time `json:"created_at"`
}
