package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Customer represents a pawn customer record
type Customer struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Phone     string    `json:"phone" db:"phone"`
	AltPhone  string    `json:"alt_phone" db:"alt_phone"`
	Aadhaar   string    `json:"aadhaar" db:"aadhaar"`
	Address   string    `json:"address" db:"address"`
	Notes     string    `json:"notes" db:"notes"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// DTOs for requests and responses

type CustomerRequest struct {
	Name     string `json:"name" validate:"required"`
	Phone    string `json:"phone" validate:"required"`
	AltPhone string `json:"alt_phone"`
	Aadhaar  string `json:"aadhaar" validate:"required"`
	Address  string `json:"address"`
	Notes    string `json:"notes"`
}

// Trim normalizes all text fields. Mandatory-field checks run on the
// trimmed values, so whitespace-only input is rejected.
func (r *CustomerRequest) Trim() {
	r.Name = strings.TrimSpace(r.Name)
	r.Phone = strings.TrimSpace(r.Phone)
	r.AltPhone = strings.TrimSpace(r.AltPhone)
	r.Aadhaar = strings.TrimSpace(r.Aadhaar)
	r.Address = strings.TrimSpace(r.Address)
	r.Notes = strings.TrimSpace(r.Notes)
}

type CustomerSummaryResponse struct {
	CustomerID       string          `json:"customer_id"`
	TotalPrincipal   decimal.Decimal `json:"total_principal"`
	TotalInterest    decimal.Decimal `json:"total_interest"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	ActiveLoans      int             `json:"active_loans"`
}
