package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// InterestType selects the accrual formula.
type InterestType string

const (
	InterestSimple   InterestType = "simple"
	InterestCompound InterestType = "compound"
	InterestDaily    InterestType = "daily"
)

// CycleType selects the accrual period length.
type CycleType string

const (
	CycleDaily   CycleType = "daily"
	CycleWeekly  CycleType = "weekly"
	CycleMonthly CycleType = "monthly"
)

// Jewellery categories
const (
	JewelleryGold   = "Gold"
	JewellerySilver = "Silver"
	JewelleryOther  = "Other"
)

// Loan represents a jewellery-collateral loan. KeepDate is kept as the
// stored text value and parsed tolerantly at calculation time, so one
// dirty historical row can never break an aggregate view.
type Loan struct {
	ID             string          `json:"id" db:"id"`
	CustomerID     string          `json:"customer_id" db:"customer_id"`
	ItemName       string          `json:"item_name" db:"item_name"`
	JewelleryType  string          `json:"jewellery_type" db:"jewellery_type"`
	Weight         string          `json:"weight" db:"weight"`
	Principal      decimal.Decimal `json:"principal" db:"principal"`
	InterestRate   decimal.Decimal `json:"interest_rate" db:"interest_rate"`
	InterestType   InterestType    `json:"interest_type" db:"interest_type"`
	CycleType      CycleType       `json:"cycle_type" db:"cycle_type"`
	KeepDate       string          `json:"keep_date" db:"keep_date"`
	ManualDuration decimal.Decimal `json:"manual_duration" db:"manual_duration"`
	Claimed        bool            `json:"claimed" db:"claimed"`
	ClaimedAt      *time.Time      `json:"claimed_at,omitempty" db:"claimed_at"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

// Active reports whether the collateral is still held (not claimed).
func (l *Loan) Active() bool {
	return !l.Claimed
}

// HasManualDuration reports whether a staff-entered cycle count
// supersedes the date-based calculation.
func (l *Loan) HasManualDuration() bool {
	return l.ManualDuration.Sign() > 0
}

// DTOs for requests and responses

type CreateLoanRequest struct {
	CustomerID     string          `json:"customer_id" validate:"required"`
	ItemName       string          `json:"item_name"`
	JewelleryType  string          `json:"jewellery_type"`
	Weight         string          `json:"weight"`
	Principal      decimal.Decimal `json:"principal"`
	InterestRate   decimal.Decimal `json:"interest_rate"`
	InterestType   InterestType    `json:"interest_type"`
	CycleType      CycleType       `json:"cycle_type"`
	KeepDate       string          `json:"keep_date"`
	ManualDuration decimal.Decimal `json:"manual_duration"`
}

type UpdateLoanRequest struct {
	ItemName       string          `json:"item_name"`
	JewelleryType  string          `json:"jewellery_type"`
	Weight         string          `json:"weight"`
	Principal      decimal.Decimal `json:"principal"`
	InterestRate   decimal.Decimal `json:"interest_rate"`
	InterestType   InterestType    `json:"interest_type"`
	CycleType      CycleType       `json:"cycle_type"`
	KeepDate       string          `json:"keep_date"`
	ManualDuration decimal.Decimal `json:"manual_duration"`
}

// PreviewRequest evaluates a loan without persisting anything. Overrides
// default to the recorded loan terms when omitted.
type PreviewRequest struct {
	Until        string           `json:"until"`
	InterestRate *decimal.Decimal `json:"interest_rate,omitempty"`
	InterestType InterestType     `json:"interest_type"`
	CycleType    CycleType        `json:"cycle_type"`
}

type PreviewResponse struct {
	LoanID       string          `json:"loan_id"`
	Principal    decimal.Decimal `json:"principal"`
	Cycles       decimal.Decimal `json:"cycles"`
	CycleType    CycleType       `json:"cycle_type"`
	InterestType InterestType    `json:"interest_type"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	Interest     decimal.Decimal `json:"interest"`
	TotalPayable decimal.Decimal `json:"total_payable"`
}

// LoanWithDue is a listing row: the loan plus its computed due amount and
// the resolved customer name.
type LoanWithDue struct {
	Loan
	CustomerName string          `json:"customer_name"`
	TotalDue     decimal.Decimal `json:"total_due"`
}

type PortfolioSummary struct {
	TotalPrincipal decimal.Decimal `json:"total_principal"`
	TotalInterest  decimal.Decimal `json:"total_interest"`
	TotalDue       decimal.Decimal `json:"total_due"`
	ActiveLoans    int             `json:"active_loans"`
}

type LoanInterest struct {
	LoanID    string          `json:"loan_id"`
	Interest  decimal.Decimal `json:"interest"`
	CreatedAt time.Time       `json:"created_at"`
}

type MonthTrendPoint struct {
	Month    string          `json:"month"`
	Interest decimal.Decimal `json:"interest"`
}

type DashboardSnapshot struct {
	TotalCustomers    int               `json:"total_customers"`
	ActivePrincipal   decimal.Decimal   `json:"active_principal"`
	EstimatedInterest decimal.Decimal   `json:"estimated_interest"`
	RecentInterests   []LoanInterest    `json:"recent_interests"`
	MonthlyTrend      []MonthTrendPoint `json:"monthly_trend"`
	GeneratedAt       time.Time         `json:"generated_at"`
}

// Trim normalizes the free-text fields of a loan request.
func (r *CreateLoanRequest) Trim() {
	r.ItemName = strings.TrimSpace(r.ItemName)
	r.Weight = strings.TrimSpace(r.Weight)
	r.KeepDate = strings.TrimSpace(r.KeepDate)
}

func (r *UpdateLoanRequest) Trim() {
	r.ItemName = strings.TrimSpace(r.ItemName)
	r.Weight = strings.TrimSpace(r.Weight)
	r.KeepDate = strings.TrimSpace(r.KeepDate)
}
