package domain

import (
	"github.com/shopspring/decimal"
)

// Shop defaults, used when the settings singleton is created lazily.
const (
	DefaultCompanyName = "ABC"
	DefaultCurrency    = "₹"
	DefaultCycleDays   = 30
)

// DefaultInterestRatePercent is the default rate applied to new loans
// when no rate is supplied.
var DefaultInterestRatePercent = decimal.NewFromFloat(2.0)

// Settings is a singleton record: at most one row exists. Saving updates
// the existing row in place, or creates it when absent.
type Settings struct {
	ID                  string          `json:"id" db:"id"`
	CompanyName         string          `json:"company_name" db:"company_name"`
	Currency            string          `json:"currency" db:"currency"`
	InterestCycleDays   int             `json:"interest_cycle_days" db:"interest_cycle_days"`
	InterestRatePercent decimal.Decimal `json:"interest_rate_percent" db:"interest_rate_percent"`
}

type SettingsRequest struct {
	CompanyName         string          `json:"company_name" validate:"required"`
	Currency            string          `json:"currency" validate:"required"`
	InterestCycleDays   int             `json:"interest_cycle_days" validate:"gt=0"`
	InterestRatePercent decimal.Decimal `json:"interest_rate_percent"`
}

// DefaultSettings returns the lazily-created singleton contents.
func DefaultSettings() *Settings {
	return &Settings{
		CompanyName:         DefaultCompanyName,
		Currency:            DefaultCurrency,
		InterestCycleDays:   DefaultCycleDays,
		InterestRatePercent: DefaultInterestRatePercent,
	}
}
