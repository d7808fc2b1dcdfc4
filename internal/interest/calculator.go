// Package interest implements the accrual calculator: elapsed cycles,
// interest amounts and due totals. Every function is pure and takes an
// explicit evaluation time, so results are deterministic and testable.
package interest

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/shashank-sundriyal/padamrajjewellers/internal/domain"
)

const (
	daysPerWeek  = 7
	daysPerMonth = 30 // fixed 30-day month, deliberately not calendar months

	// precision of the compound pow; enough that currency rounding at 2
	// decimal places is exact
	compoundPrecision = 12
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// timestampLayouts are the textual encodings historical records were
// written with: date-only, date+time, date+time+fractional seconds, and
// RFC3339 variants.
var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses a stored textual timestamp. An empty or
// unparseable value resolves to the fallback instant rather than an
// error, so malformed records yield zero elapsed cycles instead of
// breaking a calculation.
func ParseTimestamp(s string, fallback time.Time) time.Time {
	if s == "" {
		return fallback
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return fallback
}

// FormatTimestamp renders a timestamp in the canonical stored encoding.
func FormatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// CyclesElapsed computes whole accrual cycles between the keep date and
// asOf. A future keep date yields zero, never a negative count. An
// unrecognized cycle type falls back to the raw day count.
func CyclesElapsed(keepDate string, cycleType domain.CycleType, asOf time.Time) decimal.Decimal {
	keep := ParseTimestamp(keepDate, asOf)

	deltaDays := int64(asOf.Sub(keep).Hours() / 24)
	if deltaDays < 0 {
		deltaDays = 0
	}

	switch cycleType {
	case domain.CycleWeekly:
		return decimal.NewFromInt(deltaDays / daysPerWeek)
	case domain.CycleMonthly:
		return decimal.NewFromInt(deltaDays / daysPerMonth)
	}
	// daily, and the fail-safe fallback for unknown tags
	return decimal.NewFromInt(deltaDays)
}

// InterestAmount computes accrued interest for the given terms. Any
// non-positive input yields zero, as does an unsupported interest type.
func InterestAmount(principal, ratePercent, cycles decimal.Decimal, interestType domain.InterestType) decimal.Decimal {
	if principal.Sign() <= 0 || ratePercent.Sign() <= 0 || cycles.Sign() <= 0 {
		return decimal.Zero
	}

	rate := ratePercent.Div(hundred)

	switch interestType {
	case domain.InterestSimple, domain.InterestDaily:
		// daily differs from simple only in the cycle granularity chosen
		// upstream; the formula is the same linear accrual
		return principal.Mul(rate).Mul(cycles)
	case domain.InterestCompound:
		factor, err := one.Add(rate).PowWithPrecision(cycles, compoundPrecision)
		if err != nil {
			return decimal.Zero
		}
		return principal.Mul(factor.Sub(one))
	}
	return decimal.Zero
}

// EffectiveCycles resolves the cycle count for a loan: a nonzero manual
// duration override wins verbatim, ignoring cycle type and dates; else
// cycles are computed from elapsed time.
func EffectiveCycles(loan *domain.Loan, asOf time.Time) decimal.Decimal {
	if loan.HasManualDuration() {
		return loan.ManualDuration
	}
	return CyclesElapsed(loan.KeepDate, loan.CycleType, asOf)
}

// LoanInterest computes the accrued interest for a loan at asOf.
func LoanInterest(loan *domain.Loan, asOf time.Time) decimal.Decimal {
	return InterestAmount(loan.Principal, loan.InterestRate, EffectiveCycles(loan, asOf), loan.InterestType)
}

// TotalDue is the redemption amount: principal plus accrued interest.
func TotalDue(loan *domain.Loan, asOf time.Time) decimal.Decimal {
	return loan.Principal.Add(LoanInterest(loan, asOf))
}
