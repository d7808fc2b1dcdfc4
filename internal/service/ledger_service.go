package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/shashank-sundriyal/padamrajjewellers/internal/clock"
	"github.com/shashank-sundriyal/padamrajjewellers/internal/config"
	"github.com/shashank-sundriyal/padamrajjewellers/internal/domain"
	"github.com/shashank-sundriyal/padamrajjewellers/internal/interest"
	"github.com/shashank-sundriyal/padamrajjewellers/internal/metrics"
	"github.com/shashank-sundriyal/padamrajjewellers/internal/repository"
	customError "github.com/shashank-sundriyal/padamrajjewellers/pkg/errors"
)

const (
	dashboardCacheKey = "dashboard:snapshot"

	recentInterestLimit = 20

	defaultDashboardTTL = 5 * time.Minute
)

// LedgerService implements customer/loan record keeping and the derived
// ledger views. Every aggregate is computed from a fresh repository read,
// never from an in-memory patch, so totals can not go stale after writes.
type LedgerService struct {
	CustomerRepo repository.CustomerRepository
	LoanRepo     repository.LoanRepository
	SettingsRepo repository.SettingsRepository
	Clock        clock.Clock

	cache  *redis.Client
	config *config.Config
}

func NewLedgerService(
	customerRepo repository.CustomerRepository,
	loanRepo repository.LoanRepository,
	settingsRepo repository.SettingsRepository,
	cache *redis.Client,
	cfg *config.Config,
	clk clock.Clock,
) *LedgerService {
	return &LedgerService{
		CustomerRepo: customerRepo,
		LoanRepo:     loanRepo,
		SettingsRepo: settingsRepo,
		Clock:        clk,
		cache:        cache,
		config:       cfg,
	}
}

func (s *LedgerService) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock.Now()
}

// asOfOr substitutes the current clock time for a zero evaluation time.
func (s *LedgerService) asOfOr(asOf time.Time) time.Time {
	if asOf.IsZero() {
		return s.now()
	}
	return asOf
}

// loanInterest is the single source of truth for a loan's accrued
// interest; dashboard totals and per-loan previews both go through it.
func (s *LedgerService) loanInterest(loan *domain.Loan, asOf time.Time) decimal.Decimal {
	metrics.InterestCalculations.WithLabelValues(string(loan.InterestType)).Inc()
	return interest.LoanInterest(loan, asOf)
}

// ---- Customers ----

func (s *LedgerService) AddCustomer(ctx context.Context, request *domain.CustomerRequest) (*domain.Customer, error) {
	request.Trim()
	if request.Name == "" || request.Phone == "" || request.Aadhaar == "" {
		return nil, customError.WrapValidation("name, phone and aadhaar are mandatory")
	}

	customer := &domain.Customer{
		ID:        uuid.NewString(),
		Name:      request.Name,
		Phone:     request.Phone,
		AltPhone:  request.AltPhone,
		Aadhaar:   request.Aadhaar,
		Address:   request.Address,
		Notes:     request.Notes,
		CreatedAt: s.now(),
	}

	if err := s.CustomerRepo.Create(ctx, customer); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.invalidateDashboard(ctx)
	return customer, nil
}

func (s *LedgerService) UpdateCustomer(ctx context.Context, id string, request *domain.CustomerRequest) (*domain.Customer, error) {
	customer, err := s.getCustomer(ctx, id)
	if err != nil {
		return nil, err
	}

	request.Trim()
	if request.Name == "" || request.Phone == "" || request.Aadhaar == "" {
		return nil, customError.WrapValidation("name, phone and aadhaar are mandatory")
	}

	customer.Name = request.Name
	customer.Phone = request.Phone
	customer.AltPhone = request.AltPhone
	customer.Aadhaar = request.Aadhaar
	customer.Address = request.Address
	customer.Notes = request.Notes

	if err := s.CustomerRepo.Update(ctx, customer); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.invalidateDashboard(ctx)
	return customer, nil
}

// DeleteCustomer removes a customer and every loan referencing it. Loans
// go first; the ordering is what keeps orphan loans impossible.
func (s *LedgerService) DeleteCustomer(ctx context.Context, id string) error {
	if _, err := s.getCustomer(ctx, id); err != nil {
		return err
	}

	if err := s.LoanRepo.DeleteByCustomerID(ctx, id); err != nil {
		return customError.WrapDatabaseError(err)
	}
	if err := s.CustomerRepo.Delete(ctx, id); err != nil {
		return customError.WrapDatabaseError(err)
	}

	s.invalidateDashboard(ctx)
	return nil
}

// ListCustomers returns customers in persisted order, optionally
// filtered by a case-insensitive search on name or aadhaar.
func (s *LedgerService) ListCustomers(ctx context.Context, query string) ([]*domain.Customer, error) {
	customers, err := s.CustomerRepo.List(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if query == "" {
		return customers, nil
	}

	q := strings.ToLower(query)
	filtered := make([]*domain.Customer, 0, len(customers))
	for _, c := range customers {
		if strings.Contains(strings.ToLower(c.Name), q) || strings.Contains(strings.ToLower(c.Aadhaar), q) {
			filtered = append(filtered, c)
		}
	}
	return filtered, nil
}

func (s *LedgerService) getCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	customer, err := s.CustomerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapCustomerNotFound(id)
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return customer, nil
}

// ---- Loans ----

func (s *LedgerService) AddLoan(ctx context.Context, request *domain.CreateLoanRequest) (*domain.Loan, error) {
	request.Trim()

	if request.Principal.Sign() <= 0 {
		return nil, customError.WrapValidation("principal must be greater than zero")
	}
	if request.InterestRate.Sign() < 0 {
		return nil, customError.WrapValidation("interest rate must not be negative")
	}
	if request.ManualDuration.Sign() < 0 {
		return nil, customError.WrapValidation("manual duration must not be negative")
	}

	// no orphan loans: the customer must exist at creation time
	if _, err := s.getCustomer(ctx, request.CustomerID); err != nil {
		return nil, err
	}

	rate := request.InterestRate
	if rate.IsZero() {
		settings, err := s.GetSettings(ctx)
		if err != nil {
			return nil, err
		}
		rate = settings.InterestRatePercent
	}

	loan := &domain.Loan{
		ID:             uuid.NewString(),
		CustomerID:     request.CustomerID,
		ItemName:       request.ItemName,
		JewelleryType:  orDefault(request.JewelleryType, domain.JewelleryOther),
		Weight:         request.Weight,
		Principal:      request.Principal,
		InterestRate:   rate,
		InterestType:   domain.InterestType(orDefault(string(request.InterestType), string(domain.InterestSimple))),
		CycleType:      domain.CycleType(orDefault(string(request.CycleType), string(domain.CycleMonthly))),
		KeepDate:       request.KeepDate,
		ManualDuration: request.ManualDuration,
		Claimed:        false,
		CreatedAt:      s.now(),
	}
	if loan.KeepDate == "" {
		loan.KeepDate = interest.FormatTimestamp(s.now())
	}

	if err := s.LoanRepo.Create(ctx, loan); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.invalidateDashboard(ctx)
	return loan, nil
}

// UpdateLoan edits the terms of a loan. Identifiers and claim state are
// never touched here.
func (s *LedgerService) UpdateLoan(ctx context.Context, id string, request *domain.UpdateLoanRequest) (*domain.Loan, error) {
	loan, err := s.getLoan(ctx, id)
	if err != nil {
		return nil, err
	}

	request.Trim()
	if request.Principal.Sign() <= 0 {
		return nil, customError.WrapValidation("principal must be greater than zero")
	}
	if request.InterestRate.Sign() < 0 {
		return nil, customError.WrapValidation("interest rate must not be negative")
	}
	if request.ManualDuration.Sign() < 0 {
		return nil, customError.WrapValidation("manual duration must not be negative")
	}

	loan.ItemName = request.ItemName
	loan.JewelleryType = orDefault(request.JewelleryType, loan.JewelleryType)
	loan.Weight = request.Weight
	loan.Principal = request.Principal
	loan.InterestRate = request.InterestRate
	loan.InterestType = domain.InterestType(orDefault(string(request.InterestType), string(loan.InterestType)))
	loan.CycleType = domain.CycleType(orDefault(string(request.CycleType), string(loan.CycleType)))
	loan.ManualDuration = request.ManualDuration
	if request.KeepDate != "" {
		loan.KeepDate = request.KeepDate
	}

	if err := s.LoanRepo.Update(ctx, loan); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.invalidateDashboard(ctx)
	return loan, nil
}

func (s *LedgerService) DeleteLoan(ctx context.Context, id string) error {
	if _, err := s.getLoan(ctx, id); err != nil {
		return err
	}
	if err := s.LoanRepo.Delete(ctx, id); err != nil {
		return customError.WrapDatabaseError(err)
	}

	s.invalidateDashboard(ctx)
	return nil
}

// ClaimLoan marks the collateral as redeemed. The transition is one-way:
// a second claim is rejected and the original claim timestamp stands.
func (s *LedgerService) ClaimLoan(ctx context.Context, id string) (*domain.Loan, error) {
	loan, err := s.getLoan(ctx, id)
	if err != nil {
		return nil, err
	}

	if loan.Claimed {
		return nil, customError.WrapLoanAlreadyClaimed(id)
	}

	claimedAt := s.now()
	loan.Claimed = true
	loan.ClaimedAt = &claimedAt

	if err := s.LoanRepo.Update(ctx, loan); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.invalidateDashboard(ctx)
	return loan, nil
}

// ListLoans returns all loans in persisted order with the computed due
// amount and resolved customer name per row, optionally filtered by a
// case-insensitive search on item name, loan id or customer name.
func (s *LedgerService) ListLoans(ctx context.Context, query string, asOf time.Time) ([]*domain.LoanWithDue, error) {
	asOf = s.asOfOr(asOf)

	loans, err := s.LoanRepo.List(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	customers, err := s.CustomerRepo.List(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	names := make(map[string]string, len(customers))
	for _, c := range customers {
		names[c.ID] = c.Name
	}

	q := strings.ToLower(query)
	rows := make([]*domain.LoanWithDue, 0, len(loans))
	for _, loan := range loans {
		name := names[loan.CustomerID]
		if q != "" &&
			!strings.Contains(strings.ToLower(loan.ItemName), q) &&
			!strings.Contains(strings.ToLower(loan.ID), q) &&
			!strings.Contains(strings.ToLower(name), q) {
			continue
		}
		due := loan.Principal.Add(s.loanInterest(loan, asOf)).Round(2)
		rows = append(rows, &domain.LoanWithDue{
			Loan:         *loan,
			CustomerName: name,
			TotalDue:     due,
		})
	}
	return rows, nil
}

// ActiveLoans filters out claimed loans, preserving persisted order.
func (s *LedgerService) ActiveLoans(ctx context.Context) ([]*domain.Loan, error) {
	loans, err := s.LoanRepo.List(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	active := make([]*domain.Loan, 0, len(loans))
	for _, loan := range loans {
		if loan.Active() {
			active = append(active, loan)
		}
	}
	return active, nil
}

func (s *LedgerService) getLoan(ctx context.Context, id string) (*domain.Loan, error) {
	loan, err := s.LoanRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapLoanNotFound(id)
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return loan, nil
}

// ---- Preview ----

// PreviewLoan evaluates a loan with optional overrides (end date, rate,
// interest type, cycle type) without persisting anything. The recorded
// manual duration still wins over the date range when set.
func (s *LedgerService) PreviewLoan(ctx context.Context, id string, request *domain.PreviewRequest) (*domain.PreviewResponse, error) {
	loan, err := s.getLoan(ctx, id)
	if err != nil {
		return nil, err
	}

	until := interest.ParseTimestamp(strings.TrimSpace(request.Until), s.now())

	evaluated := *loan
	if request.InterestRate != nil {
		evaluated.InterestRate = *request.InterestRate
	}
	if request.InterestType != "" {
		evaluated.InterestType = request.InterestType
	}
	if request.CycleType != "" {
		evaluated.CycleType = request.CycleType
	}

	cycles := interest.EffectiveCycles(&evaluated, until)
	amount := s.loanInterest(&evaluated, until).Round(2)

	return &domain.PreviewResponse{
		LoanID:       loan.ID,
		Principal:    loan.Principal,
		Cycles:       cycles,
		CycleType:    evaluated.CycleType,
		InterestType: evaluated.InterestType,
		InterestRate: evaluated.InterestRate,
		Interest:     amount,
		TotalPayable: loan.Principal.Add(amount).Round(2),
	}, nil
}

// ---- Aggregates ----

// PortfolioSummary totals principal and accrued interest across all
// active loans at the given evaluation time.
func (s *LedgerService) PortfolioSummary(ctx context.Context, asOf time.Time) (*domain.PortfolioSummary, error) {
	asOf = s.asOfOr(asOf)

	active, err := s.ActiveLoans(ctx)
	if err != nil {
		return nil, err
	}

	totalPrincipal := decimal.Zero
	totalInterest := decimal.Zero
	for _, loan := range active {
		totalPrincipal = totalPrincipal.Add(loan.Principal)
		totalInterest = totalInterest.Add(s.loanInterest(loan, asOf))
	}

	totalPrincipal = totalPrincipal.Round(2)
	totalInterest = totalInterest.Round(2)

	return &domain.PortfolioSummary{
		TotalPrincipal: totalPrincipal,
		TotalInterest:  totalInterest,
		TotalDue:       totalPrincipal.Add(totalInterest),
		ActiveLoans:    len(active),
	}, nil
}

// CustomerSummary is the portfolio summary restricted to one customer's
// active loans.
func (s *LedgerService) CustomerSummary(ctx context.Context, customerID string, asOf time.Time) (*domain.CustomerSummaryResponse, error) {
	asOf = s.asOfOr(asOf)

	if _, err := s.getCustomer(ctx, customerID); err != nil {
		return nil, err
	}

	loans, err := s.LoanRepo.ListByCustomerID(ctx, customerID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	totalPrincipal := decimal.Zero
	totalInterest := decimal.Zero
	activeCount := 0
	for _, loan := range loans {
		if !loan.Active() {
			continue
		}
		activeCount++
		totalPrincipal = totalPrincipal.Add(loan.Principal)
		totalInterest = totalInterest.Add(s.loanInterest(loan, asOf))
	}

	totalPrincipal = totalPrincipal.Round(2)
	totalInterest = totalInterest.Round(2)

	return &domain.CustomerSummaryResponse{
		CustomerID:       customerID,
		TotalPrincipal:   totalPrincipal,
		TotalInterest:    totalInterest,
		TotalOutstanding: totalPrincipal.Add(totalInterest),
		ActiveLoans:      activeCount,
	}, nil
}

// MonthlyInterestTrend groups loans by creation month and sums the
// interest each would accrue at asOf. Claimed loans are included: this
// is a point-in-time snapshot trend, not a historical ledger.
func (s *LedgerService) MonthlyInterestTrend(ctx context.Context, asOf time.Time) ([]domain.MonthTrendPoint, error) {
	asOf = s.asOfOr(asOf)

	loans, err := s.LoanRepo.List(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return s.trendFromLoans(loans, asOf), nil
}

func (s *LedgerService) trendFromLoans(loans []*domain.Loan, asOf time.Time) []domain.MonthTrendPoint {
	buckets := make(map[string]decimal.Decimal)
	for _, loan := range loans {
		month := loan.CreatedAt.Format("2006-01")
		buckets[month] = buckets[month].Add(s.loanInterest(loan, asOf))
	}

	months := make([]string, 0, len(buckets))
	for month := range buckets {
		months = append(months, month)
	}
	sort.Strings(months)

	trend := make([]domain.MonthTrendPoint, 0, len(months))
	for _, month := range months {
		trend = append(trend, domain.MonthTrendPoint{
			Month:    month,
			Interest: buckets[month].Round(2),
		})
	}
	return trend
}

// ---- Dashboard ----

// Dashboard assembles the landing-page snapshot. A cached copy is served
// when present; every mutation deletes the cache key, so a hit is never
// stale.
func (s *LedgerService) Dashboard(ctx context.Context, asOf time.Time) (*domain.DashboardSnapshot, error) {
	useCache := asOf.IsZero() && s.cache != nil

	if useCache {
		if raw, err := s.cache.Get(ctx, dashboardCacheKey).Result(); err == nil {
			var snapshot domain.DashboardSnapshot
			if err := json.Unmarshal([]byte(raw), &snapshot); err == nil {
				return &snapshot, nil
			}
		}
	}

	snapshot, err := s.computeDashboard(ctx, s.asOfOr(asOf))
	if err != nil {
		return nil, err
	}

	if useCache {
		s.storeDashboard(ctx, snapshot)
	}
	return snapshot, nil
}

// RefreshDashboardSnapshot recomputes the dashboard and replaces the
// cached copy; the scheduler calls this nightly.
func (s *LedgerService) RefreshDashboardSnapshot(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	snapshot, err := s.computeDashboard(ctx, s.now())
	if err != nil {
		return err
	}
	return s.storeDashboard(ctx, snapshot)
}

func (s *LedgerService) computeDashboard(ctx context.Context, asOf time.Time) (*domain.DashboardSnapshot, error) {
	customers, err := s.CustomerRepo.List(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	loans, err := s.LoanRepo.List(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	totalPrincipal := decimal.Zero
	totalInterest := decimal.Zero
	recent := make([]domain.LoanInterest, 0, len(loans))
	for _, loan := range loans {
		if !loan.Active() {
			continue
		}
		amount := s.loanInterest(loan, asOf)
		totalPrincipal = totalPrincipal.Add(loan.Principal)
		totalInterest = totalInterest.Add(amount)
		recent = append(recent, domain.LoanInterest{
			LoanID:    loan.ID,
			Interest:  amount.Round(2),
			CreatedAt: loan.CreatedAt,
		})
	}

	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	if len(recent) > recentInterestLimit {
		recent = recent[:recentInterestLimit]
	}

	return &domain.DashboardSnapshot{
		TotalCustomers:    len(customers),
		ActivePrincipal:   totalPrincipal.Round(2),
		EstimatedInterest: totalInterest.Round(2),
		RecentInterests:   recent,
		MonthlyTrend:      s.trendFromLoans(loans, asOf),
		GeneratedAt:       s.now(),
	}, nil
}

func (s *LedgerService) storeDashboard(ctx context.Context, snapshot *domain.DashboardSnapshot) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return customError.WrapCacheError(err)
	}

	ttl := defaultDashboardTTL
	if s.config != nil {
		ttl = s.config.GetDashboardCacheTTL()
	}
	if err := s.cache.Set(ctx, dashboardCacheKey, raw, ttl).Err(); err != nil {
		return customError.WrapCacheError(err)
	}
	return nil
}

func (s *LedgerService) invalidateDashboard(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Del(ctx, dashboardCacheKey).Err()
	}
}

// ---- Settings ----

// GetSettings reads the singleton, creating it with defaults on first
// read.
func (s *LedgerService) GetSettings(ctx context.Context) (*domain.Settings, error) {
	settings, err := s.SettingsRepo.Get(ctx)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapDatabaseError(err)
	}

	settings = s.defaultSettings()
	settings.ID = uuid.NewString()
	if err := s.SettingsRepo.Create(ctx, settings); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return settings, nil
}

// SaveSettings upserts the singleton: the existing row is updated in
// place when present, never duplicated.
func (s *LedgerService) SaveSettings(ctx context.Context, request *domain.SettingsRequest) (*domain.Settings, error) {
	company := strings.TrimSpace(request.CompanyName)
	currency := strings.TrimSpace(request.Currency)
	if company == "" || currency == "" {
		return nil, customError.WrapValidation("company name and currency are mandatory")
	}
	if request.InterestCycleDays <= 0 {
		return nil, customError.WrapValidation("interest cycle days must be greater than zero")
	}
	if request.InterestRatePercent.Sign() < 0 {
		return nil, customError.WrapValidation("interest rate must not be negative")
	}

	existing, err := s.SettingsRepo.Get(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapDatabaseError(err)
	}

	settings := &domain.Settings{
		CompanyName:         company,
		Currency:            currency,
		InterestCycleDays:   request.InterestCycleDays,
		InterestRatePercent: request.InterestRatePercent,
	}

	if existing != nil {
		settings.ID = existing.ID
		if err := s.SettingsRepo.Update(ctx, settings); err != nil {
			return nil, customError.WrapDatabaseError(err)
		}
		s.invalidateDashboard(ctx)
		return settings, nil
	}

	settings.ID = uuid.NewString()
	if err := s.SettingsRepo.Create(ctx, settings); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	s.invalidateDashboard(ctx)
	return settings, nil
}

func (s *LedgerService) defaultSettings() *domain.Settings {
	settings := domain.DefaultSettings()
	if s.config != nil {
		settings.CompanyName = s.config.Business.CompanyName
		settings.Currency = s.config.Business.CurrencySymbol
		settings.InterestCycleDays = s.config.Business.DefaultCycleDays
		settings.InterestRatePercent = s.config.GetDefaultInterestRate()
	}
	return settings
}

// ---- Export ----

// ExportSnapshot reads all three collections fresh for the workbook
// projection. Loan rows carry the computed due amount.
func (s *LedgerService) ExportSnapshot(ctx context.Context) ([]*domain.Customer, []*domain.LoanWithDue, *domain.Settings, error) {
	customers, err := s.ListCustomers(ctx, "")
	if err != nil {
		return nil, nil, nil, err
	}
	loans, err := s.ListLoans(ctx, "", time.Time{})
	if err != nil {
		return nil, nil, nil, err
	}
	settings, err := s.GetSettings(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	return customers, loans, settings, nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
