package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shashank-sundriyal/padamrajjewellers/internal/clock"
	"github.com/shashank-sundriyal/padamrajjewellers/internal/domain"
	ledgerService "github.com/shashank-sundriyal/padamrajjewellers/internal/service"
	"github.com/shashank-sundriyal/padamrajjewellers/tests/mocks"
)

var asOf = time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC)

// fixtureLoans: two active loans plus one claimed, deterministic at asOf.
//
//	LOAN1: 10000 @ 2% monthly simple, kept 90 days before asOf -> 3 cycles, 600 interest
//	LOAN2: 5000 @ 1% simple with manual duration 4 -> 200 interest
//	LOAN3: claimed, 8000 @ 2% monthly simple, 3 cycles -> 480 interest
func fixtureLoans() []*domain.Loan {
	claimedAt := asOf.AddDate(0, 0, -10)
	return []*domain.Loan{
		{
			ID:           "LOAN1",
			CustomerID:   "CUST1",
			ItemName:     "Gold bangle",
			Principal:    decimal.NewFromInt(10000),
			InterestRate: decimal.NewFromInt(2),
			InterestType: domain.InterestSimple,
			CycleType:    domain.CycleMonthly,
			KeepDate:     "2024-02-15",
			CreatedAt:    time.Date(2024, 2, 15, 10, 0, 0, 0, time.UTC),
		},
		{
			ID:             "LOAN2",
			CustomerID:     "CUST2",
			ItemName:       "Silver anklet",
			Principal:      decimal.NewFromInt(5000),
			InterestRate:   decimal.NewFromInt(1),
			InterestType:   domain.InterestSimple,
			CycleType:      domain.CycleMonthly,
			KeepDate:       "2024-05-15", // zero elapsed cycles; manual duration wins
			ManualDuration: decimal.NewFromInt(4),
			CreatedAt:      time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			ID:           "LOAN3",
			CustomerID:   "CUST1",
			ItemName:     "Gold ring",
			Principal:    decimal.NewFromInt(8000),
			InterestRate: decimal.NewFromInt(2),
			InterestType: domain.InterestSimple,
			CycleType:    domain.CycleMonthly,
			KeepDate:     "2024-02-15",
			Claimed:      true,
			ClaimedAt:    &claimedAt,
			CreatedAt:    time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC),
		},
	}
}

func fixtureCustomers() []*domain.Customer {
	return []*domain.Customer{
		{ID: "CUST1", Name: "Asha", Aadhaar: "1111-2222-3333"},
		{ID: "CUST2", Name: "Ravi", Aadhaar: "4444-5555-6666"},
	}
}

func newViewService(loanRepo *mocks.MockLoanRepository, customerRepo *mocks.MockCustomerRepository) *ledgerService.LedgerService {
	return &ledgerService.LedgerService{
		CustomerRepo: customerRepo,
		LoanRepo:     loanRepo,
		Clock:        clock.Fixed{T: asOf},
	}
}

func TestActiveLoans_ExcludesClaimedKeepsOrder(t *testing.T) {
	mockLoanRepo := &mocks.MockLoanRepository{}
	mockLoanRepo.On("List", mock.Anything).Return(fixtureLoans(), nil)

	service := newViewService(mockLoanRepo, &mocks.MockCustomerRepository{})

	active, err := service.ActiveLoans(context.Background())

	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "LOAN1", active[0].ID)
	assert.Equal(t, "LOAN2", active[1].ID)
}

func TestPortfolioSummary(t *testing.T) {
	mockLoanRepo := &mocks.MockLoanRepository{}
	mockLoanRepo.On("List", mock.Anything).Return(fixtureLoans(), nil)

	service := newViewService(mockLoanRepo, &mocks.MockCustomerRepository{})

	summary, err := service.PortfolioSummary(context.Background(), asOf)

	require.NoError(t, err)
	assert.Equal(t, 2, summary.ActiveLoans)
	assert.True(t, summary.TotalPrincipal.Equal(decimal.NewFromInt(15000)), "principal %s", summary.TotalPrincipal)
	assert.True(t, summary.TotalInterest.Equal(decimal.NewFromInt(800)), "interest %s", summary.TotalInterest)
	assert.True(t, summary.TotalDue.Equal(decimal.NewFromInt(15800)), "due %s", summary.TotalDue)
}

func TestPortfolioSummary_DefaultsAsOfToClock(t *testing.T) {
	mockLoanRepo := &mocks.MockLoanRepository{}
	mockLoanRepo.On("List", mock.Anything).Return(fixtureLoans(), nil)

	service := newViewService(mockLoanRepo, &mocks.MockCustomerRepository{})

	summary, err := service.PortfolioSummary(context.Background(), time.Time{})

	require.NoError(t, err)
	assert.True(t, summary.TotalInterest.Equal(decimal.NewFromInt(800)), "interest %s", summary.TotalInterest)
}

func TestCustomerSummary_RestrictedToActiveLoans(t *testing.T) {
	mockLoanRepo := &mocks.MockLoanRepository{}
	mockCustomerRepo := &mocks.MockCustomerRepository{}

	all := fixtureLoans()
	mockCustomerRepo.On("GetByID", mock.Anything, "CUST1").Return(fixtureCustomers()[0], nil)
	// CUST1 owns LOAN1 (active) and LOAN3 (claimed)
	mockLoanRepo.On("ListByCustomerID", mock.Anything, "CUST1").Return([]*domain.Loan{all[0], all[2]}, nil)

	service := newViewService(mockLoanRepo, mockCustomerRepo)

	summary, err := service.CustomerSummary(context.Background(), "CUST1", asOf)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.ActiveLoans)
	assert.True(t, summary.TotalPrincipal.Equal(decimal.NewFromInt(10000)))
	assert.True(t, summary.TotalInterest.Equal(decimal.NewFromInt(600)))
	assert.True(t, summary.TotalOutstanding.Equal(decimal.NewFromInt(10600)))
}

func TestMonthlyInterestTrend_IncludesClaimedAscending(t *testing.T) {
	mockLoanRepo := &mocks.MockLoanRepository{}
	mockLoanRepo.On("List", mock.Anything).Return(fixtureLoans(), nil)

	service := newViewService(mockLoanRepo, &mocks.MockCustomerRepository{})

	trend, err := service.MonthlyInterestTrend(context.Background(), asOf)

	require.NoError(t, err)
	require.Len(t, trend, 2)
	assert.Equal(t, "2024-02", trend[0].Month)
	assert.True(t, trend[0].Interest.Equal(decimal.NewFromInt(600)), "feb %s", trend[0].Interest)
	// March holds the manual-duration loan and the claimed loan
	assert.Equal(t, "2024-03", trend[1].Month)
	assert.True(t, trend[1].Interest.Equal(decimal.NewFromInt(680)), "mar %s", trend[1].Interest)
}

func TestListLoans_SearchAndComputedDue(t *testing.T) {
	mockLoanRepo := &mocks.MockLoanRepository{}
	mockCustomerRepo := &mocks.MockCustomerRepository{}
	mockLoanRepo.On("List", mock.Anything).Return(fixtureLoans(), nil)
	mockCustomerRepo.On("List", mock.Anything).Return(fixtureCustomers(), nil)

	service := newViewService(mockLoanRepo, mockCustomerRepo)

	rows, err := service.ListLoans(context.Background(), "asha", asOf)

	require.NoError(t, err)
	// matches by customer name: LOAN1 and LOAN3 belong to Asha
	require.Len(t, rows, 2)
	assert.Equal(t, "LOAN1", rows[0].ID)
	assert.Equal(t, "Asha", rows[0].CustomerName)
	assert.True(t, rows[0].TotalDue.Equal(decimal.NewFromInt(10600)), "due %s", rows[0].TotalDue)
	assert.True(t, rows[1].TotalDue.Equal(decimal.NewFromInt(8480)), "due %s", rows[1].TotalDue)
}

func TestDashboard_SnapshotTotals(t *testing.T) {
	mockLoanRepo := &mocks.MockLoanRepository{}
	mockCustomerRepo := &mocks.MockCustomerRepository{}
	mockLoanRepo.On("List", mock.Anything).Return(fixtureLoans(), nil)
	mockCustomerRepo.On("List", mock.Anything).Return(fixtureCustomers(), nil)

	service := newViewService(mockLoanRepo, mockCustomerRepo)

	snapshot, err := service.Dashboard(context.Background(), asOf)

	require.NoError(t, err)
	assert.Equal(t, 2, snapshot.TotalCustomers)
	assert.True(t, snapshot.ActivePrincipal.Equal(decimal.NewFromInt(15000)))
	assert.True(t, snapshot.EstimatedInterest.Equal(decimal.NewFromInt(800)))
	require.Len(t, snapshot.RecentInterests, 2)
	// newest loan first
	assert.Equal(t, "LOAN2", snapshot.RecentInterests[0].LoanID)
	assert.Len(t, snapshot.MonthlyTrend, 2)
}
