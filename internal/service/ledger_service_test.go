package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shashank-sundriyal/padamrajjewellers/internal/clock"
	"github.com/shashank-sundriyal/padamrajjewellers/internal/domain"
	customError "github.com/shashank-sundriyal/padamrajjewellers/pkg/errors"
	"github.com/shashank-sundriyal/padamrajjewellers/tests/mocks"
)

var testNow = time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

func newTestService(customerRepo *mocks.MockCustomerRepository, loanRepo *mocks.MockLoanRepository, settingsRepo *mocks.MockSettingsRepository) *LedgerService {
	return &LedgerService{
		CustomerRepo: customerRepo,
		LoanRepo:     loanRepo,
		SettingsRepo: settingsRepo,
		Clock:        clock.Fixed{T: testNow},
	}
}

func TestAddCustomer_MandatoryFields(t *testing.T) {
	mockCustomerRepo := &mocks.MockCustomerRepository{}
	service := newTestService(mockCustomerRepo, &mocks.MockLoanRepository{}, &mocks.MockSettingsRepository{})

	_, err := service.AddCustomer(context.Background(), &domain.CustomerRequest{
		Name:    "   ",
		Phone:   "9876500000",
		Aadhaar: "1234-5678-9012",
	})

	assert.Error(t, err)
	assert.ErrorIs(t, err, customError.ErrValidation)
	mockCustomerRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAddCustomer_Success(t *testing.T) {
	mockCustomerRepo := &mocks.MockCustomerRepository{}
	service := newTestService(mockCustomerRepo, &mocks.MockLoanRepository{}, &mocks.MockSettingsRepository{})

	mockCustomerRepo.On("Create", mock.Anything, mock.MatchedBy(func(c *domain.Customer) bool {
		return c.Name == "Asha" && c.ID != "" && c.CreatedAt.Equal(testNow)
	})).Return(nil)

	customer, err := service.AddCustomer(context.Background(), &domain.CustomerRequest{
		Name:    "  Asha ",
		Phone:   "9876500000",
		Aadhaar: "1234-5678-9012",
	})

	assert.NoError(t, err)
	assert.Equal(t, "Asha", customer.Name)
	mockCustomerRepo.AssertExpectations(t)
}

func TestDeleteCustomer_CascadesLoansFirst(t *testing.T) {
	mockCustomerRepo := &mocks.MockCustomerRepository{}
	mockLoanRepo := &mocks.MockLoanRepository{}
	service := newTestService(mockCustomerRepo, mockLoanRepo, &mocks.MockSettingsRepository{})

	customerID := "CUST1"
	mockCustomerRepo.On("GetByID", mock.Anything, customerID).Return(&domain.Customer{ID: customerID}, nil)
	mockLoanRepo.On("DeleteByCustomerID", mock.Anything, customerID).Return(nil)
	mockCustomerRepo.On("Delete", mock.Anything, customerID).Return(nil)

	err := service.DeleteCustomer(context.Background(), customerID)

	assert.NoError(t, err)
	mockLoanRepo.AssertExpectations(t)
	mockCustomerRepo.AssertExpectations(t)
}

func TestAddLoan_RequiresPositivePrincipal(t *testing.T) {
	mockLoanRepo := &mocks.MockLoanRepository{}
	service := newTestService(&mocks.MockCustomerRepository{}, mockLoanRepo, &mocks.MockSettingsRepository{})

	_, err := service.AddLoan(context.Background(), &domain.CreateLoanRequest{
		CustomerID: "CUST1",
		Principal:  decimal.Zero,
	})

	assert.ErrorIs(t, err, customError.ErrValidation)
	mockLoanRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAddLoan_RejectsUnknownCustomer(t *testing.T) {
	mockCustomerRepo := &mocks.MockCustomerRepository{}
	mockLoanRepo := &mocks.MockLoanRepository{}
	service := newTestService(mockCustomerRepo, mockLoanRepo, &mocks.MockSettingsRepository{})

	mockCustomerRepo.On("GetByID", mock.Anything, "MISSING").Return(nil, sql.ErrNoRows)

	_, err := service.AddLoan(context.Background(), &domain.CreateLoanRequest{
		CustomerID: "MISSING",
		Principal:  decimal.NewFromInt(1000),
	})

	assert.ErrorIs(t, err, customError.ErrCustomerNotFound)
	mockLoanRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAddLoan_DefaultsFromSettings(t *testing.T) {
	mockCustomerRepo := &mocks.MockCustomerRepository{}
	mockLoanRepo := &mocks.MockLoanRepository{}
	mockSettingsRepo := &mocks.MockSettingsRepository{}
	service := newTestService(mockCustomerRepo, mockLoanRepo, mockSettingsRepo)

	mockCustomerRepo.On("GetByID", mock.Anything, "CUST1").Return(&domain.Customer{ID: "CUST1"}, nil)
	mockSettingsRepo.On("Get", mock.Anything).Return(&domain.Settings{
		ID:                  "S1",
		CompanyName:         "ABC",
		Currency:            "₹",
		InterestCycleDays:   30,
		InterestRatePercent: decimal.NewFromFloat(2.5),
	}, nil)
	mockLoanRepo.On("Create", mock.Anything, mock.MatchedBy(func(loan *domain.Loan) bool {
		return loan.InterestRate.Equal(decimal.NewFromFloat(2.5)) &&
			loan.InterestType == domain.InterestSimple &&
			loan.CycleType == domain.CycleMonthly &&
			loan.KeepDate != "" &&
			!loan.Claimed
	})).Return(nil)

	loan, err := service.AddLoan(context.Background(), &domain.CreateLoanRequest{
		CustomerID: "CUST1",
		ItemName:   "Gold bangle",
		Principal:  decimal.NewFromInt(10000),
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.JewelleryOther, loan.JewelleryType)
	mockLoanRepo.AssertExpectations(t)
}

func TestClaimLoan_SetsClaimedAtOnce(t *testing.T) {
	mockLoanRepo := &mocks.MockLoanRepository{}
	service := newTestService(&mocks.MockCustomerRepository{}, mockLoanRepo, &mocks.MockSettingsRepository{})

	loanID := "LOAN1"
	mockLoanRepo.On("GetByID", mock.Anything, loanID).Return(&domain.Loan{
		ID:        loanID,
		Principal: decimal.NewFromInt(1000),
	}, nil)
	mockLoanRepo.On("Update", mock.Anything, mock.MatchedBy(func(loan *domain.Loan) bool {
		return loan.Claimed && loan.ClaimedAt != nil && loan.ClaimedAt.Equal(testNow)
	})).Return(nil)

	loan, err := service.ClaimLoan(context.Background(), loanID)

	assert.NoError(t, err)
	assert.True(t, loan.Claimed)
	mockLoanRepo.AssertExpectations(t)
}

func TestClaimLoan_RejectsSecondClaim(t *testing.T) {
	mockLoanRepo := &mocks.MockLoanRepository{}
	service := newTestService(&mocks.MockCustomerRepository{}, mockLoanRepo, &mocks.MockSettingsRepository{})

	claimedAt := testNow.AddDate(0, -1, 0)
	loanID := "LOAN1"
	mockLoanRepo.On("GetByID", mock.Anything, loanID).Return(&domain.Loan{
		ID:        loanID,
		Claimed:   true,
		ClaimedAt: &claimedAt,
	}, nil)

	_, err := service.ClaimLoan(context.Background(), loanID)

	assert.ErrorIs(t, err, customError.ErrLoanAlreadyClaimed)
	// the original claim timestamp must stand: no write happens
	mockLoanRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateLoan_DoesNotTouchClaimState(t *testing.T) {
	mockLoanRepo := &mocks.MockLoanRepository{}
	service := newTestService(&mocks.MockCustomerRepository{}, mockLoanRepo, &mocks.MockSettingsRepository{})

	claimedAt := testNow.AddDate(0, -2, 0)
	loanID := "LOAN1"
	mockLoanRepo.On("GetByID", mock.Anything, loanID).Return(&domain.Loan{
		ID:         loanID,
		CustomerID: "CUST1",
		Claimed:    true,
		ClaimedAt:  &claimedAt,
		Principal:  decimal.NewFromInt(1000),
	}, nil)
	mockLoanRepo.On("Update", mock.Anything, mock.MatchedBy(func(loan *domain.Loan) bool {
		return loan.Claimed && loan.ClaimedAt.Equal(claimedAt) && loan.CustomerID == "CUST1"
	})).Return(nil)

	_, err := service.UpdateLoan(context.Background(), loanID, &domain.UpdateLoanRequest{
		ItemName:  "Silver chain",
		Principal: decimal.NewFromInt(2000),
	})

	assert.NoError(t, err)
	mockLoanRepo.AssertExpectations(t)
}

func previewFixtureLoan() *domain.Loan {
	return &domain.Loan{
		ID:           "LOAN1",
		CustomerID:   "CUST1",
		Principal:    decimal.NewFromInt(10000),
		InterestRate: decimal.NewFromInt(2),
		InterestType: domain.InterestSimple,
		CycleType:    domain.CycleMonthly,
		KeepDate:     "2024-02-15",
	}
}

func TestPreviewLoan_UntilOverride(t *testing.T) {
	mockLoanRepo := &mocks.MockLoanRepository{}
	service := newTestService(&mocks.MockCustomerRepository{}, mockLoanRepo, &mocks.MockSettingsRepository{})

	mockLoanRepo.On("GetByID", mock.Anything, "LOAN1").Return(previewFixtureLoan(), nil)

	// 2024-02-15 .. 2024-03-17 is 31 days, one monthly cycle
	preview, err := service.PreviewLoan(context.Background(), "LOAN1", &domain.PreviewRequest{Until: "2024-03-17"})
	assert.NoError(t, err)
	assert.True(t, preview.Cycles.Equal(decimal.NewFromInt(1)), "cycles %s", preview.Cycles)
	assert.True(t, preview.Interest.Equal(decimal.NewFromInt(200)), "interest %s", preview.Interest)
	assert.True(t, preview.TotalPayable.Equal(decimal.NewFromInt(10200)), "total %s", preview.TotalPayable)

	// omitted until defaults to the clock: 90 days, three cycles
	preview, err = service.PreviewLoan(context.Background(), "LOAN1", &domain.PreviewRequest{})
	assert.NoError(t, err)
	assert.True(t, preview.Cycles.Equal(decimal.NewFromInt(3)), "cycles %s", preview.Cycles)
	assert.True(t, preview.Interest.Equal(decimal.NewFromInt(600)), "interest %s", preview.Interest)

	mockLoanRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestPreviewLoan_RateAndTypeOverrides(t *testing.T) {
	mockLoanRepo := &mocks.MockLoanRepository{}
	service := newTestService(&mocks.MockCustomerRepository{}, mockLoanRepo, &mocks.MockSettingsRepository{})

	mockLoanRepo.On("GetByID", mock.Anything, "LOAN1").Return(previewFixtureLoan(), nil)

	rate := decimal.NewFromInt(3)
	preview, err := service.PreviewLoan(context.Background(), "LOAN1", &domain.PreviewRequest{
		Until:        "2024-05-15",
		InterestRate: &rate,
		InterestType: domain.InterestCompound,
	})
	assert.NoError(t, err)
	assert.Equal(t, domain.InterestCompound, preview.InterestType)
	assert.True(t, preview.InterestRate.Equal(rate))
	// 10000 * (1.03^3 - 1)
	assert.True(t, preview.Interest.Equal(decimal.RequireFromString("927.27")), "interest %s", preview.Interest)
	assert.True(t, preview.TotalPayable.Equal(decimal.RequireFromString("10927.27")), "total %s", preview.TotalPayable)

	preview, err = service.PreviewLoan(context.Background(), "LOAN1", &domain.PreviewRequest{
		Until:     "2024-05-15",
		CycleType: domain.CycleWeekly,
	})
	assert.NoError(t, err)
	assert.Equal(t, domain.CycleWeekly, preview.CycleType)
	assert.True(t, preview.Cycles.Equal(decimal.NewFromInt(12)), "cycles %s", preview.Cycles)
	assert.True(t, preview.Interest.Equal(decimal.NewFromInt(2400)), "interest %s", preview.Interest)

	mockLoanRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestPreviewLoan_ManualDurationWins(t *testing.T) {
	mockLoanRepo := &mocks.MockLoanRepository{}
	service := newTestService(&mocks.MockCustomerRepository{}, mockLoanRepo, &mocks.MockSettingsRepository{})

	loan := previewFixtureLoan()
	loan.ManualDuration = decimal.NewFromInt(5)
	mockLoanRepo.On("GetByID", mock.Anything, "LOAN1").Return(loan, nil)

	// a recorded manual duration is a frozen cycle count: the until date
	// must not move the result
	for _, until := range []string{"2024-03-17", "2024-12-31"} {
		preview, err := service.PreviewLoan(context.Background(), "LOAN1", &domain.PreviewRequest{Until: until})
		assert.NoError(t, err)
		assert.True(t, preview.Cycles.Equal(decimal.NewFromInt(5)), "cycles %s at %s", preview.Cycles, until)
		assert.True(t, preview.Interest.Equal(decimal.NewFromInt(1000)), "interest %s at %s", preview.Interest, until)
		assert.True(t, preview.TotalPayable.Equal(decimal.NewFromInt(11000)), "total %s at %s", preview.TotalPayable, until)
	}
}

func TestGetSettings_CreatesSingletonLazily(t *testing.T) {
	mockSettingsRepo := &mocks.MockSettingsRepository{}
	service := newTestService(&mocks.MockCustomerRepository{}, &mocks.MockLoanRepository{}, mockSettingsRepo)

	mockSettingsRepo.On("Get", mock.Anything).Return(nil, sql.ErrNoRows)
	mockSettingsRepo.On("Create", mock.Anything, mock.MatchedBy(func(s *domain.Settings) bool {
		return s.ID != "" && s.CompanyName == domain.DefaultCompanyName && s.InterestCycleDays == domain.DefaultCycleDays
	})).Return(nil)

	settings, err := service.GetSettings(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, domain.DefaultCurrency, settings.Currency)
	assert.True(t, settings.InterestRatePercent.Equal(domain.DefaultInterestRatePercent))
	mockSettingsRepo.AssertExpectations(t)
}

func TestSaveSettings_UpdatesExistingSingleton(t *testing.T) {
	mockSettingsRepo := &mocks.MockSettingsRepository{}
	service := newTestService(&mocks.MockCustomerRepository{}, &mocks.MockLoanRepository{}, mockSettingsRepo)

	mockSettingsRepo.On("Get", mock.Anything).Return(&domain.Settings{ID: "S1"}, nil)
	mockSettingsRepo.On("Update", mock.Anything, mock.MatchedBy(func(s *domain.Settings) bool {
		return s.ID == "S1" && s.CompanyName == "Padamraj Jewellers"
	})).Return(nil)

	settings, err := service.SaveSettings(context.Background(), &domain.SettingsRequest{
		CompanyName:         "Padamraj Jewellers",
		Currency:            "₹",
		InterestCycleDays:   30,
		InterestRatePercent: decimal.NewFromFloat(2.0),
	})

	assert.NoError(t, err)
	assert.Equal(t, "S1", settings.ID)
	mockSettingsRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	mockSettingsRepo.AssertExpectations(t)
}

func TestSaveSettings_CreatesWhenAbsent(t *testing.T) {
	mockSettingsRepo := &mocks.MockSettingsRepository{}
	service := newTestService(&mocks.MockCustomerRepository{}, &mocks.MockLoanRepository{}, mockSettingsRepo)

	mockSettingsRepo.On("Get", mock.Anything).Return(nil, sql.ErrNoRows)
	mockSettingsRepo.On("Create", mock.Anything, mock.MatchedBy(func(s *domain.Settings) bool {
		return s.ID != "" && s.CompanyName == "Padamraj Jewellers"
	})).Return(nil)

	_, err := service.SaveSettings(context.Background(), &domain.SettingsRequest{
		CompanyName:         "Padamraj Jewellers",
		Currency:            "₹",
		InterestCycleDays:   30,
		InterestRatePercent: decimal.NewFromFloat(2.0),
	})

	assert.NoError(t, err)
	mockSettingsRepo.AssertExpectations(t)
}

func newCachedTestService(t *testing.T, settingsRepo *mocks.MockSettingsRepository) (*LedgerService, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	service := newTestService(&mocks.MockCustomerRepository{}, &mocks.MockLoanRepository{}, settingsRepo)
	service.cache = client
	return service, mr
}

func TestSaveSettings_InvalidatesDashboardCacheOnUpdate(t *testing.T) {
	mockSettingsRepo := &mocks.MockSettingsRepository{}
	service, mr := newCachedTestService(t, mockSettingsRepo)

	mockSettingsRepo.On("Get", mock.Anything).Return(&domain.Settings{ID: "S1"}, nil)
	mockSettingsRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, mr.Set(dashboardCacheKey, "{}"))

	_, err := service.SaveSettings(context.Background(), &domain.SettingsRequest{
		CompanyName:         "Padamraj Jewellers",
		Currency:            "₹",
		InterestCycleDays:   30,
		InterestRatePercent: decimal.NewFromFloat(2.0),
	})

	assert.NoError(t, err)
	assert.False(t, mr.Exists(dashboardCacheKey), "snapshot must not survive a settings save")
}

func TestSaveSettings_InvalidatesDashboardCacheOnCreate(t *testing.T) {
	mockSettingsRepo := &mocks.MockSettingsRepository{}
	service, mr := newCachedTestService(t, mockSettingsRepo)

	mockSettingsRepo.On("Get", mock.Anything).Return(nil, sql.ErrNoRows)
	mockSettingsRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, mr.Set(dashboardCacheKey, "{}"))

	_, err := service.SaveSettings(context.Background(), &domain.SettingsRequest{
		CompanyName:         "Padamraj Jewellers",
		Currency:            "₹",
		InterestCycleDays:   30,
		InterestRatePercent: decimal.NewFromFloat(2.0),
	})

	assert.NoError(t, err)
	assert.False(t, mr.Exists(dashboardCacheKey), "snapshot must not survive a settings save")
}
