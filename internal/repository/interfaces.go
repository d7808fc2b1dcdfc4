package repository

import (
	"context"

	"github.com/shashank-sundriyal/padamrajjewellers/internal/domain"
)

// CustomerRepository defines the interface for customer data operations
type CustomerRepository interface {
	// Create creates a new customer
	Create(ctx context.Context, customer *domain.Customer) error

	// GetByID retrieves a customer by its ID
	GetByID(ctx context.Context, id string) (*domain.Customer, error)

	// List retrieves all customers in persisted order
	List(ctx context.Context) ([]*domain.Customer, error)

	// Update replaces all mutable fields of a customer
	Update(ctx context.Context, customer *domain.Customer) error

	// Delete removes a customer; callers must delete its loans first
	Delete(ctx context.Context, id string) error
}

// LoanRepository defines the interface for loan data operations
type LoanRepository interface {
	// Create creates a new loan
	Create(ctx context.Context, loan *domain.Loan) error

	// GetByID retrieves a loan by its ID
	GetByID(ctx context.Context, id string) (*domain.Loan, error)

	// List retrieves all loans in persisted order
	List(ctx context.Context) ([]*domain.Loan, error)

	// ListByCustomerID retrieves all loans referencing a customer
	ListByCustomerID(ctx context.Context, customerID string) ([]*domain.Loan, error)

	// Update replaces all mutable fields of a loan
	Update(ctx context.Context, loan *domain.Loan) error

	// Delete removes a single loan
	Delete(ctx context.Context, id string) error

	// DeleteByCustomerID removes every loan referencing a customer,
	// used by the customer-delete cascade
	DeleteByCustomerID(ctx context.Context, customerID string) error
}

// SettingsRepository defines the interface for the settings singleton
type SettingsRepository interface {
	// Get retrieves the singleton row; sql.ErrNoRows when absent
	Get(ctx context.Context) (*domain.Settings, error)

	// Create inserts the singleton row
	Create(ctx context.Context, settings *domain.Settings) error

	// Update updates the singleton row in place
	Update(ctx context.Context, settings *domain.Settings) error
}
