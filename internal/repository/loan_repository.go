package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/shashank-sundriyal/padamrajjewellers/internal/domain"
)

const loanColumns = `id, customer_id, item_name, jewellery_type, weight, principal, interest_rate,
		interest_type, cycle_type, keep_date, manual_duration, claimed, claimed_at, created_at`

type loanRepository struct {
	db *sqlx.DB
}

func NewLoanRepository(db *sqlx.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	query := `
		INSERT INTO loans (` + loanColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.ExecContext(ctx, query,
		loan.ID,
		loan.CustomerID,
		loan.ItemName,
		loan.JewelleryType,
		loan.Weight,
		loan.Principal,
		loan.InterestRate,
		loan.InterestType,
		loan.CycleType,
		loan.KeepDate,
		loan.ManualDuration,
		loan.Claimed,
		loan.ClaimedAt,
		loan.CreatedAt,
	)

	return err
}

func (r *loanRepository) GetByID(ctx context.Context, id string) (*domain.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE id = $1
	`

	var loan domain.Loan
	err := r.db.GetContext(ctx, &loan, query, id)
	if err != nil {
		return nil, err
	}

	return &loan, nil
}

func (r *loanRepository) List(ctx context.Context) ([]*domain.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		ORDER BY created_at, id
	`

	var loans []*domain.Loan
	err := r.db.SelectContext(ctx, &loans, query)
	if err != nil {
		return nil, err
	}

	return loans, nil
}

func (r *loanRepository) ListByCustomerID(ctx context.Context, customerID string) ([]*domain.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE customer_id = $1
		ORDER BY created_at, id
	`

	var loans []*domain.Loan
	err := r.db.SelectContext(ctx, &loans, query, customerID)
	if err != nil {
		return nil, err
	}

	return loans, nil
}

func (r *loanRepository) Update(ctx context.Context, loan *domain.Loan) error {
	query := `
		UPDATE loans
		SET item_name = $2, jewellery_type = $3, weight = $4, principal = $5, interest_rate = $6,
			interest_type = $7, cycle_type = $8, keep_date = $9, manual_duration = $10,
			claimed = $11, claimed_at = $12
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query,
		loan.ID,
		loan.ItemName,
		loan.JewelleryType,
		loan.Weight,
		loan.Principal,
		loan.InterestRate,
		loan.InterestType,
		loan.CycleType,
		loan.KeepDate,
		loan.ManualDuration,
		loan.Claimed,
		loan.ClaimedAt,
	)

	return err
}

func (r *loanRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM loans WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *loanRepository) DeleteByCustomerID(ctx context.Context, customerID string) error {
	query := `DELETE FROM loans WHERE customer_id = $1`

	_, err := r.db.ExecContext(ctx, query, customerID)
	return err
}
