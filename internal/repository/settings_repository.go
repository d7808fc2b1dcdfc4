package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/shashank-sundriyal/padamrajjewellers/internal/domain"
)

type settingsRepository struct {
	db *sqlx.DB
}

func NewSettingsRepository(db *sqlx.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Get(ctx context.Context) (*domain.Settings, error) {
	// singleton: at most one row is ever read
	query := `
		SELECT id, company_name, currency, interest_cycle_days, interest_rate_percent
		FROM settings
		LIMIT 1
	`

	var settings domain.Settings
	err := r.db.GetContext(ctx, &settings, query)
	if err != nil {
		return nil, err
	}

	return &settings, nil
}

func (r *settingsRepository) Create(ctx context.Context, settings *domain.Settings) error {
	query := `
		INSERT INTO settings (id, company_name, currency, interest_cycle_days, interest_rate_percent)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		settings.ID,
		settings.CompanyName,
		settings.Currency,
		settings.InterestCycleDays,
		settings.InterestRatePercent,
	)

	return err
}

func (r *settingsRepository) Update(ctx context.Context, settings *domain.Settings) error {
	query := `
		UPDATE settings
		SET company_name = $2, currency = $3, interest_cycle_days = $4, interest_rate_percent = $5
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query,
		settings.ID,
		settings.CompanyName,
		settings.Currency,
		settings.InterestCycleDays,
		settings.InterestRatePercent,
	)

	return err
}
