// Package export serializes a read-only snapshot of the three entity
// collections into a tabular workbook, one sheet per entity. It is a
// pure projection: all derived figures arrive precomputed.
package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/shashank-sundriyal/padamrajjewellers/internal/domain"
	"github.com/shashank-sundriyal/padamrajjewellers/internal/metrics"
)

// Sheet names match the legacy backup format.
const (
	SheetCustomers = "customers"
	SheetLoans     = "loan"
	SheetSettings  = "settings"

	Filename    = "jewellery_data_export.xlsx"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var customerHeader = []interface{}{
	"id", "name", "phone", "alt_phone", "aadhaar", "address", "notes", "created_at",
}

var loanHeader = []interface{}{
	"id", "customer_id", "customer_name", "item_name", "jewellery_type", "weight",
	"principal", "interest_rate", "interest_type", "cycle_type", "keep_date",
	"manual_duration", "claimed", "claimed_at", "created_at", "total_due",
}

var settingsHeader = []interface{}{
	"id", "company_name", "currency", "interest_cycle_days", "interest_rate_percent",
}

// Workbook builds the xlsx backup and returns its raw bytes.
func Workbook(customers []*domain.Customer, loans []*domain.LoanWithDue, settings *domain.Settings) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeCustomerSheet(f, customers); err != nil {
		return nil, err
	}
	if err := writeLoanSheet(f, loans); err != nil {
		return nil, err
	}
	if err := writeSettingsSheet(f, settings); err != nil {
		return nil, err
	}

	// drop the default sheet excelize creates
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}

	metrics.WorkbookExports.Inc()
	return buf.Bytes(), nil
}

func writeCustomerSheet(f *excelize.File, customers []*domain.Customer) error {
	if _, err := f.NewSheet(SheetCustomers); err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetCustomers, "A1", &customerHeader); err != nil {
		return err
	}

	for i, c := range customers {
		row := []interface{}{
			c.ID, c.Name, c.Phone, c.AltPhone, c.Aadhaar, c.Address, c.Notes,
			formatTime(c.CreatedAt),
		}
		if err := f.SetSheetRow(SheetCustomers, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}
	return nil
}

func writeLoanSheet(f *excelize.File, loans []*domain.LoanWithDue) error {
	if _, err := f.NewSheet(SheetLoans); err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetLoans, "A1", &loanHeader); err != nil {
		return err
	}

	for i, l := range loans {
		claimed := "No"
		if l.Claimed {
			claimed = "Yes"
		}
		claimedAt := ""
		if l.ClaimedAt != nil {
			claimedAt = formatTime(*l.ClaimedAt)
		}
		row := []interface{}{
			l.ID, l.CustomerID, l.CustomerName, l.ItemName, l.JewelleryType, l.Weight,
			l.Principal.String(), l.InterestRate.String(), string(l.InterestType),
			string(l.CycleType), l.KeepDate, l.ManualDuration.String(),
			claimed, claimedAt, formatTime(l.CreatedAt), l.TotalDue.String(),
		}
		if err := f.SetSheetRow(SheetLoans, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}
	return nil
}

func writeSettingsSheet(f *excelize.File, settings *domain.Settings) error {
	if _, err := f.NewSheet(SheetSettings); err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetSettings, "A1", &settingsHeader); err != nil {
		return err
	}

	row := []interface{}{
		settings.ID, settings.CompanyName, settings.Currency,
		settings.InterestCycleDays, settings.InterestRatePercent.String(),
	}
	return f.SetSheetRow(SheetSettings, "A2", &row)
}

func formatTime(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
