package books

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tinoosan/awqaf/internal/ledger"
)

// DevSeed summarises what SeedDev created.
type DevSeed struct {
	FiscalYear ledger.FiscalYear
	Accounts   []ledger.Account
	Ledgers    []ledger.AccountLedger
	Vouchers   []ledger.Voucher
}

// SeedDev creates a small, consistent chart for local use through the
// services, so every record passes the same checks as API traffic.
func (b *Books) SeedDev(ctx context.Context) (DevSeed, error) {
	year := time.Now().UTC().Year()
	fy := ledger.FiscalYear{
		ID:          1,
		Description: time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC).Format("2006"),
		StartDate:   time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC),
		IsCurrent:   true,
		IsOpen:      true,
	}
	accounts := []ledger.Account{
		{ID: 1000, Name: "Cash in Hand", Level1: 1, Level2: 1},
		{ID: 1100, Name: "Bank", Level1: 1, Level2: 2},
		{ID: 3000, Name: "Endowment Fund", Level1: 3, Level2: 1},
		{ID: 4000, Name: "Donations", Level1: 4, Level2: 1},
	}
	ledgers := make([]ledger.AccountLedger, 0, len(accounts))
	for _, a := range accounts {
		ledgers = append(ledgers, ledger.AccountLedger{
			LedgerKey:   ledger.LedgerKey{FiscalYearID: fy.ID, AccountID: a.ID, LedgerNo: 1},
			Description: a.Name,
		})
	}
	amount := decimal.RequireFromString("2500.00")
	vouchers := []ledger.Voucher{
		{ID: 1, LedgerKey: ledgers[0].LedgerKey, VoucherNo: 1, Date: fy.StartDate, Side: ledger.SideDebit, Amount: amount, Narration: "Donation received"},
		{ID: 2, LedgerKey: ledgers[3].LedgerKey, VoucherNo: 1, Date: fy.StartDate, Side: ledger.SideCredit, Amount: amount, Narration: "Donation received"},
	}

	seed := DevSeed{FiscalYear: fy, Accounts: accounts, Ledgers: ledgers, Vouchers: vouchers}
	if _, err := b.FiscalYears.Create(ctx, fy); err != nil {
		return seed, err
	}
	for _, a := range accounts {
		if _, err := b.Accounts.Create(ctx, a); err != nil {
			return seed, err
		}
	}
	for _, l := range ledgers {
		if _, err := b.Ledgers.Create(ctx, l); err != nil {
			return seed, err
		}
	}
	for _, v := range vouchers {
		if _, err := b.Vouchers.Create(ctx, v); err != nil {
			return seed, err
		}
	}
	return seed, nil
}
