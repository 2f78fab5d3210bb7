package ledger

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tinoosan/awqaf/internal/errs"
)

// Amounts are stored as numeric(18,2).
const AmountScale = 2

// MaxAmount is the exclusive upper bound for voucher amounts (16 integer digits).
var MaxAmount = decimal.New(1, 16)

// Validate checks the fiscal year's own rules.
func (y FiscalYear) Validate() error {
	if y.ID == 0 {
		return errs.Invalid("fiscalYearId must be between 1 and 255")
	}
	if strings.TrimSpace(y.Description) == "" {
		return errs.Invalid("yearDescription is required")
	}
	if y.StartDate.IsZero() || y.EndDate.IsZero() {
		return errs.Invalid("startDate and endDate are required")
	}
	if !IsCalendarDate(y.StartDate) || !IsCalendarDate(y.EndDate) {
		return errs.Invalid("startDate and endDate must be dates at midnight UTC")
	}
	if y.EndDate.Before(y.StartDate) {
		return errs.Invalid("endDate must not be before startDate")
	}
	return nil
}

func (a Account) Validate() error {
	if a.ID < 1 {
		return errs.Invalid("accountId must be positive")
	}
	if strings.TrimSpace(a.Name) == "" {
		return errs.Invalid("accountName is required")
	}
	if a.Level1 < 0 || a.Level2 < 0 || a.Level3 < 0 || a.Level4 < 0 {
		return errs.Invalid("level codes must not be negative")
	}
	return validUser(a.UserID)
}

// Validate checks a ledger key has every component set.
func (k LedgerKey) Validate() error {
	if k.FiscalYearID == 0 {
		return errs.Invalid("fiscalYearId must be between 1 and 255")
	}
	if k.AccountID < 1 {
		return errs.Invalid("accountId must be positive")
	}
	if k.LedgerNo < 1 {
		return errs.Invalid("ledgerNo must be positive")
	}
	return nil
}

func (l AccountLedger) Validate() error {
	if err := l.LedgerKey.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(l.Description) == "" {
		return errs.Invalid("ledger is required")
	}
	return validUser(l.UserID)
}

func (v Voucher) Validate() error {
	if v.ID < 1 {
		return errs.Invalid("voucherId must be positive")
	}
	if err := v.LedgerKey.Validate(); err != nil {
		return err
	}
	if v.Date.IsZero() {
		return errs.Invalid("voucherDate is required")
	}
	if !IsCalendarDate(v.Date) {
		return errs.Invalid("voucherDate must be a date at midnight UTC")
	}
	if !v.Side.Valid() {
		return errs.Invalid("side must be debit or credit")
	}
	if !v.Amount.IsPositive() {
		return errs.Invalid("amount must be > 0")
	}
	if !v.Amount.Equal(v.Amount.Round(AmountScale)) {
		return errs.Invalid("amount must have at most %d decimal places", AmountScale)
	}
	if v.Amount.GreaterThanOrEqual(MaxAmount) {
		return errs.Invalid("amount must be < %s", MaxAmount.String())
	}
	return validUser(v.UserID)
}

func validUser(id *int32) error {
	if id != nil && *id < 1 {
		return errs.Invalid("userId must be positive")
	}
	return nil
}

// IsCalendarDate reports whether t falls exactly on midnight UTC, the only
// instants a date column stores without loss.
func IsCalendarDate(t time.Time) bool {
	u := t.UTC()
	return u.Hour() == 0 && u.Minute() == 0 && u.Second() == 0 && u.Nanosecond() == 0
}
