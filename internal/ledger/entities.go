package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side represents the accounting position of a voucher.
type Side string

const (
	// SideDebit records a value on the debit side of a ledger.
	SideDebit Side = "debit"
	// SideCredit records a value on the credit side of a ledger.
	SideCredit Side = "credit"
)

// Valid reports whether s is one of the known sides.
func (s Side) Valid() bool { return s == SideDebit || s == SideCredit }

// Keyed is implemented by every stored record; the key is its full identity.
type Keyed[K comparable] interface {
	Key() K
}

// FiscalYear is an accounting period. Its identity is a small number (0-255).
type FiscalYear struct {
	ID          uint8
	Description string
	StartDate   time.Time
	EndDate     time.Time
	// IsCurrent and IsOpen are plain flags maintained by operators.
	IsCurrent bool
	IsOpen    bool
}

func (y FiscalYear) Key() uint8 { return y.ID }

// Account is a node of the chart of accounts. Level1..Level4 place it in the
// four level account hierarchy.
type Account struct {
	ID      int32
	Name    string
	Level1  int16
	Level2  int16
	Level3  int16
	Level4  int16
	UserID  *int32
	Remarks string
}

func (a Account) Key() int32 { return a.ID }

// LedgerKey identifies an account ledger: one account within one fiscal year,
// split further by ledger number.
type LedgerKey struct {
	FiscalYearID uint8
	AccountID    int32
	LedgerNo     int32
}

// AccountLedger belongs to a FiscalYear and an Account and owns Vouchers.
type AccountLedger struct {
	LedgerKey
	Description string
	Remarks     string
	UserID      *int32
}

func (l AccountLedger) Key() LedgerKey { return l.LedgerKey }

// Voucher is a single posting against an account ledger. The ledger key fields
// are carried on the voucher itself.
type Voucher struct {
	ID int32
	LedgerKey
	VoucherNo int32
	Date      time.Time
	Side      Side
	Amount    decimal.Decimal
	Narration string
	UserID    *int32
}

func (v Voucher) Key() int32 { return v.ID }

// Ledger returns the key of the account ledger the voucher is posted to.
func (v Voucher) Ledger() LedgerKey { return v.LedgerKey }
