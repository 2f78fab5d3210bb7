package httpapi

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wire shapes. Structural rules live in validate tags and run before any
// storage call.

type fiscalYearDTO struct {
	FiscalYearID    int       `json:"fiscalYearId" validate:"min=1,max=255"`
	YearDescription string    `json:"yearDescription" validate:"required,max=50"`
	StartDate       time.Time `json:"startDate" validate:"required"`
	EndDate         time.Time `json:"endDate" validate:"required,gtefield=StartDate"`
	IsCurrent       bool      `json:"isCurrent"`
	IsOpen          bool      `json:"isOpen"`
}

type accountDTO struct {
	AccountID   int32  `json:"accountId" validate:"min=1"`
	AccountName string `json:"accountName" validate:"required,max=250"`
	Level1      int16  `json:"level1" validate:"gte=0"`
	Level2      int16  `json:"level2" validate:"gte=0"`
	Level3      int16  `json:"level3" validate:"gte=0"`
	Level4      int16  `json:"level4" validate:"gte=0"`
	UserID      *int32 `json:"userId,omitempty" validate:"omitempty,min=1"`
	Remarks     string `json:"remarks" validate:"max=300"`
}

type accountLedgerDTO struct {
	FiscalYearID int    `json:"fiscalYearId" validate:"min=1,max=255"`
	AccountID    int32  `json:"accountId" validate:"min=1"`
	LedgerNo     int32  `json:"ledgerNo" validate:"min=1"`
	Ledger       string `json:"ledger" validate:"required,max=250"`
	Remarks      string `json:"remarks" validate:"max=300"`
	UserID       *int32 `json:"userId,omitempty" validate:"omitempty,min=1"`
}

type voucherDTO struct {
	VoucherID    int32           `json:"voucherId" validate:"min=1"`
	FiscalYearID int             `json:"fiscalYearId" validate:"min=1,max=255"`
	AccountID    int32           `json:"accountId" validate:"min=1"`
	LedgerNo     int32           `json:"ledgerNo" validate:"min=1"`
	VoucherNo    int32           `json:"voucherNo" validate:"min=1"`
	VoucherDate  time.Time       `json:"voucherDate" validate:"required"`
	Side         string          `json:"side" validate:"required,oneof=debit credit"`
	Amount       decimal.Decimal `json:"amount" validate:"gt=0"`
	Narration    string          `json:"narration" validate:"max=500"`
	UserID       *int32          `json:"userId,omitempty" validate:"omitempty,min=1"`
}

type messageResponse struct {
	Message string `json:"message"`
}
