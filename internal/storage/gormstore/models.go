package gormstore

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tinoosan/awqaf/internal/ledger"
)

// FiscalYearModel is the persistence model for ledger.FiscalYear.
type FiscalYearModel struct {
	FiscalYearID    int16     `gorm:"column:fiscal_year_id;primaryKey;autoIncrement:false"`
	YearDescription string    `gorm:"column:year_description;size:50;not null;index"`
	StartDate       time.Time `gorm:"column:start_date;not null"`
	EndDate         time.Time `gorm:"column:end_date;not null"`
	IsCurrent       bool      `gorm:"column:is_current;not null"`
	IsOpen          bool      `gorm:"column:is_open;not null"`
}

// TableName returns the table name for GORM
func (FiscalYearModel) TableName() string { return "fiscal_years" }

func (m FiscalYearModel) ToDomain() ledger.FiscalYear {
	return ledger.FiscalYear{
		ID:          uint8(m.FiscalYearID),
		Description: m.YearDescription,
		StartDate:   m.StartDate,
		EndDate:     m.EndDate,
		IsCurrent:   m.IsCurrent,
		IsOpen:      m.IsOpen,
	}
}

func fiscalYearModel(y ledger.FiscalYear) FiscalYearModel {
	return FiscalYearModel{
		FiscalYearID:    int16(y.ID),
		YearDescription: y.Description,
		StartDate:       y.StartDate,
		EndDate:         y.EndDate,
		IsCurrent:       y.IsCurrent,
		IsOpen:          y.IsOpen,
	}
}

// AccountModel is the persistence model for ledger.Account.
type AccountModel struct {
	AccountID   int32  `gorm:"column:account_id;primaryKey;autoIncrement:false"`
	AccountName string `gorm:"column:account_name;size:250;not null"`
	Level1      int16  `gorm:"column:level1;not null;index:idx_accounts_levels"`
	Level2      int16  `gorm:"column:level2;not null;index:idx_accounts_levels"`
	Level3      int16  `gorm:"column:level3;not null;index:idx_accounts_levels"`
	Level4      int16  `gorm:"column:level4;not null;index:idx_accounts_levels"`
	UserID      *int32 `gorm:"column:user_id"`
	Remarks     string `gorm:"column:remarks;size:300;not null"`
}

// TableName returns the table name for GORM
func (AccountModel) TableName() string { return "accounts" }

func (m AccountModel) ToDomain() ledger.Account {
	return ledger.Account{
		ID:      m.AccountID,
		Name:    m.AccountName,
		Level1:  m.Level1,
		Level2:  m.Level2,
		Level3:  m.Level3,
		Level4:  m.Level4,
		UserID:  m.UserID,
		Remarks: m.Remarks,
	}
}

func accountModel(a ledger.Account) AccountModel {
	return AccountModel{
		AccountID:   a.ID,
		AccountName: a.Name,
		Level1:      a.Level1,
		Level2:      a.Level2,
		Level3:      a.Level3,
		Level4:      a.Level4,
		UserID:      a.UserID,
		Remarks:     a.Remarks,
	}
}

// AccountLedgerModel is the persistence model for ledger.AccountLedger.
type AccountLedgerModel struct {
	FiscalYearID int16  `gorm:"column:fiscal_year_id;primaryKey;autoIncrement:false"`
	AccountID    int32  `gorm:"column:account_id;primaryKey;autoIncrement:false"`
	LedgerNo     int32  `gorm:"column:ledger_no;primaryKey;autoIncrement:false"`
	Ledger       string `gorm:"column:ledger;size:250;not null"`
	Remarks      string `gorm:"column:remarks;size:300;not null"`
	UserID       *int32 `gorm:"column:user_id"`

	FiscalYear *FiscalYearModel `gorm:"foreignKey:FiscalYearID;references:FiscalYearID;constraint:OnDelete:RESTRICT"`
	Account    *AccountModel    `gorm:"foreignKey:AccountID;references:AccountID;constraint:OnDelete:RESTRICT"`
}

// TableName returns the table name for GORM
func (AccountLedgerModel) TableName() string { return "account_ledgers" }

func (m AccountLedgerModel) ToDomain() ledger.AccountLedger {
	return ledger.AccountLedger{
		LedgerKey:   ledger.LedgerKey{FiscalYearID: uint8(m.FiscalYearID), AccountID: m.AccountID, LedgerNo: m.LedgerNo},
		Description: m.Ledger,
		Remarks:     m.Remarks,
		UserID:      m.UserID,
	}
}

func accountLedgerModel(l ledger.AccountLedger) AccountLedgerModel {
	return AccountLedgerModel{
		FiscalYearID: int16(l.FiscalYearID),
		AccountID:    l.AccountID,
		LedgerNo:     l.LedgerNo,
		Ledger:       l.Description,
		Remarks:      l.Remarks,
		UserID:       l.UserID,
	}
}

// VoucherModel is the persistence model for ledger.Voucher.
type VoucherModel struct {
	VoucherID    int32           `gorm:"column:voucher_id;primaryKey;autoIncrement:false"`
	FiscalYearID int16           `gorm:"column:fiscal_year_id;not null;index:idx_vouchers_ledger"`
	AccountID    int32           `gorm:"column:account_id;not null;index:idx_vouchers_ledger"`
	LedgerNo     int32           `gorm:"column:ledger_no;not null;index:idx_vouchers_ledger"`
	VoucherNo    int32           `gorm:"column:voucher_no;not null"`
	VoucherDate  time.Time       `gorm:"column:voucher_date;not null"`
	Side         string          `gorm:"column:side;size:6;not null"`
	Amount       decimal.Decimal `gorm:"column:amount;type:numeric(18,2);not null"`
	Narration    string          `gorm:"column:narration;size:500;not null"`
	UserID       *int32          `gorm:"column:user_id"`

	AccountLedger *AccountLedgerModel `gorm:"foreignKey:FiscalYearID,AccountID,LedgerNo;references:FiscalYearID,AccountID,LedgerNo;constraint:OnDelete:RESTRICT"`
}

// TableName returns the table name for GORM
func (VoucherModel) TableName() string { return "vouchers" }

func (m VoucherModel) ToDomain() ledger.Voucher {
	return ledger.Voucher{
		ID:        m.VoucherID,
		LedgerKey: ledger.LedgerKey{FiscalYearID: uint8(m.FiscalYearID), AccountID: m.AccountID, LedgerNo: m.LedgerNo},
		VoucherNo: m.VoucherNo,
		Date:      m.VoucherDate,
		Side:      ledger.Side(m.Side),
		Amount:    m.Amount,
		Narration: m.Narration,
		UserID:    m.UserID,
	}
}

func voucherModel(v ledger.Voucher) VoucherModel {
	return VoucherModel{
		VoucherID:    v.ID,
		FiscalYearID: int16(v.FiscalYearID),
		AccountID:    v.AccountID,
		LedgerNo:     v.LedgerNo,
		VoucherNo:    v.VoucherNo,
		VoucherDate:  v.Date,
		Side:         string(v.Side),
		Amount:       v.Amount,
		Narration:    v.Narration,
		UserID:       v.UserID,
	}
}

// AllModels lists every model for AutoMigrate.
func AllModels() []any {
	return []any{&FiscalYearModel{}, &AccountModel{}, &AccountLedgerModel{}, &VoucherModel{}}
}
