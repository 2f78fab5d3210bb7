package httpapi

import "github.com/tinoosan/awqaf/internal/ledger"

func toFiscalYearDTO(y ledger.FiscalYear) fiscalYearDTO {
	return fiscalYearDTO{
		FiscalYearID:    int(y.ID),
		YearDescription: y.Description,
		StartDate:       y.StartDate,
		EndDate:         y.EndDate,
		IsCurrent:       y.IsCurrent,
		IsOpen:          y.IsOpen,
	}
}

// fromFiscalYearDTO expects a validated DTO; the id fits uint8 by then.
func fromFiscalYearDTO(d fiscalYearDTO) ledger.FiscalYear {
	return ledger.FiscalYear{
		ID:          uint8(d.FiscalYearID),
		Description: d.YearDescription,
		StartDate:   d.StartDate.UTC(),
		EndDate:     d.EndDate.UTC(),
		IsCurrent:   d.IsCurrent,
		IsOpen:      d.IsOpen,
	}
}

func toAccountDTO(a ledger.Account) accountDTO {
	return accountDTO{
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

func fromAccountDTO(d accountDTO) ledger.Account {
	return ledger.Account{
		ID:      d.AccountID,
		Name:    d.AccountName,
		Level1:  d.Level1,
		Level2:  d.Level2,
		Level3:  d.Level3,
		Level4:  d.Level4,
		UserID:  d.UserID,
		Remarks: d.Remarks,
	}
}

func toAccountLedgerDTO(l ledger.AccountLedger) accountLedgerDTO {
	return accountLedgerDTO{
		FiscalYearID: int(l.FiscalYearID),
		AccountID:    l.AccountID,
		LedgerNo:     l.LedgerNo,
		Ledger:       l.Description,
		Remarks:      l.Remarks,
		UserID:       l.UserID,
	}
}

func fromAccountLedgerDTO(d accountLedgerDTO) ledger.AccountLedger {
	return ledger.AccountLedger{
		LedgerKey:   ledger.LedgerKey{FiscalYearID: uint8(d.FiscalYearID), AccountID: d.AccountID, LedgerNo: d.LedgerNo},
		Description: d.Ledger,
		Remarks:     d.Remarks,
		UserID:      d.UserID,
	}
}

func toVoucherDTO(v ledger.Voucher) voucherDTO {
	return voucherDTO{
		VoucherID:    v.ID,
		FiscalYearID: int(v.FiscalYearID),
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

func fromVoucherDTO(d voucherDTO) ledger.Voucher {
	return ledger.Voucher{
		ID:        d.VoucherID,
		LedgerKey: ledger.LedgerKey{FiscalYearID: uint8(d.FiscalYearID), AccountID: d.AccountID, LedgerNo: d.LedgerNo},
		VoucherNo: d.VoucherNo,
		Date:      d.VoucherDate.UTC(),
		Side:      ledger.Side(d.Side),
		Amount:    d.Amount,
		Narration: d.Narration,
		UserID:    d.UserID,
	}
}
