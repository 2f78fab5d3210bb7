package memory

import (
	"github.com/tinoosan/awqaf/internal/ledger"
	"github.com/tinoosan/awqaf/internal/storage"
)

// Compile-time interface assertions documenting which interfaces Store satisfies.
var (
	_ storage.Store = (*Store)(nil)

	// Tables double as the commit target of their own transactions.
	_ storage.Applier[int32, ledger.Voucher] = (*Table[int32, ledger.Voucher, ledger.VoucherFilter])(nil)
)
