package httpapi

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	chi "github.com/go-chi/chi/v5"

	"github.com/tinoosan/awqaf/internal/errs"
	"github.com/tinoosan/awqaf/internal/ledger"
	"github.com/tinoosan/awqaf/internal/paging"
)

// parsePaging reads page and itemsPerPage, defaulting absent values. Range
// checks are left to the service.
func parsePaging(q url.Values, defaultPerPage int) (paging.Request, error) {
	req := paging.Request{Page: paging.DefaultPage, ItemsPerPage: defaultPerPage}
	var err error
	if raw := strings.TrimSpace(q.Get("page")); raw != "" {
		if req.Page, err = strconv.Atoi(raw); err != nil {
			return req, errs.Invalid("page must be an integer")
		}
	}
	if raw := strings.TrimSpace(q.Get("itemsPerPage")); raw != "" {
		if req.ItemsPerPage, err = strconv.Atoi(raw); err != nil {
			return req, errs.Invalid("itemsPerPage must be an integer")
		}
	}
	return req, nil
}

func parseFiscalYearID(name, raw string) (uint8, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 8)
	if err != nil {
		return 0, errs.Invalid("%s must be between 0 and 255", name)
	}
	return uint8(n), nil
}

func parseInt32(name, raw string) (int32, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 32)
	if err != nil {
		return 0, errs.Invalid("%s must be a 32-bit integer", name)
	}
	return int32(n), nil
}

func parseInt16(name, raw string) (int16, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 16)
	if err != nil {
		return 0, errs.Invalid("%s must be a 16-bit integer", name)
	}
	return int16(n), nil
}

// optional parses q[name] when present and returns nil otherwise.
func optional[T any](q url.Values, name string, parse func(name, raw string) (T, error)) (*T, error) {
	if !q.Has(name) {
		return nil, nil
	}
	v, err := parse(name, q.Get(name))
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func parseBool(name, raw string) (bool, error) {
	b, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return false, errs.Invalid("%s must be true or false", name)
	}
	return b, nil
}

func parseString(_, raw string) (string, error) { return raw, nil }

// Path keys.

func fiscalYearKey(r *http.Request) (uint8, error) {
	return parseFiscalYearID("fiscalYearId", chi.URLParam(r, "id"))
}

func int32Key(r *http.Request) (int32, error) {
	return parseInt32("id", chi.URLParam(r, "id"))
}

func ledgerKey(r *http.Request) (ledger.LedgerKey, error) {
	fy, err := parseFiscalYearID("fiscalYearId", chi.URLParam(r, "fiscalYearId"))
	if err != nil {
		return ledger.LedgerKey{}, err
	}
	acc, err := parseInt32("accountId", chi.URLParam(r, "accountId"))
	if err != nil {
		return ledger.LedgerKey{}, err
	}
	no, err := parseInt32("ledgerNo", chi.URLParam(r, "ledgerNo"))
	if err != nil {
		return ledger.LedgerKey{}, err
	}
	return ledger.LedgerKey{FiscalYearID: fy, AccountID: acc, LedgerNo: no}, nil
}

// Lookup filters.

func fiscalYearFilter(q url.Values) (ledger.FiscalYearFilter, error) {
	var f ledger.FiscalYearFilter
	var err error
	if f.Year, err = optional(q, "year", parseString); err != nil {
		return f, err
	}
	if f.IsCurrent, err = optional(q, "isCurrent", parseBool); err != nil {
		return f, err
	}
	if f.IsOpen, err = optional(q, "isOpen", parseBool); err != nil {
		return f, err
	}
	return f, nil
}

func accountFilter(q url.Values) (ledger.AccountFilter, error) {
	var f ledger.AccountFilter
	levels := []struct {
		name string
		dst  **int16
	}{{"l1", &f.Level1}, {"l2", &f.Level2}, {"l3", &f.Level3}, {"l4", &f.Level4}}
	for _, l := range levels {
		v, err := optional(q, l.name, parseInt16)
		if err != nil {
			return f, err
		}
		*l.dst = v
	}
	return f, nil
}

func keyFilter(q url.Values) (ledger.KeyFilter, error) {
	var f ledger.KeyFilter
	var err error
	if f.FiscalYearID, err = optional(q, "fiscalYearId", parseFiscalYearID); err != nil {
		return f, err
	}
	if f.AccountID, err = optional(q, "accountId", parseInt32); err != nil {
		return f, err
	}
	if f.LedgerNo, err = optional(q, "ledgerNo", parseInt32); err != nil {
		return f, err
	}
	return f, nil
}

func ledgerFilter(q url.Values) (ledger.LedgerFilter, error) {
	kf, err := keyFilter(q)
	return ledger.LedgerFilter{KeyFilter: kf}, err
}

func voucherFilter(q url.Values) (ledger.VoucherFilter, error) {
	kf, err := keyFilter(q)
	return ledger.VoucherFilter{KeyFilter: kf}, err
}
