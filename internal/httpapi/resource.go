package httpapi

import (
	"net/http"
	"net/url"
	"strconv"

	chi "github.com/go-chi/chi/v5"

	"github.com/tinoosan/awqaf/internal/ledger"
	"github.com/tinoosan/awqaf/internal/paging"
	"github.com/tinoosan/awqaf/internal/service/crud"
)

// resource binds one entity service to its routes under /api/{name}.
// K is the identity, T the domain record, F the lookup filter and D the wire
// shape.
type resource[K comparable, T crud.Entity[K], F any, D any] struct {
	s      *Server
	name   string // route segment, e.g. "Accounts"
	label  string // human name, e.g. "Account"
	entity string // log and metric name, e.g. "account"
	svc    crud.Service[K, T, F]

	keyRoute    string
	parseKey    func(*http.Request) (K, error)
	keyPath     func(K) string
	parseFilter func(url.Values) (F, error)
	toDTO       func(T) D
	fromDTO     func(D) T
}

func (res *resource[K, T, F, D]) mount(r chi.Router) {
	r.Route("/api/"+res.name, func(r chi.Router) {
		r.Get("/", res.list)
		r.Get("/Lookup", res.lookup)
		r.With(requireJSON).Post("/", res.create)
		r.With(requireJSON).Put("/", res.update)
		r.Get(res.keyRoute, res.get)
		r.Delete(res.keyRoute, res.remove)
	})
}

func (res *resource[K, T, F, D]) list(w http.ResponseWriter, r *http.Request) {
	req, err := parsePaging(r.URL.Query(), res.s.opts.DefaultItemsPerPage)
	if err != nil {
		res.s.fail(w, r, res.entity, "list", err)
		return
	}
	p, err := res.svc.List(r.Context(), req)
	if err != nil {
		res.s.fail(w, r, res.entity, "list", err)
		return
	}
	toJSON(w, http.StatusOK, paging.Map(p, res.toDTO))
}

func (res *resource[K, T, F, D]) lookup(w http.ResponseWriter, r *http.Request) {
	f, err := res.parseFilter(r.URL.Query())
	if err != nil {
		res.s.fail(w, r, res.entity, "lookup", err)
		return
	}
	p, err := res.svc.Lookup(r.Context(), f)
	if err != nil {
		res.s.fail(w, r, res.entity, "lookup", err)
		return
	}
	toJSON(w, http.StatusOK, paging.Map(p, res.toDTO))
}

func (res *resource[K, T, F, D]) get(w http.ResponseWriter, r *http.Request) {
	key, err := res.parseKey(r)
	if err != nil {
		res.s.fail(w, r, res.entity, "get", err)
		return
	}
	item, err := res.svc.Get(r.Context(), key)
	if err != nil {
		res.s.fail(w, r, res.entity, "get", err)
		return
	}
	toJSON(w, http.StatusOK, res.toDTO(item))
}

func (res *resource[K, T, F, D]) create(w http.ResponseWriter, r *http.Request) {
	item, ok := res.decode(w, r, "create")
	if !ok {
		return
	}
	created, err := res.svc.Create(r.Context(), item)
	if err != nil {
		res.s.fail(w, r, res.entity, "create", err)
		return
	}
	w.Header().Set("Location", "/api/"+res.name+"/"+res.keyPath(created.Key()))
	toJSON(w, http.StatusCreated, res.toDTO(created))
}

func (res *resource[K, T, F, D]) update(w http.ResponseWriter, r *http.Request) {
	item, ok := res.decode(w, r, "update")
	if !ok {
		return
	}
	updated, err := res.svc.Update(r.Context(), item)
	if err != nil {
		res.s.fail(w, r, res.entity, "update", err)
		return
	}
	toJSON(w, http.StatusOK, res.toDTO(updated))
}

func (res *resource[K, T, F, D]) remove(w http.ResponseWriter, r *http.Request) {
	key, err := res.parseKey(r)
	if err != nil {
		res.s.fail(w, r, res.entity, "delete", err)
		return
	}
	if err := res.svc.Delete(r.Context(), key); err != nil {
		res.s.fail(w, r, res.entity, "delete", err)
		return
	}
	toJSON(w, http.StatusOK, messageResponse{Message: res.label + " deleted."})
}

// decode reads and structurally validates the body, writing the 400 itself
// when it fails.
func (res *resource[K, T, F, D]) decode(w http.ResponseWriter, r *http.Request, op string) (T, bool) {
	var zero T
	var d D
	if err := decodeJSON(w, r, &d); err != nil {
		res.s.fail(w, r, res.entity, op, err)
		return zero, false
	}
	if err := res.s.validate.Struct(d); err != nil {
		if details, ok := validationDetails(err); ok {
			toJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Code: "validation_error", Details: details})
			return zero, false
		}
		res.s.fail(w, r, res.entity, op, err)
		return zero, false
	}
	return res.fromDTO(d), true
}

func fiscalYears(s *Server) *resource[uint8, ledger.FiscalYear, ledger.FiscalYearFilter, fiscalYearDTO] {
	return &resource[uint8, ledger.FiscalYear, ledger.FiscalYearFilter, fiscalYearDTO]{
		s: s, name: "FiscalYears", label: "Fiscal Year", entity: "fiscal_year",
		svc:         s.books.FiscalYears,
		keyRoute:    "/{id}",
		parseKey:    fiscalYearKey,
		keyPath:     func(k uint8) string { return strconv.Itoa(int(k)) },
		parseFilter: fiscalYearFilter,
		toDTO:       toFiscalYearDTO,
		fromDTO:     fromFiscalYearDTO,
	}
}

func accounts(s *Server) *resource[int32, ledger.Account, ledger.AccountFilter, accountDTO] {
	return &resource[int32, ledger.Account, ledger.AccountFilter, accountDTO]{
		s: s, name: "Accounts", label: "Account", entity: "account",
		svc:         s.books.Accounts,
		keyRoute:    "/{id}",
		parseKey:    int32Key,
		keyPath:     formatInt32,
		parseFilter: accountFilter,
		toDTO:       toAccountDTO,
		fromDTO:     fromAccountDTO,
	}
}

func accountLedgers(s *Server) *resource[ledger.LedgerKey, ledger.AccountLedger, ledger.LedgerFilter, accountLedgerDTO] {
	return &resource[ledger.LedgerKey, ledger.AccountLedger, ledger.LedgerFilter, accountLedgerDTO]{
		s: s, name: "AccountLedgers", label: "Account Ledger", entity: "account_ledger",
		svc:      s.books.Ledgers,
		keyRoute: "/{fiscalYearId}/{accountId}/{ledgerNo}",
		parseKey: ledgerKey,
		keyPath: func(k ledger.LedgerKey) string {
			return strconv.Itoa(int(k.FiscalYearID)) + "/" + formatInt32(k.AccountID) + "/" + formatInt32(k.LedgerNo)
		},
		parseFilter: ledgerFilter,
		toDTO:       toAccountLedgerDTO,
		fromDTO:     fromAccountLedgerDTO,
	}
}

func vouchers(s *Server) *resource[int32, ledger.Voucher, ledger.VoucherFilter, voucherDTO] {
	return &resource[int32, ledger.Voucher, ledger.VoucherFilter, voucherDTO]{
		s: s, name: "Vouchers", label: "Voucher", entity: "voucher",
		svc:         s.books.Vouchers,
		keyRoute:    "/{id}",
		parseKey:    int32Key,
		keyPath:     formatInt32,
		parseFilter: voucherFilter,
		toDTO:       toVoucherDTO,
		fromDTO:     fromVoucherDTO,
	}
}

func formatInt32(n int32) string { return strconv.FormatInt(int64(n), 10) }
