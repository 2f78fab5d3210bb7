// Package httpapi wires the HTTP surface of the books service.
// It keeps handlers thin, delegating business rules to the service layer.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/tinoosan/awqaf/internal/paging"
	"github.com/tinoosan/awqaf/internal/service/books"
)

// ReadyChecker reports whether the backing store can serve requests.
type ReadyChecker interface {
	Ready(ctx context.Context) error
}

// Options tune request parsing.
type Options struct {
	// DefaultItemsPerPage applies when itemsPerPage is absent from a listing.
	DefaultItemsPerPage int
}

// Server wires handlers and middleware using Chi.
type Server struct {
	books    *books.Books
	ready    ReadyChecker
	log      *slog.Logger
	validate *validator.Validate
	opts     Options
	rt       *chi.Mux
}

// New constructs the HTTP server with routes and middleware.
func New(b *books.Books, ready ReadyChecker, logger *slog.Logger, opts Options) *Server {
	if opts.DefaultItemsPerPage < 1 {
		opts.DefaultItemsPerPage = paging.DefaultItemsPerPage
	}
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(echoRequestID)
	r.Use(requestLogger(logger))
	r.Use(recoverer(logger))
	r.Use(metricsMiddleware)

	s := &Server{
		books:    b,
		ready:    ready,
		log:      logger,
		validate: newValidator(),
		opts:     opts,
		rt:       r,
	}
	s.routes()
	return s
}

// Handler exposes the configured http.Handler.
func (s *Server) Handler() http.Handler { return s.rt }

func (s *Server) routes() {
	fiscalYears(s).mount(s.rt)
	accounts(s).mount(s.rt)
	accountLedgers(s).mount(s.rt)
	vouchers(s).mount(s.rt)

	s.rt.Get("/healthz", s.healthz)
	s.rt.Get("/readyz", s.readyz)
	s.rt.Method(http.MethodGet, "/metrics", metricsHandler())
}
