// internal/api/router.go
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"libris/internal/catalog"
	"libris/internal/loans"
)

// Options configures the HTTP surface.
type Options struct {
	Logger       *slog.Logger
	RateLimitRPS int
	AdminKeyHash string
	AdminKeySalt string
}

// New assembles the service router: catalog and loan endpoints behind
// request-ID, access-log and rate-limit middleware, with catalog
// mutations and fine settlement guarded by the admin key.
func New(books *catalog.Handler, lending *loans.Handler, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(RequestLogger(logger))
	if opts.RateLimitRPS > 0 {
		r.Use(RateLimit(opts.RateLimitRPS))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Group(func(r chi.Router) {
		books.Routes(r)
		lending.Routes(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(AdminAuth(opts.AdminKeyHash, opts.AdminKeySalt))
		books.AdminRoutes(r)
		lending.AdminRoutes(r)
	})

	return r
}
