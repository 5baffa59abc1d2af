// Package apiv1 serves the /api/v1 routes: the gateway callback, voucher
// checks, checkout and subscription history.
package apiv1

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"whatsapp-reseller/internal/domain/ports/adapter"
	"whatsapp-reseller/internal/usecase"
)

type Server struct {
	callbacks usecase.CallbackUseCase
	vouchers  usecase.VoucherUseCase
	checkout  usecase.CheckoutUseCase
	reports   usecase.ReportUseCase
	auth      *AuthManager
	limiter   adapter.RateLimiter // nil disables limiting
	limit     int
	window    time.Duration
	log       *zerolog.Logger
	now       func() time.Time
}

type Deps struct {
	Callbacks usecase.CallbackUseCase
	Vouchers  usecase.VoucherUseCase
	Checkout  usecase.CheckoutUseCase
	Reports   usecase.ReportUseCase
	Auth      *AuthManager
	Limiter   adapter.RateLimiter
	// Public voucher checks allowed per client IP per window.
	CheckLimit  int
	CheckWindow time.Duration
}

func NewServer(d Deps, logger *zerolog.Logger) *Server {
	l := logger.With().Str("component", "apiv1").Logger()
	return &Server{
		callbacks: d.Callbacks,
		vouchers:  d.Vouchers,
		checkout:  d.Checkout,
		reports:   d.Reports,
		auth:      d.Auth,
		limiter:   d.Limiter,
		limit:     d.CheckLimit,
		window:    d.CheckWindow,
		log:       &l,
		now:       time.Now,
	}
}

// RegisterAPIV1 mounts the routes under /api/v1 on r.
func RegisterAPIV1(r chi.Router, s *Server) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/payments/callback", s.handleCallback)
		r.Post("/vouchers/check", s.handlePublicVoucherCheck)

		r.Group(func(r chi.Router) {
			r.Use(s.auth.RequireCustomer)
			r.Post("/me/vouchers/check", s.handleCustomerVoucherCheck)
			r.Post("/me/checkout", s.handleCheckout)
			r.Get("/me/subscriptions", s.handleSubscriptions)
		})
	})
}
