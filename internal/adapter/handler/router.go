package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	Trips         *TripHandler
	Reservations  *ReservationHandler
	Confirmations *ConfirmationHandler
	Auth          *Authenticator
	Metrics       prometheus.Gatherer
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if cfg.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Metrics, promhttp.HandlerOpts{}))
	}

	r.Get("/trips", cfg.Trips.List)
	r.Get("/trips/{id}", cfg.Trips.Get)

	r.Group(func(pr chi.Router) {
		pr.Use(cfg.Auth.Middleware)

		pr.Post("/trips", cfg.Trips.Create)
		pr.Put("/trips/{id}", cfg.Trips.Update)
		pr.Delete("/trips/{id}", cfg.Trips.Cancel)
		pr.Post("/trips/{id}/complete", cfg.Trips.Complete)
		pr.Post("/trips/{id}/reservations", cfg.Reservations.Create)

		pr.Get("/reservations/{id}", cfg.Reservations.Get)
		pr.Delete("/reservations/{id}", cfg.Reservations.Cancel)
		pr.Post("/reservations/{id}/cancel-by-owner", cfg.Reservations.CancelByOwner)

		pr.Post("/confirmations/{id}/respond", cfg.Confirmations.Respond)
	})

	return r
}
