package api

import (
	"appliance-intake-service/internal/api/handlers"
	"appliance-intake-service/internal/ports"
	"appliance-intake-service/internal/services"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Deps struct {
	Geocoder ports.Geocoder
	Resolver *services.Resolver
	History  ports.HistoryStore
	Intakes  ports.IntakeRepository
	Metrics  http.Handler

	StaticDir     string
	AdminToken    string
	SecureCookies bool
	// TrustProxy honors X-Forwarded-For / X-Real-IP as the client address.
	// Enable only behind a proxy that overwrites those headers.
	TrustProxy     bool
	RateLimitRPS   float64
	RateLimitBurst int
	Now            func() time.Time
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// Handlers stay unaware of concrete adapters.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if d.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(accessLog)
	r.Use(middleware.Recoverer)

	sessions := handlers.Sessions{Secure: d.SecureCookies}
	geocodeHandler := &handlers.GeocodeHandler{Geocoder: d.Geocoder}
	intakeHandler := &handlers.IntakeHandler{Resolver: d.Resolver, Sessions: sessions}
	historyHandler := &handlers.HistoryHandler{Store: d.History, Sessions: sessions, Now: d.Now}
	intakesHandler := &handlers.IntakesHandler{Repo: d.Intakes, Token: d.AdminToken}

	r.HandleFunc("/health", handlers.Health)
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics)
	}

	r.Route("/api", func(api chi.Router) {
		api.With(rateLimit(d.RateLimitRPS, d.RateLimitBurst)).HandleFunc("/geocode", geocodeHandler.Geocode)
		api.HandleFunc("/intake/search", intakeHandler.Search)
		api.HandleFunc("/intake/skip", intakeHandler.Skip)
		api.HandleFunc("/history", historyHandler.History)
		if d.Intakes != nil {
			api.HandleFunc("/intakes", intakesHandler.List)
		}
	})

	if d.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(d.StaticDir)))
	}

	return r
}
