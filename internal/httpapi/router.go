package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Extras are optional middleware and endpoints mounted next to the order API.
type Extras struct {
	RateLimit func(http.Handler) http.Handler // ingress limiter, applied to every route
	Metrics   http.Handler                    // GET /metrics
	WS        http.HandlerFunc                // GET /ws
}

func NewRouter(handler *Handler, extras Extras) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if extras.RateLimit != nil {
		r.Use(extras.RateLimit)
	}

	r.Route("/api/orders", func(r chi.Router) {
		r.Post("/", handler.CreateOrder)
		r.Post("/cancel", handler.CancelOrder)
		r.Get("/", handler.ListOrders)
		r.Get("/user/{userId}", handler.GetOrdersByUser)
		r.Get("/{id}", handler.GetOrder)
	})

	if extras.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", extras.Metrics)
	}
	if extras.WS != nil {
		r.Get("/ws", extras.WS)
	}

	return r
}
