package router

import (
	"net/http"

	"github.com/Hyunju-it/goorm-travel-shopping/internal/handler"
	"github.com/Hyunju-it/goorm-travel-shopping/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers mounted by New.
type Handlers struct {
	Product *handler.ProductHandler
	Cart    *handler.CartHandler
	Order   *handler.OrderHandler
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, auth *middleware.Authenticator, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Recovery -> Logging -> CORS, then authentication per route group.
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.Product.GetAll)
		r.Get("/products/{productId}", h.Product.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)

			r.Get("/cart", h.Cart.Get)
			r.Delete("/cart", h.Cart.Clear)
			r.Post("/cart/items", h.Cart.AddItem)
			r.Put("/cart/items/{productId}", h.Cart.UpdateItem)
			r.Delete("/cart/items/{productId}", h.Cart.RemoveItem)

			r.Post("/orders", h.Order.Create)
			r.Get("/orders", h.Order.ListMine)
			r.Get("/orders/{orderNumber}", h.Order.GetByNumber)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(logger))

				r.Get("/orders/admin/all", h.Order.ListAll)
				r.Patch("/orders/{orderNumber}/status", h.Order.UpdateStatus)
			})
		})
	})

	return r
}
