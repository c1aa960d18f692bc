package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hanu-sports/storefront/internal/auth"
	"github.com/rs/zerolog"
)

type RouterDeps struct {
	Auth     *AuthHandler
	Products *ProductHandler
	Cart     *CartHandler
	Orders   *OrdersHandler
	Tokens   *auth.TokenManager
	Logger   zerolog.Logger
}

// NewRouter wires every route. Catalog reads are public; cart and orders
// need a token; back-office routes additionally need the admin role.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.Compress(5))
	r.Use(RequestLogger(deps.Logger))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", deps.Auth.Register)
			r.Post("/login", deps.Auth.Login)
			r.With(Authenticator(deps.Tokens)).Get("/me", deps.Auth.Me)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", deps.Products.List)
			r.Get("/category/{category}", deps.Products.ListByCategory)
			r.Get("/{product_id}", deps.Products.Get)
			r.With(Authenticator(deps.Tokens)).Post("/{product_id}/reviews", deps.Products.AddReview)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(Authenticator(deps.Tokens))
			r.Get("/", deps.Cart.GetCart)
			r.Delete("/", deps.Cart.ClearCart)
			r.Post("/items", deps.Cart.AddItem)
			r.Put("/items/{item_key}", deps.Cart.UpdateQuantity)
			r.Delete("/items/{item_key}", deps.Cart.RemoveItem)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(Authenticator(deps.Tokens))
			r.Post("/", deps.Orders.Create)
			r.Get("/", deps.Orders.List)
			r.Get("/{order_id}", deps.Orders.Get)
			r.Put("/{order_id}/pay", deps.Orders.Pay)
			r.Post("/{order_id}/cancel", deps.Orders.Cancel)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(Authenticator(deps.Tokens))
			r.Use(RequireAdmin)
			r.Post("/products", deps.Products.Create)
			r.Put("/products/{product_id}", deps.Products.Update)
			r.Delete("/products/{product_id}", deps.Products.Delete)
			r.Get("/orders", deps.Orders.ListAll)
			r.Put("/orders/{order_id}/status", deps.Orders.UpdateStatus)
		})
	})

	return r
}
