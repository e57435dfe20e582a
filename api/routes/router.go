package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/neonshoplabs/neonshop-backend/api/controllers"
	"github.com/neonshoplabs/neonshop-backend/api/middleware"
	"github.com/neonshoplabs/neonshop-backend/internal/auth"
	"github.com/neonshoplabs/neonshop-backend/internal/cart"
	"github.com/neonshoplabs/neonshop-backend/internal/categories"
	"github.com/neonshoplabs/neonshop-backend/internal/guestcart"
	"github.com/neonshoplabs/neonshop-backend/internal/orders"
	"github.com/neonshoplabs/neonshop-backend/internal/products"
	"github.com/neonshoplabs/neonshop-backend/internal/support"
	"github.com/neonshoplabs/neonshop-backend/internal/users"
	"github.com/neonshoplabs/neonshop-backend/internal/wishlist"
	"github.com/neonshoplabs/neonshop-backend/pkg/auth/session"
	"github.com/neonshoplabs/neonshop-backend/pkg/config"
	"github.com/neonshoplabs/neonshop-backend/pkg/db"
	"github.com/neonshoplabs/neonshop-backend/pkg/logger"
	"github.com/neonshoplabs/neonshop-backend/pkg/metrics"
	"github.com/neonshoplabs/neonshop-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	httpMetrics *metrics.HTTPMetrics,
	sessions session.AccessSessionChecker,
	authService auth.Service,
	productService products.Service,
	categoryService categories.Service,
	guestCartStore *guestcart.Store,
	cartService cart.Service,
	wishlistService wishlist.Service,
	orderService orders.Service,
	supportService support.Service,
	userService users.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Method(http.MethodGet, "/metrics", httpMetrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductBrowse(productService, logg))
			r.Get("/{slug}", controllers.ProductDetail(productService, logg))
		})
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.CategoryList(categoryService, logg))
			r.Get("/{slug}", controllers.CategoryDetail(categoryService, logg))
		})

		r.Post("/support", controllers.SupportCreate(supportService, logg))

		r.Route("/guest/cart", func(r chi.Router) {
			r.Use(middleware.GuestToken(logg))
			r.Get("/", controllers.GuestCartFetch(guestCartStore, logg))
			r.Post("/items", controllers.GuestCartAddItem(guestCartStore, logg))
			r.Put("/items/{productId}", controllers.GuestCartUpdateItem(guestCartStore, logg))
			r.Delete("/items/{productId}", controllers.GuestCartRemoveItem(guestCartStore, logg))
			r.Delete("/", controllers.GuestCartClear(guestCartStore, logg))
		})

		r.Route("/auth", func(r chi.Router) {
			r.With(
				middleware.AuthRateLimit(loginPolicy, redisClient, logg),
				middleware.GuestToken(logg),
			).Post("/login", controllers.AuthLogin(authService, logg))
			r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.AuthRegister(authService, logg))
			r.Post("/refresh", controllers.AuthRefresh(authService, logg))
			r.Post("/password-reset/request", controllers.PasswordResetRequest(authService, logg))
			r.Post("/password-reset/confirm", controllers.PasswordResetConfirm(authService, logg))
			r.Post("/email-verification/request", controllers.EmailVerificationRequest(authService, logg))
			r.Post("/email-verification/confirm", controllers.EmailVerificationConfirm(authService, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessions, logg))

			r.Post("/auth/logout", controllers.AuthLogout(authService, logg))
			r.Get("/me", controllers.Profile(userService, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(cartService, logg))
				r.Post("/items", controllers.CartAddItem(cartService, logg))
				r.Put("/items/{productId}", controllers.CartUpdateItem(cartService, logg))
				r.Delete("/items/{productId}", controllers.CartRemoveItem(cartService, logg))
				r.Delete("/", controllers.CartClear(cartService, logg))
			})
			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", controllers.WishlistFetch(wishlistService, logg))
				r.Post("/items", controllers.WishlistAddItem(wishlistService, logg))
				r.Delete("/items/{productId}", controllers.WishlistRemoveItem(wishlistService, logg))
			})

			r.Post("/checkout", controllers.Checkout(orderService, logg))
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.OrderHistory(orderService, logg))
				r.Get("/{orderId}", controllers.OrderDetail(orderService, logg))
				r.Post("/{orderId}/cancel", controllers.OrderCancel(orderService, logg))
			})
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.RequireRole("admin", logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.AdminProductList(productService, logg))
			r.Post("/", controllers.AdminProductCreate(productService, logg))
			r.Patch("/{productId}", controllers.AdminProductUpdate(productService, logg))
			r.Delete("/{productId}", controllers.AdminProductDelete(productService, logg))
		})
		r.Route("/categories", func(r chi.Router) {
			r.Post("/", controllers.AdminCategoryCreate(categoryService, logg))
			r.Patch("/{categoryId}", controllers.AdminCategoryUpdate(categoryService, logg))
			r.Delete("/{categoryId}", controllers.AdminCategoryDelete(categoryService, logg))
		})
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminOrderList(orderService, logg))
			r.Get("/{orderId}", controllers.AdminOrderDetail(orderService, logg))
			r.Post("/{orderId}/status", controllers.AdminOrderUpdateStatus(orderService, logg))
		})
		r.Route("/customers", func(r chi.Router) {
			r.Get("/", controllers.AdminCustomerList(userService, logg))
			r.Get("/{customerId}", controllers.AdminCustomerDetail(userService, logg))
			r.Post("/{customerId}/active", controllers.AdminCustomerSetActive(userService, logg))
		})
		r.Route("/support", func(r chi.Router) {
			r.Get("/", controllers.AdminSupportList(supportService, logg))
			r.Get("/{messageId}", controllers.AdminSupportDetail(supportService, logg))
			r.Post("/{messageId}/status", controllers.AdminSupportUpdateStatus(supportService, logg))
		})
	})

	return r
}
