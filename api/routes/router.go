package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/edelguur/admin-backend/api/controllers"
	bannercontrollers "github.com/edelguur/admin-backend/api/controllers/banners"
	catalogcontrollers "github.com/edelguur/admin-backend/api/controllers/catalog"
	ordercontrollers "github.com/edelguur/admin-backend/api/controllers/orders"
	productcontrollers "github.com/edelguur/admin-backend/api/controllers/products"
	"github.com/edelguur/admin-backend/api/middleware"
	"github.com/edelguur/admin-backend/internal/auth"
	"github.com/edelguur/admin-backend/internal/catalog"
	"github.com/edelguur/admin-backend/pkg/auth/session"
	"github.com/edelguur/admin-backend/pkg/config"
	"github.com/edelguur/admin-backend/pkg/logger"
	"github.com/edelguur/admin-backend/pkg/metrics"
)

// CatalogService is the full reference-table surface: flat kinds, categories and subcategories.
type CatalogService interface {
	catalogcontrollers.EntryService
	catalogcontrollers.CategoryService
	catalogcontrollers.SubcategoryService
}

type rateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Deps is everything the HTTP surface is built from. Metrics and Gatherer may be nil.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	Pingers  map[string]controllers.Pinger
	Limiter  rateLimiter
	Sessions session.AccessSessionChecker

	Auth     auth.Service
	Catalog  CatalogService
	Products productcontrollers.Service
	Uploader productcontrollers.Uploader
	Variants productcontrollers.VariantService
	Orders   ordercontrollers.Service
	Banners  bannercontrollers.Service

	Metrics  *metrics.HTTPMetrics
	Gatherer prometheus.Gatherer
}

func NewRouter(d Deps) http.Handler {
	cfg, logg := d.Config, d.Logger
	maxUpload := cfg.Media.MaxUploadBytes()

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(d.Metrics),
		middleware.CORS(cfg.CORS),
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
	requireAuth := middleware.Auth(cfg.JWT, d.Sessions, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.Pingers))
	})
	if cfg.Metrics.Enabled && d.Gatherer != nil {
		r.Method(http.MethodGet, cfg.Metrics.Path, metrics.Handler(d.Gatherer))
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, d.Limiter, logg)).Post("/register", controllers.AuthRegister(d.Auth, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, d.Limiter, logg)).Post("/login", controllers.AuthLogin(d.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(d.Auth, logg))
		r.With(requireAuth).Get("/me", controllers.AuthMe(d.Auth, logg))
		r.With(requireAuth).Post("/logout", controllers.AuthLogout(d.Auth, logg))
	})

	r.Route("/api", func(r chi.Router) {
		for _, kind := range catalog.FlatKinds {
			r.Route("/"+string(kind), func(r chi.Router) {
				r.Get("/", catalogcontrollers.List(d.Catalog, kind, logg))
				r.Get("/{id}", catalogcontrollers.Get(d.Catalog, kind, logg))
				r.Group(func(r chi.Router) {
					r.Use(requireAuth)
					r.Post("/", catalogcontrollers.Create(d.Catalog, kind, logg))
					r.Put("/{id}", catalogcontrollers.Update(d.Catalog, kind, logg))
					r.Delete("/{id}", catalogcontrollers.Delete(d.Catalog, kind, logg))
				})
			})
		}

		r.Route("/category", func(r chi.Router) {
			r.Get("/", catalogcontrollers.ListCategories(d.Catalog, logg))
			r.Get("/{id}", productcontrollers.CategoryDetail(d.Products, logg))
			r.Get("/{id}/products", productcontrollers.ByCategory(d.Products, logg))
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", catalogcontrollers.CreateCategory(d.Catalog, maxUpload, logg))
				r.Put("/{id}", catalogcontrollers.UpdateCategory(d.Catalog, maxUpload, logg))
				r.Delete("/{id}", catalogcontrollers.DeleteCategory(d.Catalog, logg))
			})
		})

		r.Route("/subcategory", func(r chi.Router) {
			r.Get("/", catalogcontrollers.ListSubcategories(d.Catalog, logg))
			r.Get("/{id}", catalogcontrollers.GetSubcategory(d.Catalog, logg))
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", catalogcontrollers.CreateSubcategory(d.Catalog, logg))
				r.Put("/{id}", catalogcontrollers.UpdateSubcategory(d.Catalog, logg))
				r.Delete("/{id}", catalogcontrollers.DeleteSubcategory(d.Catalog, logg))
			})
		})

		r.Route("/product", func(r chi.Router) {
			r.Get("/", productcontrollers.List(d.Products, logg))
			r.Get("/latest", productcontrollers.Latest(d.Products, logg))
			r.Get("/popular", productcontrollers.Popular(d.Products, logg))
			r.Get("/all", productcontrollers.All(d.Products, logg))
			r.Get("/category/{id}", productcontrollers.ByCategory(d.Products, logg))
			r.Get("/{id}", productcontrollers.Get(d.Products, logg))
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", productcontrollers.Create(d.Products, logg))
				r.Put("/{id}", productcontrollers.Update(d.Products, logg))
				r.Delete("/{id}", productcontrollers.Delete(d.Products, logg))
			})
		})

		r.Route("/productimg", func(r chi.Router) {
			r.With(requireAuth).Post("/upload-multiple", productcontrollers.UploadImages(d.Uploader, maxUpload, logg))
			r.Get("/{productId}", productcontrollers.ListImages(d.Products, logg))
		})

		r.Route("/variants", func(r chi.Router) {
			r.Get("/{productId}", productcontrollers.ListVariants(d.Variants, logg))
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", productcontrollers.CreateVariant(d.Variants, logg))
				r.Put("/{id}", productcontrollers.UpdateVariant(d.Variants, logg))
				r.Delete("/{id}", productcontrollers.DeleteVariant(d.Variants, logg))
			})
		})

		r.Route("/order", func(r chi.Router) {
			r.Post("/", ordercontrollers.Create(d.Orders, logg))
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/", ordercontrollers.List(d.Orders, logg))
				r.Get("/export", ordercontrollers.ExportCSV(d.Orders, logg))
				r.Get("/export/excel", ordercontrollers.ExportXLSX(d.Orders, logg))
				r.Get("/{id}", ordercontrollers.Get(d.Orders, logg))
				r.Patch("/{id}/status", ordercontrollers.UpdateStatus(d.Orders, logg))
			})
		})

		r.Route("/banner", func(r chi.Router) {
			r.Get("/", bannercontrollers.List(d.Banners, logg))
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", bannercontrollers.Create(d.Banners, maxUpload, logg))
				r.Put("/{id}", bannercontrollers.Update(d.Banners, maxUpload, logg))
				r.Delete("/{id}", bannercontrollers.Delete(d.Banners, logg))
			})
		})
	})

	return r
}
