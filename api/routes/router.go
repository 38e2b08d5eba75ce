package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/retailpulse/retailpulse-backend/api/controllers"
	"github.com/retailpulse/retailpulse-backend/api/middleware"
	"github.com/retailpulse/retailpulse-backend/internal/entities"
	"github.com/retailpulse/retailpulse-backend/internal/inventory"
	"github.com/retailpulse/retailpulse-backend/internal/products"
	"github.com/retailpulse/retailpulse-backend/internal/reports"
	"github.com/retailpulse/retailpulse-backend/internal/sales"
	"github.com/retailpulse/retailpulse-backend/internal/stockledger"
	"github.com/retailpulse/retailpulse-backend/pkg/config"
	"github.com/retailpulse/retailpulse-backend/pkg/db"
	"github.com/retailpulse/retailpulse-backend/pkg/logger"
	"github.com/retailpulse/retailpulse-backend/pkg/metrics"
	pkgredis "github.com/retailpulse/retailpulse-backend/pkg/redis"
)

// RouterDeps carries everything the HTTP adapter wires together.
type RouterDeps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    *pkgredis.Client
	Metrics  *metrics.POSMetrics
	Gatherer prometheus.Gatherer

	// Idempotency overrides the replay store; when nil the Redis client
	// backs it.
	Idempotency pkgredis.IdempotencyStore

	Products  products.Service
	Entities  entities.Service
	Stock     stockledger.Service
	Inventory inventory.Service
	Sales     sales.Service
	Reports   reports.Service
}

func NewRouter(deps RouterDeps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
		middleware.Metrics(deps.Metrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, readyRedis(deps.Redis)))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	idemStore := deps.Idempotency
	if idemStore == nil && deps.Redis != nil {
		idemStore = deps.Redis
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.CreateProduct(deps.Products, logg))
			r.Get("/", controllers.ListProducts(deps.Products, logg))
			r.Get("/sku/{sku}", controllers.GetProductBySKU(deps.Products, logg))
			r.Route("/{productID}", func(r chi.Router) {
				r.Get("/", controllers.GetProduct(deps.Products, logg))
				r.Patch("/", controllers.UpdateProduct(deps.Products, logg))
				r.Delete("/", controllers.DeleteProduct(deps.Products, logg))
				r.Post("/restore", controllers.RestoreProduct(deps.Products, logg))
				r.Get("/stock", controllers.ListStockByProduct(deps.Stock, logg))
				r.Get("/stock/{entityID}", controllers.GetStockBalance(deps.Stock, logg))
			})
		})

		r.Route("/entities", func(r chi.Router) {
			r.Post("/", controllers.CreateEntity(deps.Entities, logg))
			r.Get("/", controllers.ListEntities(deps.Entities, logg))
			r.Route("/{entityID}", func(r chi.Router) {
				r.Get("/", controllers.GetEntity(deps.Entities, logg))
				r.Patch("/", controllers.UpdateEntity(deps.Entities, logg))
				r.Delete("/", controllers.DeleteEntity(deps.Entities, logg))
				r.Post("/restore", controllers.RestoreEntity(deps.Entities, logg))
				r.Get("/stock", controllers.ListStockByEntity(deps.Stock, logg))
				r.Get("/sales", controllers.ListSalesByEntity(deps.Sales, logg))
				r.Get("/sales/suspended", controllers.ListSuspendedSales(deps.Sales, logg))
				r.Post("/sales/suspended/{mementoID}/restore", controllers.RestoreSuspendedSale(deps.Sales, logg))
			})
		})

		r.Route("/transfers", func(r chi.Router) {
			r.Post("/", controllers.RecordTransfer(deps.Inventory, logg))
			r.Get("/", controllers.ListTransferHistory(deps.Inventory, logg))
		})

		r.Route("/sales", func(r chi.Router) {
			r.Post("/", controllers.CreateSale(deps.Sales, logg))
			r.Post("/calculate-tax", controllers.CalculateTax(deps.Sales, logg))
			r.Post("/suspend", controllers.SuspendSale(deps.Sales, logg))
			r.Route("/{saleID}", func(r chi.Router) {
				r.Get("/", controllers.GetSale(deps.Sales, logg))
				r.Put("/", controllers.UpdateSale(deps.Sales, logg))
				r.Get("/full", controllers.GetFullSale(deps.Sales, logg))
			})
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/inventory", controllers.ExportInventoryReport(deps.Reports, logg))
			r.Get("/sales", controllers.ExportSalesReport(deps.Reports, logg))
		})
	})

	return r
}

type redisReadiness interface {
	Ping(ctx context.Context) error
}

func readyRedis(client *pkgredis.Client) redisReadiness {
	if client == nil {
		return nil
	}
	return client
}
