package server

import (
	"context"
	"time"

	"bakery-backend/internal/auth"
	"bakery-backend/internal/config"
	"bakery-backend/internal/dashboard"
	"bakery-backend/internal/database"
	"bakery-backend/internal/inventory"
	"bakery-backend/internal/logger"
	"bakery-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Logger   *logger.Logger
	Registry *inventory.Registry
	Ledger   *inventory.Ledger
	// Gatherer nil ise /metrics kaydedilmez.
	Gatherer prometheus.Gatherer
}

func New(d Deps) *fiber.App {
	log := d.Logger
	if log == nil {
		log = logger.Nop()
	}

	app := fiber.New(fiber.Config{
		AppName:      "bakery-backend",
		ErrorHandler: ErrorHandler(log),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	})

	app.Use(recover.New())
	app.Use(RequestLogger(log))
	app.Use(cors.New(cors.Config{
		AllowOrigins: d.Config.CORSOrigins(),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := database.Ping(ctx, d.DB); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "down"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if d.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")
	authCfg := d.Config.Auth
	privileged := auth.RequirePrivileged(authCfg)

	// Auth
	api.Post("/auth/register-manager", auth.RegisterManagerHandler(d.DB))
	api.Post("/auth/login", auth.LoginHandler(authCfg, d.DB))
	api.Get("/auth/me", auth.JWTMiddleware(authCfg), auth.MeHandler(d.DB))
	api.Post("/users",
		auth.JWTMiddleware(authCfg),
		auth.RequireRole(models.RoleManager),
		auth.CreateUserHandler(d.DB),
	)

	// Ürünler
	api.Get("/products", inventory.ListProductsHandler(d.Registry))
	api.Get("/products/:id", inventory.GetProductHandler(d.Registry))
	api.Post("/products", inventory.CreateProductsHandler(d.Registry))
	api.Put("/products", privileged, inventory.UpdateProductHandler(d.Registry))
	api.Delete("/products", privileged, inventory.DeleteProductHandler(d.Registry))
	api.Put("/products/reorder", privileged, inventory.ReorderProductsHandler(d.Registry))
	api.Post("/products/reorder/import", privileged, inventory.ImportProductOrderHandler(d.Registry))

	// Stok
	api.Get("/inventory", inventory.ListInventoryHandler(d.Ledger))
	api.Post("/inventory", inventory.UpsertInventoryHandler(d.Ledger))
	api.Get("/inventory/export", inventory.ExportInventoryHandler(d.Ledger))
	api.Get("/inventory/:productId/:date", inventory.GetInventoryHandler(d.Ledger))

	// Dashboard
	api.Get("/dashboard/summary", dashboard.SummaryHandler(d.Ledger))
	api.Get("/dashboard/summary/:date", dashboard.DateSummaryHandler(d.Ledger))
	api.Get("/dashboard/forecast", dashboard.ForecastHandler(d.Ledger))

	return app
}
