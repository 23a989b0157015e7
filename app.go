package main

import (
	"context"
	"time"

	"bookstore/internal/config"
	"bookstore/internal/events"
	"bookstore/internal/handlers"
	"bookstore/internal/metrics"
	"bookstore/internal/middleware"
	"bookstore/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type dependencies struct {
	stores    *stores
	publisher events.Publisher
	registry  *prometheus.Registry
}

// application is the wired service: the HTTP app plus the services behind it.
type application struct {
	http    *fiber.App
	auth    *services.AuthService
	authors *services.AuthorService
	books   *services.BookService
	orders  *services.OrderService
}

func newApp(cfg config.Config, log zerolog.Logger, deps dependencies) *application {
	st := deps.stores

	// --- Services ---
	authService := services.NewAuthService(st.users, cfg.JWTSecret, cfg.JWTTTL, log)
	authorService := services.NewAuthorService(st.authors, log)
	bookService := services.NewBookService(st.books, st.authors, deps.publisher, log)
	orderService := services.NewOrderService(st.orders, st.books, deps.publisher, metrics.NewOrders(deps.registry), log)

	// --- Fiber ---
	app := fiber.New(fiber.Config{
		AppName:      "bookstore",
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		ErrorHandler: handlers.ErrorHandler(log),
	})
	app.Use(recover.New())
	if log.GetLevel() <= zerolog.InfoLevel {
		app.Use(fiberlogger.New())
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := st.ping(c.UserContext()); err != nil {
			log.Warn().Err(err).Msg("health check: database unreachable")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":   "degraded",
				"time":     time.Now().Format(time.RFC3339),
				"database": "down",
			})
		}
		return c.JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "up",
			"events":   cfg.EventsBackend,
		})
	})
	if deps.registry != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.registry, promhttp.HandlerOpts{})))
	}

	// --- API Routes ---
	apiV1 := app.Group("/api/v1", middleware.Authenticate(authService))
	handlers.NewAuthHandler(authService).RegisterRoutes(apiV1)
	handlers.NewBookHandler(bookService).RegisterRoutes(apiV1)
	handlers.NewAuthorHandler(authorService, bookService).RegisterRoutes(apiV1)
	handlers.NewOrderHandler(orderService).RegisterRoutes(apiV1)

	return &application{
		http:    app,
		auth:    authService,
		authors: authorService,
		books:   bookService,
		orders:  orderService,
	}
}

// noPing is the health probe of stores without a connection to check.
func noPing(context.Context) error { return nil }
