package handlers

import (
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/prometheus/client_golang/prometheus"

	applog "storefront/internal/log"
	"storefront/internal/metrics"
	"storefront/web"
)

type Options struct {
	CORSOrigins  string
	RateLimitMax int
	// LimiterStorage shares rate-limit counters between instances; nil keeps them in memory.
	LimiterStorage fiber.Storage
	Metrics        *metrics.Metrics
	// Gatherer backs GET /metrics; nil disables the route.
	Gatherer prometheus.Gatherer
}

// NewApp builds the Fiber application with middleware and routes.
func NewApp(d *Deps, opts Options) *fiber.App {
	templates, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		panic(err)
	}
	engine := html.NewFileSystem(http.FS(templates), ".html")

	app := fiber.New(fiber.Config{
		AppName:      "storefront",
		Views:        engine,
		BodyLimit:    1 << 20,
		ErrorHandler: ErrorHandler,
	})

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(accessLog(opts.Metrics))
	app.Use(recover.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{AllowOrigins: opts.CORSOrigins}))
	if opts.RateLimitMax > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        opts.RateLimitMax,
			Expiration: time.Minute,
			Storage:    opts.LimiterStorage,
			Next: func(c *fiber.Ctx) bool {
				p := c.Path()
				return p == "/healthz" || p == "/metrics" || strings.HasPrefix(p, "/payment/webhook")
			},
			LimitReached: func(c *fiber.Ctx) error {
				applog.Security(c, "rate.limit.hit", nil)
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
			},
		}))
	}

	// ---------- Routes ----------
	app.Post("/cart", d.CartHandler.Add)
	app.Get("/cart/:userId", d.CartHandler.View)

	app.Post("/payment", d.PaymentHandler.Initiate)
	app.Post("/payment/webhook", d.PaymentHandler.Webhook)

	app.Get("/orders/:id", d.OrderHandler.Get)
	app.Get("/order/:id", d.OrderHandler.Receipt)
	app.Get("/users/:id/orders", d.OrderHandler.History)
	app.Get("/products/:id", d.ProductHandler.Detail)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		if err := d.DB.PingContext(c.UserContext()); err != nil {
			applog.Error(c, "health.store.fail", err, nil)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"ok": false})
		}
		return c.JSON(fiber.Map{"ok": true})
	})
	if opts.Gatherer != nil {
		app.Get("/metrics", metrics.Handler(opts.Gatherer))
	}

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "route not found"})
	})
	return app
}

// accessLog runs the error handler itself so the logged status is the one sent.
func accessLog(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		if err := c.Next(); err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		elapsed := time.Since(start)
		status := c.Response().StatusCode()
		m.ObserveRequest(c.Method(), c.Route().Path, status, elapsed)
		applog.Info(c, "http.access", map[string]any{"latency_ms": elapsed.Milliseconds()})
		return nil
	}
}
