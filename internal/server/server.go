package server

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/encryptcookie"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/session"
	"github.com/gofiber/fiber/v3/middleware/static"
	"github.com/gofiber/storage/redis/v3"
	"github.com/gofiber/template/html/v3"

	"realflow/internal/config"
	"realflow/internal/handlers"
)

// Server wraps the Fiber app and configuration.
type Server struct {
	App     *fiber.App
	Cfg     *config.Config
	Logger  *slog.Logger
	storage fiber.Storage
}

// New creates a new server with middleware configured. Templates and static
// assets are served from ./views and ./static.
func New(cfg *config.Config, log *slog.Logger) *Server {
	return newServer(cfg, log, "./views", "./static")
}

func newServer(cfg *config.Config, log *slog.Logger, viewsDir, staticDir string) *Server {
	if log == nil {
		log = slog.Default()
	}

	engine := html.New(viewsDir, ".html")
	engine.Reload(cfg.IsDev())

	app := fiber.New(fiber.Config{
		AppName:     handlers.ServiceName,
		Views:       engine,
		ViewsLayout: "layouts/main",
		ErrorHandler: func(c fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "Internal Server Error"

			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
				message = e.Message
			}
			if code >= fiber.StatusInternalServerError {
				log.Error("request failed", "path", c.Path(), "status", code, "error", err)
			}

			if !wantsHTML(c) {
				return c.Status(code).JSON(fiber.Map{
					"status": "error",
					"error":  message,
				})
			}
			return handlers.RenderPage(c, cfg, code, "error", "Error", fiber.Map{
				"Message": message,
			})
		},
	})

	// Sessions and rate-limit counters live in Redis when it is configured so
	// that replicas share them.
	var storage fiber.Storage
	if cfg.RedisURL != "" {
		storage = redis.New(redis.Config{URL: cfg.RedisURL})
	}

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())

	origins := splitOrigins(cfg.CORSOrigins, cfg.BaseURL)
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		AllowCredentials: !slices.Contains(origins, "*"),
		MaxAge:           86400,
	}))

	// Cookie encryption middleware
	app.Use(encryptcookie.New(encryptcookie.Config{
		Key: deriveEncryptionKey(cfg.SessionSecret),
	}))

	// Session middleware; the webhook and metrics endpoints never need one
	sessionMiddleware, _ := session.NewWithStore(session.Config{
		Storage:        storage,
		CookieSecure:   !cfg.IsDev(),
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		Next: func(c fiber.Ctx) bool {
			return !wantsHTML(c)
		},
	})
	app.Use(sessionMiddleware)

	// Rate limiting; webhook deliveries arrive from a few platform egress IPs
	// and must never be refused
	app.Use(limiter.New(limiter.Config{
		Next: func(c fiber.Ctx) bool {
			return isWebhook(c)
		},
		Max:        cfg.RateLimitMax,
		Expiration: 1 * time.Minute,
		Storage:    storage,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"status": "error",
				"error":  "Rate limit exceeded. Please try again later.",
			})
		},
	}))

	// Static files
	app.Get("/static/*", static.New(staticDir))

	return &Server{
		App:     app,
		Cfg:     cfg,
		Logger:  log,
		storage: storage,
	}
}

// Start starts the server on the configured address.
func (s *Server) Start() error {
	s.Logger.Info("starting server", "addr", s.Cfg.ServerAddr)
	return s.App.Listen(s.Cfg.ServerAddr, fiber.ListenConfig{DisableStartupMessage: !s.Cfg.IsDev()})
}

// Shutdown gracefully shuts down the server and releases shared storage.
func (s *Server) Shutdown() error {
	err := s.App.Shutdown()
	if s.storage != nil {
		err = errors.Join(err, s.storage.Close())
	}
	return err
}

// wantsHTML reports whether the request belongs to the browser-facing
// dashboard rather than the JSON API.
func wantsHTML(c fiber.Ctx) bool {
	p := c.Path()
	return p == "/dashboard" || p == "/login" || strings.HasPrefix(p, "/auth/")
}

func isWebhook(c fiber.Ctx) bool {
	return strings.HasPrefix(c.Path(), "/webhook/")
}

// splitOrigins parses the comma-separated CORS origins, falling back to the
// base URL when none are set.
func splitOrigins(origins, baseURL string) []string {
	if strings.TrimSpace(origins) == "" {
		origins = baseURL
	}
	var out []string
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// deriveEncryptionKey derives a 32-byte encryption key from the session secret.
func deriveEncryptionKey(secret string) string {
	hash := sha256.Sum256([]byte(secret))
	return base64.StdEncoding.EncodeToString(hash[:])
}
