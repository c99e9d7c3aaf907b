package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"finvoapi/docs"
	"finvoapi/internal/config"
	"finvoapi/internal/document"
	handlers "finvoapi/internal/http/handler"
	"finvoapi/internal/http/middleware"
	"finvoapi/internal/llm"
	"finvoapi/internal/llm/gemini"
	"finvoapi/internal/llm/openai"
	"finvoapi/internal/otel"
	"finvoapi/internal/service"
	"finvoapi/internal/storage"
)

// @title Invoice Extraction API
// @version 1.0
// @description Extracts structured financial records from invoice and receipt uploads.
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	log := newLogger(cfg.LogLevel)
	slog.SetDefault(log)

	ctx := context.Background()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		log.Error("tracing setup failed", "error", err)
		os.Exit(1)
	}

	invoker, closeInvoker, err := newInvoker(ctx, cfg, log)
	if err != nil {
		log.Error("model client setup failed", "provider", cfg.Model.Provider, "error", err)
		os.Exit(1)
	}

	var archive storage.Archive
	if cfg.Archive.Enabled {
		archive, err = storage.NewMinIO(cfg.Archive)
		if err != nil {
			log.Error("archive setup failed", "error", err)
			os.Exit(1)
		}
	}

	normalizer := document.NewNormalizer(cfg)
	svc := service.NewExtractionService(normalizer, invoker, archive, cfg, log)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		// Leave headroom over the configured file limit so the size gate
		// in the pipeline produces the typed FileTooLarge error instead
		// of Fiber rejecting the body outright.
		BodyLimit:    int(cfg.MaxFileSizeBytes()) * 2,
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: cfg.RequestTimeout,
	})

	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(otelfiber.Middleware())

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Error("metrics setup failed", "error", err)
		os.Exit(1)
	}
	app.Use(prom.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(app, cfg, svc)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig

		log.Info("shutting down")
		if err := app.ShutdownWithTimeout(15 * time.Second); err != nil {
			log.Error("shutdown error", "error", err)
		}
	}()

	log.Info("starting server",
		"port", cfg.Port,
		"provider", cfg.Model.Provider,
		"model", cfg.Model.Name,
		"archive_enabled", cfg.Archive.Enabled,
	)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}

	closeInvoker()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown error", "error", err)
	}
}

// newInvoker builds the configured provider client wrapped with retry,
// rate limiting, and timeout handling.
func newInvoker(ctx context.Context, cfg *config.AppConfig, log *slog.Logger) (llm.Invoker, func(), error) {
	switch cfg.Model.Provider {
	case "gemini":
		client, err := gemini.NewClient(ctx, cfg.Model, log)
		if err != nil {
			return nil, nil, err
		}
		return llm.NewResilient(client, cfg.Invoker, log), func() { client.Close() }, nil
	default:
		client, err := openai.NewClient(cfg.Model, log)
		if err != nil {
			return nil, nil, err
		}
		return llm.NewResilient(client, cfg.Invoker, log), func() {}, nil
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
