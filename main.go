package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberLogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/technofriends/youtube-insights/airtable"
	"github.com/technofriends/youtube-insights/audio"
	"github.com/technofriends/youtube-insights/config"
	"github.com/technofriends/youtube-insights/handlers"
	"github.com/technofriends/youtube-insights/llm"
	"github.com/technofriends/youtube-insights/logger"
	"github.com/technofriends/youtube-insights/services/process"
	"github.com/technofriends/youtube-insights/services/transcript"
	"github.com/technofriends/youtube-insights/speech"
	"github.com/technofriends/youtube-insights/validation"
	"github.com/technofriends/youtube-insights/youtube"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logConfig, err := logger.NewLogger(cfg.LogDir, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Configuration resolver
	resolver := airtable.NewClient(airtable.Config{
		APIKey:    cfg.Airtable.APIKey,
		BaseID:    cfg.Airtable.BaseID,
		TableName: cfg.Airtable.TableName,
		Timeout:   cfg.Airtable.Timeout,
	})

	// Transcript acquisition pipeline
	transcriptService := transcript.NewService(
		youtube.NewTimedTextClient("en"),
		youtube.NewYTDLPDownloader(cfg.Transcript.YTDLPPath),
		audio.NewFFmpegSplitter(cfg.Transcript.FFmpegPath),
		speech.NewWhisperClient(speech.WhisperConfig{
			APIKey:            cfg.Providers.OpenAIKey,
			Model:             cfg.Transcript.WhisperModel,
			RequestsPerSecond: cfg.Transcript.TranscribeRPS,
			Burst:             cfg.Transcript.TranscribeBurst,
		}),
		transcript.Config{
			TempDir:             cfg.TempDir,
			ChunkThresholdBytes: cfg.Transcript.ChunkThresholdBytes,
			ChunkDuration:       cfg.Transcript.ChunkDuration,
			ProcessTimeout:      cfg.Transcript.ProcessTimeout,
		},
	)

	// Model dispatch
	registry := llm.NewRegistry(llm.Credentials{
		OpenAIKey:     cfg.Providers.OpenAIKey,
		AnthropicKey:  cfg.Providers.AnthropicKey,
		GroqKey:       cfg.Providers.GroqKey,
		PerplexityKey: cfg.Providers.PerplexityKey,
	})
	dispatcher := llm.NewDispatcher(registry)

	processService := process.NewService(resolver, transcriptService, dispatcher, process.Config{
		RequestTimeout: cfg.RequestTimeout,
	})

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		IdleTimeout:           cfg.IdleTimeout,
		ErrorHandler:          handlers.ErrorHandler,
		DisableStartupMessage: !cfg.Debug,
		StrictRouting:         true,
		CaseSensitive:         true,
		AppName:               "youtube-insights " + cfg.Version,
	})

	// Setup middleware
	setupMiddleware(app, cfg, logConfig)

	// Setup routes
	webhookHandler := handlers.NewWebhookHandler(processService, validation.NewValidator())
	app.Post("/process_video", webhookHandler.ProcessVideo)
	app.Get("/health", handlers.HealthCheck)

	// Graceful shutdown setup
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-shutdownChan
		log.Println("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := app.ShutdownWithContext(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// Start server
	serverAddr := ":" + cfg.ServerPort
	if cfg.Debug {
		log.Printf("Server starting on http://localhost%s", serverAddr)
	}

	if err := app.Listen(serverAddr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}

func setupMiddleware(app *fiber.App, cfg *config.Config, logConfig *fiberLogger.Config) {
	if cfg.Middleware.EnableRecover {
		app.Use(recover.New(recover.Config{
			EnableStackTrace: cfg.Debug,
		}))
	}

	if cfg.Middleware.EnableRequestID {
		app.Use(requestid.New(requestid.Config{
			Header: "X-Request-ID",
			Generator: func() string {
				return uuid.New().String()
			},
		}))
	}

	if cfg.Middleware.EnableLogger {
		app.Use(fiberLogger.New(*logConfig))
	}

	if cfg.Middleware.EnableCORS {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     strings.Join(cfg.CORS.AllowedOrigins, ","),
			AllowMethods:     strings.Join(cfg.CORS.AllowedMethods, ","),
			AllowHeaders:     strings.Join(cfg.CORS.AllowedHeaders, ","),
			ExposeHeaders:    strings.Join(cfg.CORS.ExposedHeaders, ","),
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           cfg.CORS.MaxAge,
		}))
	}

	if cfg.Middleware.EnableRateLimit && cfg.RateLimit.Enabled {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimit.RequestsPerMinute,
			Expiration: time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"error": "Rate limit exceeded",
				})
			},
		}))
	}

	if cfg.Middleware.EnableCompress {
		app.Use(compress.New(compress.Config{
			Level: compress.LevelDefault,
		}))
	}

	if cfg.Middleware.EnableETag {
		app.Use(etag.New())
	}

	if cfg.Middleware.EnableDebugMode && cfg.Debug {
		app.Use(func(c *fiber.Ctx) error {
			c.Set("X-Debug-Mode", "true")
			return c.Next()
		})
	}
}
