package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/openai/openai-go/option"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shubham852v/ai-attendance/internal/capture"
	"github.com/shubham852v/ai-attendance/internal/config"
	"github.com/shubham852v/ai-attendance/internal/handler"
	"github.com/shubham852v/ai-attendance/internal/httpmiddleware"
	"github.com/shubham852v/ai-attendance/internal/media"
	"github.com/shubham852v/ai-attendance/internal/queue"
	"github.com/shubham852v/ai-attendance/internal/record"
	"github.com/shubham852v/ai-attendance/internal/speech"
	"github.com/shubham852v/ai-attendance/internal/store"
	"github.com/shubham852v/ai-attendance/internal/summary"
	"github.com/shubham852v/ai-attendance/internal/vision"
)

func main() {
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg); err != nil {
		log.Fatalf("api server failed: %v", err)
	}
}

func run(cfg config.App) error {
	ctx := context.Background()

	db, err := store.Open(store.Config{
		Driver:     cfg.DatabaseDriver,
		URL:        cfg.DatabaseURL,
		SQLitePath: cfg.SQLitePath,
	})
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	var redisClient *store.Redis
	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
		log.Println("queue: in-memory channel")
	} else {
		redisClient = store.NewRedis(cfg.RedisAddr)
		defer redisClient.Close()
		q = queue.NewRedisQueue(redisClient.Client, "")
		log.Println("queue: redis list at", cfg.RedisAddr)
	}

	repo := record.NewRepository(db.Client)
	records := record.NewService(repo, q)

	// Kiosk media: MQTT camera and microphone topics, or a built-in
	// static frame so development works without any device.
	var source media.Source
	var mic *media.Mic
	if cfg.CameraSource == "mqtt" {
		client, err := media.Connect(cfg.MQTTBroker, cfg.MQTTClientID)
		if err != nil {
			log.Printf("warning: mqtt broker unreachable, using static frames: %v", err)
			source = media.NewStatic(media.PlaceholderFrame())
		} else {
			defer client.Disconnect(250)
			source = media.NewCamera(client, cfg.KioskID, cfg.CameraCommands)
			mic = media.NewMic(client, cfg.KioskID)
			log.Printf("kiosk media on %s (kiosk %s)", cfg.MQTTBroker, cfg.KioskID)
		}
	} else {
		source = media.NewStatic(media.PlaceholderFrame())
		log.Println("camera source: static frame")
	}

	var classifier vision.Classifier
	switch cfg.ClassifierBackend {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			log.Println("warning: GEMINI_API_KEY not set, face classification disabled")
		} else if g, err := vision.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel); err != nil {
			log.Printf("warning: gemini classifier unavailable: %v", err)
		} else {
			classifier = g
		}
	case "rest":
		if cfg.ClassifierURL == "" {
			log.Println("warning: CLASSIFIER_URL not set, face classification disabled")
		} else {
			classifier = vision.NewREST(cfg.ClassifierURL)
		}
	default:
		log.Printf("warning: unknown classifier backend %q, face classification disabled", cfg.ClassifierBackend)
	}

	// Voice needs both the transcription key and a kiosk microphone.
	var recognizer speech.Recognizer
	switch {
	case cfg.OpenAIAPIKey == "":
		log.Println("warning: OPENAI_API_KEY not set, voice input disabled")
	case mic == nil:
		log.Println("warning: no kiosk microphone, voice input disabled")
	default:
		recognizer = speech.NewWhisper(mic, cfg.SpeechLanguage, option.WithAPIKey(cfg.OpenAIAPIKey))
	}

	controller := capture.New(source, classifier, recognizer, records, capture.Config{
		CallTimeout: cfg.CallTimeout,
		MessageTTL:  cfg.MessageTTL,
	})
	defer controller.Close()

	var summarizer handler.Summarizer
	if cfg.GeminiAPIKey == "" {
		log.Println("warning: GEMINI_API_KEY not set, daily summaries disabled")
	} else if gen, err := summary.NewGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel); err != nil {
		log.Printf("warning: summary generator unavailable: %v", err)
	} else {
		summarizer = gen
	}

	h := handler.New(controller, records, summarizer, cfg.JWTIssuer, cfg.JWTSigningKey, cfg.SessionTTL)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	}))
	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		dbHealthy := db.Healthy(c.Request.Context())
		redisHealthy := true
		if redisClient != nil {
			redisHealthy = redisClient.Healthy(c.Request.Context())
		}
		status := http.StatusOK
		if !dbHealthy || !redisHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "db": dbHealthy, "redis": redisHealthy})
	})

	h.Register(r)

	srv := &http.Server{
		Addr:        ":" + cfg.HTTPPort,
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		// a voice action holds its response through one listen plus one
		// store write, so the write timeout must outlast both
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("kiosk api listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down server...")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server forced shutdown: %v", err)
	}

	log.Println("server exited")
	return nil
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// Only add HSTS in production
		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
