package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/meetmate-ai/server/adapters/archive"
	"github.com/meetmate-ai/server/adapters/llm"
	"github.com/meetmate-ai/server/adapters/mongo"
	"github.com/meetmate-ai/server/adapters/stt"
	"github.com/meetmate-ai/server/domain/repositories"
	"github.com/meetmate-ai/server/internal/api"
	"github.com/meetmate-ai/server/internal/session"
	"github.com/meetmate-ai/server/internal/websocket"
	"github.com/meetmate-ai/server/usecase"
)

func main() {
	// Load .env if present; real deployments set env directly.
	_ = godotenv.Load()

	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// MongoDB
	db, err := mongo.NewClient(logger)
	if err != nil {
		logger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}

	meetingRepo := mongo.NewMeetingRepository(db.Database)
	styleRepo := mongo.NewStyleRepository(db.Database, logger)
	transcriptRepo := mongo.NewTranscriptRepository(db.Database)

	// Speech-to-text
	var speechToText repositories.SpeechToText
	if os.Getenv("STT_PROVIDER") == "fake" {
		logger.Warn("using fake speech-to-text provider")
		speechToText = stt.NewFakeSpeechToText(logger)
	} else {
		speechToText = stt.NewGoogleSpeechToText(logger)
	}

	// Suggestion generator
	var suggester repositories.SuggestionGenerator
	gemini, err := llm.NewGeminiSuggestionGenerator(logger)
	if err != nil {
		logger.Warn("Gemini unavailable, using static suggestions", zap.Error(err))
		suggester = llm.NewStaticSuggestionGenerator(logger)
	} else {
		suggester = gemini
	}

	// Audio archiver
	var archiver repositories.AudioArchiver
	if bucket := os.Getenv("GCS_AUDIO_BUCKET"); bucket != "" {
		gcs, err := archive.NewGCSAudioArchiver(bucket, logger)
		if err != nil {
			logger.Fatal("failed to initialize GCS archiver", zap.Error(err))
		}
		archiver = gcs
	} else {
		logger.Warn("GCS_AUDIO_BUCKET not set, session audio will not be archived")
		archiver = archive.NewNopAudioArchiver(logger)
	}

	// WebSocket hub and session registry. The hub is the registry's event
	// sink, so it is created first and wired to the registry afterwards.
	hub := websocket.NewHub(logger)
	registry := session.NewRegistry(
		meetingRepo,
		styleRepo,
		transcriptRepo,
		speechToText,
		suggester,
		archiver,
		hub,
		logger,
	)
	hub.SetRegistry(registry)
	go hub.Run()

	watchdog := session.NewWatchdog(registry, 0, logger)
	watchdog.Start()

	// Usecase services
	meetingService := usecase.NewMeetingService(meetingRepo, styleRepo, transcriptRepo)

	// Initialize API routes
	api.InitRoutes(e, hub, meetingService, logger)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	go func() {
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("port", port))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	watchdog.Stop()
	registry.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := db.Close(ctx); err != nil {
		logger.Error("Failed to close MongoDB connection", zap.Error(err))
	}

	logger.Info("Server exited")
}
