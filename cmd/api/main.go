package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"studio/internal/http/handlers"
	httpapi "studio/internal/http/httpapi"
	"studio/internal/imageprep"
	"studio/internal/infra"
	"studio/internal/providers/genimg"
	"studio/internal/session"
)

func main() {
	// .env is optional.
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	// Without an API key the synthetic provider keeps everything runnable
	// offline, same pipeline end to end.
	var (
		background genimg.BackgroundGenerator
		modelShot  genimg.ModelShotGenerator
		suggester  genimg.PromptSuggester
	)
	if cfg.GeminiAPIKey != "" {
		client := genimg.NewClient(genimg.Options{
			APIKey:  cfg.GeminiAPIKey,
			BaseURL: cfg.GeminiBaseURL,
			Model:   cfg.GeminiModel,
			Logger:  logger,
		})
		background, modelShot, suggester = client, client, client
		logger.Info().Str("model", client.Model()).Msg("using gemini provider")
	} else {
		synthetic := genimg.NewSynthetic()
		background, modelShot, suggester = synthetic, synthetic, synthetic
		logger.Warn().Msg("GEMINI_API_KEY not set, using synthetic provider")
	}

	images := imageprep.NewService(nil)
	sessions := session.NewManager(cfg.SessionTTL, logger)
	orchestrator := session.NewOrchestrator(session.OrchestratorOptions{
		Logger:       logger,
		Background:   background,
		ModelShot:    modelShot,
		Suggester:    suggester,
		Preparer:     images,
		MaxDimension: cfg.MaxImageDimension,
		JobTimeout:   cfg.JobTimeout,
	})

	app := handlers.NewApp(cfg, logger, sessions, orchestrator, images)
	router := httpapi.NewRouter(app)
	server := infra.NewHTTPServer(cfg, router)

	done := make(chan struct{})
	go sessions.RunSweeper(done, cfg.SweepInterval)

	go func() {
		logger.Info().Str("addr", server.Addr()).Msg("API listening")
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	close(done)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
