package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spacesedan/feedbackflow/config"
	"github.com/spacesedan/feedbackflow/internal/analysis"
	"github.com/spacesedan/feedbackflow/internal/clients"
	"github.com/spacesedan/feedbackflow/internal/logging"
	"github.com/spacesedan/feedbackflow/internal/notify"
	"github.com/spacesedan/feedbackflow/internal/sentiment"
	"github.com/spacesedan/feedbackflow/internal/shell"
	"github.com/spacesedan/feedbackflow/internal/suggestions"
	"github.com/spacesedan/feedbackflow/internal/web"
	_ "go.uber.org/automaxprocs"
)

func main() {
	env := config.AppEnv()
	logging.InitLogger(os.Getenv(config.ENV_LOG_LEVEL))

	cfg, err := config.Load(env)
	if err != nil {
		slog.Error("[Main] LLM API key or Slack webhook URL not found. Configure the .env file or the environment.",
			slog.String("error", err.Error()))
		os.Exit(1)
	}
	logging.InitLogger(cfg.Log.Level)

	session := shell.NewSession(
		analysis.NewAnalyzer(sentiment.NewClassifier()),
		suggestions.NewGenerator(clients.NewOpenAIClient(cfg)),
		notify.NewNotifier(cfg.WebhookURL, cfg.Notify.Header),
	)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: web.NewServer(session).Routes(),
	}

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("[Main] Feedback analyzer listening",
			slog.String("addr", cfg.Server.Addr),
			slog.String("env", env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("[Main] Server failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	<-stopChan
	slog.Info("[Main] Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("[Main] Shutdown failed", slog.String("error", err.Error()))
	}
}
