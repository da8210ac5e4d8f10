package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"studyflow/backend/internal/config"
	"studyflow/backend/internal/handler"
	"studyflow/backend/internal/llm"
	"studyflow/backend/internal/logging"
	"studyflow/backend/internal/router"
	"studyflow/backend/internal/service"
	"studyflow/backend/internal/session"
	"studyflow/backend/internal/timer"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load("")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, logCloser, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer logCloser.Close()
	slog.SetDefault(logger)
	gin.SetMode(gin.ReleaseMode)

	prompts, err := service.NewPrompts(cfg.Prompts.Plan, cfg.Prompts.Chat)
	if err != nil {
		return err
	}

	model := llm.NewCopilotModel(llm.CopilotOptions{
		Model:    cfg.Model.Name,
		LogLevel: cfg.Model.LogLevel,
		Timeout:  cfg.Model.Timeout,
	})
	defer func() {
		if err := model.Close(); err != nil {
			logger.Warn("failed to stop copilot client", "error", err)
		}
	}()

	sessionService := service.NewSessionService(session.NewStore(), timer.WithTickInterval(cfg.Timer.TickInterval))
	defer sessionService.Close()

	planService := service.NewPlanService(model, prompts)
	chatService := service.NewChatService(model, prompts, session.NewTranscript(nil))

	engine := router.New(
		handler.NewSessionHandler(sessionService),
		handler.NewPlanHandler(planService, sessionService),
		handler.NewChatHandler(chatService),
		handler.NewEventsHandler(sessionService),
		logger,
		cfg.CORSOrigins,
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("backend listening", "addr", srv.Addr, "model", cfg.Model.Name)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("run server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down HTTP server")

		// SSE streams only end when their subscriptions close.
		sessionService.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
