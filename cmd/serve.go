package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/skillforge/excel-interview/internal/config"
	"github.com/skillforge/excel-interview/internal/evaluator"
	"github.com/skillforge/excel-interview/internal/feedback"
	"github.com/skillforge/excel-interview/internal/interview"
	"github.com/skillforge/excel-interview/internal/llm"
	"github.com/skillforge/excel-interview/internal/logger"
	"github.com/skillforge/excel-interview/internal/question"
	"github.com/skillforge/excel-interview/internal/session"
	v1 "github.com/skillforge/excel-interview/internal/transport/http/v1"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the interview HTTP server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 8080, "HTTP listen port")
	must(viper.BindPFlag("http.port", serveCmd.Flags().Lookup("port")))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.JSON)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	gateway := llm.NewClient(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.Timeout, log)

	store := session.NewStore(cfg.Session.TTL, log)
	store.StartJanitor(cfg.Session.SweepInterval)
	defer store.Close()

	orchestrator := interview.New(
		store,
		question.NewGenerator(gateway, log),
		evaluator.New(gateway, log),
		feedback.NewGenerator(gateway, log),
		gateway,
		log,
	)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	v1.NewHandler(orchestrator).RegisterRoutes(e)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
		log.Info("http server starting", zap.String("addr", addr), zap.String("model", cfg.LLM.Model))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down", zap.Int("live_sessions", store.Count()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Warn("forced shutdown", zap.Error(err))
	}

	log.Info("stopped")
	return nil
}
