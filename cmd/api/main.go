package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/nulln0ne/pino-redeem/internal/config"
	"github.com/nulln0ne/pino-redeem/internal/eth"
	"github.com/nulln0ne/pino-redeem/internal/handler"
	"github.com/nulln0ne/pino-redeem/internal/logging"
	"github.com/nulln0ne/pino-redeem/internal/metrics"
	"github.com/nulln0ne/pino-redeem/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	app := fiber.New()
	logger := logging.NewLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ethereumClient, err := eth.Dial(ctx, logger, cfg.RPCEndpoint)
	if err != nil {
		return fmt.Errorf("failed to connect to Ethereum node: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	reader := eth.NewReader(logger, ethereumClient, cfg.Contracts.WETH, cfg.Contracts.Router)

	estimateService := service.NewEstimateService(logger, reader, cfg.Contracts)
	estimateHandler := handler.NewEstimateHandler(logger, estimateService)
	app.Get("/estimate", estimateHandler.Handle())

	quoteService := service.NewQuoteService(logger, reader, cfg.Contracts, m)
	quoteHandler := handler.NewQuoteHandler(logger, quoteService, cfg.Contracts.Router)
	app.Get("/quote/buy", quoteHandler.Buy())
	app.Get("/quote/sell", quoteHandler.Sell())
	app.Get("/redeem", quoteHandler.Redeem())
	app.Get("/unlock", quoteHandler.Unlock())
	app.Get("/price", quoteHandler.Price())
	app.Get("/stats", quoteHandler.Stats())
	app.Get("/metrics", handler.Metrics(reg))

	logger.Info("serving quotes", "addr", cfg.Addr, "base", cfg.Contracts.Base.Address.Hex(), "dai", cfg.Contracts.DAI != nil)

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(cfg.Addr)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			_ = app.Shutdown()
			ethereumClient.Close()
			return fmt.Errorf("server error: %w", err)
		}
		ethereumClient.Close()
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("shutdown", "err", err)
	}

	ethereumClient.Close()
	return nil
}
