package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ggtech/housing-feasibility/internal/extract"
	"github.com/ggtech/housing-feasibility/internal/quota"
	"github.com/ggtech/housing-feasibility/internal/report"
	"github.com/ggtech/housing-feasibility/internal/server"
	"github.com/ggtech/housing-feasibility/pkg/constants"
	"github.com/ggtech/housing-feasibility/pkg/currency"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var version = "dev"

func initializeLogger(cfg *server.Config, logLevelOverride string) (*zap.Logger, error) {
	level := cfg.Logging.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := cfg.Logging.Format
	if format == "" {
		format = "json"
	}

	var zapConfig zap.Config
	switch format {
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
	case "json":
		zapConfig = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}
	zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)

	if cfg.Logging.OutputFile != "" {
		zapConfig.OutputPaths = []string{cfg.Logging.OutputFile}
		zapConfig.ErrorOutputPaths = []string{cfg.Logging.OutputFile}
	}

	return zapConfig.Build()
}

func main() {
	configLocation := flag.String("config", constants.DefaultServerConfigFile, "path to server configuration file")
	address := flag.String("address", "", "listen address override (e.g. :8080)")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	cfg, err := server.LoadConfig(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		return
	}
	if *address != "" {
		cfg.Address = *address
	}

	logger, err := initializeLogger(cfg, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	opts := server.Options{
		Logger:         logger,
		MaxRequestSize: cfg.RequestSizeBytes(),
		Version:        version,
		Limiter:        quota.NewLimiter(cfg.QuotaLimit()),
		PDF:            report.NewChromiumPDFRenderer(),
	}

	if !cfg.Currency.Disabled {
		url := cfg.Currency.URL
		if url == "" {
			url = constants.TCMBRateURL
		}
		ttl := time.Duration(cfg.Currency.CacheTTLMinutes) * time.Minute
		if ttl <= 0 {
			ttl = constants.DefaultRateCacheTTLMinutes * time.Minute
		}
		timeout := time.Duration(cfg.Currency.FetchTimeoutSeconds) * time.Second
		if timeout <= 0 {
			timeout = constants.DefaultRateFetchTimeoutSeconds * time.Second
		}
		opts.Rates = currency.NewClient(logger, url, ttl, timeout)
	}

	// The assistant requires an API key; without one the endpoint reports
	// unavailability instead of failing startup.
	if caller, err := extract.NewAnthropicCallerFromEnv(cfg.Assistant.Model); err != nil {
		logger.Warn("assistant disabled",
			zap.String("op", "main"),
			zap.Error(err),
		)
	} else {
		opts.Extractor = extract.NewExtractor(logger, caller)
	}

	handler := server.NewHandler(opts)
	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting feasibility API server",
			zap.String("op", "main"),
			zap.String("address", cfg.Address),
			zap.String("version", version),
			zap.Int("dailyQuota", cfg.QuotaLimit()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	logger.Info("server stopped",
		zap.String("op", "main"),
	)
}
