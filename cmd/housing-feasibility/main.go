package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ggtech/housing-feasibility/internal/config"
	"github.com/ggtech/housing-feasibility/internal/feasibility"
	"github.com/ggtech/housing-feasibility/internal/report"
	"github.com/ggtech/housing-feasibility/pkg/constants"
	"github.com/ggtech/housing-feasibility/pkg/currency"
	"github.com/ggtech/housing-feasibility/pkg/output"
	"github.com/ggtech/housing-feasibility/pkg/validation"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info" // Default to info level
	}

	// Parse log level
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

	// Determine output format
	format := loggingConfig.Format
	if format == "" {
		format = "json" // Default to JSON for production
	}

	// Configure encoder
	var config zap.Config
	switch format {
	case "console":
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zapLevel)
	case "json":
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zapLevel)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	// Configure output file if specified
	if loggingConfig.OutputFile != "" {
		// Ensure the directory exists
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		// Test if we can create/write to the file
		if file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		} else {
			_ = file.Close()
		}

		config.OutputPaths = []string{loggingConfig.OutputFile}
		config.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return config.Build()
}

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	title := flag.String("title", "Feasibility", "project title used in output and reports")
	pdfPath := flag.String("pdf", "", "optional path to write a PDF report")
	flag.Parse()

	// Load the config file to get logging configuration
	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		return
	}

	// Initialize logging based on config and CLI override
	logger, err := initializeLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty // Default to pretty format
	}

	err = validation.ValidateOutputFormat(outputFormat)
	if err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	// Validate configuration and display any warnings
	warnings := conf.ValidateConfiguration()
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	if conf.Project == nil {
		logger.Fatal("configuration has no project block",
			zap.String("op", "main"),
		)
	}

	defaults := conf.Defaults.Resolve()
	inputs := config.EnsureDefaults(*conf.Project, defaults)

	// Fetch the USD/TRY rate unless disabled; a failed fetch degrades to
	// USD-only output.
	var quote *currency.Quote
	if !conf.Currency.Disabled {
		quote = fetchQuote(logger, conf.Currency)
	}

	engine := feasibility.NewEngineWithDefaults(logger, defaults)
	result, err := engine.Sensitivity(inputs, quoteRate(quote))
	if err != nil {
		logger.Fatal("failed to compute feasibility",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	// Handle output.
	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(*title, result)
	case constants.OutputFormatCSV:
		output.CsvFormat(*title, result)
	}

	if *pdfPath != "" {
		if err := writePDF(logger, *pdfPath, *title, inputs, result, quote); err != nil {
			logger.Fatal("failed to write PDF report",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		logger.Info("PDF report written",
			zap.String("op", "main"),
			zap.String("path", *pdfPath),
		)
	}
}

func fetchQuote(logger *zap.Logger, cfg config.CurrencyConfig) *currency.Quote {
	url := cfg.URL
	if url == "" {
		url = constants.TCMBRateURL
	}
	ttl := time.Duration(cfg.CacheTTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = constants.DefaultRateCacheTTLMinutes * time.Minute
	}
	timeout := time.Duration(cfg.FetchTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = constants.DefaultRateFetchTimeoutSeconds * time.Second
	}

	client := currency.NewClient(logger, url, ttl, timeout)
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return client.Current(ctx)
}

func quoteRate(q *currency.Quote) *float64 {
	if q == nil {
		return nil
	}
	return &q.Rate
}

func writePDF(logger *zap.Logger, path, title string, inputs config.Inputs, result *feasibility.Result, quote *currency.Quote) error {
	markdown := report.BuildMarkdown(report.Report{
		Title:       title,
		Inputs:      inputs,
		Outputs:     result.Base,
		Warnings:    result.BaseWarnings,
		Sensitivity: result,
		Quote:       quote,
		GeneratedAt: time.Now(),
	})

	renderer := report.NewChromiumPDFRenderer()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pdfBytes, err := renderer.Render(ctx, markdown)
	if err != nil {
		return err
	}
	return os.WriteFile(path, pdfBytes, 0644)
}
