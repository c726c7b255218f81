// Command oceanforest runs the marine model generation service: the
// strategy pipeline behind an HTTP API with prometheus metrics and a
// websocket event stream.
//
// Usage:
//
//	oceanforest serve                       # start the service
//	oceanforest serve --config config.yaml  # with a config file
//	oceanforest version                     # show version info
//	oceanforest health                      # probe a running server
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Elarwei001/ocean-forest-3d-sub000"
	"github.com/Elarwei001/ocean-forest-3d-sub000/catalog"
	"github.com/Elarwei001/ocean-forest-3d-sub000/config"
	"github.com/Elarwei001/ocean-forest-3d-sub000/history"
	"github.com/Elarwei001/ocean-forest-3d-sub000/internal/server"
	"github.com/Elarwei001/ocean-forest-3d-sub000/internal/telemetry"
	"github.com/Elarwei001/ocean-forest-3d-sub000/strategy"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		runServe(os.Args[2:])
	case "version":
		printVersion()
	case "health":
		runHealthCheck(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	fs.Parse(args)

	loader := config.NewLoader()
	if *configPath != "" {
		loader = loader.WithConfigPath(*configPath)
	}
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.Log)
	defer logger.Sync()

	logger.Info("Starting oceanforest",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
	)

	otelProviders, err := telemetry.Init(cfg.Telemetry, logger)
	if err != nil {
		logger.Warn("failed to initialize telemetry", zap.Error(err))
	}

	var imageLoader strategy.ImageLoader = strategy.SyntheticImageLoader{}
	if cfg.Pipeline.ImageLoader == "http" {
		imageLoader = strategy.NewHTTPImageLoader(&http.Client{Timeout: cfg.Pipeline.ImageTimeout}, logger)
	}

	pipe, err := oceanforest.New(
		oceanforest.WithLogger(logger),
		oceanforest.WithConfig(cfg),
		oceanforest.WithImageLoader(imageLoader),
	)
	if err != nil {
		logger.Fatal("failed to assemble pipeline", zap.Error(err))
	}
	defer pipe.Close()

	var serverOpts []server.Option
	var store *history.Store
	if cfg.History.Enabled {
		store, err = history.Open(cfg.History, logger)
		if err != nil {
			logger.Warn("history store not available, generation history disabled", zap.Error(err))
		} else {
			defer store.Close()
			pipe.OnModelReady(store.Handler())
			serverOpts = append(serverOpts, server.WithHistory(store))
		}
	}

	srv := server.New(cfg.Server, pipe.Coordinator(), pipe.Collector(), logger, serverOpts...)

	// Warm the cache with the species catalog before taking traffic.
	if cfg.Catalog.Path != "" {
		warm := warmCatalog(cfg.Catalog.Path, pipe, logger)
		logger.Info("catalog warm-up submitted", zap.Int("species", warm))
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal("server failed", zap.Error(err))
		}
	case sig := <-sigCh:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	if otelProviders != nil {
		if err := otelProviders.Shutdown(ctx); err != nil {
			logger.Warn("telemetry shutdown failed", zap.Error(err))
		}
	}

	logger.Info("oceanforest stopped")
}

// warmCatalog submits every catalog entry; returns the submission
// count. Failures load-shed to placeholder geometry rather than
// blocking startup.
func warmCatalog(path string, pipe *oceanforest.Pipeline, logger *zap.Logger) int {
	requests, err := catalog.Load(path)
	if err != nil {
		logger.Warn("catalog load failed, skipping warm-up", zap.String("path", path), zap.Error(err))
		return 0
	}
	for _, req := range requests {
		pipe.Submit(context.Background(), req)
	}
	return len(requests)
}

func runHealthCheck(args []string) {
	fs := flag.NewFlagSet("health", flag.ExitOnError)
	addr := fs.String("addr", "http://localhost:8080", "Server address")
	fs.Parse(args)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(*addr + "/healthz")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "Health check failed: status %d\n", resp.StatusCode)
		os.Exit(1)
	}

	fmt.Println("OK")
}

func printVersion() {
	fmt.Printf("oceanforest %s\n", Version)
	fmt.Printf("  Build Time: %s\n", BuildTime)
	fmt.Printf("  Git Commit: %s\n", GitCommit)
}

func printUsage() {
	fmt.Println(`oceanforest - marine model generation service

Usage:
  oceanforest <command> [options]

Commands:
  serve     Start the generation server
  version   Show version information
  health    Check server health
  help      Show this help message

Options for 'serve':
  --config <path>   Path to configuration file (YAML)

Examples:
  oceanforest serve
  oceanforest serve --config /etc/oceanforest/config.yaml
  oceanforest health --addr http://localhost:8080`)
}

func initLogger(cfg config.LogConfig) *zap.Logger {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var encoderConfig zapcore.EncoderConfig
	encoding := "json"
	if cfg.Format == "console" {
		encoding = "console"
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	outputPaths := cfg.OutputPaths
	if len(outputPaths) == 0 {
		outputPaths = []string{"stdout"}
	}

	zapConfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      encoding == "console",
		Encoding:         encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      outputPaths,
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := zapConfig.Build(
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return logger
}
