package main

import (
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/socialwiz/wingman/config"
	"github.com/socialwiz/wingman/errors"
	"github.com/socialwiz/wingman/server"
	"github.com/socialwiz/wingman/server/handlers"
	"github.com/socialwiz/wingman/server/metrics"
	"github.com/socialwiz/wingman/server/processing"
	"github.com/socialwiz/wingman/server/provider"
	"github.com/socialwiz/wingman/server/validation"
	"github.com/socialwiz/wingman/server/vision"
)

var (
	configFile = flag.String("config", "wingman.yaml", "Path to configuration file")
	validate   = flag.Bool("validate", false, "Validate configuration and exit")
	version    = flag.Bool("version", false, "Print version and exit")
)

const Version = "v1.0.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("wingman %s\n", Version)
		os.Exit(0)
	}

	// A .env file is optional; environment variables win either way.
	_ = godotenv.Load()

	cfg, err := loadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *validate {
		fmt.Println("Configuration is valid")
		os.Exit(0)
	}

	if cfg.Providers.Groq.APIKey == "" {
		log.Fatal("GROQ_API_KEY is required (set it in the environment, .env, or the config file)")
	}
	if cfg.Providers.Gemini.APIKey == "" {
		log.Fatal("GEMINI_API_KEY is required (set it in the environment, .env, or the config file)")
	}

	logger, logLevel, err := buildLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	errors.SetLogger(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	groq, err := provider.NewGroqGenerator(cfg.Providers.Groq.APIKey, cfg.Providers.Groq.Model)
	if err != nil {
		logger.Fatal("failed to create groq client", zap.Error(err))
	}
	gemini, err := provider.NewGeminiClient(ctx, cfg.Providers.Gemini.APIKey, cfg.Providers.Gemini.Model, cfg.Providers.Gemini.VisionModel)
	if err != nil {
		logger.Fatal("failed to create gemini client", zap.Error(err))
	}

	m := metrics.NewMetrics()

	breakerCfg := provider.DefaultBreakerConfig()
	groqGuarded := provider.NewBreakerGenerator(groq, breakerCfg, logger, m.Registry())
	geminiGuarded := provider.NewBreakerGenerator(gemini, breakerCfg, logger, m.Registry())

	tokens, err := validation.NewTokenCounter(cfg.Chat.MaxPromptTokens)
	if err != nil {
		logger.Fatal("failed to create token counter", zap.Error(err))
	}

	processor := processing.NewProcessor(processing.ProcessorOptions{
		Groq:      groqGuarded,
		Gemini:    geminiGuarded,
		Extractor: vision.NewExtractor(gemini, logger),
		Tokens:    tokens,
		Metrics:   m,
		Logger:    logger,
		Chat:      cfg.Chat,
	})

	chat := handlers.NewChatHandler(processor, cfg.Server.MaxUploadBytes, logger)
	router := server.NewRouter(server.RouterOptions{
		Chat:    chat,
		Metrics: m,
		Logger:  logger,
		Server:  cfg.Server,
	})
	srv := server.NewServer(cfg.Server, router, logger)

	// Hot-reload the fallback policy when the config file changes.
	if watcher, werr := config.NewWatcher(*configFile, logger); werr != nil {
		logger.Warn("config watcher disabled", zap.Error(werr))
	} else {
		defer func() { _ = watcher.Close() }()
		go func() {
			for updated := range watcher.Subscribe() {
				processor.SetFallbackPolicy(updated.Chat.FallbackPolicy)
				if level, perr := zapcore.ParseLevel(updated.Logging.Level); perr != nil {
					logger.Warn("ignoring invalid log level from config update",
						zap.String("level", updated.Logging.Level))
				} else {
					logLevel.SetLevel(level)
				}
				logger.Info("applied config update",
					zap.String("fallback_policy", updated.Chat.FallbackPolicy),
					zap.String("log_level", updated.Logging.Level))
			}
		}()
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	logger.Info("starting wingman",
		zap.String("version", Version),
		zap.Int("port", cfg.Server.Port),
	)
	if err := srv.Start(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

// loadConfig reads the config file when present and falls back to defaults
// plus environment variables when it is not.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadFile(path)
	if err == nil {
		return cfg, nil
	}
	if !stderrors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	cfg = config.DefaultConfig()
	cfg.Providers.Groq.APIKey = os.Getenv("GROQ_API_KEY")
	cfg.Providers.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	if verr := cfg.Validate(); verr != nil {
		return nil, verr
	}
	return cfg, nil
}

func buildLogger(cfg config.LoggingConfig) (*zap.Logger, zap.AtomicLevel, error) {
	var zc zap.Config
	if cfg.Format == "text" {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, zap.AtomicLevel{}, fmt.Errorf("parse log level: %w", err)
	}
	atom := zap.NewAtomicLevelAt(level)
	zc.Level = atom

	logger, err := zc.Build()
	return logger, atom, err
}
