package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"salon-offers/config"
	httpLayer "salon-offers/http"
	"salon-offers/logging"
	"salon-offers/repository"
	"salon-offers/service"
)

var (
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "salon-offers",
	Short: "Generate personalized salon offers from customer visit CSVs",
	Long: `salon-offers reads a CSV of customer visits (customer_name, last_service,
visits, days_since_last_visit), assigns each customer an offer tier and writes
a personalized message, phrased by an LLM when an API key is configured and by
built-in templates otherwise.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.Logging.Level, cfg.Logging.Development, verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server with the upload form and /generate_offers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate [file.csv]",
	Short: "Generate offers for a CSV file and print them as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return generate(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging (prompts and responses)")
	rootCmd.AddCommand(serveCmd, generateCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// app holds everything built once per process and shared read-only by requests.
type app struct {
	ai      *service.AIService
	offers  *service.OfferService
	cleanup func()
}

func buildApp(ctx context.Context) *app {
	cleanup := func() {}

	var cache repository.CacheRepository
	if cfg.Cache.Enabled {
		cache = repository.NewMemoryCache()
		if cfg.Cache.RedisAddr != "" {
			redisCache := repository.NewRedisCache(cfg.Cache.RedisAddr)
			pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			err := redisCache.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.Warn("Redis unavailable, using in-memory phrasing cache",
					zap.String("addr", cfg.Cache.RedisAddr), zap.Error(err))
				_ = redisCache.Close()
			} else {
				cache = redisCache
				cleanup = func() { _ = redisCache.Close() }
			}
		}
	}

	ai := service.NewFallbackOnlyAIService(logger)
	if !cfg.AIEnabled() {
		logger.Warn("No LLM API key configured, all offers will use templates",
			zap.String("provider", cfg.LLM.Provider))
	} else if completer, err := service.NewChatCompleter(ctx, cfg.LLM); err != nil {
		logger.Error("Error initializing LLM client, all offers will use templates", zap.Error(err))
	} else {
		ai = service.NewAIService(completer, service.AIServiceOptions{
			Timeout:       cfg.LLM.Timeout,
			RatePerSecond: cfg.LLM.RatePerSecond,
			Burst:         cfg.LLM.Burst,
			Cache:         cache,
			CacheTTL:      cfg.Cache.TTL,
		}, logger)
		logger.Info("AI phrasing enabled",
			zap.String("provider", cfg.LLM.Provider),
			zap.String("model", cfg.LLM.Model))
	}

	offers := service.NewOfferService(
		repository.NewCustomerCSVReader(logger),
		service.NewMessageComposer(ai, logger),
		logger,
	)

	return &app{ai: ai, offers: offers, cleanup: cleanup}
}

func serve(ctx context.Context) error {
	a := buildApp(ctx)
	defer a.cleanup()

	offerHandler := httpLayer.NewOfferHandler(a.offers, a.ai.Enabled(), cfg.Server.MaxUploadBytes, logger)
	healthHandler := httpLayer.NewHealthHandler(a.ai.Enabled(), a.ai.Provider(), logger)

	rateLimiter := httpLayer.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateWindow)
	defer rateLimiter.Stop()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpLayer.NewRouter(offerHandler, healthHandler, rateLimiter, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Salon offers API listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("starting server: %w", err)
	case <-quit:
		logger.Info("Shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during server shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
	return nil
}

func generate(ctx context.Context, path string) error {
	if !strings.EqualFold(filepath.Ext(path), ".csv") {
		return errors.New("invalid file format: please provide a CSV file")
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	a := buildApp(ctx)
	defer a.cleanup()

	results, err := a.offers.GenerateOffersFromCSV(ctx, f)
	if err != nil {
		return fmt.Errorf("error processing file: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(results)
}
