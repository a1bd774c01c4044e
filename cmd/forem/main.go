package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"forem-reader/internal/articles"
	"forem-reader/internal/config"
	"forem-reader/internal/logging"
	"forem-reader/internal/remote"
	"forem-reader/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "dev"

var (
	logger     *zap.Logger
	cfg        *config.Config
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:           "forem",
	Short:         "forem-reader - browse Forem articles with a local detail cache",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.New(verbose)
		if err != nil {
			return err
		}
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	// Skip config loading.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "forem-reader %s\n", version)
	},
}

// openCache opens the detail cache backend named in the config. The returned
// close func is always safe to call.
func openCache() (store.Cache, func() error, error) {
	switch cfg.CacheBackend() {
	case config.BackendBadger:
		c, err := store.OpenBadgerCache(cfg.CacheDir(), cfg.CacheTTL(), logger)
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil
	default:
		c, err := store.NewFileCache(cfg.CacheDir(), cfg.CacheTTL(), logger)
		if err != nil {
			return nil, nil, err
		}
		return c, func() error { return nil }, nil
	}
}

// newService wires the remote client and the cache into the data access layer.
func newService() (*articles.Service, func() error, error) {
	client, err := remote.NewClient(remote.Options{
		BaseURL: cfg.API.BaseURL,
		PerPage: cfg.PerPage(),
		Timeout: cfg.Timeout(),
		APIKey:  cfg.APIKey(),
	}, logger)
	if err != nil {
		return nil, nil, err
	}
	cache, closeCache, err := openCache()
	if err != nil {
		return nil, nil, err
	}
	return articles.NewService(client, cache, logger), closeCache, nil
}

var errNoSession = errors.New("redis.addr is not configured")

func openSession(ctx context.Context) (*store.SessionStore, error) {
	if cfg.Redis.Addr == "" {
		return nil, errNoSession
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return store.NewSessionStore(ctx, cfg.Redis.Addr)
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigPath(), "Path to the config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(favoriteCmd)
	rootCmd.AddCommand(favoritesCmd)
	rootCmd.AddCommand(recentCmd)
	rootCmd.AddCommand(prefetchCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}
