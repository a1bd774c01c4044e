package main

import (
	"errors"
	"fmt"
	"time"

	"forem-reader/internal/config"
	"forem-reader/internal/store"

	"github.com/spf13/cobra"
)

var pruneOlderThan string

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or prune the local detail cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show how many articles are cached and how much space they use",
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, closeCache, err := openCache()
		if err != nil {
			return err
		}
		defer closeCache()

		stats, ok := cache.(interface {
			Stats() (int, int64, error)
		})
		if !ok {
			return errors.New("cache backend does not report stats")
		}
		count, size, err := stats.Stats()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s\n", bold.Sprint("Backend:"), cfg.CacheBackend())
		fmt.Fprintf(out, "%s %s\n", bold.Sprint("Location:"), cfg.CacheDir())
		fmt.Fprintf(out, "%s %d\n", bold.Sprint("Articles:"), count)
		fmt.Fprintf(out, "%s %s\n", bold.Sprint("Size:"), formatBytes(size))
		if ttl := cfg.CacheTTL(); ttl > 0 {
			fmt.Fprintf(out, "%s %s\n", bold.Sprint("TTL:"), ttl)
		} else {
			fmt.Fprintf(out, "%s never expires\n", bold.Sprint("TTL:"))
		}
		return nil
	},
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete cached articles older than a given age",
	RunE: func(cmd *cobra.Command, args []string) error {
		olderThan, err := config.ParseDuration(pruneOlderThan)
		if err != nil || olderThan < 0 {
			return fmt.Errorf("invalid --older-than %q", pruneOlderThan)
		}
		if cfg.CacheBackend() != config.BackendFile {
			return fmt.Errorf("prune is only supported by the %q backend; badger entries expire via cache.ttl", config.BackendFile)
		}

		cache, err := store.NewFileCache(cfg.CacheDir(), cfg.CacheTTL(), logger)
		if err != nil {
			return err
		}
		deleted, err := cache.Prune(olderThan)
		if err != nil {
			return err
		}
		success(cmd.OutOrStdout(), "Pruned %d article(s) older than %s", deleted, olderThan.Round(time.Second))
		return nil
	},
}

func init() {
	cachePruneCmd.Flags().StringVar(&pruneOlderThan, "older-than", "30d", "Age threshold, e.g. 12h or 30d")

	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cachePruneCmd)
}
