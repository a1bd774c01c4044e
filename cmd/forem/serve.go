package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"forem-reader/internal/saga"
	"forem-reader/internal/server"
	"forem-reader/internal/state"
	"forem-reader/internal/worker"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web front end and the prefetch worker",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Setup Signal Handling (Ctrl+C)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		// Setup Manual 'q' input handling
		go func() {
			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				if scanner.Text() == "q" {
					fmt.Println(" 'q' pressed. Stopping...")
					cancel()
					return
				}
			}
		}()

		go func() {
			select {
			case <-sigChan:
				logger.Info("Shutting down...")
				cancel()
			case <-ctx.Done():
			}
		}()

		svc, closeCache, err := newService()
		if err != nil {
			return err
		}
		defer closeCache()

		st := state.NewStore(state.Initial(), logger)
		orch := saga.New(svc, st, logger)

		// Redis backs favorites and the prefetch queue; without it the
		// reader still works, favorites just do not survive a restart.
		var recent server.RecentTracker
		session, err := openSession(ctx)
		if err != nil {
			logger.Warn("Session store unavailable, favorites are in-memory only", zap.Error(err))
		} else {
			defer session.Close()
			recent = session
			if err := saga.LoadFavorites(ctx, st, session); err != nil {
				logger.Warn("Failed to load favorites", zap.Error(err))
			}
			saga.PersistFavorites(st, session, logger)

			w := worker.NewWorker(session, svc, logger)
			go w.Start(ctx)
		}

		orchDone := make(chan struct{})
		go func() {
			orch.Start(ctx)
			close(orchDone)
		}()

		srv := server.NewServer(st, recent, logger).WithDefaultTag(cfg.DefaultTag)
		srvErr := make(chan error, 1)
		go func() {
			srvErr <- srv.Start(cfg.ServerAddr())
		}()

		logger.Info("Server running.", zap.String("addr", cfg.ServerAddr()))
		fmt.Println("Press 'q' + Enter or Ctrl+C to stop.")

		// Block until shutdown
		select {
		case <-ctx.Done():
		case err := <-srvErr:
			if err != nil {
				cancel()
				<-orchDone
				return fmt.Errorf("web server: %w", err)
			}
		}

		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		if err := srv.Stop(shutdownCtx); err != nil {
			logger.Warn("Web server shutdown", zap.Error(err))
		}
		cancel()
		<-orchDone

		logger.Info("Goodbye!")
		return nil
	},
}
