package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/trustscan-dev/trustscan/internal/batch"
	"github.com/trustscan-dev/trustscan/internal/config"
	"github.com/trustscan-dev/trustscan/internal/database"
	"github.com/trustscan-dev/trustscan/internal/log"
	"github.com/trustscan-dev/trustscan/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP analysis API",
		Long: `Serve starts an HTTP server exposing the analysis engine as a JSON API.

Endpoints:
  GET  /api/health        liveness check
  POST /api/analyze       analyze one input {"file": "...", "robustness": bool}
  POST /api/robustness    run the adversarial catalog against one input
  POST /api/batch         submit a batch job {"files": [{"path": "..."}]}
  GET  /api/batch/{id}    poll a batch job
  GET  /api/history       list stored reports (?file= filters by input)

Examples:
  # Serve on the default address
  trustscan serve

  # Serve on a custom port without history persistence
  trustscan serve --addr :9000 --no-save`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("addr", "a", config.DefaultServeAddr,
		"Listen address for the HTTP API")
	cmd.Flags().IntP("workers", "w", config.DefaultMaxWorkers,
		"Number of concurrent analyses per batch job")
	cmd.Flags().DurationP("timeout", "t", config.DefaultFileTimeout,
		"Per-file analysis timeout (0 disables the bound)")
	cmd.Flags().Bool("no-save", false,
		"Do not persist reports to the history database")
	cmd.Flags().String("db-dir", "",
		"Directory for the history database (default: XDG data directory)")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return err
	}
	workers, err := cmd.Flags().GetInt("workers")
	if err != nil {
		return err
	}
	timeout, err := cmd.Flags().GetDuration("timeout")
	if err != nil {
		return err
	}
	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return err
	}
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	logger := log.NewLogger(os.Stderr, getVerboseFlag(cmd))
	slog.SetDefault(logger)

	// Stop serving on interrupt.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, stopping server...")
		cancel()
	}()

	orchestrator := batch.NewOrchestrator(
		batch.WithMaxWorkers(workers),
		batch.WithFileTimeout(timeout),
		batch.WithLogger(logger),
	)

	var opts []server.Option
	if !noSave {
		db, err := database.Open(dbDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		opts = append(opts, server.WithDatabase(db))
	}

	srv := server.New(orchestrator, logger, opts...)

	fmt.Printf("Serving trustscan API on %s\n", addr)
	if err := srv.ListenAndServe(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
