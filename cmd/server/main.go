package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/BenjaminAmos/GooeysQuests/internal/persistence/clipboard"
	"github.com/BenjaminAmos/GooeysQuests/internal/sim/catalogs"
	"github.com/BenjaminAmos/GooeysQuests/internal/sim/tuning"
	"github.com/BenjaminAmos/GooeysQuests/internal/transport/ws"
)

type serverFlags struct {
	addr       string
	configDir  string
	tuningPath string
	backend    string
	dataDir    string
	verbose    bool
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f serverFlags
	cmd := &cobra.Command{
		Use:          "server",
		Short:        "Serve copy-region sessions over websocket",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := log.InfoLevel
			if f.verbose {
				level = log.DebugLevel
			}
			logger := log.NewWithOptions(os.Stderr, log.Options{
				ReportTimestamp: true,
				TimeFormat:      "15:04:05.00",
				Level:           level,
				Prefix:          "server",
			})
			return run(cmd.Context(), f, logger)
		},
	}
	cmd.Flags().StringVar(&f.addr, "addr", ":8080", "http listen address")
	cmd.Flags().StringVar(&f.configDir, "configs", "./configs", "config directory")
	cmd.Flags().StringVar(&f.tuningPath, "tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
	cmd.Flags().StringVar(&f.backend, "clipboard", "", "clipboard backend override: memory, journal or sqlite")
	cmd.Flags().StringVar(&f.dataDir, "data", "", "clipboard data directory override")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "enable debug logging")
	return cmd
}

func run(ctx context.Context, f serverFlags, logger *log.Logger) error {
	cats, err := catalogs.Load(f.configDir)
	if err != nil {
		return fmt.Errorf("load catalogs: %w", err)
	}

	tp := strings.TrimSpace(f.tuningPath)
	if tp == "" {
		tp = filepath.Join(f.configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("tuning not found, using defaults", "path", tp)
		tune = tuning.Defaults()
	} else if err != nil {
		return fmt.Errorf("load tuning: %w", err)
	}
	if f.backend != "" {
		tune.Clipboard.Backend = f.backend
	}
	if f.dataDir != "" {
		tune.Clipboard.Dir = f.dataDir
	}
	if err := tune.Validate(); err != nil {
		return fmt.Errorf("tuning: %w", err)
	}

	store, _, err := clipboard.Open(tune.Clipboard)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("close clipboard", "err", err)
		}
	}()
	if x, ok := clipboard.FindIndexed(store); ok {
		if err := recordCatalogs(ctx, x.Index(), cats, tune); err != nil {
			logger.Warn("index catalogs", "err", err)
		}
	}

	srv := ws.NewServer(ws.Config{
		Catalogs:  cats,
		Tuning:    tune,
		Clipboard: store,
		Logger:    logger,
	})
	httpSrv := &http.Server{
		Addr:              f.addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", f.addr, "clipboard", tune.Clipboard.Backend,
			"blocks", len(cats.Blocks.Palette), "blueprints", len(cats.Blueprints.ByID))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(sctx)
	})
	err = g.Wait()
	logger.Info("stopped", "sessions", srv.Sessions())
	return err
}
