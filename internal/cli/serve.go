package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/ppiankov/indicacoes/internal/metrics"
	"github.com/ppiankov/indicacoes/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var listenAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the indications snapshot over HTTP",
	Long: `Serve exposes:
  GET /api/indications   fresh snapshot as JSON (Cache-Control for shared caches)
  GET /healthz           liveness
  GET /metrics           Prometheus metrics

Cache directives are reloaded when the config file changes.

Example:
  indicacoes serve
  indicacoes serve --listen :9090 --config ./config.yaml`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "listen address (overrides server.listen_address)")
	_ = viper.BindPFlag("server.listen_address", serveCmd.Flags().Lookup("listen"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Output.Verbose)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	p, err := buildPipeline(ctx, cfg, logger, m)
	if err != nil {
		return err
	}

	srv := server.New(cfg.Server, p, logger.Named("server"), m)
	watchCacheDirectives(srv, logger)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("listening", zap.String("addr", srv.Addr()), zap.String("version", Version))
		if err := srv.Serve(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// watchCacheDirectives reapplies server cache settings whenever the config file changes
func watchCacheDirectives(srv *server.Server, logger *zap.Logger) {
	if viper.ConfigFileUsed() == "" {
		return
	}

	viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			logger.Warn("ignoring invalid config change", zap.String("file", e.Name), zap.Error(err))
			return
		}
		srv.SetCacheDirectives(cfg.Server.CacheMaxAge, cfg.Server.StaleWhileRevalidate)
		logger.Info("reloaded cache directives",
			zap.String("file", e.Name),
			zap.String("cache_control", server.CacheControl(cfg.Server.CacheMaxAge, cfg.Server.StaleWhileRevalidate)))
	})
	viper.WatchConfig()
}
