// Command showcase serves the portfolio site.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/Zachkp/showcase/internal/config"
	"github.com/Zachkp/showcase/internal/content"
	"github.com/Zachkp/showcase/internal/logging"
	"github.com/Zachkp/showcase/internal/telemetry"
	"github.com/Zachkp/showcase/internal/web"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const serviceName = "showcase"

type serveFlags struct {
	addr        string
	logLevel    string
	analyticsDB string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags serveFlags
	root := &cobra.Command{
		Use:          "showcase",
		Short:        "Portfolio site with staged reveals and a simulated contact form",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), flags)
		},
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the site until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), flags)
		},
	}
	for _, c := range []*cobra.Command{root, serve} {
		c.Flags().StringVar(&flags.addr, "addr", "", "listen address (overrides SHOWCASE_HTTP_ADDR and PORT)")
		c.Flags().StringVar(&flags.logLevel, "log-level", "", "log level (overrides SHOWCASE_LOG_LEVEL)")
		c.Flags().StringVar(&flags.analyticsDB, "analytics-db", "", "sqlite path for visitor analytics (overrides SHOWCASE_ANALYTICS_DB)")
	}

	contentCmd := &cobra.Command{
		Use:   "content",
		Short: "Print the embedded site content as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			site, err := content.Load()
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(site); err != nil {
				return fmt.Errorf("encode content: %w", err)
			}
			return enc.Close()
		},
	}

	root.AddCommand(serve, contentCmd)
	return root
}

func (f serveFlags) apply(cfg *config.Config) {
	if f.addr != "" {
		cfg.HTTPAddr = f.addr
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	if f.analyticsDB != "" {
		cfg.AnalyticsDB = f.analyticsDB
	}
}

func runServe(ctx context.Context, flags serveFlags) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	flags.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, serviceName, cfg.OTelEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("flush traces", zap.Error(err))
		}
	}()

	site, err := content.Load()
	if err != nil {
		return err
	}

	srv, err := web.NewServer(ctx, cfg, site, web.WithLogger(logger))
	if err != nil {
		return err
	}
	defer srv.Close()

	logger.Info("starting showcase",
		zap.String("addr", cfg.Addr()),
		zap.Bool("analytics", cfg.AnalyticsEnabled()),
		zap.Bool("tracing", cfg.OTelEndpoint != ""),
	)
	if err := srv.ListenAndServe(ctx); err != nil {
		logger.Error("server stopped", zap.Error(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}
