package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/walterwhite-69/Miruro-API/internal/anilist"
	"github.com/walterwhite-69/Miruro-API/internal/config"
	"github.com/walterwhite-69/Miruro-API/internal/pipe"
	"github.com/walterwhite-69/Miruro-API/internal/server"
	"github.com/walterwhite-69/Miruro-API/internal/upstream"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if v.ConfigFileUsed() != "" {
			watchLogLevel()
		}

		srv := server.New(cfg.Server, newPipeClient(cfg), newMetadataClient(cfg), logger)
		return srv.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr)")
}

// watchLogLevel applies logging.level changes from the config file while serving.
// Everything else is read once at startup.
func watchLogLevel() {
	v.OnConfigChange(func(e fsnotify.Event) {
		logger.Info("config file changed", "name", e.Name)
		if logLevel != "" || debugMode {
			return
		}

		var next config.Config
		if err := v.Unmarshal(&next); err != nil {
			logger.Error("failed to reload config", "error", err)
			return
		}

		config.SetLogLevel(next.Logging.Level)
		logger.Info("log level reloaded", "level", config.LogLevel().String())
	})
	v.WatchConfig()
}

func newUpstreamClient(cfg *config.Config, service string, headers map[string]string) *upstream.Client {
	return upstream.NewClient(upstream.ClientConfig{
		Service:   service,
		Timeout:   cfg.Upstream.Timeout,
		UserAgent: cfg.Upstream.UserAgent,
		Headers:   headers,
		Debug:     cfg.Upstream.Debug,
		Logger:    logger,
	})
}

func newPipeClient(cfg *config.Config) *pipe.Client {
	httpClient := newUpstreamClient(cfg, "pipe", map[string]string{
		"Referer": cfg.Upstream.Referer,
	})
	return pipe.NewClient(pipe.Config{Endpoint: cfg.Pipe.Endpoint}, httpClient, logger)
}

func newMetadataClient(cfg *config.Config) *anilist.Client {
	httpClient := newUpstreamClient(cfg, "anilist", nil)
	return anilist.NewClient(anilist.Config{
		Endpoint:       cfg.Metadata.Endpoint,
		DefaultPerPage: cfg.Metadata.DefaultPerPage,
		MaxPerPage:     cfg.Metadata.MaxPerPage,
		StripHTML:      cfg.Metadata.StripHTML,
	}, httpClient, logger)
}
