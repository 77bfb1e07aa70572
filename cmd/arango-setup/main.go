// Command arango-setup downloads an ArangoDB release, starts it on a fresh
// data directory and keeps it running until interrupted. Integration tests
// point ARANGO_URL at it.
//
//	arango-setup              download if needed, start, wait for Ctrl-C
//	arango-setup -download    download only
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/unifiedui/arango-client/internal/config"
	"github.com/unifiedui/arango-client/internal/logging"
	"github.com/unifiedui/arango-client/internal/services/bootstrap"
)

func main() {
	downloadOnly := flag.Bool("download", false, "download and unpack, then exit")
	version := flag.String("version", "", "ArangoDB version (overrides ARANGO_VERSION)")
	port := flag.Int("port", 0, "listen port (overrides ARANGO_PORT)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.Log)

	if *version != "" {
		cfg.Bootstrap.Version = *version
	}
	if *port != 0 {
		cfg.Bootstrap.Port = *port
	}

	srv, err := bootstrap.New(&bootstrap.Config{
		Version:        cfg.Bootstrap.Version,
		DownloadURL:    cfg.Bootstrap.DownloadURL,
		InstallDir:     cfg.Bootstrap.InstallDir,
		Port:           cfg.Bootstrap.Port,
		StartupTimeout: cfg.Bootstrap.StartupTimeout,
		ExtraArgs:      cfg.Bootstrap.ExtraArgs,
		Logger:         &logger,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("invalid bootstrap configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Download(ctx); err != nil {
		log.Fatal().Err(err).Msg("download failed")
	}
	if *downloadOnly {
		return
	}

	if err := srv.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start arangod")
	}
	log.Info().Str("url", srv.URL()).Msg("arangod is ready; export ARANGO_URL to run integration tests")

	<-ctx.Done()

	if err := srv.Stop(); err != nil {
		log.Error().Err(err).Msg("failed to stop arangod cleanly")
		os.Exit(1)
	}
}
