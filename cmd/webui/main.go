// Command webui serves the browser front end.
//
// Usage:
//
//	VALIDATOR_USERS=ops@example.org:secret go run ./cmd/webui -addr :8080
//
// Settings come from the environment, optionally preloaded from -env.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Karanpr-18/Excel-cleaning/internal/config"
	"github.com/Karanpr-18/Excel-cleaning/internal/logging"
	"github.com/Karanpr-18/Excel-cleaning/internal/metrics"
	"github.com/Karanpr-18/Excel-cleaning/internal/metrics/backends"
	"github.com/Karanpr-18/Excel-cleaning/internal/retention"
	"github.com/Karanpr-18/Excel-cleaning/internal/webui"
)

const shutdownTimeout = 30 * time.Second

func main() {
	addr := flag.String("addr", "", "listen address (overrides ADDR)")
	envFile := flag.String("env", ".env", "optional .env file with settings")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, *envFile, *addr, os.Stderr, nil); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// serve runs the server until ctx is done, then drains in-flight requests.
// When ready is non-nil it receives the bound address once listening.
func serve(ctx context.Context, envFile, addr string, logOut io.Writer, ready chan<- string) error {
	settings, err := config.LoadSettings(envFile)
	if err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	if addr != "" {
		settings.Addr = addr
	}
	logger := logging.New(settings.LogLevel, logOut)
	if len(settings.Users) == 0 {
		logger.Warn().Msg("webui: VALIDATOR_USERS is empty; nobody can log in")
	}

	b, err := backends.FromSettings(*settings, "webui")
	if err != nil {
		logger.Warn().Err(err).Msg("metrics: backend unavailable; metrics disabled")
	} else if b != nil {
		metrics.SetBackend(b)
	}

	for _, dir := range []string{settings.UploadDir, settings.DownloadDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	sweeper := retention.ForSettings(*settings, logging.Component(logger, "retention"))
	if removed, err := sweeper.Sweep(); err != nil {
		logger.Warn().Err(err).Msg("retention: startup sweep failed")
	} else if len(removed) > 0 {
		logger.Info().Int("removed", len(removed)).Msg("retention: startup sweep")
	}

	handler := webui.NewServer(*settings, webui.Deps{
		Log:     logging.Component(logger, "webui"),
		Sweeper: sweeper,
	})
	ln, err := net.Listen("tcp", settings.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", settings.Addr, err)
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	logger.Info().Str("addr", ln.Addr().String()).Msg("webui: listening")
	if ready != nil {
		ready <- ln.Addr().String()
	}

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("webui: shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err = srv.Shutdown(sctx)
	if ferr := metrics.Flush(); ferr != nil {
		logger.Warn().Err(ferr).Msg("metrics: flush failed")
	}
	return err
}
