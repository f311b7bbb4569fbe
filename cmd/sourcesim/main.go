// Command sourcesim serves a fake Slack API with generated chatter for
// local runs of the aggregation pipeline:
//
//	go run ./cmd/sourcesim -addr :8190
//	AGORA_SLACK_TOKEN=dev AGORA_SLACK_CHANNEL=C-sim go run ./cmd ...
//
// Point the slack connector's base URL at http://localhost:8190/api.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/agora/internal/sourcesim"
	"github.com/okian/agora/pkg/logger"
)

const readHeaderTimeout = 5 * time.Second

func main() {
	addr := flag.String("addr", ":8190", "listen address")
	interval := flag.Duration("interval", 5*time.Second, "delay between generated messages")
	seed := flag.Int64("seed", 42, "random seed for generated chatter")
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sim := sourcesim.New(
		sourcesim.WithInterval(*interval),
		sourcesim.WithSeed(*seed),
		sourcesim.WithLogger(log.Named("sourcesim")),
	)
	go sim.Run(ctx)

	srv := &http.Server{
		Addr:              *addr,
		Handler:           sim.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "sourcesim listening", logger.String("addr", *addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("sourcesim server failed: " + err.Error() + "\n")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
