// Command termpipe runs the translation assistant API server.
//
// Configuration is read from CONFIG_PATH (default ./config.yaml) with
// environment variable overrides. The server stops on SIGINT/SIGTERM
// after draining in-flight requests.
//
// Exit codes: 0 = clean shutdown, 1 = error.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/termpipe/termpipe/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		slog.Error("application failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
