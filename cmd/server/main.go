package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/nfrund/notebook/internal/app"
	"github.com/nfrund/notebook/internal/config"
	"github.com/nfrund/notebook/internal/logging"
	"github.com/nfrund/notebook/internal/server"
)

func main() {
	logging.New()
	cfg := config.New()

	ctx, stop := server.SignalContext(context.Background())
	defer stop()

	if err := app.New(cfg).Run(ctx); err != nil {
		slog.Error("notebook stopped", "event", "server_failed", "error", err)
		stop()
		os.Exit(1)
	}
}
