package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/eventfeed/internal/logging"
	"github.com/dmitrijs2005/eventfeed/internal/server"
	"github.com/dmitrijs2005/eventfeed/internal/server/config"
)

func serve(ctx context.Context, cfg *config.Config, logger logging.Logger) error {
	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	app.Run(ctx)
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	logger := logging.NewJSON(os.Stdout, slog.LevelInfo)

	app := newCLIApp(commands{serve: serve, migrate: server.Migrate}, config.LoadConfig, logger)
	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
