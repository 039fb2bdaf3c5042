package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cassiomorais/yamoney/internal/bootstrap"
	"github.com/cassiomorais/yamoney/internal/cli"
	"github.com/cassiomorais/yamoney/internal/infrastructure/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(config.DefaultPath(), nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		return 1
	}
	defer app.Close(context.Background())

	if err := cli.NewCmdRoot(app).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
