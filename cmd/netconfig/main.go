package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"deploy_networks/internal/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := newApp(os.Stdout).Execute(ctx)
	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
