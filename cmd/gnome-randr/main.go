package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gnome-randr.dev/cli/internal/interfaces/cli"
	"gnome-randr.dev/cli/internal/interfaces/di"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	container := di.NewContainer()
	if err := cli.Execute(ctx, container.GetCLIContainer()); err != nil {
		cancel()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
