package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/matzehuels/depman/internal/cli"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	c := cli.New(os.Stdout, os.Stderr, cli.LogInfo)
	if err := c.RootCommand().ExecuteContext(ctx); err != nil {
		cli.PrintError(os.Stderr, err)
		cancel()
		os.Exit(cli.ExitCode(err))
	}
}
