package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/strangelove-ventures/nearcli/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	r := &cli.Runner{
		In:  os.Stdin,
		Out: os.Stdout,
		Err: os.Stderr,
	}
	code := r.Run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
