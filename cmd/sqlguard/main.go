// Package main implements the sqlguard CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/electwix/sqlguard/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code := cli.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
