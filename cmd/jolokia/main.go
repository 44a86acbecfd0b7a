package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ajitpratap0/jolokia-sdk-go/cmd/jolokia/cmd"
)

// Version can be set during build with -ldflags
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cmd.Execute(ctx, version, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
