// Command dnet builds, sends and decodes packets and manages the kernel's
// ARP, route, firewall and interface tables.
package main

import (
	"context"
	"dnet/internal/cli"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "dnet: %v\n", err)
		os.Exit(1)
	}
}
