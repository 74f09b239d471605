package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rickgao/eedraws/internal/cli"
)

func main() {
	// Cancel the in-flight fetch on shutdown signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := cli.NewRootCommand().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "eedraws:", err)
	}
	os.Exit(cli.GetExitCode(err))
}
