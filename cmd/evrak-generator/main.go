package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/allanpk716/evrak_generator/internal/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cmd.NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", cmd.AppName, err)
		stop()
		os.Exit(1)
	}
}
