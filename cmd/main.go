package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"survey-scoring/internal/app"
	"survey-scoring/internal/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		if app.IsInputError(err) {
			return 2
		}
		return 1
	}
	return 0
}
