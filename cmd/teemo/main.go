package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/EgorLis/teemo/internal/logging"
)

func main() {
	log := logging.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(log).ExecuteContext(ctx); err != nil {
		log.Error("teemo failed", "err", err)
		stop()
		os.Exit(1)
	}
}
