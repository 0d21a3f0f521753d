package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"veilbot/cmd"

	log "github.com/sirupsen/logrus"
)

func main() {
	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.NewRootCommand().ExecuteContext(ctx); err != nil {
		log.WithError(err).Error("Application error")
		stop()
		os.Exit(1)
	}
}
