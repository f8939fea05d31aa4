// The email-assistant daemon watches a mailbox for meeting requests, decides
// what to do with each one and executes the outcome against the calendar.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/di"
	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/ports"
)

func main() {
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build container: %v\n", err)
		os.Exit(1)
	}

	err = container.Invoke(func(logger *zap.Logger, frontend ports.Frontend, store ports.Store) error {
		defer logger.Sync()
		defer store.Close()

		if err := frontend.Start(); err != nil {
			return fmt.Errorf("failed to start front end: %w", err)
		}
		logger.Info("email assistant started")

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("shutting down", zap.String("signal", sig.String()))

		if err := frontend.Stop(); err != nil {
			logger.Error("failed to stop front end", zap.Error(err))
		}
		return nil
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}
