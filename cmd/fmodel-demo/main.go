// Command fmodel-demo runs an order through create, update and cancel
// against the configured backend.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/terraskye/fmodel/internal/demo"
)

func main() {
	cfg, err := demo.ParseEnv()
	if err != nil {
		exitf("fmodel-demo: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		exitf("fmodel-demo: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := demo.Run(ctx, cfg, logger, prometheus.NewRegistry())
	if err != nil {
		logger.WithError(err).Error("demo failed")
		stop()
		os.Exit(1)
	}
	fmt.Printf("order %d: items=%v cancelled=%t revisions=%d actions=%d\n",
		result.View.Value.OrderID,
		result.View.Value.Items,
		result.View.Value.IsCancelled,
		result.View.Value.Revisions,
		len(result.Actions),
	)
}

func newLogger(cfg demo.Config) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logrus.New()
	logger.SetLevel(level)
	if cfg.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger, nil
}

func exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
