package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/autotox/config"
	"github.com/opd-ai/autotox/savedata"
	"github.com/opd-ai/autotox/session"
	"github.com/opd-ai/autotox/terminal"
	"github.com/opd-ai/autotox/toxnet"
)

// setupLogging points logrus at the configured log file. Standard output
// belongs to the interactive UI, so an empty log_file discards log output.
func setupLogging(cfg config.Config) (func(), error) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if cfg.LogFile == "" {
		logrus.SetOutput(io.Discard)
		return func() {}, nil
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	logrus.SetOutput(f)
	return func() {
		logrus.SetOutput(io.Discard)
		_ = f.Close()
	}, nil
}

func runClient(ctx context.Context, cfg config.Config) error {
	closeLog, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	store, err := savedata.Open(cfg.SavedataFile)
	if err != nil {
		return err
	}
	defer store.Close()

	data, err := store.Load()
	if err != nil {
		return err
	}

	term, err := terminal.Configure(os.Stdin, os.Stdout)
	if err != nil {
		return err
	}
	defer term.Restore()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	net, err := toxnet.New(toxnet.Options{
		Savedata:  data,
		StartPort: cfg.StartPort,
		EndPort:   cfg.EndPort,
	})
	if err != nil {
		return err
	}
	defer net.Close()

	if cfg.Bootstrap {
		bootstrap(net, cfg)
	}

	s, err := session.New(session.Options{
		Input:   term,
		Output:  os.Stdout,
		Network: net,
		Store:   store,
		Config:  cfg,
	})
	if err != nil {
		return err
	}

	runErr := s.Run(ctx)
	fmt.Fprintln(os.Stdout)

	if err := store.Save(net.Savedata()); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "runClient",
			"error":    err.Error(),
		}).Error("Failed to save savedata on exit")
	}

	if errors.Is(runErr, context.Canceled) {
		logrus.WithField("function", "runClient").Info("Interrupted by signal")
		return nil
	}
	return runErr
}

func bootstrap(net *toxnet.Network, cfg config.Config) {
	for _, node := range cfg.BootstrapNodes {
		if err := net.Bootstrap(node); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "bootstrap",
				"address":  node.Address,
				"port":     node.Port,
				"error":    err.Error(),
			}).Warn("Bootstrap node unreachable")
			continue
		}
		logrus.WithFields(logrus.Fields{
			"function": "bootstrap",
			"address":  node.Address,
			"port":     node.Port,
		}).Info("Bootstrapped")
	}
}
