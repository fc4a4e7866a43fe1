// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Command logicsim runs and checks board files.
//
//	logicsim run FILE [--set name=value]... [--ticks N]
//	logicsim check FILE
//
package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	logLevel  string
	maxPasses int
)

var rootCmd = &cobra.Command{
	Use:           "logicsim",
	Short:         "Digital logic simulator",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().IntVar(&maxPasses, "max-passes", 1000, "propagation passes before a step is reported as oscillating")
}

func newLogger() (*slog.Logger, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(logLevel))); err != nil {
		return nil, errors.Wrap(err, "invalid log level")
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})), nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		slog.Error("logicsim failed", "error", err)
		os.Exit(1)
	}
}
