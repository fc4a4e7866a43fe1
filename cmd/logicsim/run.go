// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/db47h/logicsim"
	"github.com/db47h/logicsim/boardfile"
	"github.com/db47h/logicsim/metric"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var (
	sets        []string
	ticks       int
	metricsAddr string
)

var runCmd = &cobra.Command{
	Use:   "run FILE",
	Short: "Run the main board of a board file",
	Long: `Run builds the main board of a board file, applies the --set input values,
steps it and prints its outputs. With --ticks, clocks are then ticked N times
and outputs printed after each tick.

With --metrics-addr, Prometheus metrics are served on ADDR/metrics until the
command is interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), cmd.OutOrStdout(), args[0])
	},
}

func init() {
	runCmd.Flags().StringArrayVar(&sets, "set", nil, "set input `name=value` (value msb first, e.g. 0101)")
	runCmd.Flags().IntVar(&ticks, "ticks", 0, "number of clock ticks to run")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on `ADDR`")
	rootCmd.AddCommand(runCmd)
}

func run(ctx context.Context, w io.Writer, name string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	opts := []logicsim.Option{logicsim.WithLogger(log), logicsim.WithMaxPasses(maxPasses)}

	var srv *http.Server
	if metricsAddr != "" {
		reg := prometheus.NewRegistry()
		m, err := metric.Register(reg)
		if err != nil {
			return err
		}
		opts = append(opts, logicsim.WithMetrics(m))
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true}))
		srv = &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("metrics server", "error", err)
			}
		}()
		defer srv.Close()
	}

	f, err := boardfile.Load(name)
	if err != nil {
		return err
	}
	b, err := f.Build(logicsim.NewLibrary(), opts...)
	if err != nil {
		return err
	}
	for _, s := range sets {
		k, v, ok := strings.Cut(s, "=")
		if !ok {
			return errors.Errorf("invalid --set %q, expected name=value", s)
		}
		val, err := logicsim.ParseValue(v)
		if err != nil {
			return errors.Wrapf(err, "--set %s", k)
		}
		if err = b.SetExternalInput(k, val); err != nil {
			return err
		}
	}

	r := b.Step()
	if err = printState(w, b, "step", r); err != nil {
		return err
	}
	for i := 1; i <= ticks; i++ {
		if err = ctx.Err(); err != nil {
			return err
		}
		r = b.Tick()
		if err = printState(w, b, fmt.Sprintf("tick %d", i), r); err != nil {
			return err
		}
	}

	if srv != nil {
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
		defer stop()
		log.Info("serving metrics", "addr", metricsAddr)
		<-ctx.Done()
	}
	return nil
}

func printState(w io.Writer, b *logicsim.Board, label string, r logicsim.StepResult) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s (%d passes)", label, r.Status, r.Passes)
	for _, p := range b.Interface() {
		if p.Dir == logicsim.Input {
			continue
		}
		v, err := b.ReadExternalOutput(p.Name)
		if err != nil {
			return err
		}
		fmt.Fprintf(&sb, " %s=%s", p.Name, v)
	}
	sb.WriteByte('\n')
	_, err := io.WriteString(w, sb.String())
	return err
}
