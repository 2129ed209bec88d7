package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/aretw0/strata"
	"github.com/aretw0/strata/internal/metrics"
	lifecycleadapter "github.com/aretw0/strata/pkg/adapters/lifecycle"
	"github.com/aretw0/strata/pkg/core"
)

var watchMetricsAddr string

var watchCmd = &cobra.Command{
	Use:   "watch [pattern]",
	Short: "Follow changes made to entry files",
	Long: `Watch keeps the index in sync with edits made outside strata and prints
one line per change. The optional pattern filters "collection/id" with glob
syntax (e.g. "technical/**"). With --metrics-addr Prometheus metrics are
served on /metrics while watching.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pattern := ""
		if len(args) == 1 {
			pattern = args[0]
		}
		addr := watchMetricsAddr
		if addr == "" {
			addr = cfg.Metrics.Addr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		var opts []strata.Option
		var m *metrics.Metrics
		if addr != "" {
			m = metrics.New()
			opts = append(opts, strata.WithObserver(m))
		}

		svc, err := openService(ctx, opts...)
		if err != nil {
			return err
		}

		events, err := svc.Watch(ctx, pattern)
		if err != nil {
			return fmt.Errorf("failed to watch: %w", err)
		}

		g, gctx := errgroup.WithContext(ctx)
		if m != nil {
			srv, err := metrics.NewServer(m, addr, nil)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Serving metrics on http://%s/metrics\n", srv.Addr())
			g.Go(func() error { return srv.Serve(gctx) })
		}

		source := lifecycleadapter.NewSource(events)
		if err := source.Start(gctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "Watching for changes (Ctrl+C to stop)...")

		g.Go(func() error {
			out := cmd.OutOrStdout()
			for ev := range source.Events() {
				if e, ok := ev.(core.Event); ok {
					fmt.Fprintf(out, "%s %s %s/%s\n",
						time.Unix(e.Timestamp, 0).Format(time.TimeOnly),
						eventColor(e.Type).Sprintf("%-6s", e.Type),
						e.Collection, e.ID,
					)
					continue
				}
				fmt.Fprintln(out, ev.String())
			}
			return nil
		})

		err = g.Wait()
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func eventColor(t core.EventType) *color.Color {
	switch t {
	case core.EventCreate:
		return color.New(color.FgGreen)
	case core.EventDelete:
		return color.New(color.FgRed)
	default:
		return color.New(color.FgYellow)
	}
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
}
