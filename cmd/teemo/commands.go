package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/EgorLis/teemo/internal/config"
	"github.com/EgorLis/teemo/pkg/teemo"
)

const defaultConfigPath = "conf/teemo.json"

func newRootCmd(log *slog.Logger) *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:           "teemo",
		Short:         "League Client (LCU) API client",
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: `teemo talks to the local League Client API.

Examples:
  teemo watch /lol-gameflow/v1/gameflow-phase
  teemo watch --all
  teemo request GET /lol-summoner/v1/current-summoner
  teemo live GET /liveclientdata/activeplayer
  teemo live GET /liveclientdata/gamestats --every 2s
  teemo events
  teemo config init conf/teemo.json`,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", defaultConfigPath, "path to the JSON config")

	load := func() (*teemo.Teemo, error) {
		cfg, err := teemo.LoadConfig(cfgPath)
		if err != nil {
			return nil, err
		}
		return teemo.New(cfg, teemo.WithLogger(log)), nil
	}

	root.AddCommand(
		newWatchCmd(load, log),
		newRequestCmd(load, false),
		newRequestCmd(load, true),
		newEventsCmd(load),
		newConfigCmd(log),
	)
	return root
}

func newWatchCmd(load func() (*teemo.Teemo, error), log *slog.Logger) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "watch [topic...]",
		Short: "Print events as JSON lines until Ctrl+C",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && len(args) == 0 {
				return fmt.Errorf("no topics: pass at least one topic or --all")
			}
			ctx := cmd.Context()

			t, err := load()
			if err != nil {
				return err
			}
			t.OnDisconnected = func(err error) {
				if err != nil {
					log.Warn("ws disconnected", "err", err)
				}
			}

			log.Info("waiting for the league client…")
			if err := t.Start(ctx); err != nil {
				return err
			}
			defer t.Close()
			if err := t.StartRealtime(ctx); err != nil {
				return err
			}

			out := newEventPrinter(cmd.OutOrStdout())
			topics := args
			if all {
				topics = []string{teemo.Firehose}
			}
			for _, tp := range topics {
				if err := t.Subscribe(ctx, tp, out.print); err != nil {
					return fmt.Errorf("subscribe %s: %w", tp, err)
				}
			}

			log.Info("watching… press Ctrl+C to stop", "topics", len(topics))
			select {
			case <-ctx.Done():
				return nil
			case <-t.Done():
				return fmt.Errorf("session ended")
			}
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "subscribe to every event")
	return cmd
}

func newRequestCmd(load func() (*teemo.Teemo, error), live bool) *cobra.Command {
	var (
		data  string
		every time.Duration
	)

	use, short := "request METHOD PATH", "Send a request to the LCU API"
	if live {
		use, short = "live METHOD PATH", "Send a request to the Live Client Data API"
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			body, err := parseData(data)
			if err != nil {
				return err
			}

			t, err := load()
			if err != nil {
				return err
			}

			var res any
			if live && every > 0 {
				if !strings.EqualFold(args[0], http.MethodGet) {
					return fmt.Errorf("--every works with GET only")
				}
				return ignoreCancel(t.PollLive(ctx, args[1], every, func(v any) {
					_ = printJSON(cmd.OutOrStdout(), v)
				}))
			}
			if live {
				res = t.LiveRequest(ctx, args[0], args[1], body)
			} else {
				if err := t.Start(ctx); err != nil {
					return err
				}
				defer t.Close()
				res = t.Request(ctx, args[0], args[1], body)
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVar(&data, "data", "", "JSON request body")
	if live {
		cmd.Flags().DurationVar(&every, "every", 0, "poll with this interval and print changes until Ctrl+C")
	}
	return cmd
}

func newEventsCmd(load func() (*teemo.Teemo, error)) *cobra.Command {
	var every time.Duration

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Print match events from the Live Client Data API until Ctrl+C",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := load()
			if err != nil {
				return err
			}
			out := newEventPrinter(cmd.OutOrStdout())
			return ignoreCancel(t.WatchLiveEvents(cmd.Context(), every, out.print))
		},
	}
	cmd.Flags().DurationVar(&every, "every", time.Second, "poll interval")
	return cmd
}

// ignoreCancel — Ctrl+C не ошибка.
func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func newConfigCmd(log *slog.Logger) *cobra.Command {
	cfg := &cobra.Command{Use: "config", Short: "Config helpers"}
	cfg.AddCommand(&cobra.Command{
		Use:   "init [PATH]",
		Short: "Write the default config",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultConfigPath
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.Save(path, config.Default()); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			log.Info("config written", "path", path)
			return nil
		},
	})
	return cfg
}

// parseData — тело запроса из --data; пустая строка значит без тела.
func parseData(s string) (any, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, fmt.Errorf("--data: %w", err)
	}
	return v, nil
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

// eventPrinter — колбэки вызываются последовательно из dispatcher-а,
// поэтому encoder без блокировки.
type eventPrinter struct {
	enc *json.Encoder
}

func newEventPrinter(w io.Writer) *eventPrinter {
	return &eventPrinter{enc: json.NewEncoder(w)}
}

func (p *eventPrinter) print(data map[string]any) {
	_ = p.enc.Encode(data)
}
