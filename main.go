// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/danielhkuo/voting-server/auth"
	"github.com/danielhkuo/voting-server/cliparse"
	"github.com/danielhkuo/voting-server/db"
	"github.com/danielhkuo/voting-server/events"
	"github.com/danielhkuo/voting-server/handlers"
	"github.com/danielhkuo/voting-server/metrics"
	"github.com/danielhkuo/voting-server/router"
	"github.com/danielhkuo/voting-server/server"
	"github.com/danielhkuo/voting-server/static"
	"github.com/danielhkuo/voting-server/store"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		slog.Error("exiting", "error", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "voting-server",
		Short: "Election voting server",
		Long: `voting-server registers voters, candidates and voting sections, records
one vote per voter and reports tallies over a small HTTP API.

Configuration comes from, in increasing precedence: defaults, a YAML file
(-c or VOTING_CONFIG), .env, environment variables and flags.`,
		// Flags are handled by cliparse so the same set works for every
		// subcommand.
		DisableFlagParsing: true,
		SilenceUsage:       true,
		Args:               cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(args)
			if err != nil || cfg == nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, *cfg)
		},
	}

	cmd.AddCommand(checkCmd(), hashPasswordCmd())
	return cmd
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:                "check",
		Short:              "Load the configured storage and print collection counts",
		DisableFlagParsing: true,
		SilenceUsage:       true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(args)
			if err != nil || cfg == nil {
				return err
			}
			p, err := db.Open(*cfg)
			if err != nil {
				return err
			}
			defer p.Close()

			st, err := store.New(cmd.Context(), p)
			if err != nil {
				return err
			}
			stats := st.Stats()
			fmt.Fprintf(cmd.OutOrStdout(), "storage:    %s\nvoters:     %d\ncandidates: %d\nsections:   %d\nvotes:      %d\n",
				cfg.Storage, stats.Voters, stats.Candidates, stats.Sections, stats.Votes)
			return nil
		},
	}
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for admin_password_hash (reads stdin without an argument)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var password string
			if len(args) == 1 {
				password = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return fmt.Errorf("failed to read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

// loadConfig parses args and installs the default logger. A nil config
// with a nil error means help was printed.
func loadConfig(args []string) (*cliparse.Config, error) {
	cfg, err := cliparse.ParseFlags(args)
	if errors.Is(err, pflag.ErrHelp) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	setupLogger(os.Stderr, cfg.LogLevel)
	return &cfg, nil
}

// setupLogger uses text output on a terminal and JSON otherwise.
func setupLogger(out *os.File, level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var h slog.Handler
	if isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd()) {
		h = slog.NewTextHandler(out, opts)
	} else {
		h = slog.NewJSONHandler(out, opts)
	}
	slog.SetDefault(slog.New(h))
}

func run(ctx context.Context, cfg cliparse.Config) error {
	p, err := db.Open(cfg)
	if err != nil {
		return err
	}
	defer p.Close()
	slog.Info("storage ready", "storage", cfg.Storage)

	m := metrics.New()
	opts := []store.Option{store.WithObserver(m)}

	if cfg.MetricsAddr != "" {
		go func() {
			if err := m.Serve(ctx, cfg.MetricsAddr); err != nil {
				slog.Error("metrics server failed", "error", err)
			}
		}()
	}

	if cfg.NATSURL != "" {
		pub, err := events.Connect(cfg.NATSURL)
		if err != nil {
			return err
		}
		defer pub.Close()
		opts = append(opts, store.WithPublisher(pub))
		slog.Info("publishing events", "url", cfg.NATSURL)
	}

	st, err := store.New(ctx, p, opts...)
	if err != nil {
		return err
	}

	// A nil *static.Asset must not end up inside the interface.
	var page handlers.Page
	if asset, err := static.Load(cfg.IndexFile); err != nil {
		slog.Warn("static page disabled", "file", cfg.IndexFile, "error", err)
	} else {
		defer asset.Close()
		page = asset
	}

	srv := server.New(router.NewRouter(st, cfg, page),
		server.WithObserver(m),
		server.WithMaxConns(cfg.MaxConns))

	slog.Info("server starting", "port", cfg.Port)
	if err := srv.ListenAndServe(ctx, server.Addr(cfg.Port)); err != nil {
		return err
	}
	slog.Info("server stopped")
	return nil
}
