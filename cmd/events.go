/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tasklane/apiserver/config"
	"github.com/tasklane/apiserver/internal/logging"
	"github.com/tasklane/apiserver/internal/mq"
	"github.com/tasklane/apiserver/types"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect todo events",
}

var eventsWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print todo events as JSON lines until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)

		if cfg.MQ.Backend == config.MQBackendNone {
			return errors.New("MQ_BACKEND is not set")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx = logging.WithLogger(ctx, logger)

		backend, err := mq.Open(ctx, cfg.MQ)
		if err != nil {
			return err
		}
		events := mq.New(backend, cfg.MQ.TodoTopic)
		defer events.Close()

		enc := json.NewEncoder(cmd.OutOrStdout())
		err = events.SubscribeTodos(ctx, func(_ context.Context, event types.TodoEvent) error {
			return enc.Encode(event)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsWatchCmd)
}
