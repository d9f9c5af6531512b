// Command tgrepost reposts photos from exported Telegram chat history to a
// channel, one media group per cycle, remembering what it already sent.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nvoropaev/tgrepost/internal/config"
	"github.com/nvoropaev/tgrepost/internal/cycle"
	"github.com/nvoropaev/tgrepost/internal/ledger"
	"github.com/nvoropaev/tgrepost/internal/logging"
	"github.com/nvoropaev/tgrepost/internal/publisher"
	"github.com/nvoropaev/tgrepost/internal/telegram"
)

var configPath string

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "tgrepost: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tgrepost",
		Short: "Repost photos from Telegram chat exports to a channel",
		Long: `tgrepost parses exported Telegram chat history, groups photos posted in the
same second and reposts one unsent group per cycle as a media group, keeping
a durable ledger of everything already sent.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "tgrepost.yml", "Configuration file")
	cmd.AddCommand(
		newRunCmd(),
		newOnceCmd(),
		newScanCmd(),
	)
	return cmd
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Post one unsent group per cycle until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := buildController()
			if err != nil {
				return err
			}
			return ctrl.Run(cmd.Context())
		},
	}
}

func newOnceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "Run a single cycle and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := buildController()
			if err != nil {
				return err
			}
			return ctrl.RunOnce(cmd.Context())
		},
	}
}

func newScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Report unsent batches per archive without sending",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logging.Setup(cfg.LogLevel)
			if err := cfg.ValidateSources(); err != nil {
				return err
			}
			led := ledger.Open(cfg.LedgerPath, logging.Component("ledger"))
			ctrl := cycle.New(cycle.Options{
				Archives:  cfg.Archives,
				PhotosDir: cfg.PhotosDir,
				Ledger:    led,
				Logger:    logging.Component("cycle"),
			})
			return ctrl.Scan()
		},
	}
}

// buildController loads config and wires the full sending stack.
func buildController() (*cycle.Controller, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logging.Setup(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	led := ledger.Open(cfg.LedgerPath, logging.Component("ledger"))
	channel, err := telegram.New(cfg.BotToken, cfg.Channel)
	if err != nil {
		return nil, err
	}
	pub := publisher.New(channel, led, cfg.Caption, cfg.ParseMode, cfg.Extensions, logging.Component("publisher"))
	return cycle.New(cycle.Options{
		Archives:     cfg.Archives,
		PhotosDir:    cfg.PhotosDir,
		Ledger:       led,
		Publisher:    pub,
		IdleDelay:    time.Duration(cfg.IdleDelay),
		BackoffDelay: time.Duration(cfg.BackoffDelay),
		Logger:       logging.Component("cycle"),
	}), nil
}
