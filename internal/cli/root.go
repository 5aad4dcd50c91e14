// Package cli defines Cobra command definitions for the speakclear CLI.
// This file contains the root command, version flag, and TUI launch.
package cli

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/speakclear-dev/speakclear/internal/api"
	"github.com/speakclear-dev/speakclear/internal/assess"
	"github.com/speakclear-dev/speakclear/internal/capture"
	"github.com/speakclear-dev/speakclear/internal/config"
	"github.com/speakclear-dev/speakclear/internal/content"
	"github.com/speakclear-dev/speakclear/internal/flow"
	"github.com/speakclear-dev/speakclear/internal/history"
	"github.com/speakclear-dev/speakclear/internal/locale"
	"github.com/speakclear-dev/speakclear/internal/log"
	"github.com/speakclear-dev/speakclear/internal/tui"
	"github.com/speakclear-dev/speakclear/internal/tui/app"
)

var (
	serverURL string
	version   = "dev" // set via ldflags at build time
)

var rootCmd = &cobra.Command{
	Use:   "speakclear",
	Short: "Guided speech assessment from your terminal",
	Long: `SpeakClear walks you through a short questionnaire and three
read-aloud recordings, submits them for speech analysis, and lets you
discuss the results with an assistant.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// When no subcommand is provided, launch TUI if TTY, show help otherwise
		if !tui.IsTTY() {
			return cmd.Help()
		}

		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("getting home directory: %w", err)
		}

		cfg, err := config.LoadOrDefault(home)
		if err != nil {
			return err
		}
		if serverURL != "" {
			cfg.Server.BaseURL = serverURL
		}

		client := api.NewClient(cfg.Server.BaseURL, api.WithHTTPClient(&http.Client{
			Timeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		}))
		provider := content.NewProvider(client)

		fc := flow.NewController(
			provider,
			client,
			func(lang locale.Lang) *assess.Collector {
				return assess.NewCollector(provider.Questions(), lang)
			},
			cfg.Trials,
		)

		logger, err := log.NewLogger(home)
		if err != nil {
			return err
		}

		store, err := history.Open(cfg.HistoryPath(home))
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		captureCfg := capture.Config{
			SampleRate: cfg.Capture.SampleRate,
			Channels:   cfg.Capture.Channels,
			FrameSize:  cfg.Capture.FrameSize(),
		}

		model := tui.NewModel(cfg, home, fc, provider, client, capture.PortAudioDevice{}, captureCfg, store, logger)
		return tui.Run(app.New(model))
	},
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Override the analysis server base URL")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(questionsCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(historyCmd)
}
