package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/speakclear-dev/speakclear/internal/config"
	"github.com/speakclear-dev/speakclear/internal/history"
)

var (
	historyLimit      int
	historyTranscript string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past analysis results",
	RunE: func(cmd *cobra.Command, args []string) error {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("getting home directory: %w", err)
		}
		cfg, err := config.LoadOrDefault(home)
		if err != nil {
			return err
		}

		store, err := history.Open(cfg.HistoryPath(home))
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		if historyTranscript != "" {
			messages, err := store.GetTranscript(historyTranscript)
			if err != nil {
				return err
			}
			if len(messages) == 0 {
				fmt.Println("No transcript for this result.")
				return nil
			}
			for _, m := range messages {
				fmt.Printf("[%s] %s: %s\n", m.SentAt.Format("2006-01-02 15:04"), m.Role, m.Content)
			}
			return nil
		}

		records, err := store.ListResults(historyLimit)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("No results yet. Run 'speakclear' to start an assessment.")
			return nil
		}

		for _, r := range records {
			fmt.Printf("%s  %s  lang=%s  speech=%.1f wpm  phonemes=%.1f  dysarthria=%.0f%%\n",
				r.SubmittedAt.Format("2006-01-02 15:04"),
				r.ID,
				r.Language,
				r.SpeechRate,
				r.PhonemeRate,
				r.DysarthriaProb*100,
			)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of results to list")
	historyCmd.Flags().StringVar(&historyTranscript, "transcript", "", "Show the chat transcript for a result id")
}
