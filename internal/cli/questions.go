package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/speakclear-dev/speakclear/internal/api"
	"github.com/speakclear-dev/speakclear/internal/config"
	"github.com/speakclear-dev/speakclear/internal/content"
	"github.com/speakclear-dev/speakclear/internal/locale"
)

var questionsLang string

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Print the questionnaire without starting a session",
	RunE: func(cmd *cobra.Command, args []string) error {
		lang := locale.Lang(questionsLang)
		if !lang.Valid() {
			return fmt.Errorf("unsupported language %q (use en or ar)", questionsLang)
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

		provider := content.NewProvider(api.NewClient(cfg.Server.BaseURL))
		if err := provider.Load(cmd.Context(), lang); err != nil {
			return err
		}

		for _, category := range provider.Categories() {
			fmt.Printf("%s\n%s\n", category, strings.Repeat("-", len(category)))
			for _, q := range provider.QuestionsIn(category) {
				fmt.Printf("  [%s] %s\n", q.ID, q.Prompt(lang))
				for _, choice := range q.Choices(lang) {
					fmt.Printf("        - %s\n", choice)
				}
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	questionsCmd.Flags().StringVar(&questionsLang, "lang", "en", "Language of the questionnaire (en or ar)")
}
