package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/speakclear-dev/speakclear/internal/api"
	"github.com/speakclear-dev/speakclear/internal/chat"
	"github.com/speakclear-dev/speakclear/internal/config"
	"github.com/speakclear-dev/speakclear/internal/history"
	"github.com/speakclear-dev/speakclear/internal/locale"
)

var chatCmd = &cobra.Command{
	Use:   "chat <result-id>",
	Short: "Chat about a past analysis result",
	Long: `Opens a line-based conversation bound to a result identifier from a
previous submission. Each line you type is sent to the assistant; an empty
line or Ctrl+D ends the conversation.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resultID := args[0]
		if _, err := uuid.Parse(resultID); err != nil {
			return fmt.Errorf("invalid result id %q: %w", resultID, err)
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

		// Pick the language the result was submitted under if we have it.
		lang := locale.Default
		store, err := history.Open(cfg.HistoryPath(home))
		if err == nil {
			defer func() { _ = store.Close() }()
			if rec, err := store.GetResult(resultID); err == nil && rec != nil {
				lang = rec.Language
			}
		} else {
			store = nil
		}

		client := api.NewClient(cfg.Server.BaseURL)
		session := chat.NewSession(client, resultID, lang)

		fmt.Printf("Chatting about result %s (empty line to quit)\n", resultID)

		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				break
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				break
			}

			reply, err := session.Send(cmd.Context(), line)
			if err != nil {
				return err
			}
			fmt.Println(reply.Content)

			if store != nil {
				_ = store.AppendMessage(resultID, string(chat.RoleUser), line)
				_ = store.AppendMessage(resultID, string(chat.RoleAssistant), reply.Content)
			}
		}
		return scanner.Err()
	},
}
