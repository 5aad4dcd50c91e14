package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/speakclear-dev/speakclear/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file to ~/.speakclear/config.yaml",
	RunE: func(cmd *cobra.Command, args []string) error {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("getting home directory: %w", err)
		}

		if _, err := config.ReadConfig(home); err == nil {
			return fmt.Errorf("config already exists at %s", config.Dir(home))
		}

		cfg := config.DefaultConfig()
		if serverURL != "" {
			cfg.Server.BaseURL = serverURL
		}
		if err := config.WriteConfig(home, cfg); err != nil {
			return err
		}

		fmt.Printf("Wrote default config to %s\n", config.Dir(home))
		return nil
	},
}
