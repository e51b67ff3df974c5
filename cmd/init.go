package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pders01/schemasync/internal/config"
)

var initCheck bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the schemasync configuration file",
	Long: `Create a default config file if it doesn't exist.

The file is written to $HOME/.config/schemasync/config.toml, or to the path
given with --config. An existing file is never overwritten.

Tokens can be left out of the file and supplied through the environment:
  SCHEMASYNC_SOURCE_TOKEN, SCHEMASYNC_TARGET_TOKEN

With --check, both projects are contacted to verify the settings.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&initCheck, "check", false, "Verify that both projects are reachable")
}

const defaultConfig = `[management]
url = "https://management.hygraph.com/graphql"
poll_interval = "2s"
timeout = "30s"

[source]
# token = ""
project_id = ""
environment = "master"

[target]
# token = ""
project_id = ""
environment = "master"

[artifacts]
dir = "schemasync-runs"
save = false

[log]
level = "info"
format = "text"
`

func configFilePath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	dir, err := defaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath, err := configFilePath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}

		// Tokens end up in this file, keep it private.
		if err := os.WriteFile(configPath, []byte(defaultConfig), 0600); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}

		fmt.Printf("✓ Created default config: %s\n", configPath)
	} else if err != nil {
		return fmt.Errorf("failed to check config file: %w", err)
	} else {
		fmt.Printf("Config already exists: %s\n", configPath)
	}

	if !initCheck {
		fmt.Println("\n  Fill in the project ids, then run: schemasync plan <filter>")
		return nil
	}

	viper.SetConfigFile(configPath)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	ctx := commandContext(cmd)
	for _, side := range []config.Side{config.SideSource, config.SideTarget} {
		p, err := projectFor(side)
		if err != nil {
			return err
		}
		client, err := newClient(p)
		if err != nil {
			return err
		}
		if err := client.Ping(ctx); err != nil {
			return fmt.Errorf("%s: %w", side, err)
		}
		if _, err := client.FetchSchema(ctx, p.ProjectID, p.Environment); err != nil {
			return fmt.Errorf("%s: %w", side, err)
		}
		fmt.Printf("✓ %s project %s (%s) is reachable\n", side, p.ProjectID, p.Environment)
	}

	return nil
}
