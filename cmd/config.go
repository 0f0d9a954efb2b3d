package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/payee-cli/internal/config"
)

var configInitForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration helpers",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config.yaml with default values",
	RunE: func(cmd *cobra.Command, args []string) error {
		const path = "config.yaml"
		if _, err := os.Stat(path); err == nil && !configInitForce {
			return eris.Errorf("%s already exists (use --force to overwrite)", path)
		}

		body, err := yaml.Marshal(config.Default())
		if err != nil {
			return eris.Wrap(err, "marshal defaults")
		}

		header := []byte("# payee-cli configuration. Every key can also be set via a\n# PAYEE_-prefixed environment variable, e.g. PAYEE_ANTHROPIC_KEY.\n")
		if err := os.WriteFile(path, append(header, body...), 0o644); err != nil {
			return eris.Wrapf(err, "write %s", path)
		}

		zap.L().Info("config written", zap.String("path", path))
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing config.yaml")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
