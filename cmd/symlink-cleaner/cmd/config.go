package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Zagrios/bs-manager/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration file helpers",
	Long:  `Commands for writing and checking a symlink-cleaner config file.`,
}

var configExampleCmd = &cobra.Command{
	Use:   "example",
	Short: "Print an example config file with the default settings",
	Long: `Prints a commented config file holding the defaults. Save it as
$HOME/.symlink-cleaner/config.yaml or pass it with --config.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprint(cmd.OutOrStdout(), config.ExampleConfig)
		return err
	},
}

var configCheckCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Validate a config file and print the effective settings",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigCheck,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configExampleCmd)
	configCmd.AddCommand(configCheckCmd)
}

func runConfigCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(args[0])
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
