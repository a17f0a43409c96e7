package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"mercator-hq/interviewer/pkg/cli"
	"mercator-hq/interviewer/pkg/config"
)

const redactedValue = "[REDACTED]"

var configServe bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and validate configuration",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Long: `Load the configuration with environment overrides and check every rule.

With --serve the provider credentials the relay needs are required too.

Examples:
  interviewer config validate --config config.yaml
  interviewer config validate --serve`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		validate := config.Validate
		if configServe {
			validate = config.ValidateServe
		}
		if err := validate(cfg); err != nil {
			return cli.NewConfigError("", "invalid configuration", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration valid")
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	Long:  `Print the configuration after defaults and environment overrides. Secrets are redacted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		shown := *cfg
		if shown.Provider.APIKey != "" {
			shown.Provider.APIKey = redactedValue
		}

		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(&shown); err != nil {
			return cli.NewCommandError("config show", err)
		}
		return enc.Close()
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configValidateCmd, configShowCmd)

	configValidateCmd.Flags().BoolVar(&configServe, "serve", false, "also require provider credentials")
}
