package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"veritas-hq/meridian/pkg/cli"
	"veritas-hq/meridian/pkg/config"
	"veritas-hq/meridian/pkg/policy/engine"
	"veritas-hq/meridian/pkg/policy/source"
	"veritas-hq/meridian/pkg/temporal"
)

var validateFlags struct {
	rulesPath string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration, rules, and catalog",
	Long: `Validate the configuration file, compile every policy rule, and check the
service catalog without starting the evaluator.

Examples:
  # Validate the default config and everything it references
  meridian validate

  # Validate a specific rule file or directory
  meridian validate --rules /etc/meridian/rules.d`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFlags.rulesPath, "rules", "r", "", "override rule file or directory")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	fmt.Printf("✓ Configuration valid: %s\n", cfgFile)

	rulesPath := cfg.Rules.Path
	if validateFlags.rulesPath != "" {
		rulesPath = validateFlags.rulesPath
	}

	records, err := source.NewFileSource(rulesPath, nil).LoadRules(context.Background())
	if err != nil {
		return cli.NewCommandError("validate", err)
	}
	compiled, err := engine.Compile(records)
	if err != nil {
		return cli.NewCommandError("validate", err)
	}
	fmt.Printf("✓ Rules valid: %s (%d rules)\n", rulesPath, len(compiled))

	if cfg.Catalog.Path != "" {
		catalog, err := temporal.LoadServiceCatalog(cfg.Catalog.Path)
		if err != nil {
			return cli.NewCommandError("validate", err)
		}
		fmt.Printf("✓ Service catalog valid: %s (%d services)\n", cfg.Catalog.Path, len(catalog.Services))
	}

	return nil
}
