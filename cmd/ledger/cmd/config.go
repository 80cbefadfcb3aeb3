package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/ledger/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Generate or validate configuration files",
		Long: `Manage ledger configuration files.

Examples:
  ledger config init -o ledger.yaml
  ledger config validate -f ledger.yaml`,
	}

	var output string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Default().SaveToFile(output); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Created default configuration: %s\n", output)
			fmt.Fprintln(out, "\nEdit the file and run with:")
			fmt.Fprintf(out, "  ledger replay -f %s --fills fills.csv\n", output)
			return nil
		},
	}
	initCmd.Flags().StringVarP(&output, "output", "o", "ledger.yaml", "output config file path")

	var path string
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFromFile(path)
			if err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Configuration valid: %s\n", path)
			fmt.Fprintf(out, "  Ledger: %s (%s, %s, %s)\n",
				cfg.Ledger.Name, cfg.Ledger.Kind, cfg.Ledger.StartingSide, cfg.Ledger.MatchPolicy)
			fmt.Fprintf(out, "  Costs: transaction %s, holding %s\n",
				orDefault(cfg.Costs.Transaction.Type, "zero"), orDefault(cfg.Costs.Holding.Type, "zero"))
			fmt.Fprintf(out, "  Journal: %s\n", orDefault(cfg.Journal.Type, "none"))
			return nil
		},
	}
	validateCmd.Flags().StringVarP(&path, "file", "f", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("file")

	cmd.AddCommand(initCmd, validateCmd)
	return cmd
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
