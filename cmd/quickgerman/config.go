package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/quickgerman/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the daemon configuration",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := loadConfigWithSources(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "config: ok")
		return nil
	},
}

var configPrintCmd = &cobra.Command{
	Use:   "print",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigPrint,
}

var configExplainCmd = &cobra.Command{
	Use:   "explain <yaml.path>",
	Short: "Show a config value and the file line that set it",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigExplain,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configValidateCmd, configPrintCmd, configExplainCmd)
	configPrintCmd.Flags().Bool("defaults", false, "Print built-in defaults (no files)")
}

func runConfigPrint(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	if defaults, _ := cmd.Flags().GetBool("defaults"); !defaults {
		res, err := loadConfigWithSources()
		if err != nil {
			return err
		}
		cfg = res.Config
		for _, f := range res.Files {
			fmt.Fprintf(cmd.OutOrStdout(), "# loaded: %s\n", f)
		}
	}
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), string(data))
	return nil
}

func runConfigExplain(cmd *cobra.Command, args []string) error {
	res, err := loadConfigWithSources()
	if err != nil {
		return err
	}
	value, src, err := config.Explain(res, args[0])
	if err != nil {
		return err
	}
	out, err := yaml.Marshal(value)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "path: %s\n", args[0])
	fmt.Fprintf(w, "source: %s\n", src)
	fmt.Fprintf(w, "value:\n%s", string(out))
	return nil
}
