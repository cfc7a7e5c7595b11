package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/signaljob/internal/jobconfig"
)

var checkConfigPath string

// checkConfigCmd validates a job config without running the job
var checkConfigCmd = &cobra.Command{
	Use:   "check-config",
	Short: "Validate a job config and print its hash",
	Long: `Loads and validates a job config the same way a run does, then prints
the parameters, their SHA-256 hash and any warnings.

The hash matches the one logged by a run with the same config.

Example:
  signaljob check-config --config config.yaml`,
	RunE: runCheckConfig,
}

func init() {
	checkConfigCmd.Flags().StringVar(&checkConfigPath, "config", "", "YAML job config")
	if err := checkConfigCmd.MarkFlagRequired("config"); err != nil {
		panic(err)
	}
	rootCmd.AddCommand(checkConfigCmd)
}

func runCheckConfig(cmd *cobra.Command, args []string) error {
	cfg, _, err := jobconfig.Load(checkConfigPath)
	if err != nil {
		cmd.SilenceUsage = true
		return err
	}

	hash, err := jobconfig.Hash(cfg)
	if err != nil {
		return fmt.Errorf("hash config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "seed:    %d\n", cfg.Seed)
	fmt.Fprintf(out, "window:  %d\n", cfg.Window)
	fmt.Fprintf(out, "version: %s\n", cfg.Version)
	fmt.Fprintf(out, "hash:    %s\n", hash)

	for _, w := range jobconfig.Warn(cfg) {
		fmt.Fprintf(out, "warning: [%s] %s\n", w.Code, w.Message)
	}

	return nil
}
