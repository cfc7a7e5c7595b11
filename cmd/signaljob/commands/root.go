package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/signaljob/internal/pipeline"
	"github.com/wonny/signaljob/pkg/config"
	"github.com/wonny/signaljob/pkg/logger"
)

var (
	// Global flags
	env     string
	verbose bool

	// Job flags
	inputPath  string
	configPath string
	outputPath string
	logPath    string
)

// errJobFailed is returned when the job wrote an error record.
// The record already explains the failure, so cobra prints nothing.
var errJobFailed = errors.New("job failed")

// rootCmd runs the job when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "signaljob",
	Short: "Rolling-mean signal rate batch job",
	Long: `signaljob reads a price series, computes a rolling-mean crossover
signal and writes the signal rate as a JSON result record.

The record is written to --output and mirrored to stdout. The exit code is
0 on success and 1 when an error record was written.

Examples:
  signaljob --input data.csv --config config.yaml --output metrics.json --log-file run.log
  signaljob check-config --config config.yaml`,
	RunE: runJob,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment (development|staging|production), overrides ENV")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.Flags().StringVar(&inputPath, "input", "", "input CSV with a close column")
	rootCmd.Flags().StringVar(&configPath, "config", "", "YAML job config (seed, window, version)")
	rootCmd.Flags().StringVar(&outputPath, "output", "", "result record path")
	rootCmd.Flags().StringVar(&logPath, "log-file", "", "log file, appended to")
	for _, name := range []string{"input", "config", "output", "log-file"} {
		if err := rootCmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}
}

// runtimeConfig loads the process settings and applies the global flags.
// When the result is invalid it returns config.Default() (still honouring
// --verbose) together with the error, so the job runs and the error is logged.
func runtimeConfig() (*config.Config, error) {
	fallback := config.Default()
	if verbose {
		fallback.LogLevel = "debug"
	}

	cfg, err := config.Load()
	if err != nil {
		return fallback, fmt.Errorf("load config: %w", err)
	}
	if env != "" {
		cfg.Env = env
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return fallback, fmt.Errorf("apply flags: %w", err)
	}
	return cfg, nil
}

func runJob(cmd *cobra.Command, args []string) error {
	// flags are parsed by now; a failed run is reported by its result record
	cmd.SilenceUsage = true

	cfg, cfgErr := runtimeConfig()

	log, closer, err := logger.OpenFile(cfg, logPath)
	if err != nil {
		log = logger.NewWithWriter(cfg, os.Stderr)
		log.WithError(err).WithField("log_file", logPath).Warn("Logging to stderr")
	} else {
		defer closer.Close()
	}
	if cfgErr != nil {
		log.WithError(cfgErr).Warn("Invalid runtime settings, using defaults")
	}

	job := pipeline.NewJob(pipeline.RunConfig{
		InputPath:  inputPath,
		ConfigPath: configPath,
		OutputPath: outputPath,
	}, cmd.OutOrStdout(), log)

	result := job.Run(context.Background())
	if result.ExitCode != 0 {
		cmd.SilenceErrors = true
		return errJobFailed
	}
	return nil
}
