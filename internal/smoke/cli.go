package smoke

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/okian/fuelsense/pkg/logger"
)

// NewCommand builds the fuelsmoke root command.
func NewCommand() *cobra.Command {
	cfg := &Config{}
	var logLevel string

	cmd := &cobra.Command{
		Use:   "fuelsmoke",
		Short: "End-to-end checks against a running FuelSense service",
		Long: `fuelsmoke submits the full grid of vehicle class, transmission and fuel
type at default slider values, plus random slider samples, to /api/predict.
Every answer must carry a 12-wide feature vector with a single fuel slot set,
a tier consistent with the consumption, and a two-decimal formatted value.
A prefix of the cases is resubmitted and must give identical results.`,
		Example: `  fuelsmoke --url http://localhost:9080
  fuelsmoke --samples 1000 --workers 16 --output report.json`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.InitWithWriter(cmd.ErrOrStderr()); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return logger.SetLevelString(logLevel)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := Run(cmd.Context(), cfg)
			if report != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d/%d cases passed, %d repeats differed\n",
					report.RunID, report.Stats.CasesSuccessful, report.Stats.CasesSubmitted, report.Stats.RepeatsDiffered)
			}
			if errors.Is(err, ErrChecksFailed) && report != nil {
				return fmt.Errorf("%w: %d failing cases", err, len(report.Failures))
			}
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.BaseURL, "url", DefaultBaseURL, "base URL of the service")
	f.IntVar(&cfg.Samples, "samples", DefaultSamples, "random slider configurations on top of the categorical grid")
	f.IntVar(&cfg.Repeats, "repeats", DefaultRepeats, "cases resubmitted to check determinism")
	f.IntVar(&cfg.Workers, "workers", runtime.NumCPU()*WorkerChannelMultiplier, "number of concurrent workers")
	f.DurationVar(&cfg.Timeout, "timeout", DefaultTimeout, "HTTP request timeout")
	f.Uint64Var(&cfg.Seed, "seed", 0, "seed for random samples (0 picks one)")
	f.StringVarP(&cfg.OutputFile, "output", "o", "", "write the JSON report to this file")
	f.BoolVarP(&cfg.Verbose, "verbose", "v", false, "log every failing case")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	return cmd
}
