// Command driver runs the circuit optimization pipeline: optimize a benchmark
// set with the equality-saturation optimizer, verify optimized circuits
// against their references, evaluate them under the HE cost model, and run
// the published experiment campaigns.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	jobs  int
	debug bool
)

// configError marks errors caused by invalid arguments or environment.
type configError struct {
	err error
}

func (e configError) Error() string { return e.err.Error() }
func (e configError) Unwrap() error { return e.err }

func invalid(format string, args ...any) error {
	return configError{err: fmt.Errorf(format, args...)}
}

var rootCmd = &cobra.Command{
	Use:           "driver",
	Short:         "Drive circuit optimization, verification and evaluation",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if jobs < 1 {
			return invalid("-j must be >= 1, got %d", jobs)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().IntVarP(&jobs, "jobs", "j", 1, "Number of units to run in parallel.")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Log every external command before it runs.")

	rootCmd.AddCommand(optCmd, verifyCmd, evalCmd, campaignCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		var cfgErr configError
		if errors.As(err, &cfgErr) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
