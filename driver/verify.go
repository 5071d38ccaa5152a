package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/animus-labs/eqsat-pipeline/internal/benchset"
	"github.com/animus-labs/eqsat-pipeline/internal/domain"
	"github.com/animus-labs/eqsat-pipeline/internal/pipeline"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <reference> <optimized>",
	Short: "Check optimized circuits against their references",
	Long: "Each argument is a circuit file or a directory of circuits. Directory\n" +
		"listings are paired by sorted file name and must have the same length.",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		units, err := benchset.VerifyUnits(args[0], args[1])
		if err != nil {
			if errors.Is(err, domain.ErrUnitCountMismatch) {
				return configError{err: err}
			}
			return err
		}

		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		d := pipeline.New(pipeline.Config{
			Tools:  a.toolchain(nil),
			Units:  units,
			Jobs:   jobs,
			Logger: a.logger,
		})
		a.finish(ctx, d.VerifyAll(ctx))
		return nil
	},
}

var evalCmd = &cobra.Command{
	Use:   "eval <circuits>",
	Short: "Evaluate circuits under the HE cost model",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		units, err := benchset.EvalUnits(args[0])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		d := pipeline.New(pipeline.Config{
			Tools:  a.toolchain(nil),
			Units:  units,
			Jobs:   jobs,
			Logger: a.logger,
		})
		a.finish(ctx, d.EvaluateAll(ctx))
		return nil
	},
}
