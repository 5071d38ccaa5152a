package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/animus-labs/eqsat-pipeline/internal/benchset"
	"github.com/animus-labs/eqsat-pipeline/internal/outroot"
	"github.com/animus-labs/eqsat-pipeline/internal/params"
	"github.com/animus-labs/eqsat-pipeline/internal/pipeline"
)

var (
	optOutput    string
	optRules     string
	optAll       bool
	optBenches   []string
	optMode      string
	optModeOpts  string
	optEqsatOpts string
	optTimeLimit int
	optDomain    string
)

func init() {
	optCmd.Flags().StringVarP(&optOutput, "output", "o", "out", "Output root for converted and optimized circuits.")
	optCmd.Flags().StringVar(&optRules, "rules", "", "Rule-set name under rules/, a rule file, or a directory of rule files.")
	optCmd.Flags().BoolVar(&optAll, "all", false, "Optimize every benchmark in the set.")
	optCmd.Flags().StringArrayVar(&optBenches, "bench", nil, "Benchmark name to optimize (repeatable).")
	optCmd.Flags().StringVar(&optMode, "mode", "md-multiple-iters", "Optimizer search mode.")
	optCmd.Flags().StringVar(&optModeOpts, "modeopts", "", "Mode options, e.g. \"--iters=2 --flag\".")
	optCmd.Flags().StringVar(&optEqsatOpts, "eqsatopts", "", "Global optimizer options, e.g. \"--strict-deadlines\".")
	optCmd.Flags().IntVar(&optTimeLimit, "tl", 0, "Optimizer time limit in seconds.")
	optCmd.Flags().StringVar(&optDomain, "domain", string(benchset.DomainBool), "Shared rule domain: int, bool, esyn or none.")
}

var optCmd = &cobra.Command{
	Use:   "opt <benchset>",
	Short: "Convert and optimize a benchmark set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(optBenches) == 0 && !optAll {
			return invalid("must specify at least one --bench or --all")
		}
		dom, err := benchset.ParseDomain(optDomain)
		if err != nil {
			return configError{err: err}
		}

		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		ruleSet, sharedRules, err := a.layout.ResolveRulesArg(optRules)
		if err != nil {
			return configError{err: err}
		}
		p, err := optParams()
		if err != nil {
			return configError{err: err}
		}

		lock, err := outroot.Acquire(optOutput)
		if err != nil {
			return err
		}
		defer lock.Release()

		d, err := pipeline.FromBenchmarkSet(ctx, pipeline.Config{
			Tools:  a.toolchain(nil),
			Params: p,
			Jobs:   jobs,
			Logger: a.logger,
		}, pipeline.BenchmarkSet{
			Layout:     a.layout,
			Set:        args[0],
			Names:      optBenches,
			All:        optAll,
			RuleSet:    ruleSet,
			OutputRoot: optOutput,
		})
		if err != nil {
			return err
		}
		d.UseDomainRules(a.layout, dom)
		d.AddSharedRules(sharedRules...)

		conv, _ := d.Conversion()
		rep, err := d.OptimizeAll(ctx, nil)
		if err != nil {
			return err
		}
		a.finish(ctx, conv, rep)
		return nil
	},
}

func optParams() (params.Parameters, error) {
	p := params.New(optMode)
	if !p.HasMode() {
		return params.Parameters{}, fmt.Errorf("--mode must not be empty")
	}
	if err := params.ParseInto(&p.Mode().Params, optModeOpts); err != nil {
		return params.Parameters{}, fmt.Errorf("--modeopts: %w", err)
	}
	if err := params.ParseInto(&p.Global, optEqsatOpts); err != nil {
		return params.Parameters{}, fmt.Errorf("--eqsatopts: %w", err)
	}
	if optTimeLimit > 0 {
		p.Global.SetValue(params.TimeLimitFlag, strconv.Itoa(optTimeLimit))
	}
	return p, nil
}
