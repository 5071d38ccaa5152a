package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/animus-labs/eqsat-pipeline/internal/campaign"
)

var campaignFile string

func init() {
	campaignCmd.Flags().StringVar(&campaignFile, "file", "", "Campaign spec YAML to use instead of a built-in preset.")
}

var campaignCmd = &cobra.Command{
	Use:   "campaign <name> <mode>",
	Short: "Run one mode of an experiment campaign",
	Long: "Runs a mode of a built-in campaign (" + strings.Join(campaign.Presets(), ", ") + ")\n" +
		"or, with --file, of a campaign spec. Outputs go under OUT_BASE; JOBS_OVERRIDE\n" +
		"replaces the mode's default job count.",
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, modeName, err := loadCampaign(args)
		if err != nil {
			return configError{err: err}
		}
		cfg, err := campaign.ConfigFromEnv()
		if err != nil {
			return configError{err: err}
		}
		// An explicit -j acts like JOBS_OVERRIDE.
		if cmd.Flags().Changed("jobs") && cfg.JobsOverride == 0 {
			cfg.JobsOverride = jobs
		}

		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		runner := &campaign.Runner{
			Config:      cfg,
			Layout:      a.layout,
			Paths:       a.paths,
			NewExecutor: a.executor,
			Logger:      a.logger,
			Recorder:    a.recorder,
			Publisher:   a.publisher,
		}
		res, err := runner.Run(ctx, spec, modeName)
		if errors.Is(err, campaign.ErrUnknownMode) {
			return configError{err: err}
		}
		if err != nil {
			return err
		}
		for _, rep := range res.Reports {
			a.logger.Info(rep.Summary(), "stage", string(rep.Stage), "run_id", res.RunID)
		}
		return nil
	},
}

// loadCampaign resolves "<name> <mode>" against the presets, or "<mode>"
// against --file.
func loadCampaign(args []string) (campaign.Spec, string, error) {
	if campaignFile != "" {
		if len(args) != 1 {
			return campaign.Spec{}, "", fmt.Errorf("with --file, expected exactly one mode argument")
		}
		data, err := os.ReadFile(campaignFile)
		if err != nil {
			return campaign.Spec{}, "", err
		}
		spec, err := campaign.ParseSpec(data)
		return spec, args[0], err
	}
	if len(args) != 2 {
		return campaign.Spec{}, "", fmt.Errorf("expected a campaign and a mode")
	}
	spec, err := campaign.Preset(args[0])
	return spec, args[1], err
}
