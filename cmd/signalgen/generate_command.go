package main

import (
	"github.com/spf13/cobra"

	"signalgen/internal/download"
	"signalgen/internal/signal"
)

type generateOptions struct {
	family   string
	category string
	pattern  string
	duration int
	rate     int
	download string
	clamp    bool
	asJSON   bool
}

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a synthetic signal and optionally download its artifacts",
		Example: "  signalgen generate --family eeg --category normal --pattern alpha_rhythm\n" +
			"  signalgen generate --family ecg --category abnormal --pattern STEMI --duration 60 --download all",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, ctx, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.family, "family", "", "Signal family (eeg or ecg)")
	flags.StringVar(&opts.category, "category", "", "Pattern category, e.g. normal or abnormal")
	flags.StringVar(&opts.pattern, "pattern", "", "Pattern identifier or display name")
	flags.IntVar(&opts.duration, "duration", 0, "Duration in seconds (10-300); defaults to the configured value")
	flags.IntVar(&opts.rate, "rate", 0, "Sampling rate in Hz; defaults to the configured value")
	flags.StringVar(&opts.download, "download", "", "Artifacts to save after generating: csv, features, plot or all")
	flags.BoolVar(&opts.clamp, "clamp", false, "Snap out-of-range settings into bounds instead of rejecting them")
	flags.BoolVar(&opts.asJSON, "json", false, "Print the result as JSON")
	_ = cmd.MarkFlagRequired("family")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("pattern")
	return cmd
}

func runGenerate(cmd *cobra.Command, ctx *commandContext, opts generateOptions) error {
	family, err := signal.ParseFamily(opts.family)
	if err != nil {
		return err
	}
	kinds, err := parseDownloadKinds(opts.download)
	if err != nil {
		return err
	}

	session, err := ctx.newWorkflowSession(cmd, opts.clamp)
	if err != nil {
		return err
	}
	defer session.Close()

	ctrl := session.controller
	runCtx := cmd.Context()

	if _, err := ctrl.SelectFamily(runCtx, family); err != nil {
		return failed("select family", err)
	}
	if _, err := ctrl.SelectCategory(signal.NormalizeCategory(opts.category)); err != nil {
		return failed("select category", err)
	}
	state, err := ctrl.SelectPattern(opts.pattern)
	if err != nil {
		return failed("select pattern", err)
	}

	settings := state.Settings
	if cmd.Flags().Changed("duration") {
		settings.DurationSeconds = opts.duration
	}
	if cmd.Flags().Changed("rate") {
		settings.SamplingRateHz = opts.rate
	}
	if _, err := ctrl.EditSettings(settings); err != nil {
		return failed("edit settings", err)
	}

	result, err := ctrl.Submit(runCtx)
	if err != nil {
		return failed("generate", err)
	}

	var outcomes []download.Outcome
	if len(kinds) > 0 {
		orch := download.New(session.client, session.cfg.Paths.DownloadDir,
			download.WithLogger(session.logger),
			download.WithSessionSource(ctrl),
		)
		outcomes = orch.RequestAll(runCtx, &result, kinds...)
	}

	view := newResultView(result, session.client.PlotURL(result.PlotPath), outcomes)
	if opts.asJSON {
		if err := writeJSON(cmd, view); err != nil {
			return err
		}
	} else {
		printResult(cmd.OutOrStdout(), view, shouldColorize(cmd.OutOrStdout()))
	}
	return downloadFailures(outcomes)
}
