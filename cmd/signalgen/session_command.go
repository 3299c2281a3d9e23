package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"signalgen/internal/download"
	"signalgen/internal/signal"
	"signalgen/internal/workflow"
)

func newSessionCommand(ctx *commandContext) *cobra.Command {
	sessionCmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect or clear the persisted workflow session",
	}

	sessionCmd.AddCommand(newSessionShowCommand(ctx))
	sessionCmd.AddCommand(newSessionFilesCommand(ctx))
	sessionCmd.AddCommand(newSessionResetCommand(ctx))
	return sessionCmd
}

func newSessionShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the persisted selections and last result",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			snap, err := persistedSnapshot(cmd.Context(), store, cfg.Session.InstanceID)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, snap)
			}
			printSnapshot(cmd, snap)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the snapshot as JSON")
	return cmd
}

func printSnapshot(cmd *cobra.Command, snap workflow.Snapshot) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	for _, line := range renderSectionHeader("Session "+snap.InstanceID, colorize) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out, renderStatusLine("Step", statusInfo, string(snap.Step), colorize))
	fmt.Fprintln(out, renderStatusLine("Route", statusInfo, snapshotRoute(snap), colorize))
	if snap.Family != "" {
		fmt.Fprintln(out, renderStatusLine("Family", statusInfo, snap.Family.Label(), colorize))
	}
	if snap.Category != "" {
		fmt.Fprintln(out, renderStatusLine("Category", statusInfo, snap.Category.Label(), colorize))
	}
	if snap.PatternID != "" {
		fmt.Fprintln(out, renderStatusLine("Pattern", statusInfo, snap.PatternID, colorize))
		fmt.Fprintln(out, renderStatusLine("Settings", statusInfo,
			fmt.Sprintf("%d s at %d Hz", snap.Settings.DurationSeconds, snap.Settings.SamplingRateHz), colorize))
	}
	if snap.Result != nil {
		fmt.Fprintln(out, renderStatusLine("Last session", statusOK, snap.Result.SessionID, colorize))
		for _, kind := range signal.ArtifactKinds() {
			fmt.Fprintln(out, renderStatusLine("File "+kind.String(), statusInfo, download.FileName(*snap.Result, kind), colorize))
		}
	} else {
		fmt.Fprintln(out, renderStatusLine("Last session", statusWarn, "none", colorize))
	}
	fmt.Fprintln(out, renderStatusLine("Saved", statusInfo, snap.SavedAt.Local().Format("2006-01-02 15:04:05"), colorize))
}

func snapshotRoute(snap workflow.Snapshot) string {
	route := workflow.Route{Kind: workflow.RouteStart}
	switch {
	case snap.Step == workflow.StepGenerated && snap.Result != nil:
		route = workflow.Route{Kind: workflow.RouteResults}
	case snap.PatternID != "":
		route = workflow.Route{Kind: workflow.RoutePattern, Family: snap.Family, Category: snap.Category, PatternID: snap.PatternID}
	case snap.Category != "":
		route = workflow.Route{Kind: workflow.RouteCategory, Family: snap.Family, Category: snap.Category}
	case snap.Family != "":
		route = workflow.Route{Kind: workflow.RouteFamily, Family: snap.Family}
	}
	return route.String()
}

func newSessionFilesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "files",
		Short: "List the files the service holds for the persisted session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			snap, err := persistedSnapshot(cmd.Context(), store, cfg.Session.InstanceID)
			if err != nil {
				return err
			}
			if snap.Result == nil {
				return failed("session files", download.ErrNoResult)
			}
			client, err := ctx.client()
			if err != nil {
				return err
			}
			files, err := client.SessionFiles(cmd.Context(), snap.Result.SessionID)
			if err != nil {
				return failed("session files", err)
			}

			kinds := make([]string, 0, len(files))
			for kind := range files {
				kinds = append(kinds, string(kind))
			}
			sort.Strings(kinds)
			rows := make([][]string, 0, len(kinds))
			for i, kind := range kinds {
				rows = append(rows, []string{strconv.Itoa(i + 1), kind, files[signal.ArtifactKind(kind)]})
			}
			title := "Session " + snap.Result.SessionID
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(title, []string{"#", "Kind", "Path"}, rows, []columnAlignment{alignRight}))
			return nil
		},
	}
}

func newSessionResetCommand(ctx *commandContext) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Forget the persisted session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if all {
				removed, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Removed %d persisted session(s)\n", removed)
				return nil
			}
			if err := store.Delete(cmd.Context(), cfg.Session.InstanceID); err != nil {
				return err
			}
			fmt.Fprintf(out, "Removed persisted session %s\n", cfg.Session.InstanceID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Remove every persisted session, not just this instance")
	return cmd
}
