package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"signalgen/internal/download"
	"signalgen/internal/sessionstore"
	"signalgen/internal/workflow"
)

func newDownloadCommand(ctx *commandContext) *cobra.Command {
	var kindsFlag string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download artifacts of the persisted generation session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			kinds, err := parseDownloadKinds(kindsFlag)
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
				return failed("download", download.ErrNoResult)
			}
			client, err := ctx.client()
			if err != nil {
				return err
			}

			orch := download.New(client, cfg.Paths.DownloadDir, download.WithLogger(logger))
			outcomes := orch.RequestAll(cmd.Context(), snap.Result, kinds...)
			views := downloadViews(outcomes)
			if asJSON {
				if err := writeJSON(cmd, views); err != nil {
					return err
				}
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), renderDownloads(views))
			}
			return downloadFailures(outcomes)
		},
	}

	cmd.Flags().StringVar(&kindsFlag, "kind", "all", "Artifacts to save: csv, features, plot or all")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the saved files as JSON")
	return cmd
}

// persistedSnapshot loads the snapshot for instanceID. When that instance
// has none (for example with instance_id = "auto") the most recently saved
// snapshot is used instead.
func persistedSnapshot(ctx context.Context, store *sessionstore.Store, instanceID string) (workflow.Snapshot, error) {
	snap, err := store.Load(ctx, instanceID)
	if err == nil {
		return snap, nil
	}
	if !errors.Is(err, sessionstore.ErrNotFound) {
		return workflow.Snapshot{}, err
	}
	all, listErr := store.List(ctx)
	if listErr != nil {
		return workflow.Snapshot{}, listErr
	}
	if len(all) == 0 {
		return workflow.Snapshot{}, fmt.Errorf("no persisted session found; run `signalgen generate` with session persistence enabled first: %w", err)
	}
	return all[0], nil
}
