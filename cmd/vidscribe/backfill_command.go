package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vidscribe/internal/blob"
	"vidscribe/internal/pipeline"
	"vidscribe/internal/store"
)

func newBackfillCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Write missing plain-text transcripts from stored SRT files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			return ctx.withStore(func(st *store.Store) error {
				return ctx.withBlobs(cmd.Context(), func(blobs blob.Store) error {
					report, err := pipeline.NewBackfiller(st, blobs, cfg.Storage.Bucket, logger).Backfill(cmd.Context(), limit)
					if err != nil {
						return err
					}
					if jsonOutput {
						return writeJSON(cmd, backfillSummary(report))
					}
					out := cmd.OutOrStdout()
					fmt.Fprintf(out, "Scanned %d transcripts, repaired %d\n", report.Scanned, report.Repaired)
					if len(report.Failures) == 0 {
						return nil
					}
					rows := make([][]string, 0, len(report.Failures))
					for _, f := range report.Failures {
						rows = append(rows, []string{f.VideoID, f.Language, f.Err.Error()})
					}
					fmt.Fprintln(out, renderTable([]string{"Video", "Language", "Error"}, rows, nil, shouldColorize(out)))
					return fmt.Errorf("%d transcripts could not be repaired", len(report.Failures))
				})
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum transcripts to inspect")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

type backfillJSON struct {
	Scanned  int                   `json:"scanned"`
	Repaired int                   `json:"repaired"`
	Failures []backfillFailureJSON `json:"failures"`
}

type backfillFailureJSON struct {
	TranscriptID string `json:"transcript_id"`
	VideoID      string `json:"video_id"`
	Language     string `json:"language"`
	Error        string `json:"error"`
}

func backfillSummary(report pipeline.BackfillReport) backfillJSON {
	out := backfillJSON{Scanned: report.Scanned, Repaired: report.Repaired, Failures: []backfillFailureJSON{}}
	for _, f := range report.Failures {
		out.Failures = append(out.Failures, backfillFailureJSON{
			TranscriptID: f.TranscriptID,
			VideoID:      f.VideoID,
			Language:     f.Language,
			Error:        f.Err.Error(),
		})
	}
	return out
}
