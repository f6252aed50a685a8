package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"vidscribe/internal/blob"
	"vidscribe/internal/pipeline"
	"vidscribe/internal/store"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var (
		videoID   string
		projectID string
		source    string
		languages []string
		local     bool
	)

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Transcribe a video into one or more languages",
		Long: "Submit a video to the running daemon. With --local the pipeline runs in this\n" +
			"process and the command waits for the per-language results.",
		RunE: func(cmd *cobra.Command, args []string) error {
			command := pipeline.Command{
				VideoID:        strings.TrimSpace(videoID),
				ProjectID:      strings.TrimSpace(projectID),
				SourceLocation: strings.TrimSpace(source),
				Languages:      splitLanguages(languages),
			}
			if err := resolveSource(cmd.Context(), ctx, &command); err != nil {
				return err
			}
			if local {
				return runLocal(cmd, ctx, command)
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			client, err := ctx.client()
			if err != nil {
				return err
			}
			resp, err := client.ProcessVideo(cmd.Context(), command)
			if err != nil {
				return wrapClientError(err, cfg.Paths.APIBind)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Video %s accepted (%s)\n", resp.VideoID, resp.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&videoID, "video", "", "Video identifier")
	cmd.Flags().StringVar(&projectID, "project", "", "Owning project identifier")
	cmd.Flags().StringVar(&source, "source", "", "Source location (gs://bucket/key, file://bucket/key or a key in the default bucket); defaults to the video's stored source")
	cmd.Flags().StringSliceVarP(&languages, "lang", "l", nil, "Target language codes (repeatable or comma separated)")
	cmd.Flags().BoolVar(&local, "local", false, "Run the pipeline in this process and wait for completion")
	_ = cmd.MarkFlagRequired("video")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("lang")
	return cmd
}

func runLocal(cmd *cobra.Command, ctx *commandContext, command pipeline.Command) error {
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
			orchestrator, err := pipeline.New(cfg, st, blobs, nil, logger)
			if err != nil {
				return err
			}
			defer orchestrator.Shutdown(cmd.Context()) //nolint:errcheck

			task, err := orchestrator.Submit(cmd.Context(), command.Request())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Processing video %s: %s\n", task.VideoID, strings.Join(task.Languages(), ", "))

			report, err := task.Wait(cmd.Context())
			if err != nil {
				task.Cancel()
				return err
			}
			fmt.Fprintln(out, renderReport(report, shouldColorize(out)))
			if report.Err != nil {
				return fmt.Errorf("video %s failed: %w", report.VideoID, report.Err)
			}
			return nil
		})
	})
}

func renderReport(report pipeline.Report, colorize bool) string {
	rows := make([][]string, 0, len(report.Languages))
	for _, res := range report.Languages {
		row := []string{res.Language, "OK", "-", ""}
		if res.OK() {
			row[2] = res.Transcript.SRTURL
		} else {
			row[1] = "FAILED"
			if res.Err != nil {
				row[3] = res.Err.Error()
			}
		}
		rows = append(rows, row)
	}
	summary := fmt.Sprintf("Video %s -> %s in %s", report.VideoID, report.Status, report.Duration().Round(time.Millisecond))
	if report.ProjectCompleted {
		summary += fmt.Sprintf(" (project %s completed)", report.ProjectID)
	}
	return renderTable([]string{"Language", "Status", "SRT", "Detail"}, rows, nil, colorize) + "\n" + summary
}

// resolveSource fills an empty source from the video record registered with
// "vidscribe video add".
func resolveSource(ctx context.Context, cmdCtx *commandContext, command *pipeline.Command) error {
	if command.SourceLocation != "" || command.VideoID == "" {
		return nil
	}
	return cmdCtx.withStore(func(st *store.Store) error {
		video, err := st.GetVideo(ctx, command.VideoID)
		if err != nil {
			return err
		}
		if video != nil {
			command.SourceLocation = video.SourceLocation
		}
		return nil
	})
}
