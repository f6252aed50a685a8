package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vidscribe/internal/api"
	"vidscribe/internal/blob"
	"vidscribe/internal/store"
)

func newVideoCommand(ctx *commandContext) *cobra.Command {
	videoCmd := &cobra.Command{
		Use:   "video",
		Short: "Manage videos",
	}

	videoCmd.AddCommand(newVideoAddCommand(ctx))
	videoCmd.AddCommand(newVideoShowCommand(ctx))
	videoCmd.AddCommand(newVideoCancelCommand(ctx))

	return videoCmd
}

func newVideoAddCommand(ctx *commandContext) *cobra.Command {
	var projectID, title, source string

	cmd := &cobra.Command{
		Use:   "add <video-id>",
		Short: "Register a PENDING video under a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(projectID) == "" {
				return errors.New("--project is required")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			source = strings.TrimSpace(source)
			if source != "" {
				if _, err := blob.ParseLocation(source, cfg.Storage.Bucket); err != nil {
					return err
				}
			}
			return ctx.withStore(func(st *store.Store) error {
				video, err := st.CreateVideo(cmd.Context(), strings.TrimSpace(args[0]), strings.TrimSpace(projectID), strings.TrimSpace(title), source)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Video %s added to project %s (%s)\n", video.ID, video.ProjectID, video.Status)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "", "Owning project identifier")
	cmd.Flags().StringVar(&title, "title", "", "Display title")
	cmd.Flags().StringVar(&source, "source", "", "Source location of the uploaded file")
	return cmd
}

func newVideoShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <video-id>",
		Short: "Show a video and its transcripts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				video, err := api.NewProjectService(st, nil).DescribeVideo(cmd.Context(), strings.TrimSpace(args[0]))
				if err != nil {
					return err
				}
				if video == nil {
					return fmt.Errorf("video %s not found", args[0])
				}
				if jsonOutput {
					return writeJSON(cmd, video)
				}
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				fmt.Fprintln(out, renderVideos([]api.Video{*video}, colorize))
				if len(video.Transcripts) == 0 {
					fmt.Fprintln(out, "No transcripts")
					return nil
				}
				rows := make([][]string, 0, len(video.Transcripts))
				for _, t := range video.Transcripts {
					rows = append(rows, []string{t.Language, t.SRTURL, valueOrDash(t.TXTURL)})
				}
				fmt.Fprintln(out, renderTable([]string{"Language", "SRT", "Text"}, rows, nil, colorize))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newVideoCancelCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <video-id>",
		Short: "Cancel the active run of a video on the daemon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			client, err := ctx.client()
			if err != nil {
				return err
			}
			id := strings.TrimSpace(args[0])
			if err := client.Cancel(cmd.Context(), id); err != nil {
				return wrapClientError(err, cfg.Paths.APIBind)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cancellation requested for video %s\n", id)
			return nil
		},
	}
}
