package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"vidscribe/internal/api"
	"vidscribe/internal/store"
)

func newProjectCommand(ctx *commandContext) *cobra.Command {
	projectCmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}

	projectCmd.AddCommand(newProjectAddCommand(ctx))
	projectCmd.AddCommand(newProjectListCommand(ctx))
	projectCmd.AddCommand(newProjectStatusCommand(ctx))

	return projectCmd
}

func newProjectAddCommand(ctx *commandContext) *cobra.Command {
	var ownerID, name string

	cmd := &cobra.Command{
		Use:   "add <project-id>",
		Short: "Register a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			if strings.TrimSpace(ownerID) == "" {
				return errors.New("--owner is required")
			}
			return ctx.withStore(func(st *store.Store) error {
				project, err := st.CreateProject(cmd.Context(), id, strings.TrimSpace(ownerID), strings.TrimSpace(name))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Project %s created for owner %s\n", project.ID, project.OwnerID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&ownerID, "owner", "", "Owner identifier used in artifact keys")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	return cmd
}

func newProjectListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects with their video counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				projects, err := api.NewProjectService(st, nil).ListProjects(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, projects)
				}
				out := cmd.OutOrStdout()
				if len(projects) == 0 {
					fmt.Fprintln(out, "No projects")
					return nil
				}
				fmt.Fprintln(out, renderProjects(projects, shouldColorize(out)))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newProjectStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status <project-id>",
		Short: "Show a project and the status of its videos",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				project, err := api.NewProjectService(st, nil).DescribeProject(cmd.Context(), strings.TrimSpace(args[0]))
				if err != nil {
					return err
				}
				if project == nil {
					return fmt.Errorf("project %s not found", args[0])
				}
				if jsonOutput {
					return writeJSON(cmd, project)
				}
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				fmt.Fprintln(out, renderProjects([]api.Project{*project}, colorize))
				if len(project.Videos) == 0 {
					fmt.Fprintln(out, "No videos")
					return nil
				}
				fmt.Fprintln(out, renderVideos(project.Videos, colorize))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func renderProjects(projects []api.Project, colorize bool) string {
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, []string{
			p.ID,
			p.OwnerID,
			valueOrDash(p.Name),
			p.Status,
			strconv.Itoa(p.ProcessedVideos),
			strconv.Itoa(p.TotalVideos),
			strconv.Itoa(p.VideoCounts[string(store.VideoProcessing)]),
		})
	}
	return renderTable(
		[]string{"ID", "Owner", "Name", "Status", "Done", "Total", "Processing"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight},
		colorize,
	)
}

func renderVideos(videos []api.Video, colorize bool) string {
	rows := make([][]string, 0, len(videos))
	for _, v := range videos {
		rows = append(rows, []string{v.ID, valueOrDash(v.Title), v.Status, yesNo(v.Active), valueOrDash(v.UpdatedAt)})
	}
	return renderTable([]string{"Video", "Title", "Status", "Active", "Updated"}, rows, nil, colorize)
}
