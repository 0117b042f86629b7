package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sedalabs/scriptscan/internal/types"
)

var (
	projectRepoURL string
	projectOwnerID string
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Manage registered projects",
}

var projectsAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Register a project for scanning",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		project := &types.Project{
			Name:    args[0],
			Status:  types.ProjectActive,
			RepoURL: projectRepoURL,
			OwnerID: projectOwnerID,
		}
		if err := store.CreateProject(cmd.Context(), project); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to create project: %v\n", err)
			os.Exit(1)
		}

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s project %s (%s)\n", green("Registered"), project.Name, project.ID)
		if project.RepoURL == "" {
			fmt.Println("Note: no repository URL set; the project will not be scanned until one is added.")
		}
	},
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered projects",
	Run: func(cmd *cobra.Command, args []string) {
		projects, err := store.ListProjects(cmd.Context())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to list projects: %v\n", err)
			os.Exit(1)
		}

		if len(projects) == 0 {
			fmt.Println("No projects registered.")
			return
		}

		green := color.New(color.FgGreen).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		for _, p := range projects {
			status := gray(string(p.Status))
			if p.Status == types.ProjectActive {
				status = green(string(p.Status))
			}
			fmt.Printf("%s  %-20s %-9s %s\n", p.ID, p.Name, status, p.RepoURL)
		}
	},
}

func init() {
	projectsAddCmd.Flags().StringVar(&projectRepoURL, "repo", "", "repository URL (https or ssh)")
	projectsAddCmd.Flags().StringVar(&projectOwnerID, "owner", "", "owner user ID for alert routing")

	projectsCmd.AddCommand(projectsAddCmd)
	projectsCmd.AddCommand(projectsListCmd)
	rootCmd.AddCommand(projectsCmd)
}
