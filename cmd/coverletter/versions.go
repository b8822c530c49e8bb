package main

import (
	"context"
	"fmt"

	"github.com/jonathan/cover-letter-studio/internal/sections"
	"github.com/spf13/cobra"
)

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "Manage saved cover letter versions",
}

var versionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved versions, newest first",
	Args:  cobra.NoArgs,
	RunE:  runVersionsList,
}

var versionsShowCmd = &cobra.Command{
	Use:   "show <version-id>",
	Short: "Print a saved cover letter",
	Args:  cobra.ExactArgs(1),
	RunE:  runVersionsShow,
}

var versionsDeleteCmd = &cobra.Command{
	Use:   "delete <version-id>",
	Short: "Delete a saved version and its history",
	Args:  cobra.ExactArgs(1),
	RunE:  runVersionsDelete,
}

var versionsStatusCmd = &cobra.Command{
	Use:   "status <version-id>",
	Short: "Show the save status of a version",
	Args:  cobra.ExactArgs(1),
	RunE:  runVersionsStatus,
}

var versionsShowSections bool

func init() {
	versionsShowCmd.Flags().BoolVar(&versionsShowSections, "sections", false, "Print each section with its edit state")

	versionsCmd.AddCommand(versionsListCmd, versionsShowCmd, versionsDeleteCmd, versionsStatusCmd)
	rootCmd.AddCommand(versionsCmd)
}

func runVersionsList(cmd *cobra.Command, _ []string) error {
	client, _, err := newClient()
	if err != nil {
		return err
	}
	versions, err := client.ListVersions(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list versions: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(versions) == 0 {
		_, _ = fmt.Fprintln(out, "No saved versions")
		return nil
	}
	for _, v := range versions {
		edited := ""
		if v.HasEdits {
			edited = fmt.Sprintf("  %d sections edited", v.EditedSections)
		}
		_, _ = fmt.Fprintf(out, "%s  %s at %s  (updated %s)%s\n",
			v.VersionID, v.JobTitle, v.CompanyName, v.UpdatedAt.Format("2006-01-02 15:04"), edited)
	}
	return nil
}

func runVersionsShow(cmd *cobra.Command, args []string) error {
	client, _, err := newClient()
	if err != nil {
		return err
	}
	doc, err := client.GetCoverLetter(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get cover letter: %w", err)
	}

	out := cmd.OutOrStdout()
	if !versionsShowSections {
		_, _ = fmt.Fprintln(out, doc.Content)
		return nil
	}

	_, _ = fmt.Fprintf(out, "%s at %s\n", doc.JobTitle, doc.CompanyName)
	for _, name := range sections.Names() {
		section := doc.Sections[string(name)]
		marker := ""
		if section.IsEdited {
			marker = " (edited)"
		}
		_, _ = fmt.Fprintf(out, "\n== %s%s ==\n%s\n", name, marker, section.Content)
	}
	return nil
}

func runVersionsDelete(cmd *cobra.Command, args []string) error {
	client, _, err := newClient()
	if err != nil {
		return err
	}
	if err := client.DeleteVersion(context.Background(), args[0]); err != nil {
		return fmt.Errorf("failed to delete version: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted version %s\n", args[0])
	return nil
}

func runVersionsStatus(cmd *cobra.Command, args []string) error {
	client, _, err := newClient()
	if err != nil {
		return err
	}
	status, err := client.SaveStatus(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get save status: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Version:   %s\n", status.VersionID)
	_, _ = fmt.Fprintf(out, "Job:       %s at %s\n", status.JobTitle, status.CompanyName)
	_, _ = fmt.Fprintf(out, "Created:   %s\n", status.CreatedAt.Format("2006-01-02 15:04:05"))
	_, _ = fmt.Fprintf(out, "Updated:   %s\n", status.LastUpdated.Format("2006-01-02 15:04:05"))
	_, _ = fmt.Fprintf(out, "Edited:    %d of %d sections\n", status.EditedSections, status.TotalSections)
	return nil
}
