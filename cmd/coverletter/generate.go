package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jonathan/cover-letter-studio/internal/types"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a cover letter from the stored job postings and PDFs",
	Long: `Generate a cover letter for a job. The service retrieves the most relevant
job postings and uploaded PDF pages as context.

Use --save to store the letter as an editable draft and print its version ID.`,
	RunE: runGenerate,
}

var (
	genJobTitle    string
	genCompany     string
	genQuestion    string
	genBackground  string
	genVariations  int
	genOutput      string
	genSave        bool
	genShowContext bool
)

func init() {
	generateCmd.Flags().StringVarP(&genJobTitle, "job-title", "t", "", "Job title (defaults to job_title from --config)")
	generateCmd.Flags().StringVarP(&genCompany, "company", "c", "", "Company name (defaults to company_name from --config)")
	generateCmd.Flags().StringVarP(&genQuestion, "question", "q", "", "Question or focus for the letter")
	generateCmd.Flags().StringVar(&genBackground, "background", "", "Short summary of your background")
	generateCmd.Flags().IntVar(&genVariations, "variations", 0, "Also generate this many alternative letters (1-5)")
	generateCmd.Flags().StringVarP(&genOutput, "out", "o", "", "Write the letter to this file instead of stdout")
	generateCmd.Flags().BoolVar(&genSave, "save", false, "Store the letter as an editable draft")
	generateCmd.Flags().BoolVar(&genShowContext, "show-context", false, "Print the retrieval summary")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	client, cfg, err := newClient()
	if err != nil {
		return err
	}

	req := &types.GenerateRequest{
		JobTitle:          firstNonEmpty(genJobTitle, cfg.JobTitle),
		CompanyName:       firstNonEmpty(genCompany, cfg.CompanyName),
		UserQuestion:      firstNonEmpty(genQuestion, cfg.UserQuestion),
		UserBackground:    firstNonEmpty(genBackground, cfg.UserBackground),
		IncludeVariations: genVariations > 0,
		NumVariations:     genVariations,
	}
	if err := req.Validate(); err != nil {
		return err
	}

	resp, err := client.Generate(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to generate cover letter: %w", err)
	}

	out := cmd.OutOrStdout()
	if genOutput != "" {
		if err := os.WriteFile(genOutput, []byte(resp.CoverLetter), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", genOutput, err)
		}
		_, _ = fmt.Fprintf(out, "Wrote cover letter to %s\n", genOutput)
	} else {
		_, _ = fmt.Fprintln(out, resp.CoverLetter)
	}

	for i, variation := range resp.Variations {
		_, _ = fmt.Fprintf(out, "\n--- Variation %d ---\n%s\n", i+1, variation)
	}

	if genShowContext || cfg.Verbose {
		summary := resp.ContextSummary
		_, _ = fmt.Fprintf(out, "\nContext: %d job postings (avg similarity %.3f), %d PDF pages (avg similarity %.3f)\n",
			summary.JobPostingsUsed, summary.AvgJobSimilarity, summary.PDFDocumentsUsed, summary.AvgPDFSimilarity)
	}

	if genSave {
		versionID, err := client.CreateDraft(ctx, types.NewCreateDraftRequest(resp.CoverLetter, req.Job()))
		if err != nil {
			return fmt.Errorf("failed to save draft: %w", err)
		}
		_, _ = fmt.Fprintf(out, "Saved draft %s\n", versionID)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
