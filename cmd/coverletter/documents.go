package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/cover-letter-studio/internal/types"
	"github.com/spf13/cobra"
)

var uploadPDFCmd = &cobra.Command{
	Use:   "upload-pdf <file.pdf>",
	Short: "Upload a PDF (resume, portfolio) to use as generation context",
	Args:  cobra.ExactArgs(1),
	RunE:  runUploadPDF,
}

var pdfsCmd = &cobra.Command{
	Use:   "pdfs",
	Short: "List uploaded PDFs",
	Args:  cobra.NoArgs,
	RunE:  runListPDFs,
}

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Show which stored documents a generation would use",
	Args:  cobra.NoArgs,
	RunE:  runContextAnalysis,
}

var (
	contextJobTitle string
	contextCompany  string
	contextQuestion string
)

func init() {
	contextCmd.Flags().StringVarP(&contextJobTitle, "job-title", "t", "", "Job title (defaults to job_title from --config)")
	contextCmd.Flags().StringVarP(&contextCompany, "company", "c", "", "Company name (defaults to company_name from --config)")
	contextCmd.Flags().StringVarP(&contextQuestion, "question", "q", "", "Question or focus for the letter")

	rootCmd.AddCommand(uploadPDFCmd, pdfsCmd, contextCmd)
}

func runUploadPDF(cmd *cobra.Command, args []string) error {
	path := args[0]
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return fmt.Errorf("only PDF files are accepted, got %s", filepath.Base(path))
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	client, _, err := newClient()
	if err != nil {
		return err
	}
	resp, err := client.UploadPDF(context.Background(), filepath.Base(path), file)
	if err != nil {
		return fmt.Errorf("failed to upload PDF: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s: %d pages indexed\n", resp.Filename, resp.Pages)
	return nil
}

func runListPDFs(cmd *cobra.Command, _ []string) error {
	client, _, err := newClient()
	if err != nil {
		return err
	}
	list, err := client.ListPDFFiles(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list PDFs: %w", err)
	}

	out := cmd.OutOrStdout()
	if list.TotalFiles == 0 {
		_, _ = fmt.Fprintln(out, "No PDFs uploaded")
		return nil
	}
	for _, f := range list.Files {
		_, _ = fmt.Fprintf(out, "%s  %d pages  %d bytes  (%s)\n", f.Filename, f.Pages, f.SizeBytes, f.UploadedAt.Format("2006-01-02 15:04"))
	}
	_, _ = fmt.Fprintf(out, "%d files\n", list.TotalFiles)
	return nil
}

func runContextAnalysis(cmd *cobra.Command, _ []string) error {
	client, cfg, err := newClient()
	if err != nil {
		return err
	}

	req := &types.ContextAnalysisRequest{
		JobTitle:     firstNonEmpty(contextJobTitle, cfg.JobTitle),
		CompanyName:  firstNonEmpty(contextCompany, cfg.CompanyName),
		UserQuestion: firstNonEmpty(contextQuestion, cfg.UserQuestion),
	}
	if err := req.Validate(); err != nil {
		return err
	}

	analysis, err := client.AnalyzeContext(context.Background(), req)
	if err != nil {
		return fmt.Errorf("failed to analyze context: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Query: %s\n", analysis.QueryInfo.Query)
	_, _ = fmt.Fprintf(out, "Job postings: %d (avg similarity %.3f)\n", analysis.JobPostingsFound, analysis.AvgJobSimilarity)
	_, _ = fmt.Fprintf(out, "PDF pages:    %d (avg similarity %.3f)\n", analysis.PDFDocumentsFound, analysis.AvgPDFSimilarity)
	for _, doc := range analysis.PDFDocuments {
		_, _ = fmt.Fprintf(out, "\n[%.3f] %s\n%s\n", doc.SimilarityScore, doc.ID, doc.ContentPreview)
	}
	return nil
}
