package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/cover-letter-studio/internal/fetch"
	"github.com/jonathan/cover-letter-studio/internal/llm"
	"github.com/jonathan/cover-letter-studio/internal/schemas"
	"github.com/jonathan/cover-letter-studio/internal/types"
	"github.com/spf13/cobra"
)

var postingsCmd = &cobra.Command{
	Use:   "postings",
	Short: "Manage the job postings used as generation context",
}

var postingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored job postings, newest first",
	Args:  cobra.NoArgs,
	RunE:  runPostingsList,
}

var postingsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one job posting",
	Args:  cobra.ExactArgs(1),
	RunE:  runPostingsGet,
}

var postingsSubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a job posting entered as text",
	Args:  cobra.NoArgs,
	RunE:  runPostingsSubmit,
}

var postingsImportCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Submit job postings from a JSON file",
	Long: `Submit one job posting object, or an array of them, from a JSON file.
The file is validated against the job posting schema before anything is sent.`,
	Args: cobra.ExactArgs(1),
	RunE: runPostingsImport,
}

var postingsUploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a job posting from a .txt or .pdf file",
	Args:  cobra.ExactArgs(1),
	RunE:  runPostingsUpload,
}

var postingsFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch a job posting from a URL and submit it",
	Long: `Download a job posting page, extract its main text and submit it.

When GEMINI_API_KEY is set the text is split into description, requirements
and company vision. Pages that render client-side are loaded in headless
Chrome unless --no-browser is given.`,
	Args: cobra.NoArgs,
	RunE: runPostingsFetch,
}

var (
	postingJobTitle     string
	postingCompany      string
	postingDescription  string
	postingRequirements string
	postingVision       string
	postingURL          string
	postingNoBrowser    bool
	postingDryRun       bool
)

func init() {
	for _, c := range []*cobra.Command{postingsSubmitCmd, postingsUploadCmd, postingsFetchCmd} {
		c.Flags().StringVarP(&postingJobTitle, "job-title", "t", "", "Job title")
		c.Flags().StringVarP(&postingCompany, "company", "c", "", "Company name")
	}
	postingsSubmitCmd.Flags().StringVarP(&postingDescription, "description", "d", "", "Job description, or @file to read it from a file")
	postingsSubmitCmd.Flags().StringVar(&postingRequirements, "requirements", "", "Requirements, or @file")
	postingsSubmitCmd.Flags().StringVar(&postingVision, "vision", "", "Company vision, or @file")
	_ = postingsSubmitCmd.MarkFlagRequired("job-title")
	_ = postingsSubmitCmd.MarkFlagRequired("company")
	_ = postingsUploadCmd.MarkFlagRequired("job-title")
	_ = postingsUploadCmd.MarkFlagRequired("company")

	postingsFetchCmd.Flags().StringVarP(&postingURL, "url", "u", "", "URL of the job posting")
	postingsFetchCmd.Flags().BoolVar(&postingNoBrowser, "no-browser", false, "Never fall back to headless Chrome")
	postingsFetchCmd.Flags().BoolVar(&postingDryRun, "dry-run", false, "Print the extracted posting without submitting it")
	_ = postingsFetchCmd.MarkFlagRequired("url")

	postingsCmd.AddCommand(postingsListCmd, postingsGetCmd, postingsSubmitCmd, postingsImportCmd, postingsUploadCmd, postingsFetchCmd)
	rootCmd.AddCommand(postingsCmd)
}

func runPostingsList(cmd *cobra.Command, _ []string) error {
	client, _, err := newClient()
	if err != nil {
		return err
	}
	postings, err := client.ListJobPostings(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list job postings: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(postings) == 0 {
		_, _ = fmt.Fprintln(out, "No job postings")
		return nil
	}
	for _, p := range postings {
		_, _ = fmt.Fprintf(out, "%s  %s at %s  (%s)\n", p.ID, p.JobTitle, p.CompanyName, p.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runPostingsGet(cmd *cobra.Command, args []string) error {
	client, _, err := newClient()
	if err != nil {
		return err
	}
	posting, err := client.GetJobPosting(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get job posting: %w", err)
	}
	printPosting(cmd, posting)
	return nil
}

func runPostingsSubmit(cmd *cobra.Command, _ []string) error {
	in := &types.JobPostingInput{JobTitle: postingJobTitle, CompanyName: postingCompany}
	var err error
	if in.JobDescription, err = readValue(postingDescription); err != nil {
		return err
	}
	if in.Requirements, err = readValue(postingRequirements); err != nil {
		return err
	}
	if in.CompanyVision, err = readValue(postingVision); err != nil {
		return err
	}
	if err := in.Validate(); err != nil {
		return err
	}

	client, _, err := newClient()
	if err != nil {
		return err
	}
	posting, err := client.SubmitJobPosting(context.Background(), in)
	if err != nil {
		return fmt.Errorf("failed to submit job posting: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Stored job posting %s\n", posting.ID)
	return nil
}

func runPostingsImport(cmd *cobra.Command, args []string) error {
	inputs, err := loadPostingsFile(args[0])
	if err != nil {
		return err
	}

	client, _, err := newClient()
	if err != nil {
		return err
	}
	ctx := context.Background()
	out := cmd.OutOrStdout()
	for i := range inputs {
		posting, err := client.SubmitJobPosting(ctx, &inputs[i])
		if err != nil {
			return fmt.Errorf("failed to submit posting %d (%s): %w", i+1, inputs[i].JobTitle, err)
		}
		_, _ = fmt.Fprintf(out, "Stored job posting %s  %s at %s\n", posting.ID, posting.JobTitle, posting.CompanyName)
	}
	_, _ = fmt.Fprintf(out, "Imported %d job postings\n", len(inputs))
	return nil
}

// loadPostingsFile reads a schema-valid JSON file holding one posting or a
// list of postings.
func loadPostingsFile(path string) ([]types.JobPostingInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := schemas.Validate(schemas.JobPostings, data); err != nil {
		return nil, fmt.Errorf("invalid job postings file %s: %w", path, err)
	}

	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var inputs []types.JobPostingInput
		if err := json.Unmarshal(data, &inputs); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return inputs, nil
	}
	var in types.JobPostingInput
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return []types.JobPostingInput{in}, nil
}

func runPostingsUpload(cmd *cobra.Command, args []string) error {
	path := args[0]
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".pdf":
	default:
		return fmt.Errorf("unsupported file type %q (expected .txt or .pdf)", filepath.Ext(path))
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
	posting, err := client.UploadJobPosting(context.Background(), postingJobTitle, postingCompany, filepath.Base(path), file)
	if err != nil {
		return fmt.Errorf("failed to upload job posting: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Stored job posting %s from %s\n", posting.ID, posting.SourceFile)
	return nil
}

func runPostingsFetch(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	opts := fetch.DefaultOptions()
	opts.Verbose = rootVerbose
	if postingNoBrowser {
		opts.BrowserTimeout = 0
	}

	var structurer llm.Client
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		llmClient, err := llm.NewClient(ctx, llm.DefaultConfig(), apiKey)
		if err != nil {
			return fmt.Errorf("failed to create LLM client: %w", err)
		}
		defer func() { _ = llmClient.Close() }()
		structurer = llmClient
	}

	in, page, err := fetch.NewFetcher(structurer, opts).FetchJobPosting(ctx, postingURL)
	if err != nil {
		return fmt.Errorf("failed to fetch job posting: %w", err)
	}
	if postingJobTitle != "" {
		in.JobTitle = postingJobTitle
	}
	if postingCompany != "" {
		in.CompanyName = postingCompany
	}

	out := cmd.OutOrStdout()
	if rootVerbose {
		_, _ = fmt.Fprintf(out, "Fetched %d characters from %s (platform: %s, rendered: %v)\n", len(page.Text), page.URL, page.Platform, page.Rendered)
	}
	if err := in.Validate(); err != nil {
		return fmt.Errorf("%w (pass --job-title and --company to fill them in)", err)
	}

	if postingDryRun {
		printPosting(cmd, &types.JobPosting{
			JobTitle:       in.JobTitle,
			CompanyName:    in.CompanyName,
			JobDescription: in.JobDescription,
			Requirements:   in.Requirements,
			CompanyVision:  in.CompanyVision,
		})
		return nil
	}

	client, _, err := newClient()
	if err != nil {
		return err
	}
	posting, err := client.SubmitJobPosting(ctx, in)
	if err != nil {
		return fmt.Errorf("failed to submit job posting: %w", err)
	}
	_, _ = fmt.Fprintf(out, "Stored job posting %s  %s at %s\n", posting.ID, posting.JobTitle, posting.CompanyName)
	return nil
}

func printPosting(cmd *cobra.Command, p *types.JobPosting) {
	out := cmd.OutOrStdout()
	if p.ID != "" {
		_, _ = fmt.Fprintf(out, "ID:       %s\n", p.ID)
	}
	_, _ = fmt.Fprintf(out, "Title:    %s\n", p.JobTitle)
	_, _ = fmt.Fprintf(out, "Company:  %s\n", p.CompanyName)
	if p.SourceFile != "" {
		_, _ = fmt.Fprintf(out, "Source:   %s\n", p.SourceFile)
	}
	for _, part := range []struct{ label, text string }{
		{"Description", p.JobDescription},
		{"Requirements", p.Requirements},
		{"Company vision", p.CompanyVision},
	} {
		if part.text != "" {
			_, _ = fmt.Fprintf(out, "\n%s:\n%s\n", part.label, part.text)
		}
	}
}

// readValue returns value, or the contents of the file it names when it
// starts with "@".
func readValue(value string) (string, error) {
	path, ok := strings.CutPrefix(value, "@")
	if !ok {
		return value, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}
