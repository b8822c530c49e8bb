package generation

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/jonathan/cover-letter-studio/internal/llm"
	"github.com/jonathan/cover-letter-studio/internal/prompts"
	"github.com/jonathan/cover-letter-studio/internal/store"
	"github.com/jonathan/cover-letter-studio/internal/types"
	"golang.org/x/sync/errgroup"
)

const promptFile = "cover_letter.json"

const noJobDescription = "No job description was provided."

// variationKeys are the extra instructions appended for each variation
// after the first; they cycle when more variations are requested.
var variationKeys = []string{"variation-creative", "variation-conservative", "variation-concise"}

// Generate writes a cover letter for req. When variations are requested
// they are generated concurrently and the first becomes CoverLetter.
func (s *Service) Generate(ctx context.Context, req *types.GenerateRequest) (*types.GenerateResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	job := req.Job()
	rc, err := s.Retrieve(ctx, job)
	if err != nil {
		return nil, err
	}
	userPrompt, err := s.BuildUserPrompt(ctx, job, rc)
	if err != nil {
		return nil, err
	}

	n := max(req.Variations(), 1)
	letters := make([]string, n)
	g, gCtx := errgroup.WithContext(ctx)
	for i := range n {
		g.Go(func() error {
			prompt, err := systemPrompt(i)
			if err != nil {
				return err
			}
			text, err := s.llm.GenerateContent(gCtx, prompt+"\n\n"+userPrompt, s.tier)
			if err != nil {
				return fmt.Errorf("failed to generate letter %d: %w", i+1, err)
			}
			letters[i] = llm.CleanLetter(text)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	log.Printf("[generation] wrote %d letter(s) for %s at %s", n, job.JobTitle, job.CompanyName)

	resp := &types.GenerateResponse{
		CoverLetter:    letters[0],
		ContextSummary: rc.Summary(),
		GeneratedAt:    s.now(),
	}
	if req.Variations() > 0 {
		resp.Variations = letters
	}
	return resp, nil
}

// systemPrompt returns the system prompt for variation i.
func systemPrompt(i int) (string, error) {
	base, err := prompts.Get(promptFile, "system")
	if err != nil {
		return "", err
	}
	if i == 0 {
		return base, nil
	}
	extra, err := prompts.Get(promptFile, variationKeys[(i-1)%len(variationKeys)])
	if err != nil {
		return "", err
	}
	return base + "\n\n" + extra, nil
}

// BuildUserPrompt renders the user prompt from the job and retrieved context.
func (s *Service) BuildUserPrompt(ctx context.Context, job types.JobContext, rc *Context) (string, error) {
	contextBlock, err := formatContext(rc.Combined())
	if err != nil {
		return "", err
	}
	return prompts.Render(promptFile, "user", map[string]string{
		"JobTitle":       job.JobTitle,
		"CompanyName":    job.CompanyName,
		"JobDescription": s.jobDescription(ctx, rc),
		"UserBackground": orNone(job.UserBackground),
		"UserQuestion":   orNone(job.UserQuestion),
		"Context":        contextBlock,
	})
}

// jobDescription uses the description of the best matching posting, falling
// back to the indexed text when the posting itself cannot be loaded.
func (s *Service) jobDescription(ctx context.Context, rc *Context) string {
	if len(rc.JobPostings) == 0 {
		return noJobDescription
	}
	best := rc.JobPostings[0].Document
	posting, err := s.store.GetJobPosting(ctx, best.SourceID)
	if err == nil && strings.TrimSpace(posting.JobDescription) != "" {
		return posting.JobDescription
	}
	return best.Content
}

func formatContext(matches []Match) (string, error) {
	if len(matches) == 0 {
		return prompts.Get(promptFile, "no-context")
	}

	header, err := prompts.Get(promptFile, "context-header")
	if err != nil {
		return "", err
	}
	guidelines, err := prompts.Get(promptFile, "context-guidelines")
	if err != nil {
		return "", err
	}

	parts := []string{header}
	for i, m := range matches {
		item, err := prompts.Render(promptFile, "context-item", map[string]string{
			"Index":   strconv.Itoa(i + 1),
			"Kind":    kindLabel(m.Document.Kind),
			"Score":   strconv.FormatFloat(m.Score, 'f', 2, 64),
			"Snippet": Preview(m.Document.Content, PromptSnippetSize),
		})
		if err != nil {
			return "", err
		}
		parts = append(parts, item)
	}
	parts = append(parts, guidelines)
	return strings.Join(parts, "\n\n"), nil
}

func kindLabel(kind string) string {
	if kind == store.KindPDF {
		return "Applicant document"
	}
	return "Job posting"
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(none)"
	}
	return s
}
