package generation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jonathan/cover-letter-studio/internal/llm/llmtest"
	"github.com/jonathan/cover-letter-studio/internal/store"
	"github.com/jonathan/cover-letter-studio/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

func newTestService(fake *llmtest.Fake) (*Service, *store.Memory) {
	mem := store.NewMemory()
	return NewService(mem, fake, WithClock(func() time.Time { return fixedNow })), mem
}

func TestAddJobPosting_StoresAndIndexes(t *testing.T) {
	svc, mem := newTestService(&llmtest.Fake{})
	ctx := context.Background()

	posting, err := svc.AddJobPosting(ctx, &types.JobPostingInput{
		JobTitle:       " Backend Engineer ",
		CompanyName:    "Acme",
		JobDescription: "Build Go services",
	}, "")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(posting.ID, "job_20250301_093000_"), posting.ID)
	assert.Equal(t, "Backend Engineer", posting.JobTitle)
	assert.Equal(t, types.JobPostingStatusActive, posting.Status)

	stored, err := mem.GetJobPosting(ctx, posting.ID)
	require.NoError(t, err)
	assert.Equal(t, "Build Go services", stored.JobDescription)

	docs, err := mem.ListDocuments(ctx, store.KindJobPosting)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, posting.ID, docs[0].SourceID)
	assert.Equal(t, "Acme", docs[0].Metadata["company_name"])
	assert.NotEmpty(t, docs[0].Embedding)
}

func TestAddJobPosting_ValidationError(t *testing.T) {
	svc, _ := newTestService(&llmtest.Fake{})

	_, err := svc.AddJobPosting(context.Background(), &types.JobPostingInput{JobTitle: "SRE"}, "")
	var ve *types.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestPostingText(t *testing.T) {
	svc, _ := newTestService(&llmtest.Fake{PDFText: "page one\fpage two"})
	ctx := context.Background()

	text, err := svc.PostingText(ctx, "job.txt", []byte("Go developer wanted"))
	require.NoError(t, err)
	assert.Equal(t, "Go developer wanted", text)

	text, err = svc.PostingText(ctx, "JOB.PDF", []byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "page one\npage two", text)

	_, err = svc.PostingText(ctx, "job.docx", []byte("x"))
	assert.ErrorIs(t, err, ErrUnsupportedFile)

	_, err = svc.PostingText(ctx, "empty.txt", []byte("  \n"))
	assert.ErrorIs(t, err, ErrNoText)
}

func TestAddPDF_IndexesPages(t *testing.T) {
	svc, mem := newTestService(&llmtest.Fake{PDFText: "Resume: Go, Postgres\f\fProjects: payments platform"})
	ctx := context.Background()

	resp, err := svc.AddPDF(ctx, "resume.pdf", []byte("%PDF-1.7"))
	require.NoError(t, err)
	assert.Equal(t, "resume.pdf", resp.Filename)
	assert.Equal(t, 2, resp.Pages)
	assert.Len(t, resp.DocumentIDs, 2)
	assert.Equal(t, "success", resp.Status)

	docs, err := mem.ListDocuments(ctx, store.KindPDF)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	pages := map[string]bool{}
	for _, d := range docs {
		pages[d.Metadata["page_number"]] = true
		assert.Equal(t, "resume.pdf", d.SourceID)
	}
	assert.Equal(t, map[string]bool{"1": true, "2": true}, pages)

	files, err := mem.ListPDFFiles(ctx)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, int64(8), files[0].SizeBytes)
}

func TestAddPDF_Rejections(t *testing.T) {
	ctx := context.Background()

	svc, _ := newTestService(&llmtest.Fake{PDFText: "text"})
	_, err := svc.AddPDF(ctx, "notes.txt", []byte("x"))
	assert.ErrorIs(t, err, ErrUnsupportedFile)

	svc, _ = newTestService(&llmtest.Fake{PDFText: " \f "})
	_, err = svc.AddPDF(ctx, "blank.pdf", []byte("x"))
	assert.ErrorIs(t, err, ErrNoText)

	svc, _ = newTestService(&llmtest.Fake{Err: errors.New("quota")})
	_, err = svc.AddPDF(ctx, "cv.pdf", []byte("x"))
	assert.ErrorContains(t, err, "quota")
}

func seedContext(t *testing.T, svc *Service) {
	t.Helper()
	ctx := context.Background()

	_, err := svc.AddJobPosting(ctx, &types.JobPostingInput{
		JobTitle: "Backend Engineer", CompanyName: "Acme",
		JobDescription: "Design and operate payment services in Go",
	}, "")
	require.NoError(t, err)
	_, err = svc.AddJobPosting(ctx, &types.JobPostingInput{
		JobTitle: "Pastry Chef", CompanyName: "Bakery",
		JobDescription: "Bake bread",
	}, "")
	require.NoError(t, err)
	_, err = svc.AddJobPosting(ctx, &types.JobPostingInput{
		JobTitle: "Florist", CompanyName: "Flowers",
	}, "")
	require.NoError(t, err)
}

func TestRetrieve_RanksPostings(t *testing.T) {
	fake := &llmtest.Fake{PDFText: "backend engineer experience with go services\fgardening hobby"}
	svc, _ := newTestService(fake)
	seedContext(t, svc)
	_, err := svc.AddPDF(context.Background(), "cv.pdf", []byte("x"))
	require.NoError(t, err)

	rc, err := svc.Retrieve(context.Background(), types.JobContext{JobTitle: "Backend Engineer", CompanyName: "Acme"})
	require.NoError(t, err)

	require.Len(t, rc.JobPostings, MaxJobResults)
	assert.Equal(t, "Backend Engineer", rc.JobPostings[0].Document.Metadata["job_title"])
	assert.GreaterOrEqual(t, rc.JobPostings[0].Score, rc.JobPostings[1].Score)

	require.NotEmpty(t, rc.PDFDocuments)
	assert.LessOrEqual(t, len(rc.PDFDocuments), MaxPDFResults)
	assert.Contains(t, rc.PDFDocuments[0].Document.Content, "backend engineer")

	ids := map[string]bool{}
	for _, m := range rc.PDFDocuments {
		assert.False(t, ids[m.Document.ID], "duplicate %s", m.Document.ID)
		ids[m.Document.ID] = true
	}
	assert.LessOrEqual(t, len(rc.Combined()), MaxContextItems)
}

func TestRetrieve_EmptyStoreSkipsEmbedding(t *testing.T) {
	fake := &llmtest.Fake{Err: errors.New("should not be called")}
	svc, _ := newTestService(fake)

	rc, err := svc.Retrieve(context.Background(), types.JobContext{JobTitle: "SRE", CompanyName: "Acme"})
	require.NoError(t, err)
	assert.Empty(t, rc.JobPostings)
	assert.Empty(t, rc.PDFDocuments)
	assert.Equal(t, "SRE Acme", rc.Query.Query)
}

func TestAnalyze_PreviewsAndAverages(t *testing.T) {
	long := strings.Repeat("go ", 150)
	svc, _ := newTestService(&llmtest.Fake{PDFText: long})
	seedContext(t, svc)
	_, err := svc.AddPDF(context.Background(), "cv.pdf", []byte("x"))
	require.NoError(t, err)

	analysis, err := svc.Analyze(context.Background(), &types.ContextAnalysisRequest{
		JobTitle: "Backend Engineer", CompanyName: "Acme", UserQuestion: "Highlight go",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, analysis.JobPostingsFound)
	assert.Equal(t, 1, analysis.PDFDocumentsFound)
	require.Len(t, analysis.PDFDocuments, 1)
	assert.Len(t, []rune(analysis.PDFDocuments[0].ContentPreview), PreviewLength+3)
	assert.True(t, strings.HasSuffix(analysis.PDFDocuments[0].ContentPreview, "..."))
	assert.Equal(t, "Highlight go", analysis.QueryInfo.UserQuestion)
	assert.Greater(t, analysis.AvgPDFSimilarity, 0.0)
}

func TestAnalyze_Validation(t *testing.T) {
	svc, _ := newTestService(&llmtest.Fake{})
	_, err := svc.Analyze(context.Background(), &types.ContextAnalysisRequest{JobTitle: "SRE"})
	var ve *types.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestGenerate_SingleLetter(t *testing.T) {
	fake := &llmtest.Fake{Responses: []string{"```\nDear Hiring Manager,\nHello\nSincerely,\nJane\n```"}}
	svc, _ := newTestService(fake)
	seedContext(t, svc)
	embedCalls := fake.PromptCount()

	resp, err := svc.Generate(context.Background(), &types.GenerateRequest{
		JobTitle: "Backend Engineer", CompanyName: "Acme",
		UserBackground: "Five years of Go",
	})
	require.NoError(t, err)

	assert.Equal(t, "Dear Hiring Manager,\nHello\nSincerely,\nJane", resp.CoverLetter)
	assert.Empty(t, resp.Variations)
	assert.Equal(t, 2, resp.ContextSummary.JobPostingsUsed)
	assert.Equal(t, fixedNow, resp.GeneratedAt)

	require.Equal(t, embedCalls+1, fake.PromptCount())
	prompt := fake.Prompts[len(fake.Prompts)-1]
	assert.Contains(t, prompt, "Job title: Backend Engineer")
	assert.Contains(t, prompt, "Design and operate payment services in Go")
	assert.Contains(t, prompt, "Five years of Go")
	assert.Contains(t, prompt, "Reference material")
	assert.NotContains(t, prompt, "{{.")
}

func TestGenerate_NoContextWarning(t *testing.T) {
	fake := &llmtest.Fake{}
	svc, _ := newTestService(fake)

	resp, err := svc.Generate(context.Background(), &types.GenerateRequest{JobTitle: "SRE", CompanyName: "Acme"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.CoverLetter)

	prompt := fake.Prompts[0]
	assert.Contains(t, prompt, noJobDescription)
	assert.Contains(t, prompt, "No reference documents were found")
}

func TestGenerate_Variations(t *testing.T) {
	fake := &llmtest.Fake{}
	svc, _ := newTestService(fake)

	resp, err := svc.Generate(context.Background(), &types.GenerateRequest{
		JobTitle: "SRE", CompanyName: "Acme", IncludeVariations: true,
	})
	require.NoError(t, err)

	require.Len(t, resp.Variations, types.DefaultNumVariations)
	assert.Equal(t, resp.Variations[0], resp.CoverLetter)
	assert.Equal(t, types.DefaultNumVariations, fake.PromptCount())

	var creative, conservative int
	for _, p := range fake.Prompts {
		if strings.Contains(p, "more creative") {
			creative++
		}
		if strings.Contains(p, "more conservative") {
			conservative++
		}
	}
	assert.Equal(t, 1, creative)
	assert.Equal(t, 1, conservative)
}

func TestGenerate_Failure(t *testing.T) {
	svc, _ := newTestService(&llmtest.Fake{Err: errors.New("model overloaded")})

	_, err := svc.Generate(context.Background(), &types.GenerateRequest{JobTitle: "SRE", CompanyName: "Acme"})
	assert.ErrorContains(t, err, "model overloaded")
}

func TestSystemPrompt_CyclesVariations(t *testing.T) {
	first, err := systemPrompt(0)
	require.NoError(t, err)
	fourth, err := systemPrompt(4)
	require.NoError(t, err)
	second, err := systemPrompt(1)
	require.NoError(t, err)

	assert.NotContains(t, first, "For this version")
	assert.Equal(t, second, fourth)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", Preview("short", 10))
	assert.Equal(t, "ab...", Preview("abcdef", 2))
	assert.Equal(t, "éé...", Preview("ééé", 2))
}
