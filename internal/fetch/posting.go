package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/jonathan/cover-letter-studio/internal/llm"
	"github.com/jonathan/cover-letter-studio/internal/types"
)

// Page is the extracted text of a job posting page.
type Page struct {
	URL      string
	Platform Platform
	Title    string
	Text     string
	Rendered bool // text came from the headless browser
}

// Fetcher turns job posting URLs into job posting input.
type Fetcher struct {
	opts     *Options
	renderer Renderer
	llm      llm.Client
}

// NewFetcher creates a Fetcher. client may be nil, in which case the page
// text is used as the job description without structuring.
func NewFetcher(client llm.Client, opts *Options) *Fetcher {
	if opts == nil {
		opts = DefaultOptions()
	}
	f := &Fetcher{opts: opts, llm: client}
	if opts.BrowserTimeout > 0 {
		f.renderer = &ChromeRenderer{Timeout: opts.BrowserTimeout, Verbose: opts.Verbose}
	}
	return f
}

// WithRenderer replaces the headless browser used for client-rendered pages.
func (f *Fetcher) WithRenderer(r Renderer) *Fetcher {
	f.renderer = r
	return f
}

// FetchPage downloads a posting and extracts its text, rendering it in the
// browser when the plain fetch yields too little text or the platform is
// known to render client-side.
func (f *Fetcher) FetchPage(ctx context.Context, urlStr string) (*Page, error) {
	platform := DetectPlatform(urlStr)
	page := &Page{URL: urlStr, Platform: platform}

	result, err := URL(ctx, urlStr, f.opts)
	if err != nil && (result == nil || f.renderer == nil) {
		return nil, err
	}
	if err == nil {
		page.Title = PageTitle(result.HTML)
		page.Text, err = ExtractMainText(result.HTML, platform.ContentSelectors(), platform.NoiseSelectors()...)
		if err != nil {
			return nil, &Error{URL: urlStr, Message: "failed to extract text", Cause: err}
		}
	}

	if f.renderer != nil && (platform.NeedsBrowser() || ShouldUseBrowser(page.Text)) {
		if f.opts.Verbose {
			log.Printf("[fetch] %d chars from HTTP for %s, trying browser", len(page.Text), urlStr)
		}
		html, rerr := f.renderer.Render(ctx, urlStr)
		switch {
		case rerr != nil && page.Text == "":
			return nil, &Error{URL: urlStr, Message: "browser rendering failed", Cause: rerr}
		case rerr != nil:
			log.Printf("[fetch] browser rendering failed for %s, using HTTP text: %v", urlStr, rerr)
		default:
			text, xerr := ExtractMainText(html, platform.ContentSelectors(), platform.NoiseSelectors()...)
			if xerr == nil && len(text) > len(page.Text) {
				page.Text = text
				page.Rendered = true
				if page.Title == "" {
					page.Title = PageTitle(html)
				}
			}
		}
	}

	if strings.TrimSpace(page.Text) == "" {
		return nil, &Error{URL: urlStr, Message: "no text found on page"}
	}
	return page, nil
}

// FetchJobPosting fetches a posting and splits it into job posting fields.
// Fields the model leaves empty are filled from the page where possible;
// the result may still need a title or company from the caller.
func (f *Fetcher) FetchJobPosting(ctx context.Context, urlStr string) (*types.JobPostingInput, *Page, error) {
	page, err := f.FetchPage(ctx, urlStr)
	if err != nil {
		return nil, nil, err
	}

	in := &types.JobPostingInput{}
	if f.llm != nil {
		structured, err := f.structure(ctx, page.Text)
		if err != nil {
			log.Printf("[fetch] could not structure %s, using raw text: %v", urlStr, err)
		} else {
			in = structured
		}
	}
	if strings.TrimSpace(in.JobDescription) == "" {
		in.JobDescription = page.Text
	}
	if strings.TrimSpace(in.JobTitle) == "" {
		in.JobTitle = page.Title
	}
	return in, page, nil
}

func (f *Fetcher) structure(ctx context.Context, text string) (*types.JobPostingInput, error) {
	prompt := llm.BuildExtractionPrompt(llm.JobPostingSchema(), text)
	raw, err := f.llm.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		return nil, fmt.Errorf("failed to structure job posting: %w", err)
	}
	var in types.JobPostingInput
	if err := json.Unmarshal([]byte(llm.CleanJSONBlock(raw)), &in); err != nil {
		return nil, fmt.Errorf("failed to decode structured job posting: %w", err)
	}
	return &in, nil
}
