// Package llmtest provides a deterministic llm.Client for tests.
package llmtest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jonathan/cover-letter-studio/internal/llm"
)

var _ llm.Client = (*Fake)(nil)

// Fake answers generation requests from a queue of canned responses and
// embeds text with a bag-of-words hash so similar texts score higher.
type Fake struct {
	mu sync.Mutex

	Responses []string // consumed in order; the last one repeats
	JSON      string
	PDFText   string
	Err       error

	Prompts []string
}

// GenerateContent returns the next canned response.
func (f *Fake) GenerateContent(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Prompts = append(f.Prompts, prompt)
	if f.Err != nil {
		return "", f.Err
	}
	if len(f.Responses) == 0 {
		return fmt.Sprintf("Dear Hiring Manager,\nletter %d\nSincerely,\nTest", len(f.Prompts)), nil
	}
	resp := f.Responses[0]
	if len(f.Responses) > 1 {
		f.Responses = f.Responses[1:]
	}
	return resp, nil
}

// GenerateJSON returns JSON.
func (f *Fake) GenerateJSON(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Prompts = append(f.Prompts, prompt)
	if f.Err != nil {
		return "", f.Err
	}
	return f.JSON, nil
}

// ExtractPDFText returns PDFText.
func (f *Fake) ExtractPDFText(_ context.Context, _ []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Err != nil {
		return "", f.Err
	}
	return f.PDFText, nil
}

// Embed hashes lowercase words into a fixed-size vector.
func (f *Fake) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	err := f.Err
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = Vector(text)
	}
	return out, nil
}

// Close does nothing.
func (f *Fake) Close() error { return nil }

// PromptCount returns the number of generation calls seen.
func (f *Fake) PromptCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Prompts)
}

// Vector is the embedding Fake assigns to text.
func Vector(text string) []float32 {
	v := make([]float32, 32)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		var h uint32 = 2166136261
		for _, c := range []byte(word) {
			h ^= uint32(c)
			h *= 16777619
		}
		v[h%32]++
	}
	return v
}
