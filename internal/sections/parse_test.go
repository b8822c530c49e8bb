package sections

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLetter = `March 3, 2025
Acme Corp

Dear Hiring Manager,
I am excited to apply for the Backend Engineer role.
I have shipped payment systems in Go.
Thank you for your time and consideration.
Sincerely,
Jane Doe`

func TestParse_NoMarkers(t *testing.T) {
	set := Parse("line1\nline2")

	assert.Equal(t, "line1\nline2", set.Get(Header))
	for _, name := range []Name{Introduction, Body, Conclusion, Signature} {
		assert.Empty(t, set.Get(name), name)
	}
	assert.True(t, Degenerate("line1\nline2"))
}

func TestParse_EmptyInput(t *testing.T) {
	set := Parse("")
	assert.True(t, set.Empty())
	for _, name := range Names() {
		assert.Equal(t, "", set.Get(name))
	}
}

func TestParse_MarkerPrecedenceExample(t *testing.T) {
	set := Parse("Dear Hiring Manager,\nI am excited...\nSincerely,\nJane")

	assert.Equal(t, "", set.Get(Header))
	assert.Equal(t, "Dear Hiring Manager,\nI am excited...", set.Get(Introduction))
	assert.Equal(t, "", set.Get(Body))
	assert.Equal(t, "Sincerely,\nJane", set.Get(Conclusion))
	assert.Equal(t, "", set.Get(Signature))
	assert.False(t, Degenerate("Dear Hiring Manager,\nI am excited...\nSincerely,\nJane"))
}

func TestParse_FullLetter(t *testing.T) {
	set := Parse(sampleLetter)

	assert.Equal(t, "March 3, 2025\nAcme Corp\n", set.Get(Header))
	assert.Equal(t,
		"Dear Hiring Manager,\nI am excited to apply for the Backend Engineer role.\nI have shipped payment systems in Go.",
		set.Get(Introduction))
	assert.Equal(t, "Thank you for your time and consideration.", set.Get(Signature))
	assert.Equal(t, "Sincerely,\nJane Doe", set.Get(Conclusion))
}

func TestParse_CaseInsensitiveAndTrimmed(t *testing.T) {
	set := Parse("   header line  \n\tDEAR HIRING MANAGER\n  Best Regards,  \n  Sam  ")

	assert.Equal(t, "header line", set.Get(Header))
	assert.Equal(t, "DEAR HIRING MANAGER", set.Get(Introduction))
	assert.Equal(t, "Best Regards,\nSam", set.Get(Conclusion))
}

func TestParse_MarkerRulesNeedBothPhrases(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Name
	}{
		{"dear alone", "Dear team,", Header},
		{"hiring manager alone", "To the hiring manager", Header},
		{"dear and hiring manager", "Dear Hiring Manager", Introduction},
		{"sincerely", "Yours sincerely", Conclusion},
		{"best regards", "best regards", Conclusion},
		{"thank you alone", "Thank you!", Header},
		{"consideration alone", "For your consideration", Header},
		{"thank you and consideration", "Thank you for your consideration", Signature},
		// Rule 1 wins over rule 3 on the same line.
		{"dear beats thank you", "Dear hiring manager, thank you for your consideration", Introduction},
		// Rule 2 wins over rule 3 on the same line.
		{"sincerely beats thank you", "Thank you for your consideration, sincerely", Conclusion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := Parse(tt.line)
			assert.Equal(t, tt.line, set.Get(tt.want))
		})
	}
}

func TestParse_RepeatedMarkerKeepsLastRun(t *testing.T) {
	set := Parse("Sincerely,\nA\nSincerely,\nB")

	assert.Equal(t, "Sincerely,\nB", set.Get(Conclusion))
	assert.Equal(t, "", set.Get(Header))
}

func TestParse_MarkerLineBelongsToSectionItOpens(t *testing.T) {
	text := "Intro line\nDear Hiring Manager,\nbody text\nSincerely,\nJane\nThank you for your consideration\nJ."
	set := Parse(text)

	assert.Equal(t, "Intro line", set.Get(Header))
	assert.True(t, strings.HasPrefix(set.Get(Introduction), "Dear Hiring Manager,"))
	assert.True(t, strings.HasPrefix(set.Get(Conclusion), "Sincerely,"))
	assert.True(t, strings.HasPrefix(set.Get(Signature), "Thank you for your consideration"))
	assert.NotContains(t, set.Get(Header), "Dear")
	assert.NotContains(t, set.Get(Introduction), "Sincerely")
}

func TestParse_RoundTripPreservesLineSequence(t *testing.T) {
	text := "Jane Doe\njane@example.com\nDear Hiring Manager,\nParagraph one.\nParagraph two.\nSincerely,\nJane\nThank you for your consideration.\nJD"
	set := Parse(text)

	var nonEmpty []string
	for _, line := range strings.Split(set.Join(), "\n") {
		if line != "" {
			nonEmpty = append(nonEmpty, line)
		}
	}
	assert.Equal(t, strings.Split(text, "\n"), nonEmpty)

	got := map[string]Name{}
	for _, a := range set.Assignments() {
		got[a.Line] = a.Section
	}
	assert.Equal(t, Introduction, got["Dear Hiring Manager,"])
	assert.Equal(t, Conclusion, got["Sincerely,"])
	assert.Equal(t, Signature, got["Thank you for your consideration."])
}

func TestParse_Idempotent(t *testing.T) {
	inputs := []string{
		sampleLetter,
		"line1\nline2",
		"Sincerely,\nA\nSincerely,\nB",
		"Sincerely,\nX\nDear Hiring Manager,\nY",
		"",
	}

	for _, in := range inputs {
		first := Parse(in)
		second := Parse(first.Join())
		require.Equal(t, first.Assignments(), second.Assignments(), "input: %q", in)
		assert.Equal(t, second.Assignments(), Parse(second.Join()).Assignments(), "input: %q", in)
	}
}
