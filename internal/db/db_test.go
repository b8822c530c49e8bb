package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchema_DefinesStoreTables(t *testing.T) {
	for _, table := range []string{"cover_letters", "job_postings", "context_documents", "pdf_files"} {
		assert.Contains(t, schemaSQL, "CREATE TABLE IF NOT EXISTS "+table, table)
	}
	assert.Equal(t, strings.Count(schemaSQL, "CREATE TABLE"), 4)
}

func TestJobPostingColumns_MatchScanOrder(t *testing.T) {
	cols := strings.Split(jobPostingColumns, ",")
	assert.Len(t, cols, 9)
	assert.Equal(t, "id", strings.TrimSpace(cols[0]))
	assert.Equal(t, "created_at", strings.TrimSpace(cols[len(cols)-1]))
}
