package schemas

import (
	"encoding/json"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllSchemaFiles_ValidJSON(t *testing.T) {
	names, err := fs.Glob(Files, "*.schema.json")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"config.schema.json", "job_postings.schema.json"}, names)

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			data, err := Files.ReadFile(name)
			require.NoError(t, err)

			var schemaObj map[string]any
			require.NoError(t, json.Unmarshal(data, &schemaObj), "schema file should be valid JSON")

			_, hasSchema := schemaObj["$schema"]
			assert.True(t, hasSchema, "schema should declare $schema")
		})
	}
}
