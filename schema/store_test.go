package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const errorSchema = `{
    "$schema": "http://json-schema.org/draft-04/schema#",
    "type": "object",
    "required": ["code", "error", "debug"],
    "properties": {
        "code": {"type": "integer"},
        "error": {"type": "string"},
        "debug": {"type": ["string", "null"]}
    }
}`

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "error.json"), []byte(errorSchema), 0o644))
	return NewStore(dir)
}

func TestValidateAcceptsConformingPayload(t *testing.T) {
	s := newTestStore(t)
	payload := []byte(`{"code": 404, "error": "Not Found", "debug": null}`)
	assert.NoError(t, s.Validate("error.json", payload))
}

func TestValidateRejectsNonConformingPayload(t *testing.T) {
	s := newTestStore(t)
	assert.Error(t, s.Validate("error.json", []byte(`{"code": "404"}`)))
	assert.Error(t, s.Validate("error.json", []byte(`not json at all`)))
}

func TestLoadCachesCompiledSchemas(t *testing.T) {
	s := newTestStore(t)
	first, err := s.Load("error.json")
	require.NoError(t, err)
	second, err := s.Load("error.json")
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestLoadMissingSchemaFails(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Load("missing.json")
	assert.Error(t, err)
}
