// Package schema loads and caches the JSON schemas that test cases validate
// API responses against. Schemas come from the local specification cache,
// never from the implementation under test.
package schema

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Store compiles schema files on first use and caches the result for the
// remainder of the process. It is safe for concurrent use.
type Store struct {
	dir string

	mu       sync.Mutex
	compiled map[string]*jsonschema.Schema
}

// NewStore creates a store rooted at the given schema directory.
func NewStore(dir string) *Store {
	return &Store{
		dir:      dir,
		compiled: make(map[string]*jsonschema.Schema),
	}
}

// Load returns the compiled schema for the named file, compiling it on first
// request.
func (s *Store) Load(name string) (*jsonschema.Schema, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sch, ok := s.compiled[name]; ok {
		return sch, nil
	}

	path := filepath.Join(s.dir, name)
	compiler := jsonschema.NewCompiler()
	sch, err := compiler.Compile(path)
	if err != nil {
		return nil, fmt.Errorf("compiling schema %s: %w", name, err)
	}
	s.compiled[name] = sch
	return sch, nil
}

// Validate checks a raw JSON payload against the named schema.
func (s *Store) Validate(name string, payload []byte) error {
	sch, err := s.Load(name)
	if err != nil {
		return err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("response is not valid JSON: %w", err)
	}
	if err := sch.Validate(doc); err != nil {
		return fmt.Errorf("schema validation against %s: %w", name, err)
	}
	return nil
}
