package suite

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// APISpec is the parsed form of one API's specification manifest: the set of
// read endpoints and the schema each response must satisfy. Manifests are
// produced by the external specification tooling and read from the local
// cache; this loader is the boundary to that collaborator.
type APISpec struct {
	API   string     `yaml:"api"`
	Name  string     `yaml:"name"`
	Reads []ReadSpec `yaml:"reads"`

	// ErrorSchema validates 4xx/5xx bodies, defaulting to error.json.
	ErrorSchema string `yaml:"error_schema"`
}

// ReadSpec is one GET-able path relative to the versioned API root.
type ReadSpec struct {
	Path   string `yaml:"path"`
	Schema string `yaml:"schema"`
}

// LoadAPISpec reads and validates a spec manifest from disk.
func LoadAPISpec(path string) (*APISpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading spec manifest: %w", err)
	}
	var spec APISpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parsing spec manifest %s: %w", path, err)
	}
	if spec.API == "" {
		return nil, fmt.Errorf("spec manifest %s: api key is required", path)
	}
	for i, read := range spec.Reads {
		if read.Path == "" {
			return nil, fmt.Errorf("spec manifest %s: reads[%d] has no path", path, i)
		}
	}
	if spec.ErrorSchema == "" {
		spec.ErrorSchema = "error.json"
	}
	return &spec, nil
}

func joinURL(base, path string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")
}
