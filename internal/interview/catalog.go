// Package interview holds the question catalog and the interview session lifecycle.
package interview

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/jonathan/skillbuddy/internal/types"
)

//go:embed catalog.schema.json
var catalogSchema string

// Catalog maps career paths to their ordered question lists. It is read-only after construction.
type Catalog struct {
	paths map[string][]types.Question
}

// NewCatalog builds a catalog from a career path -> questions mapping.
func NewCatalog(paths map[string][]types.Question) *Catalog {
	c := &Catalog{paths: make(map[string][]types.Question, len(paths))}
	for path, qs := range paths {
		c.paths[path] = append([]types.Question(nil), qs...)
	}
	return c
}

// Questions returns a copy of the questions for a career path.
// ok is false when the path is unknown or has no questions.
func (c *Catalog) Questions(careerPath string) (qs []types.Question, ok bool) {
	stored := c.paths[careerPath]
	if len(stored) == 0 {
		return nil, false
	}
	return append([]types.Question(nil), stored...), true
}

// CareerPaths returns the known career paths in sorted order.
func (c *Catalog) CareerPaths() []string {
	paths := make([]string, 0, len(c.paths))
	for p := range c.paths {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// CatalogValidationError lists the schema violations found in a catalog file.
type CatalogValidationError struct {
	Path   string
	Errors []string
}

func (e *CatalogValidationError) Error() string {
	return fmt.Sprintf("invalid question catalog %s: %s", e.Path, strings.Join(e.Errors, "; "))
}

// LoadCatalog reads a catalog from a JSON file and validates it against the catalog schema.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read question catalog %s: %w", path, err)
	}
	return ParseCatalog(path, data)
}

// ParseCatalog validates and decodes catalog JSON. name is only used in errors.
func ParseCatalog(name string, data []byte) (*Catalog, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(catalogSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to validate question catalog %s: %w", name, err)
	}
	if !result.Valid() {
		verr := &CatalogValidationError{Path: name}
		for _, desc := range result.Errors() {
			field := desc.Field()
			if field == "" {
				field = "(root)"
			}
			verr.Errors = append(verr.Errors, field+": "+desc.Description())
		}
		return nil, verr
	}

	var paths map[string][]types.Question
	if err := json.Unmarshal(data, &paths); err != nil {
		return nil, fmt.Errorf("failed to parse question catalog %s: %w", name, err)
	}
	return NewCatalog(paths), nil
}
