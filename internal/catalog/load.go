package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// FormatMajor is the catalog file major version this build understands.
const FormatMajor = "v1"

// File is the on-disk YAML form of a catalog.
type File struct {
	Format  string   `yaml:"format"`
	Name    string   `yaml:"name"`
	Factors []Factor `yaml:"factors"`
}

var fileSchemaDefinition = map[string]any{
	"type":     "object",
	"required": []any{"format", "name", "factors"},
	"properties": map[string]any{
		"format": map[string]any{"type": "string"},
		"name":   map[string]any{"type": "string", "minLength": 1},
		"factors": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type":     "object",
				"required": []any{"id", "name", "pathway", "target"},
				"properties": map[string]any{
					"id":      map[string]any{"type": "string", "minLength": 1},
					"name":    map[string]any{"type": "string", "minLength": 1},
					"pathway": map[string]any{"enum": []any{"intrinsic", "extrinsic", "common", "fibrinolysis", "regulatory"}},
					"target": map[string]any{
						"type":     "object",
						"required": []any{"x", "y"},
						"properties": map[string]any{
							"x": map[string]any{"type": "integer", "minimum": 0},
							"y": map[string]any{"type": "integer", "minimum": 0},
						},
					},
					"concept":     map[string]any{"type": "string"},
					"description": map[string]any{"type": "string"},
					"clinical":    map[string]any{"type": "string"},
					"antagonists": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				},
			},
		},
	},
}

var (
	fileSchemaOnce sync.Once
	fileSchema     *jsonschema.Schema
	fileSchemaErr  error
)

func compiledFileSchema() (*jsonschema.Schema, error) {
	fileSchemaOnce.Do(func() {
		// The compiler wants a parsed JSON value, so round-trip the definition.
		raw, err := json.Marshal(fileSchemaDefinition)
		if err != nil {
			fileSchemaErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		var def any
		if err := json.Unmarshal(raw, &def); err != nil {
			fileSchemaErr = fmt.Errorf("parse schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		const url = "schema://catalog-file.json"
		if err := c.AddResource(url, def); err != nil {
			fileSchemaErr = fmt.Errorf("add resource: %w", err)
			return
		}
		fileSchema, fileSchemaErr = c.Compile(url)
	})
	return fileSchema, fileSchemaErr
}

// LoadFile reads and validates a YAML catalog file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse validates YAML catalog bytes against the file schema, checks the
// format version, and builds a catalog.
func Parse(data []byte) (*Catalog, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog yaml: %w", err)
	}

	// Normalize YAML scalars to JSON types before schema validation.
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("normalize catalog: %w", err)
	}
	var inst any
	if err := json.Unmarshal(raw, &inst); err != nil {
		return nil, fmt.Errorf("normalize catalog: %w", err)
	}

	schema, err := compiledFileSchema()
	if err != nil {
		return nil, fmt.Errorf("compile catalog schema: %w", err)
	}
	if err := schema.Validate(inst); err != nil {
		return nil, fmt.Errorf("catalog schema: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := checkFormat(f.Format); err != nil {
		return nil, err
	}
	return New(f.Name, f.Factors)
}

func checkFormat(v string) error {
	if !semver.IsValid(v) {
		return fmt.Errorf("catalog format %q is not a semantic version", v)
	}
	if semver.Major(v) != FormatMajor {
		return fmt.Errorf("catalog format %s is not supported (want %s.x)", v, FormatMajor)
	}
	return nil
}

// Marshal renders a catalog in the YAML file form.
func Marshal(c *Catalog) ([]byte, error) {
	return yaml.Marshal(File{
		Format:  FormatMajor + ".0.0",
		Name:    c.Name(),
		Factors: c.Factors(),
	})
}
