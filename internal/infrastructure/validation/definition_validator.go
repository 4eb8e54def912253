// Package validation checks profile definition documents against their JSON Schemas.
package validation

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/*.json
var schemaFS embed.FS

const (
	schemaBaseURL = "https://reglet.dev/dbmatrix/"

	// DefinitionSchema validates a single profile definition (profile.yaml).
	DefinitionSchema = "definition.schema.json"
	// FragmentSchema validates a multi-profile file (*.profiles.yaml).
	FragmentSchema = "fragment.schema.json"
)

// DefinitionValidator validates YAML definition documents.
// Schemas are compiled once and shared; Validate is safe for concurrent use.
type DefinitionValidator struct {
	schemas map[string]*jsonschema.Schema
	err     error
	once    sync.Once
}

// NewDefinitionValidator creates a validator. Schemas compile on first use.
func NewDefinitionValidator() *DefinitionValidator {
	return &DefinitionValidator{}
}

func (v *DefinitionValidator) compile() {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	for _, name := range []string{DefinitionSchema, FragmentSchema} {
		data, err := schemaFS.ReadFile("schema/" + name)
		if err != nil {
			v.err = fmt.Errorf("reading embedded schema %s: %w", name, err)
			return
		}
		if err := compiler.AddResource(schemaBaseURL+name, bytes.NewReader(data)); err != nil {
			v.err = fmt.Errorf("adding schema resource %s: %w", name, err)
			return
		}
	}

	v.schemas = make(map[string]*jsonschema.Schema, 2)
	for _, name := range []string{DefinitionSchema, FragmentSchema} {
		schema, err := compiler.Compile(schemaBaseURL + name)
		if err != nil {
			v.err = fmt.Errorf("compiling schema %s: %w", name, err)
			return
		}
		v.schemas[name] = schema
	}
}

// ValidateDefinition validates a profile.yaml document.
func (v *DefinitionValidator) ValidateDefinition(data []byte) error {
	return v.validate(DefinitionSchema, data)
}

// ValidateFragment validates a *.profiles.yaml document.
func (v *DefinitionValidator) ValidateFragment(data []byte) error {
	return v.validate(FragmentSchema, data)
}

func (v *DefinitionValidator) validate(schemaName string, data []byte) error {
	v.once.Do(v.compile)
	if v.err != nil {
		return v.err
	}

	// An empty document is an empty mapping.
	if len(bytes.TrimSpace(data)) == 0 {
		data = []byte("{}")
	}

	jsonData, err := yaml.YAMLToJSON(data)
	if err != nil {
		return fmt.Errorf("invalid YAML: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(jsonData))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("invalid document: %w", err)
	}
	if doc == nil {
		doc = map[string]interface{}{}
	}

	if err := v.schemas[schemaName].Validate(doc); err != nil {
		var validationErr *jsonschema.ValidationError
		if errors.As(err, &validationErr) {
			return formatValidationError(validationErr)
		}
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

// formatValidationError flattens a JSON Schema validation error tree.
func formatValidationError(err *jsonschema.ValidationError) error {
	var messages []string

	var collect func(*jsonschema.ValidationError)
	collect = func(e *jsonschema.ValidationError) {
		if e.Message != "" && len(e.Causes) == 0 {
			location := e.InstanceLocation
			if location == "" {
				location = "(root)"
			}
			messages = append(messages, fmt.Sprintf("%s: %s", location, e.Message))
		}
		for _, cause := range e.Causes {
			collect(cause)
		}
	}
	collect(err)

	if len(messages) == 0 {
		return fmt.Errorf("schema validation failed: %s", err.Message)
	}
	return fmt.Errorf("schema validation failed:\n  - %s", strings.Join(messages, "\n  - "))
}
