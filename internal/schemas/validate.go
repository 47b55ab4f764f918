// Package schemas provides JSON Schema validation of persisted and imported CV versions.
// Schema issues are reported to the caller; loading never depends on them.
package schemas

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed files/*.schema.json
var files embed.FS

const versionsSchemaFile = "files/cv_versions.schema.json"

// Issues flattens a ValidationError into "field: message" lines. Other errors become a
// single line; nil gives nil.
func Issues(err error) []string {
	if err == nil {
		return nil
	}
	ve, ok := err.(*ValidationError)
	if !ok {
		return []string{err.Error()}
	}
	out := make([]string, len(ve.Errors))
	for i, fe := range ve.Errors {
		out[i] = fe.String()
	}
	return out
}

var (
	compileOnce    sync.Once
	versionsSchema *gojsonschema.Schema
	versionSchema  *gojsonschema.Schema
	compileErr     error
)

// compile builds the collection schema and a single-version schema sharing its definitions
func compile() error {
	compileOnce.Do(func() {
		content, err := files.ReadFile(versionsSchemaFile)
		if err != nil {
			compileErr = &SchemaLoadError{Path: versionsSchemaFile, Message: "not embedded", Cause: err}
			return
		}
		versionsSchema, err = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(content))
		if err != nil {
			compileErr = &SchemaLoadError{Path: versionsSchemaFile, Message: "invalid schema", Cause: err}
			return
		}

		var doc map[string]any
		if err := json.Unmarshal(content, &doc); err != nil {
			compileErr = &SchemaLoadError{Path: versionsSchemaFile, Message: "invalid JSON", Cause: err}
			return
		}
		single := map[string]any{
			"$schema":     doc["$schema"],
			"definitions": doc["definitions"],
			"allOf":       []any{map[string]any{"$ref": "#/definitions/version"}},
		}
		versionSchema, err = gojsonschema.NewSchema(gojsonschema.NewGoLoader(single))
		if err != nil {
			compileErr = &SchemaLoadError{Path: versionsSchemaFile + "#/definitions/version", Message: "invalid schema", Cause: err}
		}
	})
	return compileErr
}

// ValidateVersions validates a persisted version collection
func ValidateVersions(content []byte) error {
	if err := compile(); err != nil {
		return err
	}
	return validateWith(versionsSchema, gojsonschema.NewBytesLoader(content))
}

// ValidateVersion validates a single exported or imported version
func ValidateVersion(content []byte) error {
	if err := compile(); err != nil {
		return err
	}
	return validateWith(versionSchema, gojsonschema.NewBytesLoader(content))
}

func validateWith(schema *gojsonschema.Schema, document gojsonschema.JSONLoader) error {
	result, err := schema.Validate(document)
	if err != nil {
		// the document itself did not parse
		return &ValidationError{Errors: []FieldError{{Field: rootField, Message: err.Error()}}}
	}
	if result.Valid() {
		return nil
	}

	issues := make([]FieldError, len(result.Errors()))
	for i, desc := range result.Errors() {
		field := desc.Field()
		if field == "" || field == "(root)" {
			field = rootField
		}
		issues[i] = FieldError{Field: field, Message: desc.Description()}
	}
	return &ValidationError{Errors: issues}
}

const rootField = "(root)"

// ValidateJSON validates the JSON file at docPath against the schema file at schemaPath
func ValidateJSON(schemaPath, docPath string) error {
	schemaContent, err := readInput("schema", schemaPath)
	if err != nil {
		return err
	}
	docContent, err := readInput("JSON", docPath)
	if err != nil {
		return err
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaContent))
	if err != nil {
		return &SchemaLoadError{Path: schemaPath, Message: "invalid schema", Cause: err}
	}
	return validateWith(schema, gojsonschema.NewBytesLoader(docContent))
}

func readInput(kind, path string) ([]byte, error) {
	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s file not found: %s", kind, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s file: %w", kind, err)
	}
	return content, nil
}
