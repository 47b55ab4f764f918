package schemas

import (
	"fmt"
	"strings"
)

// FieldError is one schema violation. Field is a dotted path such as
// "data.skills.0.level", or "(root)" for the whole document.
type FieldError struct {
	Field   string
	Message string
}

func (fe FieldError) String() string {
	return fe.Field + ": " + fe.Message
}

// ValidationError lists every violation found in a document
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	lines := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		lines[i] = "  - " + fe.String()
	}
	return fmt.Sprintf("validation failed (%d issues):\n%s", len(e.Errors), strings.Join(lines, "\n"))
}

// SchemaLoadError represents a schema that could not be read or compiled
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	msg := "schema " + e.Path + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}
