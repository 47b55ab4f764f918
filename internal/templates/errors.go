package templates

import "fmt"

// RenderError represents a failure turning CV data into a document or HTML
type RenderError struct {
	Template string
	Message  string
	Cause    error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("render error (%s): %s: %v", e.Template, e.Message, e.Cause)
	}
	return fmt.Sprintf("render error (%s): %s", e.Template, e.Message)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}
