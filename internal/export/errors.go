package export

import (
	"fmt"
	"strings"
)

// GenericFailureMessage is shown when an engine error carries no usable detail
const GenericFailureMessage = "The export could not be completed. Please try again."

// TargetNotFoundError is returned when the element to capture is missing from the
// rendered preview. The export is aborted; nothing else is affected.
type TargetNotFoundError struct {
	Target string
}

func (e *TargetNotFoundError) Error() string {
	return fmt.Sprintf("export target not found: %s", e.Target)
}

// EngineError represents a document engine that failed to produce a file
type EngineError struct {
	Format  Format
	Message string
	Cause   error
}

func (e *EngineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("export error (%s): %s: %v", e.Format, e.Message, e.Cause)
	}
	return fmt.Sprintf("export error (%s): %s", e.Format, e.Message)
}

func (e *EngineError) Unwrap() error {
	return e.Cause
}

// UserMessage returns the notification text: the underlying error message when there is
// one, a generic sentence otherwise.
func (e *EngineError) UserMessage() string {
	if e.Cause != nil {
		if msg := strings.TrimSpace(e.Cause.Error()); msg != "" {
			return msg
		}
	}
	return GenericFailureMessage
}

// OptionsError represents export options that failed validation
type OptionsError struct {
	Message string
	Cause   error
}

func (e *OptionsError) Error() string {
	return fmt.Sprintf("options error: %s", e.Message)
}

func (e *OptionsError) Unwrap() error {
	return e.Cause
}

// BusyError is returned when a browser export of the same version is already running
type BusyError struct {
	VersionID string
}

func (e *BusyError) Error() string {
	return fmt.Sprintf("an export of version %s is already in progress", e.VersionID)
}
