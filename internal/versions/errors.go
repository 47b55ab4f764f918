package versions

import "fmt"

// LastVersionError is returned when deleting the only remaining version. The store is
// left unchanged; callers show the message as a notice.
type LastVersionError struct {
	VersionID string
}

func (e *LastVersionError) Error() string {
	return fmt.Sprintf("cannot delete version %s: at least one version must be kept", e.VersionID)
}

// NotFoundError is returned when no version has the given id
type NotFoundError struct {
	VersionID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("version not found: %s", e.VersionID)
}

// LoadError represents an error reading or decoding persisted versions
type LoadError struct {
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("load error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("load error: %s", e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// SaveError represents an error persisting versions. The in-memory state is not changed
// when a save fails.
type SaveError struct {
	Message string
	Cause   error
}

func (e *SaveError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("save error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("save error: %s", e.Message)
}

func (e *SaveError) Unwrap() error {
	return e.Cause
}
