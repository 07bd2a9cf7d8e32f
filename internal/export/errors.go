package export

import "fmt"

// ExportError represents a failure producing an export document
type ExportError struct {
	Op    string
	Cause error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s: %v", e.Op, e.Cause)
}

func (e *ExportError) Unwrap() error {
	return e.Cause
}
