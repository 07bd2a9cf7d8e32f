package rendering

import "fmt"

// TemplateError represents an error parsing or executing an output template
type TemplateError struct {
	Name  string
	Cause error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template %s: %v", e.Name, e.Cause)
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}
