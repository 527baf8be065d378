// Package tools routes tool-use requests from the model to the executor
// that owns them and normalizes the heterogeneous results into one shape.
package tools

import "fmt"

// Outcome is the unified result of one tool invocation. Error is mutually
// exclusive with a successful Output/Image: when Error is set the invocation
// is reported as a failed tool result and the other fields are ignored.
type Outcome struct {
	Output string
	Error  string
	Image  string
}

// IsError reports whether the invocation failed.
func (o Outcome) IsError() bool {
	return o.Error != ""
}

// Errorf builds a failed outcome.
func Errorf(format string, args ...any) Outcome {
	return Outcome{Error: fmt.Sprintf(format, args...)}
}
