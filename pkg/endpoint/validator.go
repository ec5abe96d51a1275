package endpoint

import (
	"fmt"
	"strings"
)

// ValidationError represents a validation failure with context.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on %s: %s", e.Field, e.Message)
}

// validHTTPMethods are the allowed HTTP methods for a definition.
var validHTTPMethods = map[string]bool{
	"GET":     true,
	"POST":    true,
	"PUT":     true,
	"DELETE":  true,
	"PATCH":   true,
	"HEAD":    true,
	"OPTIONS": true,
}

// Validate checks that the definition carries a canonical path in the
// namespace required by its WebSocket flag and a known HTTP method.
// The path is expected to have been normalized already; Validate never
// rewrites fields.
func (d *Definition) Validate() error {
	prefix := d.Kind().Prefix()
	if d.Path == "" || !strings.HasPrefix(d.Path, prefix) {
		return &ValidationError{
			Field:   "path",
			Message: fmt.Sprintf("path must start with %s", prefix),
		}
	}
	if !d.IsWebSocket && !validHTTPMethods[d.Method] {
		return &ValidationError{
			Field:   "method",
			Message: fmt.Sprintf("unknown HTTP method: %s", d.Method),
		}
	}
	if d.StatusCode < 100 || d.StatusCode > 599 {
		return &ValidationError{
			Field:   "statusCode",
			Message: fmt.Sprintf("status code out of range: %d", d.StatusCode),
		}
	}
	return nil
}
