package llm

import (
	"context"
	"fmt"

	"finvoapi/internal/document"
)

// Invoker is the narrow capability boundary to the external vision model:
// send page images plus instructions and a schema, receive raw text.
// Implementations must honor ctx cancellation and deadlines.
type Invoker interface {
	Invoke(ctx context.Context, payload *document.Payload, instructions string, schema map[string]any) (string, error)
}

// StatusError is returned by providers for non-2xx upstream responses.
// The retry layer uses the code to classify transient vs permanent failures.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.Code, e.Body)
}

// Transient reports whether the failure is worth retrying: rate limits,
// timeouts, and server-side errors. Client errors (bad credentials,
// malformed request) are permanent.
func (e *StatusError) Transient() bool {
	return e.Code == 408 || e.Code == 429 || e.Code >= 500
}
