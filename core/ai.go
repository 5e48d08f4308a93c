package core

import (
	"context"
	"encoding/json"
	"errors"
)

// The generative endpoint wraps its JSON payload in a natural-language
// envelope; each failure mode gets its own error so callers can tell
// "retry" (timeout) apart from "bad upstream payload" (format/parse).
var (
	ErrUpstreamTimeout = errors.New("generative endpoint timed out")
	ErrUpstreamFormat  = errors.New("generative response contains no JSON code block")
	ErrUpstreamParse   = errors.New("generative response JSON is malformed")
)

// TextGenerator is any service that can prompt a generative-text endpoint
// and hand back the JSON payload extracted from its response.
type TextGenerator interface {
	// GenerateJSON sends one prompt and returns the payload of the fenced
	// JSON block found in the response. The raw envelope is never returned.
	GenerateJSON(ctx context.Context, prompt string) (json.RawMessage, error)
}
