// Package oracle wraps the external text-completion service the pipeline
// delegates semantic judgments to (extraction, duplicate detection,
// contradiction finding). The service is a black box that takes a system
// instruction plus a prompt requesting strict JSON and returns one JSON
// object; everything else in the pipeline treats its failures as per-item
// recoverable conditions.
package oracle

import (
	"context"
	"errors"
	"strings"
)

// Client is the oracle contract consumed by the pipeline services.
// CompleteJSON returns the raw bytes of one JSON object, with any code
// fences already stripped. Callers own the schema and the unmarshaling.
type Client interface {
	CompleteJSON(ctx context.Context, model, systemInstruction, prompt string) ([]byte, error)
}

var ErrEmptyResponse = errors.New("oracle returned empty response")

// StripCodeFences removes a leading ```json / ``` fence pair the model
// sometimes wraps its output in despite being asked for bare JSON.
func StripCodeFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
