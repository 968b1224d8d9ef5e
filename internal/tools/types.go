package tools

import (
	"context"
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/obralink/obrabot/internal/directory"
)

// Result is the structured outcome of one tool execution. It stays typed
// inside the service; only the conversation loop flattens it into the string
// the model reads.
type Result struct {
	OK      bool   `json:"ok"`
	Message string `json:"mensaje,omitempty"`
	Data    any    `json:"datos,omitempty"`
}

// Failure builds a failed result with a message for the model.
func Failure(message string) Result {
	return Result{OK: false, Message: message}
}

// Success builds a successful result carrying data for the model.
func Success(data any) Result {
	return Result{OK: true, Data: data}
}

// SuccessMessage builds a successful result with a confirmation message only.
func SuccessMessage(message string) Result {
	return Result{OK: true, Message: message}
}

// String serializes the result for the model boundary. A result that cannot
// marshal degrades to its message rather than dropping the round.
func (r Result) String() string {
	b, err := json.Marshal(r)
	if err != nil {
		return `{"ok":false,"mensaje":"error interno al serializar el resultado"}`
	}
	return string(b)
}

// Handler executes one tool call for a resolved identity. Raw JSON arguments
// come straight from the model; handlers own their decoding and report bad
// arguments as a failed Result, never as an error.
type Handler func(ctx context.Context, identity directory.Identity, args json.RawMessage) Result

// Tool is one registered capability: its model-facing contract plus the
// handler that serves it. AdminOnly tools are refused for participants before
// the handler runs.
type Tool struct {
	Name        string
	Description string
	Schema      *jsonschema.Schema
	AdminOnly   bool
	Handler     Handler
}
