// Package tools defines the typed tool registry the conversation loop
// dispatches model function calls through.
package tools

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/obralink/obrabot/internal/directory"
	"github.com/obralink/obrabot/internal/llm"
)

// Registry holds the registered tools in declaration order.
type Registry struct {
	tools  map[string]Tool
	order  []string
	logger *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		tools:  make(map[string]Tool),
		logger: log.With(slog.String("service", "tools")),
	}
}

// Register adds a tool. Re-registering a name replaces the previous entry.
func (r *Registry) Register(tool Tool) {
	if _, exists := r.tools[tool.Name]; !exists {
		r.order = append(r.order, tool.Name)
	}
	r.tools[tool.Name] = tool
}

// Specs returns the advertised function specs in registration order.
func (r *Registry) Specs() []llm.ToolSpec {
	specs := make([]llm.ToolSpec, 0, len(r.order))
	for _, name := range r.order {
		tool := r.tools[name]
		specs = append(specs, llm.ToolSpec{
			Type: "function",
			Function: llm.ToolFunction{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Schema,
			},
		})
	}
	return specs
}

// Dispatch runs one tool call. Every outcome is a Result: unknown tools,
// authorization refusals, and handler failures all come back as failed
// results the model can read and recover from.
func (r *Registry) Dispatch(ctx context.Context, identity directory.Identity, name string, args json.RawMessage) Result {
	tool, ok := r.tools[name]
	if !ok {
		r.logger.Warn("unknown tool requested", slog.String("tool", name))
		return Failure("herramienta desconocida: " + name)
	}
	if tool.AdminOnly && !identity.IsAdmin() {
		r.logger.Info("tool refused for non-admin",
			slog.String("tool", name),
			slog.String("participant_id", identity.ParticipantID),
		)
		return Failure("esta acción requiere permisos de administrador")
	}
	return tool.Handler(ctx, identity, args)
}
