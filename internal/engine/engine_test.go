package engine

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/obralink/obrabot/internal/directory"
	"github.com/obralink/obrabot/internal/llm"
	"github.com/obralink/obrabot/internal/tools"
)

type scriptedModel struct {
	completions []llm.Completion
	err         error
	calls       int
	lastMsgs    []llm.Message
}

func (m *scriptedModel) Complete(_ context.Context, messages []llm.Message, _ []llm.ToolSpec) (llm.Completion, error) {
	m.calls++
	m.lastMsgs = messages
	if m.err != nil {
		return llm.Completion{}, m.err
	}
	idx := m.calls - 1
	if idx >= len(m.completions) {
		idx = len(m.completions) - 1
	}
	return m.completions[idx], nil
}

type recordingDispatcher struct {
	dispatched []string
	result     tools.Result
}

func (d *recordingDispatcher) Specs() []llm.ToolSpec {
	return []llm.ToolSpec{{Type: "function", Function: llm.ToolFunction{Name: "get_tasks"}}}
}

func (d *recordingDispatcher) Dispatch(_ context.Context, _ directory.Identity, name string, _ json.RawMessage) tools.Result {
	d.dispatched = append(d.dispatched, name)
	return d.result
}

func testIdentity() directory.Identity {
	return directory.Identity{
		ParticipantID: "p-1",
		CompanyID:     "c-1",
		CompanyName:   "Constructora Sur",
		Role:          directory.RoleParticipant,
		DisplayName:   "Bruno",
	}
}

func toolCall(id, name, args string) llm.ToolCall {
	return llm.ToolCall{
		ID:   id,
		Type: "function",
		Function: llm.ToolCallFunction{
			Name:      name,
			Arguments: args,
		},
	}
}

func TestRunFinalTextFirstRound(t *testing.T) {
	model := &scriptedModel{completions: []llm.Completion{{Content: "Tenés 2 tareas pendientes."}}}
	loop := NewLoop(nil, model, &recordingDispatcher{})

	reply, err := loop.Run(context.Background(), testIdentity(), "qué tengo pendiente?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "Tenés 2 tareas pendientes." {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if model.calls != 1 {
		t.Fatalf("expected 1 round, got %d", model.calls)
	}
}

func TestRunToolRoundThenAnswer(t *testing.T) {
	model := &scriptedModel{completions: []llm.Completion{
		{ToolCalls: []llm.ToolCall{
			toolCall("call-1", "get_tasks", `{}`),
			toolCall("call-2", "get_projects", `{}`),
		}},
		{Content: "Listo."},
	}}
	dispatcher := &recordingDispatcher{result: tools.SuccessMessage("ok")}
	loop := NewLoop(nil, model, dispatcher)

	reply, err := loop.Run(context.Background(), testIdentity(), "dame un resumen")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "Listo." {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if len(dispatcher.dispatched) != 2 || dispatcher.dispatched[0] != "get_tasks" || dispatcher.dispatched[1] != "get_projects" {
		t.Fatalf("tool calls must run in request order, got %v", dispatcher.dispatched)
	}

	// Second round must carry one tool message per call, in order.
	var toolMsgs []llm.Message
	for _, m := range model.lastMsgs {
		if m.Role == "tool" {
			toolMsgs = append(toolMsgs, m)
		}
	}
	if len(toolMsgs) != 2 || toolMsgs[0].ToolCallID != "call-1" || toolMsgs[1].ToolCallID != "call-2" {
		t.Fatalf("every tool call needs an answer in order, got %+v", toolMsgs)
	}
}

func TestRunRoundBudgetExhausted(t *testing.T) {
	// A model that always wants tools gets cut off at the round cap.
	model := &scriptedModel{completions: []llm.Completion{
		{ToolCalls: []llm.ToolCall{toolCall("call-1", "get_tasks", `{}`)}},
	}}
	dispatcher := &recordingDispatcher{result: tools.SuccessMessage("ok")}
	loop := NewLoop(nil, model, dispatcher)

	reply, err := loop.Run(context.Background(), testIdentity(), "hola")
	if !errors.Is(err, ErrNoFinalResponse) {
		t.Fatalf("expected ErrNoFinalResponse, got %v", err)
	}
	if reply != fallbackReply {
		t.Fatalf("expected fallback reply, got %q", reply)
	}
	if model.calls != maxModelRounds {
		t.Fatalf("expected %d rounds, got %d", maxModelRounds, model.calls)
	}
}

func TestRunFailedToolResultReachesModel(t *testing.T) {
	model := &scriptedModel{completions: []llm.Completion{
		{ToolCalls: []llm.ToolCall{toolCall("call-1", "create_task", `{"titulo":"x"}`)}},
		{Content: "No tengo permisos para eso."},
	}}
	dispatcher := &recordingDispatcher{result: tools.Failure("esta acción requiere permisos de administrador")}
	loop := NewLoop(nil, model, dispatcher)

	reply, err := loop.Run(context.Background(), testIdentity(), "creá una tarea")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "No tengo permisos para eso." {
		t.Fatalf("unexpected reply: %q", reply)
	}

	var toolContent string
	for _, m := range model.lastMsgs {
		if m.Role == "tool" {
			toolContent = m.Content
		}
	}
	var decoded struct {
		OK      bool   `json:"ok"`
		Message string `json:"mensaje"`
	}
	if err := json.Unmarshal([]byte(toolContent), &decoded); err != nil {
		t.Fatalf("tool result must be serialized JSON: %v", err)
	}
	if decoded.OK || decoded.Message == "" {
		t.Fatalf("failure must reach the model as data, got %+v", decoded)
	}
}

func TestRunModelError(t *testing.T) {
	model := &scriptedModel{err: errors.New("upstream 503")}
	loop := NewLoop(nil, model, &recordingDispatcher{})

	if _, err := loop.Run(context.Background(), testIdentity(), "hola"); err == nil {
		t.Fatal("expected model error to propagate")
	}
}

func TestRunEmptyFinalContentFallsBack(t *testing.T) {
	model := &scriptedModel{completions: []llm.Completion{{}}}
	loop := NewLoop(nil, model, &recordingDispatcher{})

	reply, err := loop.Run(context.Background(), testIdentity(), "hola")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != fallbackReply {
		t.Fatalf("expected fallback reply, got %q", reply)
	}
}
