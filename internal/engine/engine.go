// Package engine runs the conversation: it turns a normalized inbound message
// into a reply via a bounded model/tool loop, and orchestrates the identity,
// policy, delivery and audit steps around it.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/obralink/obrabot/internal/directory"
	"github.com/obralink/obrabot/internal/llm"
)

// maxModelRounds caps how many completion rounds one message may consume.
// A model that keeps requesting tools past this gets cut off and the user
// receives the fallback reply.
const maxModelRounds = 5

// ErrNoFinalResponse reports that the round budget ran out before the model
// produced final text. The accompanying reply is still the fallback text, so
// callers deliver it and record the failure separately.
var ErrNoFinalResponse = errors.New("no final response generated")

// Loop runs the bounded model/tool conversation for one message.
type Loop struct {
	model  ChatModel
	tools  ToolDispatcher
	logger *slog.Logger
	now    func() time.Time
}

// NewLoop creates a conversation loop.
func NewLoop(log *slog.Logger, model ChatModel, dispatcher ToolDispatcher) *Loop {
	if log == nil {
		log = slog.Default()
	}
	return &Loop{
		model:  model,
		tools:  dispatcher,
		logger: log.With(slog.String("service", "engine")),
		now:    time.Now,
	}
}

// Run produces the reply text for one user message. It never returns empty
// text without an error: an exhausted or toolless-but-silent model yields the
// fallback reply.
func (l *Loop) Run(ctx context.Context, identity directory.Identity, userText string) (string, error) {
	messages := []llm.Message{
		{Role: "system", Content: systemPrompt(identity, l.now())},
		{Role: "user", Content: userText},
	}
	specs := l.tools.Specs()

	for round := 0; round < maxModelRounds; round++ {
		completion, err := l.model.Complete(ctx, messages, specs)
		if err != nil {
			return "", fmt.Errorf("model round %d: %w", round+1, err)
		}

		if len(completion.ToolCalls) == 0 {
			if completion.Content == "" {
				return fallbackReply, nil
			}
			return completion.Content, nil
		}

		messages = append(messages, llm.Message{
			Role:      "assistant",
			Content:   completion.Content,
			ToolCalls: completion.ToolCalls,
		})

		// Every requested call gets an answer, in request order, before the
		// next round. A missing tool response breaks the provider contract.
		for _, call := range completion.ToolCalls {
			result := l.tools.Dispatch(ctx, identity, call.Function.Name, json.RawMessage(call.Function.Arguments))
			if !result.OK {
				l.logger.Info("tool call failed",
					slog.String("tool", call.Function.Name),
					slog.String("participant_id", identity.ParticipantID),
					slog.String("message", result.Message),
				)
			}
			messages = append(messages, llm.Message{
				Role:       "tool",
				Content:    result.String(),
				ToolCallID: call.ID,
			})
		}
	}

	l.logger.Warn("model round budget exhausted",
		slog.Int("rounds", maxModelRounds),
		slog.String("participant_id", identity.ParticipantID),
	)
	return fallbackReply, ErrNoFinalResponse
}
