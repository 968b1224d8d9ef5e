package engine

import (
	"context"
	"encoding/json"

	"github.com/obralink/obrabot/internal/audit"
	"github.com/obralink/obrabot/internal/directory"
	"github.com/obralink/obrabot/internal/llm"
	"github.com/obralink/obrabot/internal/messenger"
	"github.com/obralink/obrabot/internal/tenants"
	"github.com/obralink/obrabot/internal/tools"
)

// Outcome is the business result of processing one inbound message. It maps
// one-to-one onto the webhook's 200 response body.
type Outcome string

const (
	OutcomeReplied      Outcome = "replied"
	OutcomeIgnored      Outcome = "ignored"
	OutcomeUnauthorized Outcome = "unauthorized"
)

// Decision is the terminal result of processing one inbound message. Reason
// qualifies ignored outcomes in the webhook response; it stays empty when the
// outcome speaks for itself.
type Decision struct {
	Outcome Outcome
	Reason  string
}

// ChatModel performs one completion round.
type ChatModel interface {
	Complete(ctx context.Context, messages []llm.Message, specs []llm.ToolSpec) (llm.Completion, error)
}

// ToolDispatcher advertises and executes tools.
type ToolDispatcher interface {
	Specs() []llm.ToolSpec
	Dispatch(ctx context.Context, identity directory.Identity, name string, args json.RawMessage) tools.Result
}

// Directory resolves phone digits to identities.
type Directory interface {
	Resolve(ctx context.Context, digits string) (directory.Identity, error)
}

// Tenants reads company messaging policies.
type Tenants interface {
	GetByInstance(ctx context.Context, instance string) (tenants.Policy, error)
	GetByCompany(ctx context.Context, companyID string) (tenants.Policy, error)
}

// Sender delivers outbound replies.
type Sender interface {
	Deliver(ctx context.Context, delivery messenger.Delivery) error
}

// Auditor records terminal processing entries.
type Auditor interface {
	Record(ctx context.Context, entry audit.Entry)
}
