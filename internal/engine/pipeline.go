package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/obralink/obrabot/internal/audit"
	"github.com/obralink/obrabot/internal/directory"
	"github.com/obralink/obrabot/internal/messenger"
	"github.com/obralink/obrabot/internal/tenants"
	"github.com/obralink/obrabot/internal/wire"
)

// Runner produces the reply for one resolved sender. Satisfied by *Loop.
type Runner interface {
	Run(ctx context.Context, identity directory.Identity, userText string) (string, error)
}

// Pipeline processes one webhook body end to end: normalize, resolve the
// sender, apply the tenant policy, run the conversation, deliver the reply,
// and record the outcome.
type Pipeline struct {
	runner    Runner
	directory Directory
	tenants   Tenants
	sender    Sender
	auditor   Auditor
	logger    *slog.Logger
}

// NewPipeline creates a pipeline.
func NewPipeline(log *slog.Logger, runner Runner, dir Directory, ten Tenants, sender Sender, auditor Auditor) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		runner:    runner,
		directory: dir,
		tenants:   ten,
		sender:    sender,
		auditor:   auditor,
		logger:    log.With(slog.String("service", "pipeline")),
	}
}

// Process handles one raw webhook body. wire.ErrUnknownShape passes through
// for the handler to turn into a 400; every other recognized situation ends
// in a Decision.
func (p *Pipeline) Process(ctx context.Context, body []byte) (Decision, error) {
	msg, err := wire.Normalize(body)
	if err != nil {
		if errors.Is(err, wire.ErrNoContent) {
			p.record(ctx, msg, audit.StatusIgnored, "no text content", directory.Identity{}, nil)
			return Decision{Outcome: OutcomeIgnored, Reason: "no text content"}, nil
		}
		return Decision{}, err
	}

	log := p.logger.With(
		slog.String("instance", msg.Instance),
		slog.String("phone", msg.PhoneDigits),
	)

	if wire.IsDebugCommand(msg.Body) {
		return p.processDebug(ctx, msg, log)
	}

	identity, err := p.directory.Resolve(ctx, msg.PhoneDigits)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return p.processUnknown(ctx, msg, log)
		}
		p.record(ctx, msg, audit.StatusError, err.Error(), directory.Identity{}, nil)
		return Decision{}, fmt.Errorf("resolve sender: %w", err)
	}

	policy, err := p.tenants.GetByCompany(ctx, identity.CompanyID)
	if err != nil {
		if errors.Is(err, tenants.ErrNotFound) {
			log.Info("no messaging settings for company, ignoring",
				slog.String("company_id", identity.CompanyID))
			p.record(ctx, msg, audit.StatusIgnored, "company has no messaging settings", identity, nil)
			return Decision{Outcome: OutcomeIgnored, Reason: "company has no messaging settings"}, nil
		}
		p.record(ctx, msg, audit.StatusError, err.Error(), identity, nil)
		return Decision{}, fmt.Errorf("read company policy: %w", err)
	}
	if !policy.AssistantEnabled {
		p.record(ctx, msg, audit.StatusIgnored, "assistant disabled for company", identity, nil)
		return Decision{Outcome: OutcomeIgnored, Reason: "assistant disabled"}, nil
	}

	reply, runErr := p.runner.Run(ctx, identity, msg.Body)
	if runErr != nil && !errors.Is(runErr, ErrNoFinalResponse) {
		p.record(ctx, msg, audit.StatusError, runErr.Error(), identity, nil)
		return Decision{}, fmt.Errorf("conversation: %w", runErr)
	}

	if err := p.deliver(ctx, msg, policy, reply); err != nil {
		p.record(ctx, msg, audit.StatusError, err.Error(), identity, nil)
		if errors.Is(err, messenger.ErrNoInstance) {
			return Decision{Outcome: OutcomeIgnored, Reason: "no instance configured"}, nil
		}
		return Decision{}, fmt.Errorf("deliver reply: %w", err)
	}

	if runErr != nil {
		// The fallback went out, but the conversation never concluded.
		p.record(ctx, msg, audit.StatusError, runErr.Error(), identity, nil)
		return Decision{Outcome: OutcomeReplied}, nil
	}
	p.record(ctx, msg, audit.StatusReplied, "", identity, map[string]any{
		"kind": string(msg.Kind),
	})
	return Decision{Outcome: OutcomeReplied}, nil
}

// processUnknown handles senders that resolved to no participant. The tenant
// owning the instance decides between a polite refusal and silence; an
// instance without settings still gets the refusal, addressed by instance
// name alone.
func (p *Pipeline) processUnknown(ctx context.Context, msg wire.InboundMessage, log *slog.Logger) (Decision, error) {
	policy, err := p.tenants.GetByInstance(ctx, msg.Instance)
	switch {
	case err == nil:
		if !policy.ReplyToUnknown {
			log.Info("unknown sender, ignoring silently")
			p.record(ctx, msg, audit.StatusIgnored, "unknown sender", directory.Identity{}, nil)
			return Decision{Outcome: OutcomeIgnored, Reason: "unknown sender"}, nil
		}
	case errors.Is(err, tenants.ErrNotFound):
		policy = tenants.Policy{}
	default:
		p.record(ctx, msg, audit.StatusError, err.Error(), directory.Identity{}, nil)
		return Decision{}, fmt.Errorf("read instance policy: %w", err)
	}

	if err := p.deliver(ctx, msg, policy, unknownSenderReply); err != nil {
		p.record(ctx, msg, audit.StatusError, err.Error(), directory.Identity{}, nil)
		if errors.Is(err, messenger.ErrNoInstance) {
			return Decision{Outcome: OutcomeIgnored, Reason: "no instance configured"}, nil
		}
		return Decision{}, fmt.Errorf("deliver refusal: %w", err)
	}
	p.record(ctx, msg, audit.StatusUnauthorized, "", directory.Identity{}, nil)
	return Decision{Outcome: OutcomeUnauthorized}, nil
}

// processDebug answers the literal "debug" command with the normalization
// diagnostics for the sender. It never touches the directory, so it works
// for unregistered numbers too.
func (p *Pipeline) processDebug(ctx context.Context, msg wire.InboundMessage, log *slog.Logger) (Decision, error) {
	// Settings are best effort here: without them the dump still goes out
	// addressed by instance name, just without the instance key.
	policy, err := p.tenants.GetByInstance(ctx, msg.Instance)
	if err != nil {
		log.Info("debug requested for instance without settings")
		policy = tenants.Policy{}
	}

	candidates := directory.PhoneCandidates(msg.PhoneDigits)
	dump := strings.Join([]string{
		"RemoteJid: " + msg.SenderJID,
		"Phone: " + msg.PhoneDigits,
		"Candidates: " + strings.Join(candidates, ", "),
		"Instance: " + msg.Instance,
	}, "\n")

	if err := p.deliver(ctx, msg, policy, dump); err != nil {
		p.record(ctx, msg, audit.StatusError, err.Error(), directory.Identity{}, nil)
		if errors.Is(err, messenger.ErrNoInstance) {
			return Decision{Outcome: OutcomeIgnored, Reason: "no instance configured"}, nil
		}
		return Decision{}, fmt.Errorf("deliver debug dump: %w", err)
	}
	p.record(ctx, msg, audit.StatusReplied, "", directory.Identity{}, map[string]any{
		"debug": true,
	})
	return Decision{Outcome: OutcomeReplied}, nil
}

func (p *Pipeline) deliver(ctx context.Context, msg wire.InboundMessage, policy tenants.Policy, text string) error {
	instance := msg.Instance
	if instance == "" {
		instance = policy.Instance
	}
	return p.sender.Deliver(ctx, messenger.Delivery{
		Instance:     instance,
		APIKey:       policy.InstanceAPIKey,
		TargetJID:    msg.SenderJID,
		Text:         text,
		AckMessageID: msg.ProviderMessageID,
	})
}

func (p *Pipeline) record(ctx context.Context, msg wire.InboundMessage, status audit.Status, detail string, identity directory.Identity, metadata map[string]any) {
	p.auditor.Record(ctx, audit.Entry{
		Instance:      msg.Instance,
		SenderJID:     msg.SenderJID,
		Phone:         msg.PhoneDigits,
		Body:          msg.Body,
		Status:        status,
		ErrorDetail:   detail,
		CompanyID:     identity.CompanyID,
		ParticipantID: identity.ParticipantID,
		Metadata:      metadata,
	})
}
