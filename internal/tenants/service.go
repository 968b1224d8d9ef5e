// Package tenants reads per-company messaging settings (the policy gate input).
package tenants

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	dbpkg "github.com/obralink/obrabot/internal/db"
)

// Service reads company messaging settings.
type Service struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewService creates a tenants service.
func NewService(log *slog.Logger, pool *pgxpool.Pool) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		pool:   pool,
		logger: log.With(slog.String("service", "tenants")),
	}
}

const policyColumns = `company_id, instance_name, instance_api_key, bot_enabled, reply_to_unknown`

// GetByInstance returns the policy for the company owning a messaging instance.
// Used for unknown senders, where the tenant can only be inferred from the
// channel the message arrived on.
func (s *Service) GetByInstance(ctx context.Context, instance string) (Policy, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+policyColumns+` FROM company_settings WHERE instance_name = $1`,
		instance,
	)
	return scanPolicy(row)
}

// GetByCompany returns the policy for a company id.
func (s *Service) GetByCompany(ctx context.Context, companyID string) (Policy, error) {
	pgID, err := dbpkg.ParseUUID(companyID)
	if err != nil {
		return Policy{}, fmt.Errorf("invalid company id: %w", err)
	}
	row := s.pool.QueryRow(ctx,
		`SELECT `+policyColumns+` FROM company_settings WHERE company_id = $1`,
		pgID,
	)
	return scanPolicy(row)
}

func scanPolicy(row pgx.Row) (Policy, error) {
	var (
		companyID      pgtype.UUID
		instance       pgtype.Text
		apiKey         pgtype.Text
		botEnabled     bool
		replyToUnknown bool
	)
	if err := row.Scan(&companyID, &instance, &apiKey, &botEnabled, &replyToUnknown); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Policy{}, ErrNotFound
		}
		return Policy{}, fmt.Errorf("read company settings: %w", err)
	}
	return Policy{
		CompanyID:        companyID.String(),
		Instance:         dbpkg.TextToString(instance),
		InstanceAPIKey:   dbpkg.TextToString(apiKey),
		AssistantEnabled: botEnabled,
		ReplyToUnknown:   replyToUnknown,
	}, nil
}
