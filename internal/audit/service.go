// Package audit writes the per-message processing log.
package audit

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	dbpkg "github.com/obralink/obrabot/internal/db"
)

// Service appends audit entries. Failures never surface to the caller: the
// reply path must not depend on the audit table being writable.
type Service struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewService creates an audit service.
func NewService(log *slog.Logger, pool *pgxpool.Pool) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		pool:   pool,
		logger: log.With(slog.String("service", "audit")),
	}
}

const insertQuery = `
INSERT INTO bot_audit_log (instance, sender_jid, phone, body, status, error_detail, company_id, participant_id, metadata)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

// Record appends one entry. Errors are logged and swallowed.
func (s *Service) Record(ctx context.Context, entry Entry) {
	var companyID, participantID pgtype.UUID
	if entry.CompanyID != "" {
		if parsed, err := dbpkg.ParseUUID(entry.CompanyID); err == nil {
			companyID = parsed
		}
	}
	if entry.ParticipantID != "" {
		if parsed, err := dbpkg.ParseUUID(entry.ParticipantID); err == nil {
			participantID = parsed
		}
	}

	metadata := []byte("{}")
	if len(entry.Metadata) > 0 {
		if b, err := json.Marshal(entry.Metadata); err == nil {
			metadata = b
		}
	}

	if _, err := s.pool.Exec(ctx, insertQuery,
		entry.Instance,
		entry.SenderJID,
		entry.Phone,
		entry.Body,
		string(entry.Status),
		entry.ErrorDetail,
		companyID,
		participantID,
		metadata,
	); err != nil {
		s.logger.Error("audit write failed",
			slog.String("status", string(entry.Status)),
			slog.String("phone", entry.Phone),
			slog.Any("error", err),
		)
	}
}
