// Package directory resolves inbound phone numbers to tenant participants.
package directory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	dbpkg "github.com/obralink/obrabot/internal/db"
)

// Service looks up participants by phone candidates.
type Service struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewService creates a directory service.
func NewService(log *slog.Logger, pool *pgxpool.Pool) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		pool:   pool,
		logger: log.With(slog.String("service", "directory")),
	}
}

const resolveQuery = `
SELECT p.id, p.user_id, p.company_id, p.role, p.full_name, c.name
FROM participants p
JOIN companies c ON c.id = p.company_id
WHERE p.phone = ANY($1)
ORDER BY p.created_at
`

// Resolve maps a raw digit string to an Identity in one round trip: all
// phone-format candidates are matched in a single query joined to the owning
// company. The first match wins; additional matches are a data-quality issue
// and only logged.
func (s *Service) Resolve(ctx context.Context, digits string) (Identity, error) {
	candidates := PhoneCandidates(digits)
	if len(candidates) == 0 {
		return Identity{}, ErrNotFound
	}

	rows, err := s.pool.Query(ctx, resolveQuery, candidates)
	if err != nil {
		return Identity{}, fmt.Errorf("resolve participant: %w", err)
	}
	defer rows.Close()

	var (
		identity Identity
		matches  int
	)
	for rows.Next() {
		var (
			id          pgtype.UUID
			accountID   pgtype.UUID
			companyID   pgtype.UUID
			role        pgtype.Text
			fullName    pgtype.Text
			companyName pgtype.Text
		)
		if err := rows.Scan(&id, &accountID, &companyID, &role, &fullName, &companyName); err != nil {
			return Identity{}, fmt.Errorf("scan participant: %w", err)
		}
		matches++
		if matches > 1 {
			continue
		}
		identity = Identity{
			ParticipantID: id.String(),
			CompanyID:     companyID.String(),
			CompanyName:   dbpkg.TextToString(companyName),
			Role:          collapseRole(dbpkg.TextToString(role)),
			DisplayName:   dbpkg.TextToString(fullName),
		}
		if accountID.Valid {
			identity.AccountID = accountID.String()
		}
	}
	if err := rows.Err(); err != nil {
		return Identity{}, fmt.Errorf("resolve participant: %w", err)
	}
	if matches == 0 {
		return Identity{}, ErrNotFound
	}
	if matches > 1 {
		s.logger.Warn("multiple participants matched phone candidates",
			slog.String("phone", digits),
			slog.Int("matches", matches),
		)
	}
	return identity, nil
}

// collapseRole folds the stored role field into the binary admin/participant
// distinction used for prompts and tool authorization.
func collapseRole(stored string) Role {
	switch strings.ToLower(strings.TrimSpace(stored)) {
	case "admin", "owner":
		return RoleAdmin
	default:
		return RoleParticipant
	}
}
