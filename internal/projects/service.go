// Package projects lists the projects a participant is assigned to.
package projects

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	dbpkg "github.com/obralink/obrabot/internal/db"
)

// Service reads project assignments.
type Service struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewService creates a projects service.
func NewService(log *slog.Logger, pool *pgxpool.Pool) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		pool:   pool,
		logger: log.With(slog.String("service", "projects")),
	}
}

const listByParticipantQuery = `
SELECT p.id, p.name, COALESCE(p.status, ''), COALESCE(p.location, ''), p.start_date, p.end_date
FROM projects p
JOIN project_participants pp ON pp.project_id = p.id
WHERE pp.participant_id = $1 AND p.company_id = $2
ORDER BY p.start_date NULLS LAST, p.name
`

// ListByParticipant returns the projects a participant is assigned to within
// their company.
func (s *Service) ListByParticipant(ctx context.Context, companyID, participantID string) ([]Project, error) {
	pgParticipantID, err := dbpkg.ParseUUID(participantID)
	if err != nil {
		return nil, fmt.Errorf("invalid participant id: %w", err)
	}
	pgCompanyID, err := dbpkg.ParseUUID(companyID)
	if err != nil {
		return nil, fmt.Errorf("invalid company id: %w", err)
	}

	rows, err := s.pool.Query(ctx, listByParticipantQuery, pgParticipantID, pgCompanyID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var result []Project
	for rows.Next() {
		var (
			id                     pgtype.UUID
			name, status, location string
			startDate, endDate     pgtype.Date
		)
		if err := rows.Scan(&id, &name, &status, &location, &startDate, &endDate); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		project := Project{
			ID:       id.String(),
			Name:     name,
			Status:   status,
			Location: location,
		}
		if startDate.Valid {
			project.StartDate = startDate.Time.Format("2006-01-02")
		}
		if endDate.Valid {
			project.EndDate = endDate.Time.Format("2006-01-02")
		}
		result = append(result, project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return result, nil
}
