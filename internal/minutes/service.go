// Package minutes lists the meeting minutes a participant attended.
package minutes

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	dbpkg "github.com/obralink/obrabot/internal/db"
)

// Service reads meeting minutes.
type Service struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewService creates a minutes service.
func NewService(log *slog.Logger, pool *pgxpool.Pool) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		pool:   pool,
		logger: log.With(slog.String("service", "minutes")),
	}
}

const listByAttendeeQuery = `
SELECT m.id, m.title, m.meeting_date, COALESCE(pr.name, ''), COALESCE(m.summary, '')
FROM minutes m
JOIN minute_attendees ma ON ma.minute_id = m.id
LEFT JOIN projects pr ON pr.id = m.project_id
WHERE ma.participant_id = $1 AND m.company_id = $2
ORDER BY m.meeting_date DESC
`

// ListByAttendee returns the minutes where the participant is listed as an
// attendee, most recent first.
func (s *Service) ListByAttendee(ctx context.Context, companyID, participantID string) ([]Minute, error) {
	pgParticipantID, err := dbpkg.ParseUUID(participantID)
	if err != nil {
		return nil, fmt.Errorf("invalid participant id: %w", err)
	}
	pgCompanyID, err := dbpkg.ParseUUID(companyID)
	if err != nil {
		return nil, fmt.Errorf("invalid company id: %w", err)
	}

	rows, err := s.pool.Query(ctx, listByAttendeeQuery, pgParticipantID, pgCompanyID)
	if err != nil {
		return nil, fmt.Errorf("list minutes: %w", err)
	}
	defer rows.Close()

	var result []Minute
	for rows.Next() {
		var (
			id                          pgtype.UUID
			title, projectName, summary string
			meetingDate                 pgtype.Date
		)
		if err := rows.Scan(&id, &title, &meetingDate, &projectName, &summary); err != nil {
			return nil, fmt.Errorf("scan minute: %w", err)
		}
		minute := Minute{
			ID:          id.String(),
			Title:       title,
			ProjectName: projectName,
			Summary:     summary,
		}
		if meetingDate.Valid {
			minute.MeetingDate = meetingDate.Time.Format("2006-01-02")
		}
		result = append(result, minute)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list minutes: %w", err)
	}
	return result, nil
}
