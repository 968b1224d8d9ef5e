// Package tasks provides the task queries and mutations exposed to the assistant.
package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	dbpkg "github.com/obralink/obrabot/internal/db"
)

// Service queries and mutates tasks.
type Service struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewService creates a tasks service.
func NewService(log *slog.Logger, pool *pgxpool.Pool) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		pool:   pool,
		logger: log.With(slog.String("service", "tasks")),
	}
}

// List returns tasks matching the filter, newest due date last.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Task, error) {
	pgCompanyID, err := dbpkg.ParseUUID(filter.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("invalid company id: %w", err)
	}

	query := strings.Builder{}
	query.WriteString(`
SELECT t.id, t.title, t.description, t.status, t.priority, t.due_date,
       t.project_id, COALESCE(pr.name, ''), t.assignee_id, COALESCE(pa.full_name, ''),
       t.created_at
FROM tasks t
LEFT JOIN projects pr ON pr.id = t.project_id
LEFT JOIN participants pa ON pa.id = t.assignee_id
WHERE t.company_id = $1`)
	args := []any{pgCompanyID}

	if filter.AssigneeID != "" {
		pgAssignee, err := dbpkg.ParseUUID(filter.AssigneeID)
		if err != nil {
			return nil, fmt.Errorf("invalid assignee id: %w", err)
		}
		args = append(args, pgAssignee)
		query.WriteString(" AND t.assignee_id = $" + strconv.Itoa(len(args)))
	}
	if statuses := splitStatuses(filter.Statuses); len(statuses) > 0 {
		args = append(args, statuses)
		query.WriteString(" AND t.status = ANY($" + strconv.Itoa(len(args)) + ")")
	}
	if filter.ProjectID != "" {
		pgProject, err := dbpkg.ParseUUID(filter.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("invalid project id: %w", err)
		}
		args = append(args, pgProject)
		query.WriteString(" AND t.project_id = $" + strconv.Itoa(len(args)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+search+"%")
		query.WriteString(" AND t.title ILIKE $" + strconv.Itoa(len(args)))
	}
	query.WriteString(" ORDER BY t.due_date NULLS LAST, t.created_at")

	rows, err := s.pool.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var result []Task
	for rows.Next() {
		var (
			id, projectID, assigneeID pgtype.UUID
			title, status             string
			description, priority     pgtype.Text
			dueDate                   pgtype.Date
			projectName, assigneeName string
			createdAt                 pgtype.Timestamptz
		)
		if err := rows.Scan(&id, &title, &description, &status, &priority, &dueDate,
			&projectID, &projectName, &assigneeID, &assigneeName, &createdAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		task := Task{
			ID:           id.String(),
			Title:        title,
			Description:  dbpkg.TextToString(description),
			Status:       status,
			Priority:     dbpkg.TextToString(priority),
			ProjectName:  projectName,
			AssigneeName: assigneeName,
		}
		if dueDate.Valid {
			task.DueDate = dueDate.Time.Format("2006-01-02")
		}
		if created := dbpkg.TimeFromPg(createdAt); !created.IsZero() {
			task.CreatedAt = created.Format("2006-01-02")
		}
		if projectID.Valid {
			task.ProjectID = projectID.String()
		}
		if assigneeID.Valid {
			task.AssigneeID = assigneeID.String()
		}
		result = append(result, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return result, nil
}

// UpdateStatus sets the status of one task.
func (s *Service) UpdateStatus(ctx context.Context, taskID, status string) error {
	pgID, err := dbpkg.ParseUUID(taskID)
	if err != nil {
		return fmt.Errorf("invalid task id: %w", err)
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE tasks SET status = $2, updated_at = now() WHERE id = $1`,
		pgID, strings.TrimSpace(status),
	)
	if err != nil {
		return fmt.Errorf("update task status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddComment inserts a comment authored by a linked login account.
func (s *Service) AddComment(ctx context.Context, taskID, authorAccountID, content string) error {
	pgTaskID, err := dbpkg.ParseUUID(taskID)
	if err != nil {
		return fmt.Errorf("invalid task id: %w", err)
	}
	pgAuthorID, err := dbpkg.ParseUUID(authorAccountID)
	if err != nil {
		return fmt.Errorf("invalid author id: %w", err)
	}
	if _, err := s.pool.Exec(ctx,
		`INSERT INTO task_comments (task_id, author_user_id, content) VALUES ($1, $2, $3)`,
		pgTaskID, pgAuthorID, strings.TrimSpace(content),
	); err != nil {
		return fmt.Errorf("add task comment: %w", err)
	}
	return nil
}

// Create inserts a new task and returns it.
func (s *Service) Create(ctx context.Context, req CreateRequest) (Task, error) {
	pgCompanyID, err := dbpkg.ParseUUID(req.CompanyID)
	if err != nil {
		return Task{}, fmt.Errorf("invalid company id: %w", err)
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return Task{}, fmt.Errorf("title is required")
	}

	var pgProjectID, pgAssigneeID pgtype.UUID
	if req.ProjectID != "" {
		if pgProjectID, err = dbpkg.ParseUUID(req.ProjectID); err != nil {
			return Task{}, fmt.Errorf("invalid project id: %w", err)
		}
	}
	if req.AssigneeID != "" {
		if pgAssigneeID, err = dbpkg.ParseUUID(req.AssigneeID); err != nil {
			return Task{}, fmt.Errorf("invalid assignee id: %w", err)
		}
	}
	var pgDueDate pgtype.Date
	if due := strings.TrimSpace(req.DueDate); due != "" {
		if err := pgDueDate.Scan(due); err != nil {
			return Task{}, fmt.Errorf("invalid due date (use YYYY-MM-DD): %w", err)
		}
	}
	priority := strings.TrimSpace(req.Priority)
	if priority == "" {
		priority = "media"
	}

	var id pgtype.UUID
	err = s.pool.QueryRow(ctx, `
INSERT INTO tasks (company_id, project_id, title, description, status, priority, due_date, assignee_id)
VALUES ($1, $2, $3, $4, 'pendiente', $5, $6, $7)
RETURNING id`,
		pgCompanyID, pgProjectID, title, strings.TrimSpace(req.Description),
		priority, pgDueDate, pgAssigneeID,
	).Scan(&id)
	if err != nil {
		return Task{}, fmt.Errorf("create task: %w", err)
	}

	task := Task{
		ID:          id.String(),
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Status:      "pendiente",
		Priority:    priority,
		DueDate:     strings.TrimSpace(req.DueDate),
		ProjectID:   req.ProjectID,
		AssigneeID:  req.AssigneeID,
	}
	return task, nil
}

// splitStatuses flattens comma-separated entries and trims blanks.
func splitStatuses(statuses []string) []string {
	var result []string
	for _, raw := range statuses {
		for _, part := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
	}
	return result
}
