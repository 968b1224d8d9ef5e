package tasks

import "errors"

// ErrNotFound means the task id matched no row.
var ErrNotFound = errors.New("task not found")

// Task is a task row shaped for the assistant: field names here are what the
// model sees when results are serialized.
type Task struct {
	ID           string `json:"id"`
	Title        string `json:"titulo"`
	Description  string `json:"descripcion,omitempty"`
	Status       string `json:"estado"`
	Priority     string `json:"prioridad,omitempty"`
	DueDate      string `json:"fecha_limite,omitempty"`
	ProjectID    string `json:"proyecto_id,omitempty"`
	ProjectName  string `json:"proyecto,omitempty"`
	AssigneeID   string `json:"asignado_id,omitempty"`
	AssigneeName string `json:"asignado,omitempty"`
	CreatedAt    string `json:"creada_en,omitempty"`
}

// ListFilter narrows a task listing. Statuses supports multi-status queries;
// Search is a fuzzy match on the title. AssigneeID scopes the listing to one
// participant (empty means company-wide).
type ListFilter struct {
	CompanyID  string
	AssigneeID string
	Statuses   []string
	ProjectID  string
	Search     string
}

// CreateRequest holds the fields for a new task.
type CreateRequest struct {
	CompanyID   string
	Title       string
	Description string
	ProjectID   string
	AssigneeID  string
	DueDate     string
	Priority    string
}
