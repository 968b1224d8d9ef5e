package tools

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/obralink/obrabot/internal/directory"
	"github.com/obralink/obrabot/internal/minutes"
	"github.com/obralink/obrabot/internal/projects"
	"github.com/obralink/obrabot/internal/tasks"
)

// TaskStore is the slice of the tasks service the tools need.
type TaskStore interface {
	List(ctx context.Context, filter tasks.ListFilter) ([]tasks.Task, error)
	UpdateStatus(ctx context.Context, taskID, status string) error
	AddComment(ctx context.Context, taskID, authorAccountID, content string) error
	Create(ctx context.Context, req tasks.CreateRequest) (tasks.Task, error)
}

// ProjectStore lists project assignments.
type ProjectStore interface {
	ListByParticipant(ctx context.Context, companyID, participantID string) ([]projects.Project, error)
}

// MinuteStore lists meeting minutes by attendee.
type MinuteStore interface {
	ListByAttendee(ctx context.Context, companyID, participantID string) ([]minutes.Minute, error)
}

// NewDefaultRegistry builds the registry with the full tool set wired to the
// given stores.
func NewDefaultRegistry(log *slog.Logger, taskStore TaskStore, projectStore ProjectStore, minuteStore MinuteStore) *Registry {
	r := NewRegistry(log)
	r.Register(getTasksTool(taskStore))
	r.Register(updateTaskStatusTool(taskStore))
	r.Register(addTaskCommentTool(taskStore))
	r.Register(getProjectsTool(projectStore))
	r.Register(getMinutesTool(minuteStore))
	r.Register(createTaskTool(taskStore))
	return r
}

// statusList accepts both a JSON array and a plain string, since models emit
// either form for the estados argument. Comma-separated entries are split
// downstream by the task listing.
type statusList []string

func (s *statusList) UnmarshalJSON(raw []byte) error {
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		*s = list
		return nil
	}
	var single string
	if err := json.Unmarshal(raw, &single); err != nil {
		return err
	}
	*s = []string{single}
	return nil
}

type getTasksArgs struct {
	Statuses  statusList `json:"estados"`
	ProjectID string     `json:"proyecto_id"`
	Search    string     `json:"buscar"`
}

func getTasksTool(store TaskStore) Tool {
	return Tool{
		Name:        "get_tasks",
		Description: "Lista las tareas. Los administradores ven todas las tareas de la empresa; los demás usuarios ven solo las tareas asignadas a ellos. Permite filtrar por estado, proyecto y texto del título.",
		Schema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"estados": {
					Type:        "array",
					Description: "Estados a incluir, por ejemplo pendiente, en_progreso, completada.",
					Items:       &jsonschema.Schema{Type: "string"},
				},
				"proyecto_id": {
					Type:        "string",
					Description: "Limitar a un proyecto por su id.",
				},
				"buscar": {
					Type:        "string",
					Description: "Texto a buscar en el título de la tarea.",
				},
			},
		},
		Handler: func(ctx context.Context, identity directory.Identity, raw json.RawMessage) Result {
			var args getTasksArgs
			if err := decodeArgs(raw, &args); err != nil {
				return Failure("argumentos inválidos: " + err.Error())
			}
			filter := tasks.ListFilter{
				CompanyID: identity.CompanyID,
				Statuses:  []string(args.Statuses),
				ProjectID: args.ProjectID,
				Search:    args.Search,
			}
			if !identity.IsAdmin() {
				filter.AssigneeID = identity.ParticipantID
			}
			list, err := store.List(ctx, filter)
			if err != nil {
				return Failure("no se pudieron consultar las tareas: " + err.Error())
			}
			if len(list) == 0 {
				return SuccessMessage("no hay tareas que coincidan con la búsqueda")
			}
			return Success(list)
		},
	}
}

type updateTaskStatusArgs struct {
	TaskID string `json:"task_id"`
	Status string `json:"estado"`
}

func updateTaskStatusTool(store TaskStore) Tool {
	return Tool{
		Name:        "update_task_status",
		Description: "Cambia el estado de una tarea existente. Usar el id obtenido con get_tasks.",
		Schema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"task_id": {
					Type:        "string",
					Description: "Id de la tarea a actualizar.",
				},
				"estado": {
					Type:        "string",
					Description: "Nuevo estado, por ejemplo pendiente, en_progreso, completada.",
				},
			},
			Required: []string{"task_id", "estado"},
		},
		Handler: func(ctx context.Context, identity directory.Identity, raw json.RawMessage) Result {
			var args updateTaskStatusArgs
			if err := decodeArgs(raw, &args); err != nil {
				return Failure("argumentos inválidos: " + err.Error())
			}
			if args.TaskID == "" || args.Status == "" {
				return Failure("task_id y estado son obligatorios")
			}
			if err := store.UpdateStatus(ctx, args.TaskID, args.Status); err != nil {
				if errors.Is(err, tasks.ErrNotFound) {
					return Failure("no existe una tarea con ese id")
				}
				return Failure("no se pudo actualizar la tarea: " + err.Error())
			}
			return SuccessMessage("estado actualizado a " + args.Status)
		},
	}
}

type addTaskCommentArgs struct {
	TaskID  string `json:"task_id"`
	Content string `json:"contenido"`
}

func addTaskCommentTool(store TaskStore) Tool {
	return Tool{
		Name:        "add_task_comment",
		Description: "Agrega un comentario a una tarea. Solo disponible para usuarios con cuenta vinculada en la plataforma.",
		Schema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"task_id": {
					Type:        "string",
					Description: "Id de la tarea a comentar.",
				},
				"contenido": {
					Type:        "string",
					Description: "Texto del comentario.",
				},
			},
			Required: []string{"task_id", "contenido"},
		},
		Handler: func(ctx context.Context, identity directory.Identity, raw json.RawMessage) Result {
			if identity.AccountID == "" {
				return Failure("tu número no está vinculado a una cuenta de la plataforma, no es posible comentar tareas")
			}
			var args addTaskCommentArgs
			if err := decodeArgs(raw, &args); err != nil {
				return Failure("argumentos inválidos: " + err.Error())
			}
			if args.TaskID == "" || args.Content == "" {
				return Failure("task_id y contenido son obligatorios")
			}
			if err := store.AddComment(ctx, args.TaskID, identity.AccountID, args.Content); err != nil {
				return Failure("no se pudo agregar el comentario: " + err.Error())
			}
			return SuccessMessage("comentario agregado")
		},
	}
}

func getProjectsTool(store ProjectStore) Tool {
	return Tool{
		Name:        "get_projects",
		Description: "Lista los proyectos en los que el usuario está asignado.",
		Schema: &jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{},
		},
		Handler: func(ctx context.Context, identity directory.Identity, _ json.RawMessage) Result {
			list, err := store.ListByParticipant(ctx, identity.CompanyID, identity.ParticipantID)
			if err != nil {
				return Failure("no se pudieron consultar los proyectos: " + err.Error())
			}
			if len(list) == 0 {
				return SuccessMessage("no estás asignado a ningún proyecto")
			}
			return Success(list)
		},
	}
}

func getMinutesTool(store MinuteStore) Tool {
	return Tool{
		Name:        "get_minutes",
		Description: "Lista las minutas de reunión donde el usuario figura como asistente, de la más reciente a la más antigua.",
		Schema: &jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{},
		},
		Handler: func(ctx context.Context, identity directory.Identity, _ json.RawMessage) Result {
			list, err := store.ListByAttendee(ctx, identity.CompanyID, identity.ParticipantID)
			if err != nil {
				return Failure("no se pudieron consultar las minutas: " + err.Error())
			}
			if len(list) == 0 {
				return SuccessMessage("no hay minutas con tu asistencia registrada")
			}
			return Success(list)
		},
	}
}

type createTaskArgs struct {
	Title       string `json:"titulo"`
	Description string `json:"descripcion"`
	ProjectID   string `json:"proyecto_id"`
	AssigneeID  string `json:"asignado_id"`
	DueDate     string `json:"fecha_limite"`
	Priority    string `json:"prioridad"`
}

func createTaskTool(store TaskStore) Tool {
	return Tool{
		Name:        "create_task",
		Description: "Crea una tarea nueva. Solo disponible para administradores.",
		Schema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"titulo": {
					Type:        "string",
					Description: "Título de la tarea.",
				},
				"descripcion": {
					Type:        "string",
					Description: "Descripción detallada.",
				},
				"proyecto_id": {
					Type:        "string",
					Description: "Id del proyecto al que pertenece.",
				},
				"asignado_id": {
					Type:        "string",
					Description: "Id del participante asignado.",
				},
				"fecha_limite": {
					Type:        "string",
					Description: "Fecha límite en formato YYYY-MM-DD.",
				},
				"prioridad": {
					Type:        "string",
					Description: "Prioridad: baja, media o alta.",
				},
			},
			Required: []string{"titulo"},
		},
		AdminOnly: true,
		Handler: func(ctx context.Context, identity directory.Identity, raw json.RawMessage) Result {
			var args createTaskArgs
			if err := decodeArgs(raw, &args); err != nil {
				return Failure("argumentos inválidos: " + err.Error())
			}
			if args.Title == "" {
				return Failure("el título es obligatorio")
			}
			task, err := store.Create(ctx, tasks.CreateRequest{
				CompanyID:   identity.CompanyID,
				Title:       args.Title,
				Description: args.Description,
				ProjectID:   args.ProjectID,
				AssigneeID:  args.AssigneeID,
				DueDate:     args.DueDate,
				Priority:    args.Priority,
			})
			if err != nil {
				return Failure("no se pudo crear la tarea: " + err.Error())
			}
			return Success(task)
		},
	}
}

// decodeArgs tolerates empty or absent argument payloads.
func decodeArgs(raw json.RawMessage, dest any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dest)
}
