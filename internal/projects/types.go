package projects

// Project is a project row shaped for the assistant.
type Project struct {
	ID        string `json:"id"`
	Name      string `json:"nombre"`
	Status    string `json:"estado,omitempty"`
	Location  string `json:"ubicacion,omitempty"`
	StartDate string `json:"fecha_inicio,omitempty"`
	EndDate   string `json:"fecha_fin,omitempty"`
}
