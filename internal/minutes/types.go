package minutes

// Minute is a meeting-minute row shaped for the assistant.
type Minute struct {
	ID          string `json:"id"`
	Title       string `json:"titulo"`
	MeetingDate string `json:"fecha,omitempty"`
	ProjectName string `json:"proyecto,omitempty"`
	Summary     string `json:"resumen,omitempty"`
}
