package audit

// Status is the terminal classification of one inbound message.
type Status string

const (
	StatusReplied      Status = "replied"
	StatusIgnored      Status = "ignored"
	StatusUnauthorized Status = "unauthorized"
	StatusError        Status = "error"
)

// Entry is one audit row. CompanyID and ParticipantID stay empty for senders
// that never resolved to a tenant.
type Entry struct {
	Instance      string
	SenderJID     string
	Phone         string
	Body          string
	Status        Status
	ErrorDetail   string
	CompanyID     string
	ParticipantID string
	Metadata      map[string]any
}
