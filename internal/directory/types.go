package directory

import "errors"

// ErrNotFound means no participant matched any phone candidate.
var ErrNotFound = errors.New("participant not found")

// Role is the collapsed authorization role used for prompt selection and
// tool dispatch. Stored roles richer than this pair map onto it.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleParticipant Role = "participant"
)

// Identity is the resolved sender of an inbound message. AccountID is empty
// when the participant has no linked login yet.
type Identity struct {
	ParticipantID string
	AccountID     string
	CompanyID     string
	CompanyName   string
	Role          Role
	DisplayName   string
}

// IsAdmin reports whether the identity holds the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
