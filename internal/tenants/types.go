package tenants

import "errors"

// ErrNotFound means no company configuration matched the lookup.
var ErrNotFound = errors.New("tenant settings not found")

// Policy is the per-company messaging configuration read once per request.
// It is immutable for the lifetime of one inbound message.
type Policy struct {
	CompanyID        string
	Instance         string
	InstanceAPIKey   string
	AssistantEnabled bool
	ReplyToUnknown   bool
}
