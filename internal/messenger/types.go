package messenger

import "errors"

// ErrNoInstance means the delivery carried no messaging instance name. Sends
// without an instance would hit the platform's default channel, so they are
// refused outright.
var ErrNoInstance = errors.New("messaging instance is required")

// Delivery is one outbound reply: where to send it, through which instance,
// and which inbound message to acknowledge first.
type Delivery struct {
	Instance     string
	APIKey       string
	TargetJID    string
	Text         string
	AckMessageID string
}
