package wire

import (
	"encoding/json"
	"strings"
)

// relayPayload is the pre-normalized shape posted by the automation gateway.
type relayPayload struct {
	UserID   string          `json:"userId"`
	Text     string          `json:"text"`
	Name     string          `json:"name"`
	Instance string          `json:"instance"`
	Raw      json.RawMessage `json:"raw"`
}

// providerPayload is the raw messaging-provider webhook shape.
type providerPayload struct {
	Instance string       `json:"instance"`
	Data     providerData `json:"data"`
}

type providerData struct {
	Key         providerKey     `json:"key"`
	PushName    string          `json:"pushName"`
	MessageType string          `json:"messageType"`
	Message     providerMessage `json:"message"`
}

type providerKey struct {
	RemoteJid string `json:"remoteJid"`
	ID        string `json:"id"`
	FromMe    bool   `json:"fromMe"`
}

type providerMessage struct {
	Conversation        string `json:"conversation"`
	ExtendedTextMessage struct {
		Text string `json:"text"`
	} `json:"extendedTextMessage"`
	AudioMessage json.RawMessage `json:"audioMessage"`
}

// Normalize produces an InboundMessage from either supported body shape.
// Recognized payloads without usable text yield ErrNoContent alongside the
// sender and instance fields that could be extracted, so callers can still
// record the drop; bodies matching neither shape yield ErrUnknownShape.
func Normalize(body []byte) (InboundMessage, error) {
	var relay relayPayload
	if err := json.Unmarshal(body, &relay); err == nil && strings.TrimSpace(relay.UserID) != "" {
		return normalizeRelay(relay)
	}

	var provider providerPayload
	if err := json.Unmarshal(body, &provider); err == nil && strings.TrimSpace(provider.Data.Key.RemoteJid) != "" {
		return normalizeProvider(provider)
	}

	return InboundMessage{}, ErrUnknownShape
}

func normalizeRelay(relay relayPayload) (InboundMessage, error) {
	msg := InboundMessage{
		SenderJID:   strings.TrimSpace(relay.UserID),
		PhoneDigits: phoneDigits(relay.UserID),
		DisplayName: strings.TrimSpace(relay.Name),
		Body:        strings.TrimSpace(relay.Text),
		Kind:        KindText,
		Instance:    strings.TrimSpace(relay.Instance),
	}

	// The gateway may embed the original provider payload; use it for the
	// instance and message id when the top-level fields are missing.
	if len(relay.Raw) > 0 {
		var embedded providerPayload
		if err := json.Unmarshal(relay.Raw, &embedded); err == nil {
			if msg.Instance == "" {
				msg.Instance = strings.TrimSpace(embedded.Instance)
			}
			msg.ProviderMessageID = strings.TrimSpace(embedded.Data.Key.ID)
		}
	}

	if msg.Body == "" {
		return msg, ErrNoContent
	}
	return msg, nil
}

func normalizeProvider(provider providerPayload) (InboundMessage, error) {
	data := provider.Data
	msg := InboundMessage{
		SenderJID:         strings.TrimSpace(data.Key.RemoteJid),
		PhoneDigits:       phoneDigits(data.Key.RemoteJid),
		DisplayName:       strings.TrimSpace(data.PushName),
		Instance:          strings.TrimSpace(provider.Instance),
		ProviderMessageID: strings.TrimSpace(data.Key.ID),
	}

	if data.Key.FromMe {
		// The provider echoes the instance's own outbound messages back.
		return msg, ErrNoContent
	}

	switch data.MessageType {
	case "conversation":
		msg.Kind = KindText
		msg.Body = strings.TrimSpace(data.Message.Conversation)
	case "extendedTextMessage":
		msg.Kind = KindText
		msg.Body = strings.TrimSpace(data.Message.ExtendedTextMessage.Text)
	case "audioMessage":
		msg.Kind = KindAudio
		msg.Body = TranscriptionNotice
	default:
		msg.Kind = KindUnsupported
	}

	if msg.Body == "" {
		return msg, ErrNoContent
	}
	return msg, nil
}

// IsDebugCommand reports whether the body is the literal diagnostic command.
func IsDebugCommand(body string) bool {
	return strings.EqualFold(strings.TrimSpace(body), "debug")
}

// phoneDigits extracts the digits of the JID user part (before "@").
func phoneDigits(jid string) string {
	user := jid
	if at := strings.Index(jid, "@"); at >= 0 {
		user = jid[:at]
	}
	var b strings.Builder
	for _, r := range user {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
