// Package wire normalizes inbound webhook payloads into a single message record.
//
// Two body shapes are accepted: the relay shape produced by the automation
// gateway ({userId, text, name, ...}) and the raw messaging-provider webhook
// ({instance, data:{key, pushName, messageType, message}}). Everything past
// this package works on InboundMessage only.
package wire

import "errors"

// Kind classifies the content of an inbound message.
type Kind string

const (
	KindText        Kind = "text"
	KindAudio       Kind = "audio"
	KindUnsupported Kind = "unsupported"
)

var (
	// ErrNoContent means the payload was recognized but carries no usable text.
	// The pipeline acknowledges these with 200 so the provider does not retry.
	ErrNoContent = errors.New("no text content")
	// ErrUnknownShape means the body matches neither supported payload shape.
	ErrUnknownShape = errors.New("unrecognized payload shape")
)

// TranscriptionNotice replaces the body of audio messages. Speech-to-text is
// not run in-process; instances that need it must point their webhook at the
// external transcription relay, which re-posts the transcript as plain text.
const TranscriptionNotice = "[Nota del sistema: el usuario envió un mensaje de audio. " +
	"La transcripción no está disponible en este canal; el webhook de la instancia " +
	"debe apuntar al relay de transcripción para habilitarla. Respondé indicando que " +
	"por ahora solo podés procesar mensajes de texto.]"

// InboundMessage is the normalized per-request message record. It is never
// persisted by the webhook itself, only logged.
type InboundMessage struct {
	SenderJID         string
	PhoneDigits       string
	DisplayName       string
	Body              string
	Kind              Kind
	Instance          string
	ProviderMessageID string
}
