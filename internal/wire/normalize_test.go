package wire

import (
	"errors"
	"testing"
)

func TestNormalizeProviderText(t *testing.T) {
	body := `{
		"instance": "obra-norte",
		"data": {
			"key": {"remoteJid": "5491155550000@s.whatsapp.net", "id": "MSG1", "fromMe": false},
			"pushName": "Bruno",
			"messageType": "conversation",
			"message": {"conversation": " qué tengo hoy? "}
		}
	}`
	msg, err := Normalize([]byte(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Kind != KindText {
		t.Fatalf("want text, got %s", msg.Kind)
	}
	if msg.Body != "qué tengo hoy?" {
		t.Fatalf("body not trimmed: %q", msg.Body)
	}
	if msg.PhoneDigits != "5491155550000" {
		t.Fatalf("unexpected digits: %q", msg.PhoneDigits)
	}
	if msg.Instance != "obra-norte" || msg.ProviderMessageID != "MSG1" || msg.DisplayName != "Bruno" {
		t.Fatalf("unexpected message: %+v", msg)
	}
}

func TestNormalizeProviderExtendedText(t *testing.T) {
	body := `{
		"instance": "obra-norte",
		"data": {
			"key": {"remoteJid": "5491155550000@s.whatsapp.net", "id": "MSG2", "fromMe": false},
			"messageType": "extendedTextMessage",
			"message": {"extendedTextMessage": {"text": "avance del muro"}}
		}
	}`
	msg, err := Normalize([]byte(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Kind != KindText || msg.Body != "avance del muro" {
		t.Fatalf("unexpected message: %+v", msg)
	}
}

func TestNormalizeRelayShape(t *testing.T) {
	body := `{
		"userId": "5491155550000@s.whatsapp.net",
		"text": "dame mis tareas",
		"name": "Bruno",
		"raw": {
			"instance": "obra-norte",
			"data": {"key": {"remoteJid": "5491155550000@s.whatsapp.net", "id": "MSG3"}}
		}
	}`
	msg, err := Normalize([]byte(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Body != "dame mis tareas" {
		t.Fatalf("unexpected body: %q", msg.Body)
	}
	if msg.Instance != "obra-norte" {
		t.Fatalf("instance must come from the embedded raw payload, got %q", msg.Instance)
	}
	if msg.ProviderMessageID != "MSG3" {
		t.Fatalf("message id must come from the embedded raw payload, got %q", msg.ProviderMessageID)
	}
}

func TestNormalizeShapesAreEquivalent(t *testing.T) {
	provider := `{
		"instance": "obra-norte",
		"data": {
			"key": {"remoteJid": "5491155550000@s.whatsapp.net", "id": "MSG4", "fromMe": false},
			"pushName": "Bruno",
			"messageType": "conversation",
			"message": {"conversation": "hola"}
		}
	}`
	relay := `{
		"userId": "5491155550000@s.whatsapp.net",
		"text": "hola",
		"name": "Bruno",
		"instance": "obra-norte",
		"raw": {"data": {"key": {"remoteJid": "5491155550000@s.whatsapp.net", "id": "MSG4"}}}
	}`

	a, err := Normalize([]byte(provider))
	if err != nil {
		t.Fatalf("provider shape: %v", err)
	}
	b, err := Normalize([]byte(relay))
	if err != nil {
		t.Fatalf("relay shape: %v", err)
	}
	if a != b {
		t.Fatalf("shapes must normalize identically:\nprovider: %+v\nrelay:    %+v", a, b)
	}
}

func TestNormalizeAudioMessage(t *testing.T) {
	body := `{
		"instance": "obra-norte",
		"data": {
			"key": {"remoteJid": "5491155550000@s.whatsapp.net", "id": "MSG5", "fromMe": false},
			"messageType": "audioMessage",
			"message": {"audioMessage": {"seconds": 12}}
		}
	}`
	msg, err := Normalize([]byte(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Kind != KindAudio {
		t.Fatalf("want audio, got %s", msg.Kind)
	}
	if msg.Body != TranscriptionNotice {
		t.Fatalf("audio body must be the exact notice, got %q", msg.Body)
	}
}

func TestNormalizeFromMe(t *testing.T) {
	body := `{
		"instance": "obra-norte",
		"data": {
			"key": {"remoteJid": "5491155550000@s.whatsapp.net", "id": "MSG6", "fromMe": true},
			"messageType": "conversation",
			"message": {"conversation": "eco propio"}
		}
	}`
	msg, err := Normalize([]byte(body))
	if !errors.Is(err, ErrNoContent) {
		t.Fatalf("own outbound echo must be ErrNoContent, got %v", err)
	}
	if msg.Instance != "obra-norte" || msg.SenderJID != "5491155550000@s.whatsapp.net" {
		t.Fatalf("sender and instance must survive for the audit trail: %+v", msg)
	}
}

func TestNormalizeNoText(t *testing.T) {
	body := `{
		"instance": "obra-norte",
		"data": {
			"key": {"remoteJid": "5491155550000@s.whatsapp.net", "id": "MSG7", "fromMe": false},
			"messageType": "imageMessage",
			"message": {}
		}
	}`
	msg, err := Normalize([]byte(body))
	if !errors.Is(err, ErrNoContent) {
		t.Fatalf("unsupported media must be ErrNoContent, got %v", err)
	}
	if msg.Instance != "obra-norte" || msg.PhoneDigits != "5491155550000" {
		t.Fatalf("sender and instance must survive for the audit trail: %+v", msg)
	}
}

func TestNormalizeUnknownShape(t *testing.T) {
	for _, body := range []string{`{"event":"status"}`, `[]`, `not json`, `{}`} {
		if _, err := Normalize([]byte(body)); !errors.Is(err, ErrUnknownShape) {
			t.Fatalf("body %q: want ErrUnknownShape, got %v", body, err)
		}
	}
}

func TestIsDebugCommand(t *testing.T) {
	tests := []struct {
		body string
		want bool
	}{
		{"debug", true},
		{"DEBUG", true},
		{"  Debug  ", true},
		{"debug info", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsDebugCommand(tt.body); got != tt.want {
			t.Fatalf("IsDebugCommand(%q) = %v, want %v", tt.body, got, tt.want)
		}
	}
}
