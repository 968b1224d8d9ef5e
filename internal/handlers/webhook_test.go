package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/obralink/obrabot/internal/engine"
	"github.com/obralink/obrabot/internal/wire"
)

type stubProcessor struct {
	decision engine.Decision
	err      error
	sawCtx   context.Context
}

func (s *stubProcessor) Process(ctx context.Context, _ []byte) (engine.Decision, error) {
	s.sawCtx = ctx
	return s.decision, s.err
}

func doWebhook(t *testing.T, processor Processor, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	h := NewWebhookHandler(slog.Default(), processor, time.Minute)
	h.Register(e)

	req := httptest.NewRequest(http.MethodPost, "/webhook/whatsapp", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestWebhookBusinessOutcomesAre200(t *testing.T) {
	for _, outcome := range []engine.Outcome{
		engine.OutcomeReplied,
		engine.OutcomeIgnored,
		engine.OutcomeUnauthorized,
	} {
		rec := doWebhook(t, &stubProcessor{decision: engine.Decision{Outcome: outcome}}, `{}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("outcome %s: want 200, got %d", outcome, rec.Code)
		}
		var resp map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("outcome %s: invalid JSON body: %v", outcome, err)
		}
		if resp["status"] != string(outcome) {
			t.Fatalf("outcome %s: unexpected body %v", outcome, resp)
		}
		if _, present := resp["reason"]; present {
			t.Fatalf("outcome %s: reason must be omitted when empty, body %v", outcome, resp)
		}
	}
}

func TestWebhookIgnoredCarriesReason(t *testing.T) {
	stub := &stubProcessor{decision: engine.Decision{
		Outcome: engine.OutcomeIgnored,
		Reason:  "unknown sender",
	}}
	rec := doWebhook(t, stub, `{}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if resp["status"] != "ignored" || resp["reason"] != "unknown sender" {
		t.Fatalf("unexpected body %v", resp)
	}
}

func TestWebhookUnknownShapeIs400(t *testing.T) {
	rec := doWebhook(t, &stubProcessor{err: wire.ErrUnknownShape}, `{"foo":1}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", rec.Code)
	}
}

func TestWebhookUnexpectedErrorIs500(t *testing.T) {
	rec := doWebhook(t, &stubProcessor{err: errors.New("db down")}, `{}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("want 500, got %d", rec.Code)
	}
}

func TestWebhookAppliesTimeout(t *testing.T) {
	processor := &stubProcessor{decision: engine.Decision{Outcome: engine.OutcomeIgnored}}
	doWebhook(t, processor, `{}`)
	if processor.sawCtx == nil {
		t.Fatal("processor never ran")
	}
	if _, ok := processor.sawCtx.Deadline(); !ok {
		t.Fatal("pipeline context must carry a deadline")
	}
}

func TestPingHandler(t *testing.T) {
	e := echo.New()
	NewPingHandler(slog.Default()).Register(e)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}
}
