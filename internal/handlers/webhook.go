// Package handlers contains the HTTP endpoints: the WhatsApp webhook and
// liveness probes.
package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/obralink/obrabot/internal/engine"
	"github.com/obralink/obrabot/internal/wire"
)

// Processor runs the message pipeline for one webhook body.
type Processor interface {
	Process(ctx context.Context, body []byte) (engine.Decision, error)
}

// statusResponse is the 200 body for business outcomes. Reason is present on
// ignored outcomes only.
type statusResponse struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// WebhookHandler receives messaging-provider callbacks. Business outcomes all
// answer 200 so the provider never retries a message we already decided on;
// only malformed bodies get 400 and genuine failures 500.
type WebhookHandler struct {
	logger    *slog.Logger
	processor Processor
	timeout   time.Duration
}

// NewWebhookHandler creates the webhook handler. timeout bounds the full
// pipeline run for one request, model rounds and delivery pacing included.
func NewWebhookHandler(log *slog.Logger, processor Processor, timeout time.Duration) *WebhookHandler {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &WebhookHandler{
		logger:    log.With(slog.String("handler", "webhook")),
		processor: processor,
		timeout:   timeout,
	}
}

// Register mounts POST /webhook/whatsapp on the Echo instance.
func (h *WebhookHandler) Register(e *echo.Echo) {
	e.POST("/webhook/whatsapp", h.Receive)
}

// Receive handles one provider callback.
func (h *WebhookHandler) Receive(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "unreadable body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	decision, err := h.processor.Process(ctx, body)
	if err != nil {
		if errors.Is(err, wire.ErrUnknownShape) {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "unrecognized payload shape"})
		}
		h.logger.Error("webhook processing failed", slog.Any("error", err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "internal error"})
	}

	return c.JSON(http.StatusOK, statusResponse{
		Status: string(decision.Outcome),
		Reason: decision.Reason,
	})
}
