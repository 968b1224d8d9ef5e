package messenger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	typingPerRune = 55 * time.Millisecond
	typingMin     = 1500 * time.Millisecond
	typingMax     = 8 * time.Second
)

// platformAPI is the slice of the platform client the deliverer needs.
type platformAPI interface {
	ConnectionState(ctx context.Context, instance, apiKey string) (string, error)
	MarkRead(ctx context.Context, instance, apiKey, remoteJID, messageID string) error
	SendPresence(ctx context.Context, instance, apiKey, remoteJID string, durationMs int) error
	SendText(ctx context.Context, instance, apiKey, remoteJID, text string) error
}

// Deliverer sends replies with human pacing: mark the inbound message read,
// show a typing indicator, wait proportionally to the reply length, then send.
// Only the final send can fail a delivery; the read receipt and presence are
// best effort.
type Deliverer struct {
	api    platformAPI
	logger *slog.Logger
	sleep  func(ctx context.Context, d time.Duration) error

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	sendRate rate.Limit
}

// NewDeliverer creates a deliverer. sendRate is sends per second per instance.
func NewDeliverer(log *slog.Logger, api platformAPI, sendRate float64) *Deliverer {
	if log == nil {
		log = slog.Default()
	}
	if sendRate <= 0 {
		sendRate = 1
	}
	return &Deliverer{
		api:      api,
		logger:   log.With(slog.String("service", "messenger")),
		sleep:    sleepContext,
		limiters: make(map[string]*rate.Limiter),
		sendRate: rate.Limit(sendRate),
	}
}

// Deliver sends one reply. An empty instance aborts before any platform call.
func (d *Deliverer) Deliver(ctx context.Context, delivery Delivery) error {
	instance := strings.TrimSpace(delivery.Instance)
	if instance == "" {
		return ErrNoInstance
	}

	if err := d.limiter(instance).Wait(ctx); err != nil {
		return fmt.Errorf("send rate wait: %w", err)
	}

	// A stale session usually still accepts the send after a reconnect, so a
	// bad state is only logged.
	if state, err := d.api.ConnectionState(ctx, instance, delivery.APIKey); err != nil {
		d.logger.Warn("connection state check failed", slog.String("instance", instance), slog.Any("error", err))
	} else if state != "open" {
		d.logger.Warn("instance not connected", slog.String("instance", instance), slog.String("state", state))
	}

	if delivery.AckMessageID != "" {
		if err := d.api.MarkRead(ctx, instance, delivery.APIKey, delivery.TargetJID, delivery.AckMessageID); err != nil {
			d.logger.Warn("mark read failed", slog.String("instance", instance), slog.Any("error", err))
		}
	}

	delay := TypingDelay(delivery.Text)
	if err := d.api.SendPresence(ctx, instance, delivery.APIKey, delivery.TargetJID, int(delay.Milliseconds())); err != nil {
		d.logger.Warn("send presence failed", slog.String("instance", instance), slog.Any("error", err))
	}
	if err := d.sleep(ctx, delay); err != nil {
		return err
	}

	if err := d.api.SendText(ctx, instance, delivery.APIKey, delivery.TargetJID, delivery.Text); err != nil {
		return fmt.Errorf("send text: %w", err)
	}
	d.logger.Info("reply sent",
		slog.String("instance", instance),
		slog.String("target", delivery.TargetJID),
		slog.Int("chars", len([]rune(delivery.Text))),
	)
	return nil
}

func (d *Deliverer) limiter(instance string) *rate.Limiter {
	d.mu.Lock()
	defer d.mu.Unlock()
	lim, ok := d.limiters[instance]
	if !ok {
		lim = rate.NewLimiter(d.sendRate, 1)
		d.limiters[instance] = lim
	}
	return lim
}

// TypingDelay converts reply length into a simulated typing duration,
// clamped so short replies still pause and long ones do not stall the chat.
func TypingDelay(text string) time.Duration {
	delay := time.Duration(len([]rune(text))) * typingPerRune
	if delay < typingMin {
		return typingMin
	}
	if delay > typingMax {
		return typingMax
	}
	return delay
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
