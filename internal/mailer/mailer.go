// Package mailer is the confirmation-dispatch boundary. Registration hands
// over (email, token) and returns immediately; delivery retries happen here,
// never in the caller.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/avdonin/shop_backend/internal/mykafka"
)

const (
	maxAttempts = 3
	retryDelay  = time.Minute
)

// Dispatcher is what the session manager depends on; tests stub it.
type Dispatcher interface {
	SendConfirmation(email, token string)
}

// KafkaDispatcher publishes confirmation jobs to the email topic where the
// delivery worker picks them up.
type KafkaDispatcher struct {
	Producer    *mykafka.Producer
	Topic       string
	FrontendURL string
	Log         *slog.Logger

	// sleep is swapped out in tests.
	sleep func(time.Duration)
}

func NewKafkaDispatcher(p *mykafka.Producer, topic, frontendURL string, log *slog.Logger) *KafkaDispatcher {
	return &KafkaDispatcher{
		Producer:    p,
		Topic:       topic,
		FrontendURL: frontendURL,
		Log:         log,
		sleep:       time.Sleep,
	}
}

// SendConfirmation is fire and forget: the publish attempts run on their own
// goroutine with a bounded retry, independent of the request that triggered
// registration.
func (d *KafkaDispatcher) SendConfirmation(email, token string) {
	job := map[string]interface{}{
		"type":    "confirmation_email",
		"to":      email,
		"subject": "Confirm your registration",
		"link":    fmt.Sprintf("%s/api/auth/confirm/%s", d.FrontendURL, token),
	}

	go func() {
		var err error
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			err = d.Producer.PublishEvent(ctx, d.Topic, email, job)
			cancel()
			if err == nil {
				return
			}
			d.Log.Warn("confirmation dispatch failed",
				"to", email, "attempt", attempt, "error", err)
			if attempt < maxAttempts {
				d.sleep(retryDelay)
			}
		}
		d.Log.Error("confirmation dispatch gave up", "to", email, "error", err)
	}()
}
