// Package announce fans call events out to Redis so sibling processes can
// observe calls without attaching to this process.
package announce

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"callwatch/internal/call"
	"callwatch/internal/stream"

	"github.com/redis/go-redis/v9"
)

// Publisher republishes every call event as JSON on a Redis channel.
// Delivery is best-effort: publish failures are logged and skipped.
type Publisher struct {
	RDB     *redis.Client
	Channel string
	Log     *slog.Logger
}

type payload struct {
	CallID      string    `json:"call_id"`
	PlatformID  string    `json:"platform_id,omitempty"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	Placement   string    `json:"placement"`
	Status      string    `json:"status"`
	At          time.Time `json:"at"`
}

// Encode builds the wire payload for one call event.
func Encode(ev call.Event) ([]byte, error) {
	return json.Marshal(payload{
		CallID:      ev.Call.LocalID(),
		PlatformID:  ev.Call.PlatformID(),
		PhoneNumber: ev.Call.PhoneNumber(),
		Placement:   string(ev.Call.Placement()),
		Status:      string(ev.Status),
		At:          ev.At,
	})
}

// Run drains the subscription until ctx is cancelled or the stream closes.
func (p *Publisher) Run(ctx context.Context, sub *stream.Subscription[call.Event]) {
	defer sub.Cancel()
	log := p.Log
	if log == nil {
		log = slog.Default()
	}
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			b, err := Encode(ev)
			if err != nil {
				log.Warn("event encode failed", "err", err)
				continue
			}
			if err := p.RDB.Publish(ctx, p.Channel, b).Err(); err != nil {
				log.Warn("event publish failed", "channel", p.Channel, "err", err)
			}
		}
	}
}
