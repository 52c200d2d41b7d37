package call

import (
	"fmt"
	"strings"
)

// EventType classifies a raw platform notification. The platform gives no
// stronger signal than this enum plus, sometimes, an id and a number.
type EventType string

const (
	EventInbound      EventType = "inbound"
	EventOutbound     EventType = "outbound"
	EventConnected    EventType = "connected"
	EventDisconnected EventType = "disconnected"
)

// ParseEventType rejects anything outside the four known notification types.
func ParseEventType(s string) (EventType, error) {
	switch t := EventType(strings.TrimSpace(s)); t {
	case EventInbound, EventOutbound, EventConnected, EventDisconnected:
		return t, nil
	default:
		return "", fmt.Errorf("call: unknown event type %q", s)
	}
}

// IsNewCall reports whether a notification of this type can start a call on
// its own. Stray connected/disconnected notifications cannot.
func (t EventType) IsNewCall() bool {
	return t == EventInbound || t == EventOutbound
}

// RawEvent is the minimal call-state signal delivered by the platform.
// ID and PhoneNumber are optional; the empty string means absent. Some
// platforms never set ID at all.
type RawEvent struct {
	ID          string    `json:"id,omitempty"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	Type        EventType `json:"type"`
}

// Status is the lifecycle state of a tracked call.
type Status string

const (
	StatusRinging      Status = "ringing"
	StatusDialing      Status = "dialing"
	StatusCancelled    Status = "cancelled"
	StatusError        Status = "error"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusTimedOut     Status = "timed_out"
	StatusDisconnected Status = "disconnected"
)

// Terminal reports whether no further transitions are legal from s.
func (s Status) Terminal() bool {
	switch s {
	case StatusCancelled, StatusError, StatusTimedOut, StatusDisconnected:
		return true
	default:
		return false
	}
}

// Placement records which side originated the call. Immutable once set.
type Placement string

const (
	PlacementInbound  Placement = "inbound"
	PlacementOutbound Placement = "outbound"
)

// SanitizeNumber strips everything but digits from a dialable number.
// Platforms and users format numbers inconsistently; digits are the only
// comparable core.
func SanitizeNumber(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
