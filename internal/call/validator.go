package call

// priorStatuses lists the statuses a call must currently hold for a raw
// event of the given type to plausibly belong to it. Inbound notifications
// never validate an existing call; they only ever start one.
//
// This table is what disambiguates two nearly-simultaneous calls whose
// notifications interleave: a connected notification cannot land on a call
// that is already connected or disconnected.
var priorStatuses = map[EventType][]Status{
	EventOutbound:     {StatusDialing},
	EventConnected:    {StatusConnecting, StatusRinging, StatusDialing},
	EventInbound:      {},
	EventDisconnected: {StatusConnecting, StatusRinging, StatusDialing, StatusConnected},
}

// IsBefore reports whether a call currently in status s could legally
// receive a raw event of type t.
func IsBefore(s Status, t EventType) bool {
	for _, prior := range priorStatuses[t] {
		if s == prior {
			return true
		}
	}
	return false
}
