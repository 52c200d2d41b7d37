package history

import "time"

// Record is an immutable archive row for one finished call.
//
// Records are append-only by design: no Update/Delete is offered anywhere
// in this package.
type Record struct {
	CallID      string `json:"call_id" db:"call_id"`
	PlatformID  string `json:"platform_id,omitempty" db:"platform_id"`
	PhoneNumber string `json:"phone_number,omitempty" db:"phone_number"`

	Placement string `json:"placement" db:"placement"`

	// Status is the terminal status the call completed with.
	Status string `json:"status" db:"status"`

	StartedAt time.Time `json:"started_at" db:"started_at"`
	EndedAt   time.Time `json:"ended_at" db:"ended_at"`

	// DurationSeconds is kept as an int for JSON friendliness; stored as
	// INT in Postgres.
	DurationSeconds int `json:"duration_seconds" db:"duration_seconds"`
}

// Summary aggregates archived calls over a time range.
type Summary struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`

	TotalCalls           int `json:"total_calls"`
	TotalDurationSeconds int `json:"total_duration_seconds"`

	ByStatus    map[string]int `json:"by_status"`
	ByPlacement map[string]int `json:"by_placement"`
}
