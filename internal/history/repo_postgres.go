package history

import (
	"context"
	"database/sql"
	"time"
)

// PostgresRepository archives call records in Postgres via database/sql
// (pgx stdlib driver).
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Migrate creates the archive table if it does not exist.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS call_history (
			call_id          TEXT PRIMARY KEY,
			platform_id      TEXT NOT NULL DEFAULT '',
			phone_number     TEXT NOT NULL DEFAULT '',
			placement        TEXT NOT NULL,
			status           TEXT NOT NULL,
			started_at       TIMESTAMPTZ NOT NULL,
			ended_at         TIMESTAMPTZ NOT NULL,
			duration_seconds INT NOT NULL
		)`)
	return err
}

func (r *PostgresRepository) Append(ctx context.Context, rec Record) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO call_history
			(call_id, platform_id, phone_number, placement, status,
			 started_at, ended_at, duration_seconds)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.CallID, rec.PlatformID, rec.PhoneNumber, rec.Placement,
		rec.Status, rec.StartedAt, rec.EndedAt, rec.DurationSeconds)
	return err
}

func (r *PostgresRepository) List(ctx context.Context, from, to time.Time) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT call_id, platform_id, phone_number, placement, status,
		       started_at, ended_at, duration_seconds
		FROM call_history
		WHERE started_at >= $1 AND started_at < $2
		ORDER BY started_at`,
		from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.CallID, &rec.PlatformID, &rec.PhoneNumber,
			&rec.Placement, &rec.Status, &rec.StartedAt, &rec.EndedAt,
			&rec.DurationSeconds); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
