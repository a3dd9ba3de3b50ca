package repositories

import (
	"appliance-intake-service/internal/domain"
	"appliance-intake-service/internal/platform/obs"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLite-backed implementation of the IntakeRepository port.
// Timestamps are stored as unix milliseconds.
type SqliteIntakeRepository struct{ DB *sql.DB }

func NewSqliteIntakeRepository(db *sql.DB) *SqliteIntakeRepository {
	return &SqliteIntakeRepository{DB: db}
}

func (s *SqliteIntakeRepository) SaveIntake(ctx context.Context, rec *domain.IntakeRecord) (err error) {
	defer obs.Time(ctx, "intake.sqlite.SaveIntake")(&err)

	if s.DB == nil {
		return errors.New("sqlite intake repository: DB is nil")
	}
	if err := prepareRecord(rec); err != nil {
		return fmt.Errorf("save intake: %w", err)
	}

	query := `
	INSERT INTO intake_records (
		id, session_id, query, consult_type, outcome, label,
		x, y, directions_url, next_url, created_at_ms
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`
	_, err = s.DB.ExecContext(ctx, query,
		rec.ID, rec.SessionID, rec.Query, rec.ConsultType, string(rec.Outcome), rec.Label,
		rec.X, rec.Y, rec.DirectionsURL, rec.NextURL, rec.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save intake id=%s: insert intake_records: %w", rec.ID, err)
	}

	return nil
}

func (s *SqliteIntakeRepository) ListIntakes(ctx context.Context, limit int) (_ []*domain.IntakeRecord, err error) {
	defer obs.Time(ctx, "intake.sqlite.ListIntakes")(&err)

	if s.DB == nil {
		return nil, errors.New("sqlite intake repository: DB is nil")
	}

	query := `
	SELECT
		id, session_id, query, consult_type, outcome, label,
		x, y, directions_url, next_url, created_at_ms
	FROM intake_records
	ORDER BY created_at_ms DESC, rowid DESC
	LIMIT ?;
	`
	rows, err := s.DB.QueryContext(ctx, query, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list intakes: query intake_records table: %w", err)
	}
	defer rows.Close()

	records := make([]*domain.IntakeRecord, 0, 16)
	for rows.Next() {
		var r domain.IntakeRecord
		var outcome string
		var createdMs int64
		err := rows.Scan(
			&r.ID, &r.SessionID, &r.Query, &r.ConsultType, &outcome, &r.Label,
			&r.X, &r.Y, &r.DirectionsURL, &r.NextURL, &createdMs,
		)
		if err != nil {
			return nil, fmt.Errorf("list intakes: scan row: %w", err)
		}
		r.Outcome = domain.Outcome(outcome)
		r.CreatedAt = time.UnixMilli(createdMs).UTC()
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list intakes: row iteration: %w", err)
	}

	return records, nil
}
