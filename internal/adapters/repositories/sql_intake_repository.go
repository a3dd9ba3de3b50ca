package repositories

import (
	"appliance-intake-service/internal/domain"
	"appliance-intake-service/internal/platform/obs"
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SQLIntakeRepository is the Postgres implementation of the IntakeRepository port.
type SQLIntakeRepository struct {
	DB *sql.DB
}

func NewSQLIntakeRepository(db *sql.DB) *SQLIntakeRepository {
	return &SQLIntakeRepository{DB: db}
}

func (s *SQLIntakeRepository) SaveIntake(ctx context.Context, rec *domain.IntakeRecord) (err error) {
	defer obs.Time(ctx, "intake.sql.SaveIntake")(&err)

	if s.DB == nil {
		return errors.New("sql intake repository: db is nil")
	}
	if err := prepareRecord(rec); err != nil {
		return fmt.Errorf("save intake: %w", err)
	}

	_, err = s.DB.ExecContext(ctx, `
	INSERT INTO intake_records (
		id, session_id, query, consult_type, outcome, label,
		x, y, directions_url, next_url, created_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`,
		rec.ID, rec.SessionID, rec.Query, rec.ConsultType, string(rec.Outcome), rec.Label,
		rec.X, rec.Y, rec.DirectionsURL, rec.NextURL, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save intake id=%s: insert intake_records: %w", rec.ID, err)
	}

	return nil
}

func (s *SQLIntakeRepository) ListIntakes(ctx context.Context, limit int) (_ []*domain.IntakeRecord, err error) {
	defer obs.Time(ctx, "intake.sql.ListIntakes")(&err)

	if s.DB == nil {
		return nil, errors.New("sql intake repository: db is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT
		id, session_id, query, consult_type, outcome, label,
		x, y, directions_url, next_url, created_at
	FROM intake_records
	ORDER BY created_at DESC
	LIMIT $1;
	`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list intakes: query intake_records table: %w", err)
	}
	defer rows.Close()

	records := make([]*domain.IntakeRecord, 0, 16)
	for rows.Next() {
		var r domain.IntakeRecord
		var outcome string
		if err := rows.Scan(
			&r.ID, &r.SessionID, &r.Query, &r.ConsultType, &outcome, &r.Label,
			&r.X, &r.Y, &r.DirectionsURL, &r.NextURL, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("list intakes: scan row: %w", err)
		}
		r.Outcome = domain.Outcome(outcome)
		records = append(records, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list intakes: row iteration: %w", err)
	}

	return records, nil
}
