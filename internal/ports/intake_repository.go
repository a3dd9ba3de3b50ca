package ports

import (
	"appliance-intake-service/internal/domain"
	"context"
)

// Port: a boundary for persisting decided intake steps.
type IntakeRepository interface {
	SaveIntake(ctx context.Context, rec *domain.IntakeRecord) error
	// Return the most recent records, newest first.
	ListIntakes(ctx context.Context, limit int) ([]*domain.IntakeRecord, error)
}
