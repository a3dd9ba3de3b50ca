package repositories

import (
	"appliance-intake-service/internal/domain"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// Fill in generated fields and reject records that cannot be stored.
func prepareRecord(rec *domain.IntakeRecord) error {
	if rec == nil {
		return errors.New("intake record is nil")
	}
	if strings.TrimSpace(rec.SessionID) == "" {
		return errors.New("intake record: session id is empty")
	}
	switch rec.Outcome {
	case domain.OutcomeInService, domain.OutcomeOutOfService, domain.OutcomeSkipped:
	default:
		return errors.New("intake record: unknown outcome " + string(rec.Outcome))
	}

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	return nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
