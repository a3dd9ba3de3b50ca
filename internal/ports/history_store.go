package ports

import (
	"appliance-intake-service/internal/domain"
	"context"
)

// Port: per-session bounded selection history.
type HistoryStore interface {
	// Return entries oldest first. Unknown or unreadable sessions yield an empty log.
	List(ctx context.Context, sessionID string) ([]domain.HistoryEntry, error)
	// Append an entry, evicting the oldest beyond domain.MaxHistoryEntries.
	Append(ctx context.Context, sessionID string, e domain.HistoryEntry) ([]domain.HistoryEntry, error)
	Clear(ctx context.Context, sessionID string) error
}
