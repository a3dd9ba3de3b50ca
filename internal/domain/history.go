package domain

// Upper bound on retained history entries per session.
const MaxHistoryEntries = 30

// A visited step in the selection history.
// JSON field names match what the pages read from storage.
type HistoryEntry struct {
	Label       string `json:"label"`
	URL         string `json:"url"`
	TimestampMs int64  `json:"ts"`
}

// AppendHistory appends e and keeps only the most recent MaxHistoryEntries,
// evicting oldest first. The input slice is not modified.
func AppendHistory(entries []HistoryEntry, e HistoryEntry) []HistoryEntry {
	out := make([]HistoryEntry, 0, min(len(entries)+1, MaxHistoryEntries))
	start := 0
	if n := len(entries) + 1; n > MaxHistoryEntries {
		start = n - MaxHistoryEntries
	}
	if start < len(entries) {
		out = append(out, entries[start:]...)
	}
	return append(out, e)
}
