package dto

type HistoryEntry struct {
	Label string `json:"label"`
	URL   string `json:"url"`
	TS    int64  `json:"ts"`
}

type AppendHistoryRequest struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

type HistoryResponse struct {
	Entries []HistoryEntry `json:"entries"`
}
