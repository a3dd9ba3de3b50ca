package dto

import "time"

// IntakeRequest is accepted as JSON or as a form post.
// Popup reports whether the page may open a new tab; it defaults to true.
type IntakeRequest struct {
	Query string `json:"q"`
	Type  string `json:"type"`
	Popup *bool  `json:"popup"`
}

type NavigatorAction struct {
	Kind string `json:"kind"`
	URL  string `json:"url"`
}

type IntakeResponse struct {
	Status     string            `json:"status"`
	OpenURL    string            `json:"open_url,omitempty"`
	Opened     bool              `json:"opened"`
	NavigateTo string            `json:"navigate_to"`
	NextURL    string            `json:"next_url,omitempty"`
	Label      string            `json:"label,omitempty"`
	Actions    []NavigatorAction `json:"actions"`
}

type IntakeRecordResponse struct {
	ID            string    `json:"id"`
	SessionID     string    `json:"session_id"`
	Query         string    `json:"query"`
	ConsultType   string    `json:"consult_type"`
	Outcome       string    `json:"outcome"`
	Label         string    `json:"label,omitempty"`
	X             float64   `json:"x,omitempty"`
	Y             float64   `json:"y,omitempty"`
	DirectionsURL string    `json:"directions_url,omitempty"`
	NextURL       string    `json:"next_url"`
	CreatedAt     time.Time `json:"created_at"`
}

type ListIntakesResponse struct {
	Intakes []IntakeRecordResponse `json:"intakes"`
}
