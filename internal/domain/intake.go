package domain

import "time"

// Terminal state of a search submission.
type Outcome string

const (
	OutcomeInService    Outcome = "in_service"
	OutcomeOutOfService Outcome = "out_of_service"
	OutcomeSkipped      Outcome = "skipped"
)

// Represents one decided intake step: the lead the business follows up on.
// Coordinates are zero when the address was not resolved or the map was skipped.
type IntakeRecord struct {
	ID            string
	SessionID     string
	Query         string
	ConsultType   string
	Outcome       Outcome
	Label         string
	X             float64
	Y             float64
	DirectionsURL string
	NextURL       string
	CreatedAt     time.Time
}
