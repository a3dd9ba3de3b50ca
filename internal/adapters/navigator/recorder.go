package navigator

import "sync"

type Action struct {
	Kind string `json:"kind"` // "open" or "navigate"
	URL  string `json:"url"`
}

// Recorder is a Navigator for hosts that cannot act directly (HTTP clients,
// the CLI): it records what the resolution asked for so the caller can
// replay it. AllowSecondary decides whether OpenSecondary is granted.
type Recorder struct {
	AllowSecondary bool

	mu      sync.Mutex
	actions []Action
}

func NewRecorder(allowSecondary bool) *Recorder {
	return &Recorder{AllowSecondary: allowSecondary}
}

func (r *Recorder) OpenSecondary(url string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.AllowSecondary {
		return false
	}
	r.actions = append(r.actions, Action{Kind: "open", URL: url})
	return true
}

func (r *Recorder) Navigate(url string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, Action{Kind: "navigate", URL: url})
}

func (r *Recorder) Actions() []Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Action(nil), r.actions...)
}

// Location is the last URL the current context was sent to.
func (r *Recorder) Location() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.actions) - 1; i >= 0; i-- {
		if r.actions[i].Kind == "navigate" {
			return r.actions[i].URL
		}
	}
	return ""
}
