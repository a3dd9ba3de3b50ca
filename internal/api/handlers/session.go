package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	SessionCookie     = "sid"
	ConsultTypeCookie = "consult_type"

	cookieMaxAge = 365 * 24 * time.Hour
)

// Sessions issues and reads the browser session cookie and the
// remembered consultation type.
type Sessions struct {
	Secure bool
}

// ID returns the request's session id, issuing a new one when the cookie is
// missing or not a UUID.
func (s Sessions) ID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return id.String()
		}
	}

	id := uuid.NewString()
	s.set(w, SessionCookie, id)
	return id
}

// Existing returns the session id without issuing one.
func (s Sessions) Existing(r *http.Request) (string, bool) {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return "", false
	}
	id, err := uuid.Parse(c.Value)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

// ConsultType prefers the requested type and remembers it; otherwise the
// remembered one is used.
func (s Sessions) ConsultType(w http.ResponseWriter, r *http.Request, requested string) string {
	requested = strings.TrimSpace(requested)
	if requested != "" {
		s.set(w, ConsultTypeCookie, requested)
		return requested
	}
	if c, err := r.Cookie(ConsultTypeCookie); err == nil {
		return strings.TrimSpace(c.Value)
	}
	return ""
}

func (s Sessions) set(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(cookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
