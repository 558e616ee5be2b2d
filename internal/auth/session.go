package auth

import "time"

// CookieName is the cookie carrying the session token.
const CookieName = "session"

// Session is the verified identity of the caller, produced once per request
// by the session guard and passed by value to handlers.
type Session struct {
	UserID    uint
	Username  string
	TokenID   string
	ExpiresAt time.Time
}

// RemainingTTL is how long the session stays valid from now.
func (s Session) RemainingTTL(now time.Time) time.Duration {
	if d := s.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}
