package ports

import "github.com/taskflow/client/internal/core/domain"

// SessionObserver receives token lifecycle events from the request client's
// refresh path.
type SessionObserver interface {
	TokenRefreshed(accessToken string)
	SessionExpired()
}

// SessionReader exposes the current session without allowing writes.
type SessionReader interface {
	Snapshot() domain.Session
}
