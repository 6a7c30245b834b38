package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/taskflow/client/internal/core/domain"
	"github.com/taskflow/client/internal/core/ports"
)

// SessionProvider owns the in-memory session. It is the only writer; every
// other component reads it through Snapshot. It also implements
// ports.SessionObserver so the request client's refresh path can adopt a new
// token or end the session.
type SessionProvider struct {
	auth ports.AuthService
	log  zerolog.Logger

	once sync.Once

	mu      sync.RWMutex
	user    *domain.User
	token   string
	loading bool
}

func NewSessionProvider(auth ports.AuthService, log zerolog.Logger) *SessionProvider {
	return &SessionProvider{auth: auth, log: log, loading: true}
}

// Init restores the session from the credential store. Only the first call
// does any work; later calls return once it has finished.
func (p *SessionProvider) Init(ctx context.Context) {
	p.once.Do(func() {
		defer p.finishLoading()
		p.restore(ctx)
	})
}

func (p *SessionProvider) restore(ctx context.Context) {
	token, err := p.auth.AccessToken(ctx)
	if err != nil {
		p.log.Warn().Err(err).Msg("read stored token")
		p.forget(ctx)
		return
	}
	if token == "" {
		return
	}

	user, err := p.auth.CurrentUser(ctx)
	if err != nil {
		p.log.Info().Err(err).Msg("stored session is no longer valid")
		p.forget(ctx)
		return
	}

	// CurrentUser may have refreshed the token on the way.
	if current, err := p.auth.AccessToken(ctx); err == nil && current != "" {
		token = current
	}
	p.set(user, token)
}

// Login authenticates and populates the session. On failure the session is
// left as it was.
func (p *SessionProvider) Login(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := p.auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	token, err := p.auth.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	p.set(user, token)
	return user, nil
}

// Logout clears the store and the in-memory session. The in-memory session
// is cleared even when the store fails.
func (p *SessionProvider) Logout(ctx context.Context) error {
	err := p.auth.Logout(ctx)
	p.set(nil, "")
	return err
}

// RefreshToken forces a token refresh. A failure logs the user out unless
// ctx was cancelled first, in which case the session is kept.
func (p *SessionProvider) RefreshToken(ctx context.Context) (string, error) {
	token, err := p.auth.Refresh(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.forget(ctx)
		}
		return "", err
	}
	p.mu.Lock()
	p.token = token
	p.mu.Unlock()
	return token, nil
}

// Snapshot returns a copy of the current session.
func (p *SessionProvider) Snapshot() domain.Session {
	p.mu.RLock()
	defer p.mu.RUnlock()

	s := domain.Session{Token: p.token, IsLoading: p.loading}
	if p.user != nil {
		u := *p.user
		s.User = &u
	}
	return s
}

// TokenRefreshed is called by the request client after a successful refresh.
func (p *SessionProvider) TokenRefreshed(accessToken string) {
	p.mu.Lock()
	p.token = accessToken
	p.mu.Unlock()
}

// SessionExpired is called by the request client after the store has been
// cleared because a refresh was denied.
func (p *SessionProvider) SessionExpired() {
	p.log.Info().Msg("session expired")
	p.set(nil, "")
}

func (p *SessionProvider) forget(ctx context.Context) {
	if err := p.Logout(ctx); err != nil {
		p.log.Warn().Err(err).Msg("logout")
	}
}

func (p *SessionProvider) set(user *domain.User, token string) {
	p.mu.Lock()
	p.user = user
	p.token = token
	p.mu.Unlock()
}

func (p *SessionProvider) finishLoading() {
	p.mu.Lock()
	p.loading = false
	p.mu.Unlock()
}

var (
	_ ports.SessionObserver = (*SessionProvider)(nil)
	_ ports.SessionReader   = (*SessionProvider)(nil)
)
