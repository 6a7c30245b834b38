package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/taskflow/client/internal/core/domain"
	"github.com/taskflow/client/internal/core/ports"
)

func newProvider(client *stubClient, store *stubStore) *SessionProvider {
	return NewSessionProvider(NewAuthService(client, store, zerolog.Nop()), zerolog.Nop())
}

func TestSessionProvider_InitWithoutTokenMakesNoCall(t *testing.T) {
	client := &stubClient{sendFn: func(_ context.Context, spec ports.RequestSpec) (*ports.Response, error) {
		t.Fatalf("unexpected call %s %s", spec.Method, spec.Path)
		return nil, nil
	}}
	p := newProvider(client, &stubStore{})

	if !p.Snapshot().IsLoading {
		t.Fatalf("expected loading before Init")
	}
	p.Init(context.Background())

	s := p.Snapshot()
	if s.IsLoading || s.IsAuthenticated() || s.User != nil || s.Token != "" {
		t.Fatalf("expected empty settled session, got %+v", s)
	}
}

func TestSessionProvider_InitRestoresSession(t *testing.T) {
	store := &stubStore{creds: domain.Credentials{AccessToken: "A", RefreshToken: "R"}}
	client := &stubClient{sendFn: func(context.Context, ports.RequestSpec) (*ports.Response, error) {
		return jsonResponse(http.StatusOK, testUser), nil
	}}
	p := newProvider(client, store)

	p.Init(context.Background())

	s := p.Snapshot()
	if !s.IsAuthenticated() || s.Token != "A" || s.User.ID != testUser.ID {
		t.Fatalf("unexpected session: %+v", s)
	}
	if s.IsAdmin() {
		t.Fatalf("user role must not be admin")
	}
}

func TestSessionProvider_InitFailureLogsOut(t *testing.T) {
	store := &stubStore{creds: domain.Credentials{AccessToken: "stale", RefreshToken: "R"}}
	client := &stubClient{sendFn: func(context.Context, ports.RequestSpec) (*ports.Response, error) {
		return nil, domain.ErrAuthExpired
	}}
	p := newProvider(client, store)

	p.Init(context.Background())

	s := p.Snapshot()
	if s.IsLoading || s.IsAuthenticated() || s.Token != "" {
		t.Fatalf("expected empty session, got %+v", s)
	}
	if !store.creds.Empty() {
		t.Fatalf("expected store cleared, got %+v", store.creds)
	}
}

func TestSessionProvider_InitRunsOnce(t *testing.T) {
	store := &stubStore{creds: domain.Credentials{AccessToken: "A"}}
	client := &stubClient{sendFn: func(context.Context, ports.RequestSpec) (*ports.Response, error) {
		return jsonResponse(http.StatusOK, testUser), nil
	}}
	p := newProvider(client, store)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Init(context.Background())
		}()
	}
	wg.Wait()

	if n := len(client.paths()); n != 1 {
		t.Fatalf("expected a single /auth/me call, got %d", n)
	}
}

func TestSessionProvider_LoginAndLogout(t *testing.T) {
	store := &stubStore{}
	p := newProvider(&stubClient{sendFn: loginServer(t)}, store)
	p.Init(context.Background())

	if _, err := p.Login(context.Background(), "a@x.com", "p"); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	s := p.Snapshot()
	if !s.IsAuthenticated() || s.Token != "A1" || s.IsAdmin() {
		t.Fatalf("unexpected session after login: %+v", s)
	}

	if err := p.Logout(context.Background()); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if p.Snapshot().IsAuthenticated() || !store.creds.Empty() {
		t.Fatalf("expected logged out session and empty store")
	}
}

func TestSessionProvider_LoginFailureLeavesSession(t *testing.T) {
	p := newProvider(&stubClient{sendFn: loginServer(t)}, &stubStore{})
	p.Init(context.Background())

	_, err := p.Login(context.Background(), "a@x.com", "bad")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if p.Snapshot().IsAuthenticated() {
		t.Fatalf("session must stay empty")
	}
}

func TestSessionProvider_RefreshToken(t *testing.T) {
	store := &stubStore{creds: domain.Credentials{AccessToken: "A", RefreshToken: "R"}}
	client := &stubClient{
		sendFn:    func(context.Context, ports.RequestSpec) (*ports.Response, error) { return jsonResponse(http.StatusOK, testUser), nil },
		refreshFn: func(context.Context) (string, error) { return "A2", nil },
	}
	p := newProvider(client, store)
	p.Init(context.Background())

	token, err := p.RefreshToken(context.Background())
	if err != nil || token != "A2" {
		t.Fatalf("unexpected refresh result: %q, %v", token, err)
	}
	if p.Snapshot().Token != "A2" {
		t.Fatalf("session did not adopt refreshed token")
	}
}

func TestSessionProvider_RefreshFailureLogsOut(t *testing.T) {
	store := &stubStore{creds: domain.Credentials{AccessToken: "A", RefreshToken: "R"}}
	client := &stubClient{
		sendFn:    func(context.Context, ports.RequestSpec) (*ports.Response, error) { return jsonResponse(http.StatusOK, testUser), nil },
		refreshFn: func(context.Context) (string, error) { return "", domain.ErrAuthExpired },
	}
	p := newProvider(client, store)
	p.Init(context.Background())

	if _, err := p.RefreshToken(context.Background()); !errors.Is(err, domain.ErrAuthExpired) {
		t.Fatalf("expected ErrAuthExpired, got %v", err)
	}
	if p.Snapshot().IsAuthenticated() || !store.creds.Empty() {
		t.Fatalf("expected logged out session and empty store")
	}
}

func TestSessionProvider_CancelledRefreshKeepsSession(t *testing.T) {
	store := &stubStore{creds: domain.Credentials{AccessToken: "A", RefreshToken: "R"}}
	ctx, cancel := context.WithCancel(context.Background())
	client := &stubClient{
		sendFn:    func(context.Context, ports.RequestSpec) (*ports.Response, error) { return jsonResponse(http.StatusOK, testUser), nil },
		refreshFn: func(context.Context) (string, error) {
			cancel()
			return "", context.Canceled
		},
	}
	p := newProvider(client, store)
	p.Init(context.Background())

	if _, err := p.RefreshToken(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	s := p.Snapshot()
	if !s.IsAuthenticated() || s.Token != "A" {
		t.Fatalf("expected session to survive a cancelled refresh, got %+v", s)
	}
	if store.creds.RefreshToken != "R" {
		t.Fatalf("expected stored refresh token to be kept")
	}
}

func TestSessionProvider_ObserverEvents(t *testing.T) {
	store := &stubStore{creds: domain.Credentials{AccessToken: "A", RefreshToken: "R"}}
	client := &stubClient{sendFn: func(context.Context, ports.RequestSpec) (*ports.Response, error) {
		return jsonResponse(http.StatusOK, testUser), nil
	}}
	p := newProvider(client, store)
	p.Init(context.Background())

	p.TokenRefreshed("A3")
	if s := p.Snapshot(); s.Token != "A3" || !s.IsAuthenticated() {
		t.Fatalf("unexpected session after refresh: %+v", s)
	}

	p.SessionExpired()
	if s := p.Snapshot(); s.IsAuthenticated() || s.User != nil || s.Token != "" {
		t.Fatalf("expected empty session after expiry: %+v", s)
	}
}

func TestSessionProvider_SnapshotIsACopy(t *testing.T) {
	store := &stubStore{creds: domain.Credentials{AccessToken: "A"}}
	client := &stubClient{sendFn: func(context.Context, ports.RequestSpec) (*ports.Response, error) {
		return jsonResponse(http.StatusOK, testUser), nil
	}}
	p := newProvider(client, store)
	p.Init(context.Background())

	s := p.Snapshot()
	s.User.Role = domain.RoleAdmin
	if p.Snapshot().IsAdmin() {
		t.Fatalf("snapshot mutation leaked into the session")
	}
}
