// Package sandbox is an in-memory stand-in for the TaskFlow API, used for
// local development and end-to-end tests of the client. It is not an
// authority for real deployments.
package sandbox

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskflow/client/internal/core/domain"
	"github.com/taskflow/client/internal/core/ports"
)

// Actor identifies the authenticated caller of a request.
type Actor struct {
	UserID int64
	Role   domain.Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == domain.RoleAdmin
}

type account struct {
	user         domain.User
	passwordHash []byte
}

// Backend holds users and tasks in memory.
type Backend struct {
	tokens *Tokens
	log    zerolog.Logger
	now    func() time.Time

	mu         sync.RWMutex
	accounts   map[int64]*account
	byEmail    map[string]int64
	tasks      map[int64]*domain.Task
	nextUserID int64
	nextTaskID int64
}

func NewBackend(tokens *Tokens, log zerolog.Logger) *Backend {
	return &Backend{
		tokens:   tokens,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
		accounts: make(map[int64]*account),
		byEmail:  make(map[string]int64),
		tasks:    make(map[int64]*domain.Task),
	}
}

// Seed installs the demo accounts and tasks.
func (b *Backend) Seed(ctx context.Context) error {
	seeds := []struct {
		email, password, name string
		role                  domain.Role
		tasks                 []domain.TaskCreate
	}{
		{email: "admin@taskflow.com", password: "Admin123!", name: "Admin User", role: domain.RoleAdmin},
		{email: "user1@taskflow.com", password: "User123!", name: "John Doe", role: domain.RoleUser, tasks: []domain.TaskCreate{
			seedTask("Complete project documentation", "Write comprehensive documentation for the TaskFlow project", domain.StatusInProgress),
			seedTask("Review pull requests", "Review and merge pending pull requests", domain.StatusTodo),
			seedTask("Fix authentication bug", "Investigate and fix the authentication issue reported in #123", domain.StatusDone),
		}},
		{email: "user2@taskflow.com", password: "User123!", name: "Jane Smith", role: domain.RoleUser, tasks: []domain.TaskCreate{
			seedTask("Design new UI mockups", "Create mockups for the new dashboard design", domain.StatusInProgress),
			seedTask("Update dependencies", "Update all npm and Python dependencies to latest versions", domain.StatusTodo),
		}},
	}

	for _, s := range seeds {
		user, err := b.Register(ctx, ports.RegisterInput{Email: s.email, Password: s.password, FullName: s.name, Role: s.role})
		if err != nil {
			return fmt.Errorf("seed %s: %w", s.email, err)
		}
		actor := Actor{UserID: user.ID, Role: user.Role}
		for _, tc := range s.tasks {
			if _, err := b.CreateTask(ctx, actor, tc); err != nil {
				return fmt.Errorf("seed task %q: %w", tc.Title, err)
			}
		}
	}
	b.log.Info().Int("users", len(seeds)).Msg("sandbox seeded")
	return nil
}

func seedTask(title, description string, status domain.TaskStatus) domain.TaskCreate {
	return domain.TaskCreate{Title: title, Description: &description, Status: &status}
}

// ── Accounts ──────────────────────────────────────────────────────────────────

func (b *Backend) Register(_ context.Context, input ports.RegisterInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrValidation)
	}
	role := input.Role
	if role == "" {
		role = domain.RoleUser
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.byEmail[email]; exists {
		return nil, ErrEmailTaken
	}

	b.nextUserID++
	now := domain.Timestamp{Time: b.now()}
	acc := &account{
		user: domain.User{
			ID:        b.nextUserID,
			Email:     email,
			Role:      role,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		},
		passwordHash: hash,
	}
	if input.FullName != "" {
		name := input.FullName
		acc.user.FullName = &name
	}
	b.accounts[acc.user.ID] = acc
	b.byEmail[email] = acc.user.ID

	user := acc.user
	return &user, nil
}

// Login checks the password and issues an access/refresh pair.
func (b *Backend) Login(_ context.Context, email, password string) (*domain.TokenPair, error) {
	b.mu.RLock()
	acc, ok := b.accounts[b.byEmail[strings.ToLower(strings.TrimSpace(email))]]
	b.mu.RUnlock()

	if !ok || bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !acc.user.IsActive {
		return nil, ErrInactiveUser
	}

	access, err := b.tokens.Issue(&acc.user, KindAccess)
	if err != nil {
		return nil, err
	}
	refresh, err := b.tokens.Issue(&acc.user, KindRefresh)
	if err != nil {
		return nil, err
	}
	return &domain.TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}, nil
}

// Refresh exchanges a valid refresh token for a new access token.
func (b *Backend) Refresh(_ context.Context, refreshToken string) (*domain.AccessToken, error) {
	claims, err := b.tokens.Parse(refreshToken, KindRefresh)
	if err != nil {
		return nil, err
	}
	id, err := claims.UserID()
	if err != nil {
		return nil, ErrInvalidToken
	}

	b.mu.RLock()
	acc, ok := b.accounts[id]
	b.mu.RUnlock()
	if !ok || !acc.user.IsActive {
		return nil, ErrInvalidToken
	}

	access, err := b.tokens.Issue(&acc.user, KindAccess)
	if err != nil {
		return nil, err
	}
	return &domain.AccessToken{AccessToken: access, TokenType: "bearer"}, nil
}

func (b *Backend) Me(_ context.Context, actor Actor) (*domain.User, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	acc, ok := b.accounts[actor.UserID]
	if !ok {
		return nil, ErrInvalidToken
	}
	user := acc.user
	return &user, nil
}

func (b *Backend) ListUsers(_ context.Context) ([]domain.User, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	users := make([]domain.User, 0, len(b.accounts))
	for _, acc := range b.accounts {
		users = append(users, acc.user)
	}
	slices.SortFunc(users, func(a, c domain.User) int { return cmp.Compare(a.ID, c.ID) })
	return users, nil
}

// ExpireAccessTokens revokes every access token issued so far, so the next
// authenticated call answers 401 and the client has to refresh.
func (b *Backend) ExpireAccessTokens() int {
	return b.tokens.Revoke(KindAccess)
}

// RevokeRefreshTokens revokes every refresh token issued so far.
func (b *Backend) RevokeRefreshTokens() int {
	return b.tokens.Revoke(KindRefresh)
}

// ── Tasks ─────────────────────────────────────────────────────────────────────

// ListTasks returns the actor's tasks, newest first. Admins see every task.
func (b *Backend) ListTasks(_ context.Context, actor Actor, filters domain.TaskFilters) ([]domain.Task, error) {
	search := strings.ToLower(strings.TrimSpace(filters.Search))

	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]domain.Task, 0)
	for _, t := range b.tasks {
		if !actor.IsAdmin() && t.OwnerID != actor.UserID {
			continue
		}
		if filters.Status != "" && t.Status != filters.Status {
			continue
		}
		if search != "" && !matches(t, search) {
			continue
		}
		out = append(out, *t)
	}
	slices.SortFunc(out, func(a, c domain.Task) int { return cmp.Compare(c.ID, a.ID) })
	return out, nil
}

func matches(t *domain.Task, search string) bool {
	if strings.Contains(strings.ToLower(t.Title), search) {
		return true
	}
	return t.Description != nil && strings.Contains(strings.ToLower(*t.Description), search)
}

func (b *Backend) GetTask(_ context.Context, actor Actor, id int64) (*domain.Task, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	t, err := b.visible(actor, id)
	if err != nil {
		return nil, err
	}
	task := *t
	return &task, nil
}

func (b *Backend) CreateTask(_ context.Context, actor Actor, input domain.TaskCreate) (*domain.Task, error) {
	status := domain.StatusTodo
	if input.Status != nil {
		status = *input.Status
	}
	if !status.Valid() {
		return nil, domain.ErrUnknownStatus
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextTaskID++
	now := domain.Timestamp{Time: b.now()}
	t := &domain.Task{
		ID:          b.nextTaskID,
		Title:       input.Title,
		Description: input.Description,
		Status:      status,
		OwnerID:     actor.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	b.tasks[t.ID] = t
	task := *t
	return &task, nil
}

func (b *Backend) UpdateTask(_ context.Context, actor Actor, id int64, input domain.TaskUpdate) (*domain.Task, error) {
	if input.Status != nil && !input.Status.Valid() {
		return nil, domain.ErrUnknownStatus
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	t, err := b.visible(actor, id)
	if err != nil {
		return nil, err
	}
	if input.Title != nil {
		t.Title = *input.Title
	}
	if input.Description != nil {
		t.Description = input.Description
	}
	if input.Status != nil {
		t.Status = *input.Status
	}
	t.UpdatedAt = domain.Timestamp{Time: b.now()}
	task := *t
	return &task, nil
}

func (b *Backend) UpdateTaskStatus(ctx context.Context, actor Actor, id int64, status domain.TaskStatus) (*domain.Task, error) {
	return b.UpdateTask(ctx, actor, id, domain.TaskUpdate{Status: &status})
}

func (b *Backend) DeleteTask(_ context.Context, actor Actor, id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := b.visible(actor, id); err != nil {
		return err
	}
	delete(b.tasks, id)
	return nil
}

// visible must be called with b.mu held.
func (b *Backend) visible(actor Actor, id int64) (*domain.Task, error) {
	t, ok := b.tasks[id]
	if !ok || (!actor.IsAdmin() && t.OwnerID != actor.UserID) {
		return nil, ErrTaskNotFound
	}
	return t, nil
}
