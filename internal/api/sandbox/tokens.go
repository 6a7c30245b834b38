package sandbox

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/taskflow/client/internal/core/domain"
	"github.com/taskflow/client/internal/infrastructure/metrics"
)

// Token kinds carried in the "type" claim.
const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

// Claims is the JWT payload issued by the sandbox.
type Claims struct {
	Role domain.Role `json:"role"`
	Type string      `json:"type"`
	jwt.RegisteredClaims
}

// UserID returns the numeric subject.
func (c *Claims) UserID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

// Tokens mints and verifies HS256 tokens and tracks which ones have been
// revoked by ID.
type Tokens struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time

	mu      sync.RWMutex
	issued  map[string]string
	revoked map[string]struct{}
}

func NewTokens(secret string, accessTTL, refreshTTL time.Duration) *Tokens {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &Tokens{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
		issued:     make(map[string]string),
		revoked:    make(map[string]struct{}),
	}
}

// Secret is the HS256 key used for signing.
func (t *Tokens) Secret() string {
	return string(t.secret)
}

func (t *Tokens) Issue(user *domain.User, kind string) (string, error) {
	ttl := t.accessTTL
	if kind == KindRefresh {
		ttl = t.refreshTTL
	}
	now := t.now()
	claims := Claims{
		Role: user.Role,
		Type: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}

	t.mu.Lock()
	t.issued[claims.ID] = kind
	t.mu.Unlock()
	metrics.SandboxTokensIssuedTotal.WithLabelValues(kind).Inc()
	return signed, nil
}

// Parse verifies signature, expiry, kind and revocation.
func (t *Tokens) Parse(token, kind string) (*Claims, error) {
	var claims Claims
	tkn, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil || !tkn.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Type != kind || t.Revoked(claims.ID) {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

func (t *Tokens) Revoked(id string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.revoked[id]
	return ok
}

// Revoke invalidates every issued token of the given kind and returns how
// many were affected.
func (t *Tokens) Revoke(kind string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for id, k := range t.issued {
		if k != kind {
			continue
		}
		t.revoked[id] = struct{}{}
		delete(t.issued, id)
		n++
	}
	return n
}
