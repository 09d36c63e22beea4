package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/magheya/lds-backend/internal/apperr"
	"github.com/magheya/lds-backend/internal/models"
)

const (
	// DefaultTokenTTL is the lifetime of a token issued at login.
	DefaultTokenTTL = 24 * time.Hour

	tokenBytes = 32
)

// AdminStore looks up admin accounts.
type AdminStore interface {
	GetAdminByUsername(ctx context.Context, username string) (*models.AdminAccount, error)
	GetAdminByID(ctx context.Context, id int64) (*models.AdminAccount, error)
}

// TokenStore persists issued tokens. FindToken returns expired tokens as
// well; expiry is decided by the Authenticator clock.
type TokenStore interface {
	InsertToken(ctx context.Context, t *models.AuthToken) error
	FindToken(ctx context.Context, token string) (*models.AuthToken, error)
	DeleteToken(ctx context.Context, token string) (bool, error)
	DeleteTokensForUser(ctx context.Context, userID int64) (int64, error)
	DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error)
}

// Authenticator issues, checks and revokes admin bearer tokens.
type Authenticator struct {
	admins AdminStore
	tokens TokenStore
	ttl    time.Duration
	now    func() time.Time
	log    *slog.Logger
}

type Option func(*Authenticator)

func WithTTL(ttl time.Duration) Option {
	return func(a *Authenticator) {
		if ttl > 0 {
			a.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(a *Authenticator) { a.now = now }
}

func WithLogger(log *slog.Logger) Option {
	return func(a *Authenticator) { a.log = log }
}

func New(admins AdminStore, tokens TokenStore, opts ...Option) *Authenticator {
	a := &Authenticator{
		admins: admins,
		tokens: tokens,
		ttl:    DefaultTokenTTL,
		now:    time.Now,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Login verifies the credentials and issues a new token. Unknown users and
// wrong passwords both yield apperr.ErrInvalidCredentials.
func (a *Authenticator) Login(ctx context.Context, username, password string) (*models.LoginResult, error) {
	admin, err := a.admins.GetAdminByUsername(ctx, username)
	if errors.Is(err, apperr.ErrNotFound) {
		a.log.DebugContext(ctx, "login failed: user not found", "username", username)
		return nil, apperr.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load admin: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		a.log.DebugContext(ctx, "login failed: invalid password", "username", username)
		return nil, apperr.ErrInvalidCredentials
	}

	value, err := newToken()
	if err != nil {
		return nil, err
	}
	now := a.now().UTC().Truncate(time.Millisecond)
	tok := &models.AuthToken{
		UserID:    admin.ID,
		Token:     value,
		ExpiresAt: now.Add(a.ttl),
		CreatedAt: now,
	}
	if err := a.tokens.InsertToken(ctx, tok); err != nil {
		return nil, fmt.Errorf("store token: %w", err)
	}

	a.log.InfoContext(ctx, "admin logged in", "user_id", admin.ID, "expires_at", tok.ExpiresAt)
	return &models.LoginResult{
		UserID:    admin.ID,
		Username:  admin.Username,
		Role:      admin.Role,
		Token:     tok.Token,
		ExpiresAt: tok.ExpiresAt,
	}, nil
}

// CheckAuth resolves a token into the identity of its admin. Unknown and
// expired tokens fail with apperr.ErrUnauthenticated.
func (a *Authenticator) CheckAuth(ctx context.Context, token string) (*models.Identity, error) {
	if token == "" {
		return nil, apperr.ErrUnauthenticated
	}
	log := a.log.With("token_prefix", prefix(token))

	tok, err := a.tokens.FindToken(ctx, token)
	if errors.Is(err, apperr.ErrNotFound) {
		log.DebugContext(ctx, "auth check failed: token not found")
		return nil, apperr.ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("find token: %w", err)
	}
	if !a.now().Before(tok.ExpiresAt) {
		log.DebugContext(ctx, "auth check failed: token expired", "expires_at", tok.ExpiresAt)
		return nil, apperr.ErrUnauthenticated
	}

	admin, err := a.admins.GetAdminByID(ctx, tok.UserID)
	if errors.Is(err, apperr.ErrNotFound) {
		log.DebugContext(ctx, "auth check failed: token not found", "user_id", tok.UserID)
		return nil, apperr.ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("load admin: %w", err)
	}

	return &models.Identity{
		UserID:   admin.ID,
		Username: admin.Username,
		Role:     admin.Role,
		Token:    tok.Token,
	}, nil
}

// CheckRequest runs CheckAuth on the bearer token of r.
func (a *Authenticator) CheckRequest(r *http.Request) (*models.Identity, error) {
	token, ok := BearerToken(r)
	if !ok {
		a.log.DebugContext(r.Context(), "auth check failed: no bearer token")
		return nil, apperr.ErrUnauthenticated
	}
	return a.CheckAuth(r.Context(), token)
}

// Logout revokes the token and reports whether it existed.
func (a *Authenticator) Logout(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	removed, err := a.tokens.DeleteToken(ctx, token)
	if err != nil {
		return false, fmt.Errorf("delete token: %w", err)
	}
	a.log.DebugContext(ctx, "logout", "token_prefix", prefix(token), "removed", removed)
	return removed, nil
}

// InvalidateAllTokensForUser revokes every token of the admin and reports
// whether any existed.
func (a *Authenticator) InvalidateAllTokensForUser(ctx context.Context, userID int64) (bool, error) {
	n, err := a.tokens.DeleteTokensForUser(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("delete user tokens: %w", err)
	}
	a.log.InfoContext(ctx, "tokens invalidated", "user_id", userID, "count", n)
	return n > 0, nil
}

// CleanupExpiredTokens deletes every expired token and returns the count.
func (a *Authenticator) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	n, err := a.tokens.DeleteExpiredTokens(ctx, a.now())
	if err != nil {
		return 0, fmt.Errorf("delete expired tokens: %w", err)
	}
	a.log.DebugContext(ctx, "expired tokens cleaned up", "count", n)
	return n, nil
}

// BearerToken extracts the token of an "Authorization: Bearer <token>"
// header. Header maps built by hand may hold non-canonical keys, so those
// are searched as well.
func BearerToken(r *http.Request) (string, bool) {
	value := r.Header.Get("Authorization")
	if value == "" {
		for k, v := range r.Header {
			if strings.EqualFold(k, "Authorization") && len(v) > 0 {
				value = v[0]
				break
			}
		}
	}
	scheme, token, found := strings.Cut(strings.TrimSpace(value), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// HashPassword returns the bcrypt hash stored in the admins table.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func prefix(token string) string {
	if len(token) > 8 {
		return token[:8] + "..."
	}
	return token
}
