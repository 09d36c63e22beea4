package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magheya/lds-backend/internal/apperr"
	"github.com/magheya/lds-backend/internal/store"
)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time          { return c.t }
func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type fixture struct {
	auth  *Authenticator
	store *store.Store
	clock *clock
	admin int64
}

func newSQLStore(t *testing.T, c *clock) *store.Store {
	t.Helper()
	s, err := store.Open(context.Background(), store.DriverSQLite, filepath.Join(t.TempDir(), "auth.db"), store.WithClock(c.Now))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newRedisStore(t *testing.T, c *clock) *RedisTokenStore {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	ts := NewRedisTokenStore(rdb)
	ts.now = c.Now
	return ts
}

// backends runs fn once per token backend.
func backends(t *testing.T, fn func(t *testing.T, f fixture)) {
	for _, name := range []string{"sql", "redis"} {
		t.Run(name, func(t *testing.T) {
			c := &clock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
			s := newSQLStore(t, c)

			hash, err := HashPassword("admin123")
			require.NoError(t, err)
			admin, err := s.CreateAdmin(context.Background(), "admin", hash, "admin")
			require.NoError(t, err)

			var tokens TokenStore = s
			if name == "redis" {
				tokens = newRedisStore(t, c)
			}
			a := New(s, tokens, WithClock(c.Now), WithTTL(time.Hour))
			fn(t, fixture{auth: a, store: s, clock: c, admin: admin.ID})
		})
	}
}

func TestLoginThenCheckAuth(t *testing.T) {
	backends(t, func(t *testing.T, f fixture) {
		ctx := context.Background()
		res, err := f.auth.Login(ctx, "admin", "admin123")
		require.NoError(t, err)
		assert.Len(t, res.Token, 64)
		assert.Equal(t, f.clock.Now().Add(time.Hour), res.ExpiresAt)

		id, err := f.auth.CheckAuth(ctx, res.Token)
		require.NoError(t, err)
		assert.Equal(t, f.admin, id.UserID)
		assert.Equal(t, "admin", id.Username)
		assert.Equal(t, "admin", id.Role)
		assert.Equal(t, res.Token, id.Token)
	})
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	backends(t, func(t *testing.T, f fixture) {
		ctx := context.Background()
		_, err := f.auth.Login(ctx, "admin", "wrong")
		assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
		_, err = f.auth.Login(ctx, "ghost", "admin123")
		assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
	})
}

func TestTokenExpiry(t *testing.T) {
	backends(t, func(t *testing.T, f fixture) {
		ctx := context.Background()
		res, err := f.auth.Login(ctx, "admin", "admin123")
		require.NoError(t, err)

		f.clock.Advance(time.Hour - time.Millisecond)
		_, err = f.auth.CheckAuth(ctx, res.Token)
		require.NoError(t, err)

		f.clock.Advance(time.Millisecond)
		_, err = f.auth.CheckAuth(ctx, res.Token)
		assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	})
}

func TestLogoutRevokes(t *testing.T) {
	backends(t, func(t *testing.T, f fixture) {
		ctx := context.Background()
		res, err := f.auth.Login(ctx, "admin", "admin123")
		require.NoError(t, err)

		ok, err := f.auth.Logout(ctx, res.Token)
		require.NoError(t, err)
		assert.True(t, ok)

		_, err = f.auth.CheckAuth(ctx, res.Token)
		assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

		ok, err = f.auth.Logout(ctx, res.Token)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestInvalidateAllTokensForUser(t *testing.T) {
	backends(t, func(t *testing.T, f fixture) {
		ctx := context.Background()
		first, err := f.auth.Login(ctx, "admin", "admin123")
		require.NoError(t, err)
		second, err := f.auth.Login(ctx, "admin", "admin123")
		require.NoError(t, err)
		assert.NotEqual(t, first.Token, second.Token)

		ok, err := f.auth.InvalidateAllTokensForUser(ctx, f.admin)
		require.NoError(t, err)
		assert.True(t, ok)

		for _, tok := range []string{first.Token, second.Token} {
			_, err := f.auth.CheckAuth(ctx, tok)
			assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
		}

		ok, err = f.auth.InvalidateAllTokensForUser(ctx, f.admin)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestCleanupExpiredTokens(t *testing.T) {
	backends(t, func(t *testing.T, f fixture) {
		ctx := context.Background()
		old, err := f.auth.Login(ctx, "admin", "admin123")
		require.NoError(t, err)
		f.clock.Advance(30 * time.Minute)
		fresh, err := f.auth.Login(ctx, "admin", "admin123")
		require.NoError(t, err)
		f.clock.Advance(30 * time.Minute)

		n, err := f.auth.CleanupExpiredTokens(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		_, err = f.auth.CheckAuth(ctx, fresh.Token)
		require.NoError(t, err)
		removed, err := f.auth.Logout(ctx, old.Token)
		require.NoError(t, err)
		assert.False(t, removed)
	})
}

func TestCheckRequest(t *testing.T) {
	backends(t, func(t *testing.T, f fixture) {
		res, err := f.auth.Login(context.Background(), "admin", "admin123")
		require.NoError(t, err)

		r := httptest.NewRequest(http.MethodGet, "/api/admin/check-auth", nil)
		_, err = f.auth.CheckRequest(r)
		assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

		r.Header.Set("Authorization", "Bearer "+res.Token)
		id, err := f.auth.CheckRequest(r)
		require.NoError(t, err)
		assert.Equal(t, "admin", id.Username)
	})
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header http.Header
		want   string
		ok     bool
	}{
		{name: "canonical", header: http.Header{"Authorization": {"Bearer abc"}}, want: "abc", ok: true},
		{name: "lowercase key", header: http.Header{"authorization": {"Bearer abc"}}, want: "abc", ok: true},
		{name: "lowercase scheme", header: http.Header{"Authorization": {"bearer abc"}}, want: "abc", ok: true},
		{name: "basic", header: http.Header{"Authorization": {"Basic abc"}}},
		{name: "empty token", header: http.Header{"Authorization": {"Bearer "}}},
		{name: "missing", header: http.Header{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &http.Request{Header: tt.header}
			got, ok := BearerToken(r)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSweeperStopsOnCancel(t *testing.T) {
	c := &clock{t: time.Now()}
	s := newSQLStore(t, c)
	a := New(s, s, WithClock(c.Now))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewSweeper(a, time.Millisecond, nil).Run(ctx)
		close(done)
	}()
	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
