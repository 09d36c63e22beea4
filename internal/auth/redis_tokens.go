package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/magheya/lds-backend/internal/apperr"
	"github.com/magheya/lds-backend/internal/models"
)

const (
	tokenKeyPrefix     = "auth_token:"
	userTokensPrefix   = "admin_tokens:"
	tokenSeqKey        = "auth_token_seq"
	minTokenKeyTTL     = time.Second
	sweepScanBatchSize = 100
)

// RedisTokenStore keeps tokens in Redis. Each token is a JSON value that
// expires with the token; a per-admin set indexes them for bulk revocation.
type RedisTokenStore struct {
	rdb *redis.Client
	now func() time.Time
}

func NewRedisTokenStore(rdb *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{rdb: rdb, now: time.Now}
}

func tokenKey(token string) string { return tokenKeyPrefix + token }

func userTokensKey(userID int64) string {
	return userTokensPrefix + strconv.FormatInt(userID, 10)
}

func (s *RedisTokenStore) InsertToken(ctx context.Context, t *models.AuthToken) error {
	id, err := s.rdb.Incr(ctx, tokenSeqKey).Result()
	if err != nil {
		return fmt.Errorf("next token id: %w", err)
	}
	t.ID = id
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.now().UTC().Truncate(time.Millisecond)
	}

	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	ttl := t.ExpiresAt.Sub(s.now())
	if ttl < minTokenKeyTTL {
		ttl = minTokenKeyTTL
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, tokenKey(t.Token), data, ttl)
	pipe.SAdd(ctx, userTokensKey(t.UserID), t.Token)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	return nil
}

func (s *RedisTokenStore) FindToken(ctx context.Context, token string) (*models.AuthToken, error) {
	data, err := s.rdb.Get(ctx, tokenKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get token: %w", err)
	}
	var t models.AuthToken
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	return &t, nil
}

func (s *RedisTokenStore) DeleteToken(ctx context.Context, token string) (bool, error) {
	t, err := s.FindToken(ctx, token)
	if errors.Is(err, apperr.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	pipe := s.rdb.TxPipeline()
	del := pipe.Del(ctx, tokenKey(token))
	pipe.SRem(ctx, userTokensKey(t.UserID), token)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("delete token: %w", err)
	}
	return del.Val() > 0, nil
}

func (s *RedisTokenStore) DeleteTokensForUser(ctx context.Context, userID int64) (int64, error) {
	setKey := userTokensKey(userID)
	members, err := s.rdb.SMembers(ctx, setKey).Result()
	if err != nil {
		return 0, fmt.Errorf("list user tokens: %w", err)
	}
	if len(members) == 0 {
		return 0, nil
	}

	keys := make([]string, len(members))
	for i, m := range members {
		keys[i] = tokenKey(m)
	}
	pipe := s.rdb.TxPipeline()
	del := pipe.Del(ctx, keys...)
	pipe.Del(ctx, setKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("delete user tokens: %w", err)
	}
	return del.Val(), nil
}

// DeleteExpiredTokens removes tokens whose expiry is at or before now and
// prunes index entries whose token key Redis already expired. Only the
// former are counted.
func (s *RedisTokenStore) DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	var removed int64
	iter := s.rdb.Scan(ctx, 0, userTokensPrefix+"*", sweepScanBatchSize).Iterator()
	for iter.Next(ctx) {
		setKey := iter.Val()
		members, err := s.rdb.SMembers(ctx, setKey).Result()
		if err != nil {
			return removed, fmt.Errorf("list %s: %w", setKey, err)
		}
		for _, token := range members {
			t, err := s.FindToken(ctx, token)
			switch {
			case errors.Is(err, apperr.ErrNotFound):
				if err := s.rdb.SRem(ctx, setKey, token).Err(); err != nil {
					return removed, fmt.Errorf("prune %s: %w", setKey, err)
				}
			case err != nil:
				return removed, err
			case !now.Before(t.ExpiresAt):
				ok, err := s.DeleteToken(ctx, token)
				if err != nil {
					return removed, err
				}
				if ok {
					removed++
				}
			}
		}
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("scan token sets: %w", err)
	}
	return removed, nil
}
