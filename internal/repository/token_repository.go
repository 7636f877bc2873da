package repository

import (
	"errors"
	"strconv"

	"github.com/gomodule/redigo/redis"
	"github.com/upfeed/upfeed/internal/constants"
)

// RedisResetTokenRepository stores password-reset tokens in Redis with a TTL,
// sharing the server already used by the session store.
type RedisResetTokenRepository struct {
	pool *redis.Pool
}

// NewResetTokenRepository creates a Redis-backed ResetTokenRepository
func NewResetTokenRepository(pool *redis.Pool) ResetTokenRepository {
	return &RedisResetTokenRepository{pool: pool}
}

// Store maps token -> userID; Redis expires the key after the reset TTL.
func (r *RedisResetTokenRepository) Store(token string, userID uint64) error {
	conn := r.pool.Get()
	defer conn.Close()

	ttlSeconds := int(constants.ResetTokenTTL.Seconds())
	_, err := conn.Do("SETEX", constants.ForgetPasswordPrefix+token, ttlSeconds, userID)
	return err
}

// Lookup resolves a token; ok is false when the key is missing or expired.
func (r *RedisResetTokenRepository) Lookup(token string) (uint64, bool, error) {
	conn := r.pool.Get()
	defer conn.Close()

	reply, err := redis.String(conn.Do("GET", constants.ForgetPasswordPrefix+token))
	if err != nil {
		if errors.Is(err, redis.ErrNil) {
			return 0, false, nil
		}
		return 0, false, err
	}

	userID, err := strconv.ParseUint(reply, 10, 64)
	if err != nil {
		return 0, false, err
	}
	return userID, true, nil
}

// Delete consumes a token so the reset link is single-use.
func (r *RedisResetTokenRepository) Delete(token string) error {
	conn := r.pool.Get()
	defer conn.Close()

	_, err := conn.Do("DEL", constants.ForgetPasswordPrefix+token)
	return err
}
