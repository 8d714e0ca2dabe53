package redis

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrTokenNotFound    = errors.New("token not found")
	ErrRedisUnavailable = errors.New("redis unavailable")
	ErrExtendFailed     = errors.New("token extend failed")
	ErrTokenDeleted     = errors.New("token delete failed")
)

const userTokenTTL = 30 * time.Minute

func tokenKey(userID uint64) string {
	return "login:user:token:" + strconv.FormatUint(userID, 10)
}

// UserRepository 单会话登录：每个用户只保留最近一次下发的access token
type UserRepository struct{}

func (r *UserRepository) AddUserToken(userID uint64, token string) error {
	if err := Client.Set(context.Background(), tokenKey(userID), token, userTokenTTL).Err(); err != nil {
		return ErrRedisUnavailable
	}
	return nil
}

func (r *UserRepository) GetUserToken(userID uint64) (string, error) {
	token, err := Client.Get(context.Background(), tokenKey(userID)).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "", ErrTokenNotFound
	case err != nil:
		return "", ErrRedisUnavailable
	}
	return token, nil
}

// ExtendUserToken 每次校验通过后顺延过期时间
func (r *UserRepository) ExtendUserToken(userID uint64) error {
	if err := Client.Expire(context.Background(), tokenKey(userID), userTokenTTL).Err(); err != nil {
		return ErrExtendFailed
	}
	return nil
}

func (r *UserRepository) DeleteUserToken(userID uint64) error {
	if err := Client.Del(context.Background(), tokenKey(userID)).Err(); err != nil {
		return ErrTokenDeleted
	}
	return nil
}
