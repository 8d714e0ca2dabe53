package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	UpvoteSetTTL       = 24 * time.Hour
	UpvoteCntTTL       = 24 * time.Hour
	LockTTL            = 300 * time.Millisecond
	UpvoteSetKeyPrefix = "upvote:set:post" // 某帖子已点赞用户ID集合
	UpvoteCntKeyPrefix = "upvote:cnt:post" // 某帖子点赞计数
	LockKeyPrefix      = "lock:upvote:post:"
)

type UpvoteCacheRepository struct {
	setTTL time.Duration
	cntTTL time.Duration
}

// DistLock 重建计数用的分布式锁
type DistLock struct{}

func NewUpvoteCacheRepository() *UpvoteCacheRepository {
	return &UpvoteCacheRepository{
		setTTL: UpvoteSetTTL,
		cntTTL: UpvoteCntTTL,
	}
}

func (r *UpvoteCacheRepository) setKey(postID uint64) string {
	return fmt.Sprintf("%s:%d", UpvoteSetKeyPrefix, postID)
}
func (r *UpvoteCacheRepository) cntKey(postID uint64) string {
	return fmt.Sprintf("%s:%d", UpvoteCntKeyPrefix, postID)
}

// AddUpvote 写路径：MySQL写成功后调用
func (r *UpvoteCacheRepository) AddUpvote(ctx context.Context, userID, postID uint64) error {
	k := r.setKey(postID)
	if err := Client.SAdd(ctx, k, userID).Err(); err != nil {
		return err
	}
	_ = Client.Expire(ctx, k, r.setTTL).Err()

	ck := r.cntKey(postID)
	if err := Client.Incr(ctx, ck).Err(); err != nil {
		return err
	}
	_ = Client.Expire(ctx, ck, r.cntTTL).Err()
	return nil
}

func (r *UpvoteCacheRepository) RemoveUpvote(ctx context.Context, userID, postID uint64) error {
	k := r.setKey(postID)
	if err := Client.SRem(ctx, k, userID).Err(); err != nil {
		return err
	}
	// 计数安全自减：已为0或key不存在时直接删key，交给读侧重建
	ck := r.cntKey(postID)
	v, err := Client.Get(ctx, ck).Int64()
	if err != nil || v <= 0 {
		return Client.Del(ctx, ck).Err()
	}
	return Client.Decr(ctx, ck).Err()
}

// IsUpvotedCached 只信任存在的集合，miss交回源查询
func (r *UpvoteCacheRepository) IsUpvotedCached(ctx context.Context, userID, postID uint64) (bool, bool, error) {
	k := r.setKey(postID)
	exists, err := Client.Exists(ctx, k).Result()
	if err != nil {
		return false, false, err
	}
	if exists == 0 {
		return false, false, nil
	}
	b, err := Client.SIsMember(ctx, k, userID).Result()
	return b, true, err
}

// WarmIsUpvoted 惰性回填：集合已存在时才补元素，不创建新集合
func (r *UpvoteCacheRepository) WarmIsUpvoted(ctx context.Context, userID, postID uint64, upvoted bool) {
	k := r.setKey(postID)
	exists, err := Client.Exists(ctx, k).Result()
	if err != nil || exists == 0 {
		return
	}
	if upvoted {
		_ = Client.SAdd(ctx, k, userID).Err()
	} else {
		_ = Client.SRem(ctx, k, userID).Err()
	}
}

func (r *UpvoteCacheRepository) GetCountCached(ctx context.Context, postID uint64) (int64, bool, error) {
	v, err := Client.Get(ctx, r.cntKey(postID)).Int64()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

func (r *UpvoteCacheRepository) SetCount(ctx context.Context, postID uint64, count int64) error {
	return Client.Set(ctx, r.cntKey(postID), count, r.cntTTL).Err()
}

func (r *UpvoteCacheRepository) DeleteCount(ctx context.Context, postID uint64) error {
	return Client.Del(ctx, r.cntKey(postID)).Err()
}

func (l *DistLock) key(postID uint64) string {
	return fmt.Sprintf("%s%d", LockKeyPrefix, postID)
}

// Acquire SET NX，token防误释放
func (l *DistLock) Acquire(ctx context.Context, postID uint64, token string) (bool, error) {
	return Client.SetNX(ctx, l.key(postID), token, LockTTL).Result()
}

// Release 只释放自己持有的锁
func (l *DistLock) Release(ctx context.Context, postID uint64, token string) error {
	script := redis.NewScript(`
		if redis.call("GET", KEYS[1]) == ARGV[1] then
			return redis.call("DEL", KEYS[1])
		end
		return 0`)
	return script.Run(ctx, Client, []string{l.key(postID)}, token).Err()
}
