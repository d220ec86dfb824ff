package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	LikeSetTTL       = 24 * time.Hour
	LikeCntTTL       = 24 * time.Hour
	LockTTL          = 300 * time.Millisecond
	LikeSetKeyPrefix = "like:set:post"
	LikeCntKeyPrefix = "like:cnt:post"
	LockKeyPrefix    = "lock:like:post"
)

// adjustIfPresent applies a delta to a cached counter only when the counter
// exists, never dropping below zero. A missing key is rebuilt from the store
// on the next read instead of starting from a wrong base.
var adjustIfPresent = redis.NewScript(`
local v = redis.call("GET", KEYS[1])
if not v then
  return -1
end
local n = tonumber(v) + tonumber(ARGV[1])
if n < 0 then
  n = 0
end
redis.call("SET", KEYS[1], n, "PX", ARGV[2])
return n
`)

var releaseLock = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
else
  return 0
end`)

type LikeCacheRepository struct {
	RDB        *redis.Client
	likeSetTTL time.Duration
	likeCntTTL time.Duration
}

func NewLikeCacheRepository(rdb *redis.Client) *LikeCacheRepository {
	return &LikeCacheRepository{
		RDB:        rdb,
		likeSetTTL: LikeSetTTL,
		likeCntTTL: LikeCntTTL,
	}
}

func likeSetKey(postID string) string { return fmt.Sprintf("%s:%s", LikeSetKeyPrefix, postID) }
func likeCntKey(postID string) string { return fmt.Sprintf("%s:%s", LikeCntKeyPrefix, postID) }
func lockKey(postID string) string    { return fmt.Sprintf("%s:%s", LockKeyPrefix, postID) }

// AddLike mirrors a successful store write into the cache.
func (r *LikeCacheRepository) AddLike(ctx context.Context, userID, postID string) error {
	r.WarmIsLiked(ctx, userID, postID, true)
	return adjustIfPresent.Run(ctx, r.RDB, []string{likeCntKey(postID)}, 1, r.likeCntTTL.Milliseconds()).Err()
}

func (r *LikeCacheRepository) RemoveLike(ctx context.Context, userID, postID string) error {
	r.WarmIsLiked(ctx, userID, postID, false)
	return adjustIfPresent.Run(ctx, r.RDB, []string{likeCntKey(postID)}, -1, r.likeCntTTL.Milliseconds()).Err()
}

// IsLikedCached returns (liked, hit, err). hit is false when the post's like
// set is not cached.
func (r *LikeCacheRepository) IsLikedCached(ctx context.Context, userID, postID string) (bool, bool, error) {
	k := likeSetKey(postID)
	exists, err := r.RDB.Exists(ctx, k).Result()
	if err != nil || exists == 0 {
		return false, false, err
	}
	b, err := r.RDB.SIsMember(ctx, k, userID).Result()
	return b, true, err
}

// WarmLikedSet caches the full like set of a post.
func (r *LikeCacheRepository) WarmLikedSet(ctx context.Context, postID string, userIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}
	k := likeSetKey(postID)
	members := make([]any, len(userIDs))
	for i, id := range userIDs {
		members[i] = id
	}
	_, err := r.RDB.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, k)
		p.SAdd(ctx, k, members...)
		p.Expire(ctx, k, r.likeSetTTL)
		return nil
	})
	return err
}

// WarmIsLiked only touches an existing set so the cache never grows from
// single-user writes.
func (r *LikeCacheRepository) WarmIsLiked(ctx context.Context, userID, postID string, liked bool) {
	k := likeSetKey(postID)
	if ok, _ := r.RDB.Exists(ctx, k).Result(); ok > 0 {
		if liked {
			_ = r.RDB.SAdd(ctx, k, userID).Err()
		} else {
			_ = r.RDB.SRem(ctx, k, userID).Err()
		}
		_ = r.RDB.Expire(ctx, k, r.likeSetTTL).Err()
	}
}

func (r *LikeCacheRepository) GetLikeCountCached(ctx context.Context, postID string) (int64, bool, error) {
	val, err := r.RDB.Get(ctx, likeCntKey(postID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	return val, err == nil, err
}

func (r *LikeCacheRepository) SetLikeCount(ctx context.Context, postID string, cnt int64) error {
	return r.RDB.Set(ctx, likeCntKey(postID), cnt, r.likeCntTTL).Err()
}

// DeleteCount drops the counter and the like set, optionally deleting the
// counter again after delay to beat a concurrent rebuild.
func (r *LikeCacheRepository) DeleteCount(ctx context.Context, postID string, delay ...time.Duration) error {
	key := likeCntKey(postID)
	if err := r.RDB.Del(ctx, key, likeSetKey(postID)).Err(); err != nil {
		return err
	}
	if len(delay) > 0 && delay[0] > 0 {
		d := delay[0]
		go func() {
			t := time.NewTimer(d)
			defer t.Stop()
			<-t.C
			_ = r.RDB.Del(context.Background(), key).Err()
		}()
	}
	return nil
}

// DistLock is a single-instance SETNX lock keyed by post.
type DistLock struct {
	RDB *redis.Client
	TTL time.Duration
}

func (l *DistLock) Acquire(ctx context.Context, postID, token string) (bool, error) {
	ttl := l.TTL
	if ttl <= 0 {
		ttl = LockTTL
	}
	return l.RDB.SetNX(ctx, lockKey(postID), token, ttl).Result()
}

// Release deletes the lock only if token still owns it.
func (l *DistLock) Release(ctx context.Context, postID, token string) error {
	return releaseLock.Run(ctx, l.RDB, []string{lockKey(postID)}, token).Err()
}
