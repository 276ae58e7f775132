package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"hotelbooking/internal/domain"
)

// CachedRuleSource keeps each room's active rules in Redis. Redis failures
// fall through to the wrapped source. Every invalidation bumps a per-room
// generation; a fill that raced with one is deleted again.
type CachedRuleSource struct {
	next RuleSource
	rdb  *redis.Client
	ttl  time.Duration
}

func NewCachedRuleSource(next RuleSource, rdb *redis.Client, ttl time.Duration) *CachedRuleSource {
	return &CachedRuleSource{next: next, rdb: rdb, ttl: ttl}
}

func RoomRulesKey(roomID int64) string {
	return fmt.Sprintf("pricing:rules:room:%d", roomID)
}

func RoomRulesGenKey(roomID int64) string {
	return RoomRulesKey(roomID) + ":gen"
}

func (c *CachedRuleSource) generation(ctx context.Context, roomID int64) (string, error) {
	gen, err := c.rdb.Get(ctx, RoomRulesGenKey(roomID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return gen, err
}

func (c *CachedRuleSource) ActiveRulesForRoom(ctx context.Context, roomID int64) ([]domain.SpecialPriceRule, error) {
	key := RoomRulesKey(roomID)

	raw, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		var rules []domain.SpecialPriceRule
		if jerr := json.Unmarshal([]byte(raw), &rules); jerr == nil {
			return rules, nil
		}
		log.WithField("key", key).Warn("discarding undecodable pricing cache entry")
	case !errors.Is(err, redis.Nil):
		log.WithError(err).WithField("key", key).Warn("pricing cache read failed")
	}

	gen, genErr := c.generation(ctx, roomID)
	rules, err := c.next.ActiveRulesForRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if genErr != nil {
		return rules, nil
	}

	data, err := json.Marshal(rules)
	if err != nil {
		return rules, nil
	}
	if err := c.rdb.Set(ctx, key, string(data), c.ttl).Err(); err != nil {
		log.WithError(err).WithField("key", key).Warn("pricing cache write failed")
		return rules, nil
	}
	if now, err := c.generation(ctx, roomID); err != nil || now != gen {
		if err := c.rdb.Del(ctx, key).Err(); err != nil {
			log.WithError(err).WithField("key", key).Warn("pricing cache stale entry not dropped")
		}
	}
	return rules, nil
}

// Invalidate bumps the generation of the given rooms and drops their cached rule lists.
func (c *CachedRuleSource) Invalidate(ctx context.Context, roomIDs ...int64) {
	if len(roomIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(roomIDs))
	for _, id := range roomIDs {
		if err := c.rdb.Incr(ctx, RoomRulesGenKey(id)).Err(); err != nil {
			log.WithError(err).WithField("room_id", id).Warn("pricing cache generation bump failed")
		}
		keys = append(keys, RoomRulesKey(id))
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		log.WithError(err).WithField("keys", keys).Warn("pricing cache invalidation failed")
	}
}
