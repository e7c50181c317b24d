package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gotomicro/ego/core/elog"
	ca "github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/rangerops/clubhouse-rbs/internal/domain"
)

var ErrKeyNotFound = errors.New("key not found")

const (
	localTTL = 10 * time.Minute
	redisTTL = 30 * time.Minute
)

// AlertCache layers an in-process cache in front of redis. Alerts are small
// immutable reference data, so a stale entry is harmless.
type AlertCache struct {
	rdb    redis.Cmdable
	local  *ca.Cache
	logger *elog.Component
}

func NewAlertCache(rdb redis.Cmdable) *AlertCache {
	return &AlertCache{
		rdb:    rdb,
		local:  ca.New(localTTL, localTTL),
		logger: elog.DefaultLogger,
	}
}

func alertKey(id int64) string {
	return fmt.Sprintf("alert:%d", id)
}

func (c *AlertCache) Get(ctx context.Context, id int64) (domain.Alert, error) {
	key := alertKey(id)
	if v, ok := c.local.Get(key); ok {
		return v.(domain.Alert), nil
	}

	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Alert{}, ErrKeyNotFound
		}
		return domain.Alert{}, err
	}
	var alert domain.Alert
	if err := json.Unmarshal(data, &alert); err != nil {
		return domain.Alert{}, err
	}
	c.local.Set(key, alert, localTTL)
	return alert, nil
}

func (c *AlertCache) Set(ctx context.Context, alert domain.Alert) {
	key := alertKey(alert.ID)
	c.local.Set(key, alert, localTTL)

	data, err := json.Marshal(alert)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, data, redisTTL).Err(); err != nil {
		c.logger.Warn("failed to cache alert in redis",
			elog.FieldErr(err),
			elog.Int64("alertID", alert.ID))
	}
}
