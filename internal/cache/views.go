package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"balanca/internal/history"
	"balanca/internal/model"
)

const viewTTL = 30 * time.Minute

// ViewCache guarda no redis a última visão de cada histórico, para o
// dashboard não reler o arquivo a cada requisição.
type ViewCache struct {
	Client *redis.Client
}

func key(kind model.TableKind) string {
	return "balanca:view:" + string(kind)
}

func (c *ViewCache) Get(ctx context.Context, kind model.TableKind) (history.View, bool) {
	var v history.View
	if c == nil || c.Client == nil {
		return v, false
	}
	val, err := c.Client.Get(ctx, key(kind)).Result()
	if err != nil {
		return v, false
	}
	if err := json.Unmarshal([]byte(val), &v); err != nil {
		return v, false
	}
	return v, true
}

func (c *ViewCache) Set(ctx context.Context, v history.View) error {
	if c == nil || c.Client == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, key(v.Kind), b, viewTTL).Err()
}
