// Package cache keeps a redis copy of the conversion graph snapshot so
// compare requests do not hit the conversions table every time.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/meter-compare/internal/domain"
)

const DefaultKey = "meter-compare:conversions"

// ConversionSource is the authoritative store for conversion rows.
type ConversionSource interface {
	Conversions(ctx context.Context) ([]domain.Conversion, error)
}

type Conversions struct {
	redis  *redis.Client
	source ConversionSource
	key    string
	ttl    time.Duration
}

func NewConversions(client *redis.Client, source ConversionSource, ttl time.Duration) *Conversions {
	return &Conversions{redis: client, source: source, key: DefaultKey, ttl: ttl}
}

// Conversions returns the cached snapshot, loading it from the source on a
// miss. Redis failures fall back to the source.
func (c *Conversions) Conversions(ctx context.Context) ([]domain.Conversion, error) {
	data, err := c.redis.Get(ctx, c.key).Bytes()
	switch {
	case err == nil:
		var out []domain.Conversion
		if err := json.Unmarshal(data, &out); err == nil {
			return out, nil
		}
		log.Warn().Str("key", c.key).Msg("discarding undecodable conversion snapshot")
	case !errors.Is(err, redis.Nil):
		log.Warn().Err(err).Msg("conversion cache read failed")
	}

	out, err := c.source.Conversions(ctx)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(out); err == nil {
		if err := c.redis.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
			log.Warn().Err(err).Msg("conversion cache write failed")
		}
	}
	return out, nil
}

// Invalidate drops the snapshot so the next read reloads it.
func (c *Conversions) Invalidate(ctx context.Context) error {
	return c.redis.Del(ctx, c.key).Err()
}
