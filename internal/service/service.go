package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/meter-compare/internal/cache"
	"github.com/ANIKETSHETTY47/meter-compare/internal/compare"
	"github.com/ANIKETSHETTY47/meter-compare/internal/conversion"
	"github.com/ANIKETSHETTY47/meter-compare/internal/domain"
	"github.com/ANIKETSHETTY47/meter-compare/internal/metrics"
	"github.com/ANIKETSHETTY47/meter-compare/internal/repository"
)

type Services struct {
	Repos       *repository.Repos
	Compare     *CompareService
	Conversions *ConversionService
}

type options struct {
	redis    *redis.Client
	cacheTTL time.Duration
	metrics  *metrics.Metrics
	parallel bool
}

type Option func(*options)

// WithConversionCache serves conversion snapshots from redis.
func WithConversionCache(client *redis.Client, ttl time.Duration) Option {
	return func(o *options) { o.redis, o.cacheTTL = client, ttl }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func WithParallelWindows(on bool) Option {
	return func(o *options) { o.parallel = on }
}

func New(db *sqlx.DB, opts ...Option) *Services {
	o := options{parallel: true}
	for _, opt := range opts {
		opt(&o)
	}

	repos := repository.New(db)
	store := &engineStore{Repos: repos}
	if o.redis != nil {
		store.cache = cache.NewConversions(o.redis, repos, o.cacheTTL)
	}
	engine := compare.NewEngine(store, compare.WithParallelWindows(o.parallel))

	return &Services{
		Repos:       repos,
		Compare:     &CompareService{engine: engine, metrics: o.metrics},
		Conversions: &ConversionService{repos: repos, engine: engine, cache: store.cache},
	}
}

// engineStore routes conversion reads through the cache when one is set.
type engineStore struct {
	*repository.Repos
	cache *cache.Conversions
}

func (s *engineStore) Conversions(ctx context.Context) ([]domain.Conversion, error) {
	if s.cache != nil {
		return s.cache.Conversions(ctx)
	}
	return s.Repos.Conversions(ctx)
}

type CompareService struct {
	engine  *compare.Engine
	metrics *metrics.Metrics
}

func (s *CompareService) Compare(ctx context.Context, req compare.Request) (compare.Result, error) {
	started := time.Now()
	res, err := s.engine.Compare(ctx, req)
	s.metrics.ObserveCompare(req.Kind, started, err)

	if err != nil {
		ev := log.Warn()
		if errors.Is(err, domain.ErrStorage) {
			ev = log.Error()
		}
		ev.Err(err).Stringer("target", req.Target).Msg("compare failed")
		return compare.Result{}, err
	}
	pair := res.Pair()
	log.Debug().
		Stringer("target", req.Target).
		Time("curr_start", req.CurrentStart).
		Time("curr_end", req.CurrentEnd).
		Dur("shift", req.Shift).
		Int64("unit", req.UnitID).
		Floats64("pair", pair[:]).
		Int("curr_readings", res.CurrentTotal.Readings).
		Int("shift_readings", res.ShiftedTotal.Readings).
		Msg("compare")
	return res, nil
}

func (s *CompareService) Aggregate(ctx context.Context, target compare.Target, w compare.Window) (compare.Total, error) {
	return s.engine.Aggregate(ctx, target, w)
}

type ConversionService struct {
	repos  *repository.Repos
	engine *compare.Engine
	cache  *cache.Conversions
}

func (s *ConversionService) List(ctx context.Context) ([]domain.Conversion, error) {
	return s.repos.Conversions(ctx)
}

func (s *ConversionService) Resolve(ctx context.Context, src, dst int64) (conversion.Transform, error) {
	return s.engine.Convert(ctx, src, dst)
}

// Add stores a new conversion edge and drops the cached snapshot.
func (s *ConversionService) Add(ctx context.Context, c domain.Conversion) error {
	if c.SourceID == c.DestinationID {
		return fmt.Errorf("%w: conversion from unit %d to itself", domain.ErrInvalidArgument, c.SourceID)
	}
	if c.Slope == 0 {
		return fmt.Errorf("%w: conversion slope must be non-zero", domain.ErrInvalidArgument)
	}
	for _, id := range []int64{c.SourceID, c.DestinationID} {
		if _, err := s.repos.Unit(ctx, id); err != nil {
			return err
		}
	}
	if err := s.repos.InsertConversion(ctx, &c); err != nil {
		return fmt.Errorf("%w: insert conversion: %w", domain.ErrStorage, err)
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			log.Warn().Err(err).Msg("conversion cache invalidate failed")
		}
	}
	log.Info().
		Int64("source", c.SourceID).
		Int64("destination", c.DestinationID).
		Float64("slope", c.Slope).
		Float64("intercept", c.Intercept).
		Bool("bidirectional", c.Bidirectional).
		Msg("conversion added")
	return nil
}
