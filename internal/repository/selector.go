package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	_ "github.com/lib/pq"

	"github.com/absarsolarch/ab-3/internal/config"
	"github.com/absarsolarch/ab-3/internal/domain"
)

// Backend identifies which store kind the selector settled on.
type Backend int

const (
	BackendNone Backend = iota
	BackendPostgres
	BackendRedis
)

func (b Backend) String() string {
	switch b {
	case BackendPostgres:
		return "postgres"
	case BackendRedis:
		return "redis"
	default:
		return "none"
	}
}

// Selector picks exactly one backend at process start and hands out a
// long-lived repository over it. A sentinel DB host (never provisioned, or
// explicit test mode) routes to the ephemeral Redis store; anything else
// attempts the durable Postgres store. Connection failures are retried a
// fixed number of times and then reported as ErrUnavailable — the selector
// never panics and never reconnects mid-request.
type Selector struct {
	cfg    *config.Config
	logger *zap.Logger

	// Retry knobs, overridable in tests. Defaults match the production
	// bounds: 3 tries, 1s wait on the redis path, 2s wait on the postgres
	// path, 2s dial timeout.
	MaxRetries   int
	RedisWait    time.Duration
	PostgresWait time.Duration
	DialTimeout  time.Duration
}

func NewSelector(cfg *config.Config, logger *zap.Logger) *Selector {
	return &Selector{
		cfg:          cfg,
		logger:       logger,
		MaxRetries:   3,
		RedisWait:    time.Second,
		PostgresWait: 2 * time.Second,
		DialTimeout:  2 * time.Second,
	}
}

// Select connects to the chosen backend and returns the repository handle,
// the backend kind, and an error only when every attempt was exhausted.
func (s *Selector) Select(ctx context.Context) (PropertiesRepository, Backend, error) {
	if config.DBHostIsSentinel(s.cfg.Database.Host) {
		repo, err := s.selectRedis(ctx)
		if err != nil {
			return nil, BackendNone, err
		}
		return repo, BackendRedis, nil
	}
	repo, err := s.selectPostgres(ctx)
	if err != nil {
		return nil, BackendNone, err
	}
	return repo, BackendPostgres, nil
}

func (s *Selector) selectRedis(ctx context.Context) (*RedisPropertiesRepository, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        s.cfg.Redis.Addr,
		Password:    s.cfg.Redis.Password,
		DB:          s.cfg.Redis.DB,
		DialTimeout: s.DialTimeout,
	})

	var lastErr error
	for attempt := 1; attempt <= s.MaxRetries; attempt++ {
		if lastErr = client.Ping(ctx).Err(); lastErr == nil {
			break
		}
		s.logger.Warn("redis connection attempt failed",
			zap.Int("attempt", attempt),
			zap.String("addr", s.cfg.Redis.Addr),
			zap.Error(lastErr),
		)
		if attempt < s.MaxRetries {
			time.Sleep(s.RedisWait)
		}
	}
	if lastErr != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: redis at %s: %v", ErrUnavailable, s.cfg.Redis.Addr, lastErr)
	}

	repo := NewRedisPropertiesRepository(client)
	if err := s.seedIfEmpty(ctx, repo); err != nil {
		// Seeding is a convenience, not a requirement.
		s.logger.Warn("failed to seed sample property", zap.Error(err))
	}
	s.logger.Info("using ephemeral backend", zap.String("addr", s.cfg.Redis.Addr))
	return repo, nil
}

// seedIfEmpty stores one fixed sample record the first time an empty
// ephemeral store is selected.
func (s *Selector) seedIfEmpty(ctx context.Context, repo *RedisPropertiesRepository) error {
	empty, err := repo.Empty(ctx)
	if err != nil || !empty {
		return err
	}
	sample := domain.SampleProperty()
	_, err = repo.Create(ctx, &sample)
	return err
}

func (s *Selector) selectPostgres(ctx context.Context) (*PostgresPropertiesRepository, error) {
	db, err := sql.Open("postgres", s.cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var lastErr error
	for attempt := 1; attempt <= s.MaxRetries; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, s.DialTimeout)
		lastErr = db.PingContext(pingCtx)
		cancel()
		if lastErr == nil {
			break
		}
		s.logger.Warn("database connection attempt failed",
			zap.Int("attempt", attempt),
			zap.String("host", s.cfg.Database.Host),
			zap.Error(lastErr),
		)
		if attempt < s.MaxRetries {
			time.Sleep(s.PostgresWait)
		}
	}
	if lastErr != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: postgres at %s: %v", ErrUnavailable, s.cfg.Database.Host, lastErr)
	}

	repo := NewPostgresPropertiesRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	s.logger.Info("using durable backend", zap.String("host", s.cfg.Database.Host))
	return repo, nil
}
