package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/internal/metrics"
	"github.com/DRSN-tech/storefront/pkg/clients"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
	gobreaker "github.com/sony/gobreaker/v2"
)

const sessionBreakerName = "redis-session-store"

// SessionRepo хранит данные сессий в Redis: один hash на сессию, поле на ключ.
// TTL продлевается при каждом обращении. Обращения к Redis идут через circuit breaker,
// при открытом breaker операции сразу возвращают e.ErrSessionUnavailable.
type SessionRepo struct {
	client  *clients.RedisClient
	cfg     *cfg.SessionCfg
	breaker *gobreaker.CircuitBreaker[[]byte]
	logger  logger.Logger
}

func NewSessionRepo(client *clients.RedisClient, cfg *cfg.SessionCfg, logger logger.Logger) *SessionRepo {
	s := &SessionRepo{
		client: client,
		cfg:    cfg,
		logger: logger,
	}

	s.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        sessionBreakerName,
		MaxRequests: 1,
		Timeout:     cfg.BreakerOpenDelay,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.SessionBreakerState.WithLabelValues(name).Set(float64(to))
			logger.Warnf("Session store breaker %s: %s -> %s", name, from, to)
		},
	})

	return s
}

// Get возвращает значение ключа сессии или nil, если его нет.
func (s *SessionRepo) Get(ctx context.Context, sessionID string, key string) ([]byte, error) {
	data, err := s.breaker.Execute(func() ([]byte, error) {
		var get *r.StringCmd
		_, err := s.client.Client.TxPipelined(ctx, func(p r.Pipeliner) error {
			get = p.HGet(ctx, s.sessionKey(sessionID), key)
			p.Expire(ctx, s.sessionKey(sessionID), s.cfg.IdleTTL)
			return nil
		})
		if err != nil && !errors.Is(err, r.Nil) {
			return nil, err
		}

		data, err := get.Bytes()
		if errors.Is(err, r.Nil) {
			return nil, nil
		}
		return data, err
	})
	if err != nil {
		return nil, s.fail("get", err)
	}

	return data, nil
}

func (s *SessionRepo) Set(ctx context.Context, sessionID string, key string, value []byte) error {
	_, err := s.breaker.Execute(func() ([]byte, error) {
		_, err := s.client.Client.TxPipelined(ctx, func(p r.Pipeliner) error {
			p.HSet(ctx, s.sessionKey(sessionID), key, value)
			p.Expire(ctx, s.sessionKey(sessionID), s.cfg.IdleTTL)
			return nil
		})
		return nil, err
	})
	if err != nil {
		return s.fail("set", err)
	}

	return nil
}

func (s *SessionRepo) fail(op string, err error) error {
	metrics.RecordSessionFailure(cfg.SessionBackendRedis, op)

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return e.Wrap(whereami.WhereAmI(), e.ErrSessionUnavailable)
	}

	return e.Wrap(whereami.WhereAmI(), fmt.Errorf("%w: %v", e.ErrSessionUnavailable, err))
}

func (s *SessionRepo) sessionKey(sessionID string) string {
	return "session:" + sessionID
}
