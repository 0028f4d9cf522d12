package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"

	"balanca/internal/browser"
	"balanca/internal/cache"
	"balanca/internal/config"
	"balanca/internal/db"
	"balanca/internal/history"
	"balanca/internal/lock"
	"balanca/internal/observability"
	"balanca/internal/pipeline"
	"balanca/internal/repository"
	"balanca/internal/tables"
)

// New monta o Service a partir da configuração. Redis e Postgres só entram
// se REDIS_URL e DATABASE_URL estiverem definidos. A função devolvida fecha
// as conexões abertas.
func New(ctx context.Context, cfg *config.Config) (*Service, func(), error) {
	var (
		closers []func()
		once    sync.Once
	)
	closeAll := func() {
		once.Do(func() {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		})
	}

	mode, err := tables.ParseMode(cfg.LocatorMode)
	if err != nil {
		return nil, nil, err
	}

	store, closeStore, err := NewStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	closers = append(closers, closeStore)

	opts := browser.DefaultOptions()
	opts.MaxAttempts = cfg.FetchMaxAttempts
	opts.RetryDelay = cfg.FetchRetryDelay
	opts.WaitTimeout = cfg.FetchWaitTimeout
	opts.SettleDelay = cfg.FetchSettleDelay
	opts.ChromePath = cfg.ChromePath
	if cfg.UserAgent != "" {
		opts.UserAgent = cfg.UserAgent
	}

	svc := &Service{
		Store: store,
		URL:   cfg.SourceURL,
		Pipeline: &pipeline.Runner{
			Fetcher:    browser.NewChromeFetcher(opts),
			Merger:     &history.Merger{Store: store},
			Observer:   observability.Multi{observability.LogObserver{}, observability.MetricsObserver{}},
			URL:        cfg.SourceURL,
			LocateMode: mode,
		},
	}

	if cfg.RedisURL != "" {
		client, err := newRedis(cfg.RedisURL)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, func() { client.Close() })
		svc.Lock = &lock.RunLock{Client: client, TTL: cfg.LockTTL}
		svc.Cache = &cache.ViewCache{Client: client}
	}

	if cfg.DatabaseURL != "" {
		conn, err := db.New(cfg.DatabaseURL)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, func() { conn.Close() })
		runs := &repository.RunRepository{DB: conn}
		if err := runs.EnsureSchema(); err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("erro ao criar tabela de execuções: %w", err)
		}
		svc.RunLog = runs

		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, pool.Close)
		mirror := &repository.HistoryRepository{DB: pool}
		if err := mirror.EnsureSchema(ctx); err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("erro ao criar tabela do espelho: %w", err)
		}
		svc.Mirror = mirror
	}

	return svc, closeAll, nil
}

// NewStore escolhe o armazenamento do histórico (csv ou sqlite).
func NewStore(cfg *config.Config) (history.Store, func(), error) {
	switch strings.ToLower(cfg.HistoryBackend) {
	case "", "csv":
		return &history.CSVStore{Dir: cfg.HistoryDir}, func() {}, nil
	case "sqlite":
		s, err := history.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	}
	return nil, nil, fmt.Errorf("HISTORY_BACKEND desconhecido: %q", cfg.HistoryBackend)
}

// newRedis aceita tanto "host:porta" quanto uma URL redis://.
func newRedis(addr string) (*redis.Client, error) {
	if strings.Contains(addr, "://") {
		opts, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("REDIS_URL inválida: %w", err)
		}
		return redis.NewClient(opts), nil
	}
	log.Printf("[App] Redis em %s", addr)
	return redis.NewClient(&redis.Options{Addr: addr}), nil
}
