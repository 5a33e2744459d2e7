// Package app wires configuration into a ready audit engine and its stores.
package app

import (
	"context"
	"time"

	"indiamart-audit/internal/audit"
	"indiamart-audit/internal/common/config"
	"indiamart-audit/internal/common/database"
	apperrors "indiamart-audit/internal/common/errors"
	"indiamart-audit/internal/common/logger"
	"indiamart-audit/internal/common/observability"
	"indiamart-audit/internal/llm"
	"indiamart-audit/internal/notify"
	"indiamart-audit/internal/reconcile/advisory"
	"indiamart-audit/internal/store"
)

// Options tune how hard Build tries to reach its dependencies.
type Options struct {
	ServiceName  string
	ConnectTries int
	ConnectDelay time.Duration
}

type Services struct {
	Config        *config.Config
	Postgres      *database.PostgresClient
	Redis         *database.RedisClient
	Elasticsearch *database.ElasticsearchClient
	Results       *store.ResultStore
	Sessions      *store.SessionTracker
	Engine        *audit.Engine
	Observability *observability.Observability

	log logger.Logger
}

// Build connects every backing service and assembles the engine. The LLM
// client is created first so missing credentials fail before any connection.
func Build(ctx context.Context, cfg *config.Config, opts Options, log logger.Logger) (*Services, error) {
	if opts.ConnectTries <= 0 {
		opts.ConnectTries = 1
	}
	if opts.ConnectDelay <= 0 {
		opts.ConnectDelay = 2 * time.Second
	}

	llmClient, err := llm.NewClient(cfg.LLMClientConfig(), log)
	if err != nil {
		return nil, apperrors.NewConfigurationError("llm client", err)
	}

	s := &Services{Config: cfg, log: log}

	err = RetryWithBackoff(func() error {
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		if err := pg.Ping(ctx); err != nil {
			pg.Close()
			return err
		}
		s.Postgres = pg
		return nil
	}, opts.ConnectTries, opts.ConnectDelay, log, "PostgreSQL connection")
	if err != nil {
		return nil, apperrors.NewDatabaseConnectionFailedError(err)
	}

	s.Redis = database.NewRedis(cfg.Database.Redis)
	err = RetryWithBackoff(func() error {
		return s.Redis.Ping(ctx)
	}, opts.ConnectTries, opts.ConnectDelay, log, "Redis connection")
	if err != nil {
		s.Close()
		return nil, apperrors.NewDatabaseConnectionFailedError(err)
	}

	s.Results = store.NewResultStore(s.Postgres, log)
	if err := s.Results.EnsureSchema(ctx); err != nil {
		s.Close()
		return nil, apperrors.NewDatabaseConnectionFailedError(err)
	}
	s.Sessions = store.NewSessionTracker(s.Redis.Client, cfg.SessionTTL())

	deps := audit.Deps{
		Store:    s.Results,
		Sessions: s.Sessions,
	}

	if cfg.Database.Elasticsearch.Enabled() {
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err == nil {
			err = es.Ping(ctx)
		}
		if err == nil {
			err = es.EnsureIndex(ctx, cfg.Audit.ResultIndex, store.ResultIndexMapping)
		}
		if err != nil {
			log.Warn("elasticsearch unavailable, result indexing disabled", map[string]interface{}{"error": err.Error()})
		} else {
			s.Elasticsearch = es
			deps.Indexer = store.NewResultIndexer(es.Client, cfg.Audit.ResultIndex, log)
		}
	}

	notifyCfg := NotifyConfig(cfg)
	if notifyCfg.Enabled() {
		n, err := notify.NewFromAWS(ctx, notifyCfg, log)
		if err != nil {
			log.Warn("notifications disabled", map[string]interface{}{"error": err.Error()})
		} else {
			deps.Notifier = n
		}
	}

	name := opts.ServiceName
	if name == "" {
		name = cfg.App.Name
	}
	s.Observability = observability.New(name, log)
	deps.Observability = s.Observability

	reconciler := advisory.NewReconciler(cfg.AdvisoryConfig(), llmClient, log)
	s.Engine = audit.NewEngine(&audit.Config{
		NormalizerCacheSize: cfg.Audit.NormalizerCacheSize,
	}, reconciler, deps, log)

	log.Info("audit services ready", map[string]interface{}{
		"model":         cfg.LLM.Model,
		"batchSize":     reconciler.BatchSize(),
		"concurrency":   reconciler.Concurrency(),
		"indexing":      deps.Indexer != nil,
		"notifications": deps.Notifier != nil,
	})
	return s, nil
}

// NotifyConfig maps the notifications section.
func NotifyConfig(cfg *config.Config) *notify.Config {
	n := cfg.Notifications
	return &notify.Config{
		Region:     n.Region,
		SNSEnabled: n.SNS.Enabled,
		TopicARN:   n.SNS.TopicARN,
		SESEnabled: n.SES.Enabled,
		FromEmail:  n.SES.FromEmail,
		ToEmails:   n.SES.ToEmails,
	}
}

// Ready pings postgres and redis.
func (s *Services) Ready(ctx context.Context) error {
	if err := s.Postgres.Ping(ctx); err != nil {
		return err
	}
	return s.Redis.Ping(ctx)
}

func (s *Services) Close() {
	if s.Observability != nil {
		s.Observability.Shutdown()
	}
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			s.log.Warn("redis close failed", map[string]interface{}{"error": err.Error()})
		}
	}
	if s.Postgres != nil {
		if err := s.Postgres.Close(); err != nil {
			s.log.Warn("postgres close failed", map[string]interface{}{"error": err.Error()})
		}
	}
}
