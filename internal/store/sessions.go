package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"indiamart-audit/internal/models"
)

var ErrSessionNotFound = errors.New("SESSION_NOT_FOUND")

const sessionKeyPrefix = "audit:session:"

// SessionTracker keeps the live state of audit runs in a redis hash per session.
type SessionTracker struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionTracker(client *redis.Client, ttl time.Duration) *SessionTracker {
	return &SessionTracker{client: client, ttl: ttl, now: time.Now}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

// Start marks a session as running and resets its counters.
func (t *SessionTracker) Start(ctx context.Context, sessionID string, total int) error {
	key := sessionKey(sessionID)
	_, err := t.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key,
			"status", string(models.SessionRunning),
			"totalRecords", total,
			"processedRecords", 0,
			"advisoryFailures", 0,
			"startedAt", t.now().UTC().Format(time.RFC3339Nano),
		)
		if t.ttl > 0 {
			pipe.Expire(ctx, key, t.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("start session %s: %w", sessionID, err)
	}
	return nil
}

// Advance adds a finished batch to the session counters.
func (t *SessionTracker) Advance(ctx context.Context, sessionID string, processed, advisoryFailures int) error {
	key := sessionKey(sessionID)
	_, err := t.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, key, "processedRecords", int64(processed))
		pipe.HIncrBy(ctx, key, "advisoryFailures", int64(advisoryFailures))
		return nil
	})
	if err != nil {
		return fmt.Errorf("advance session %s: %w", sessionID, err)
	}
	return nil
}

func (t *SessionTracker) Complete(ctx context.Context, sessionID string) error {
	return t.finish(ctx, sessionID, models.SessionCompleted, "")
}

func (t *SessionTracker) Fail(ctx context.Context, sessionID string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return t.finish(ctx, sessionID, models.SessionFailed, msg)
}

func (t *SessionTracker) finish(ctx context.Context, sessionID string, status models.SessionStatus, errMsg string) error {
	err := t.client.HSet(ctx, sessionKey(sessionID),
		"status", string(status),
		"finishedAt", t.now().UTC().Format(time.RFC3339Nano),
		"error", errMsg,
	).Err()
	if err != nil {
		return fmt.Errorf("finish session %s: %w", sessionID, err)
	}
	return nil
}

// Get returns the tracked state of a session.
func (t *SessionTracker) Get(ctx context.Context, sessionID string) (*models.AuditSession, error) {
	fields, err := t.client.HGetAll(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", sessionID, err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	s := &models.AuditSession{
		ID:     sessionID,
		Status: models.SessionStatus(fields["status"]),
		Error:  fields["error"],
	}
	s.TotalRecords, _ = strconv.Atoi(fields["totalRecords"])
	s.ProcessedRecords, _ = strconv.Atoi(fields["processedRecords"])
	s.AdvisoryFailures, _ = strconv.Atoi(fields["advisoryFailures"])
	if ts, err := time.Parse(time.RFC3339Nano, fields["startedAt"]); err == nil {
		s.StartedAt = ts
	}
	if ts, err := time.Parse(time.RFC3339Nano, fields["finishedAt"]); err == nil {
		s.FinishedAt = &ts
	}
	return s, nil
}
