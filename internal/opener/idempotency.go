package opener

import (
	"context"
	"strconv"
	"time"

	"github.com/gesthub/gesthub/pkg/logger"
	"github.com/gesthub/gesthub/pkg/redis"
	"github.com/pkg/errors"
)

var (
	ErrAlreadyOpened      = errors.New("link already opened")
	ErrLockAcquireFailed  = errors.New("failed to acquire open lock")
	ErrMaxRetriesExceeded = errors.New("maximum open attempts exceeded")
)

type IdempotencyConfig struct {
	LockTTL         time.Duration
	OpenedTTL       time.Duration
	MaxRetries      int
	RetryKeyPrefix  string
	LockKeyPrefix   string
	OpenedKeyPrefix string
}

func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		LockTTL:         30 * time.Second,
		OpenedTTL:       24 * time.Hour,
		MaxRetries:      3,
		RetryKeyPrefix:  "opener:retry:",
		LockKeyPrefix:   "opener:lock:",
		OpenedKeyPrefix: "opener:opened:",
	}
}

// IdempotencyService makes sure each outbox entry opens at most once, even
// when several agents share the consumer group or an entry is redelivered.
type IdempotencyService struct {
	redis  redis.RedisAdapter
	config IdempotencyConfig
}

func NewIdempotencyService(redisAdapter redis.RedisAdapter, config IdempotencyConfig) *IdempotencyService {
	return &IdempotencyService{
		redis:  redisAdapter,
		config: config,
	}
}

type Attempt struct {
	EntryID    string
	RetryCount int
	locked     bool
}

func (a *Attempt) IsRetry() bool {
	return a.RetryCount > 0
}

// Acquire claims entryID for this agent.
func (s *IdempotencyService) Acquire(ctx context.Context, entryID string) (*Attempt, error) {
	opened, err := s.IsOpened(ctx, entryID)
	if err != nil {
		// treated as not opened
		logger.Warn("failed to check opened marker", "entry", entryID, "error", err)
	} else if opened {
		return nil, ErrAlreadyOpened
	}

	retries, err := s.RetryCount(ctx, entryID)
	if err != nil {
		logger.Warn("failed to read retry counter", "entry", entryID, "error", err)
	}
	if retries >= s.config.MaxRetries {
		return nil, errors.Wrapf(ErrMaxRetriesExceeded, "entry %s after %d attempts", entryID, retries)
	}

	token := []byte(strconv.FormatInt(time.Now().UnixNano(), 10))
	acquired, err := s.redis.SetNX(ctx, s.config.LockKeyPrefix+entryID, token, s.config.LockTTL)
	if err != nil {
		return nil, errors.Wrap(ErrLockAcquireFailed, err.Error())
	}
	if !acquired {
		return nil, ErrLockAcquireFailed
	}

	return &Attempt{EntryID: entryID, RetryCount: retries, locked: true}, nil
}

// MarkSuccess stores the opened marker and clears the bookkeeping keys.
func (s *IdempotencyService) MarkSuccess(ctx context.Context, a *Attempt) error {
	if err := s.redis.Set(ctx, s.config.OpenedKeyPrefix+a.EntryID, []byte("1"), s.config.OpenedTTL); err != nil {
		return errors.Wrap(err, "mark opened")
	}
	s.delete(ctx, a.EntryID, s.config.LockKeyPrefix, s.config.RetryKeyPrefix)
	a.locked = false
	return nil
}

// MarkFailure bumps the retry counter and frees the lock for the next try.
func (s *IdempotencyService) MarkFailure(ctx context.Context, a *Attempt, reason error) {
	next := a.RetryCount + 1
	if err := s.redis.Set(ctx, s.config.RetryKeyPrefix+a.EntryID, []byte(strconv.Itoa(next)), s.config.OpenedTTL); err != nil {
		logger.Error("failed to bump retry counter", "entry", a.EntryID, "error", err)
	}
	s.delete(ctx, a.EntryID, s.config.LockKeyPrefix)
	a.locked = false

	logger.Warn("link open failed, will retry",
		"entry", a.EntryID,
		"retry_count", next,
		"max_retries", s.config.MaxRetries,
		"reason", reason)
}

func (s *IdempotencyService) Release(ctx context.Context, a *Attempt) {
	if a == nil || !a.locked {
		return
	}
	s.delete(ctx, a.EntryID, s.config.LockKeyPrefix)
	a.locked = false
}

func (s *IdempotencyService) RetryCount(ctx context.Context, entryID string) (int, error) {
	raw, err := s.redis.Get(ctx, s.config.RetryKeyPrefix+entryID)
	if err != nil {
		if errors.Is(err, redis.NilError) {
			return 0, nil
		}
		return 0, err
	}
	n, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0, errors.Wrapf(err, "parse retry counter for %s", entryID)
	}
	return n, nil
}

func (s *IdempotencyService) IsOpened(ctx context.Context, entryID string) (bool, error) {
	exists, err := s.redis.Exist(ctx, s.config.OpenedKeyPrefix+entryID)
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}

func (s *IdempotencyService) delete(ctx context.Context, entryID string, prefixes ...string) {
	for _, p := range prefixes {
		if err := s.redis.Del(ctx, p+entryID); err != nil {
			logger.Warn("failed to delete opener key", "key", p+entryID, "error", err)
		}
	}
}
