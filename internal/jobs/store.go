package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when a job id has no record.
var ErrNotFound = errors.New("job not found")

// Store abstracts job persistence and queueing so the worker can run against
// Redis in production and in memory for local runs and tests.
type Store interface {
	SaveJob(ctx context.Context, job *Job) error
	GetJob(ctx context.Context, id string) (*Job, error)
	Enqueue(ctx context.Context, jobID string) error
	// Dequeue blocks up to the store's poll timeout and returns the next
	// job id, or "" when the queue stayed empty.
	Dequeue(ctx context.Context) (string, error)
	// ClaimRate records a job for the client and reports whether the
	// client was already inside its rate window.
	ClaimRate(ctx context.Context, clientID string, window time.Duration) (bool, error)
	Ping(ctx context.Context) error
}

// RedisStore keeps jobs in hashes, the queue in a list, and rate limits as
// expiring keys.
type RedisStore struct {
	Client      *redis.Client
	QueueKey    string
	PollTimeout time.Duration
}

func NewRedisStore(addr, password, queueKey string, pollTimeout time.Duration) *RedisStore {
	return &RedisStore{
		Client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
		QueueKey:    queueKey,
		PollTimeout: pollTimeout,
	}
}

func jobKey(id string) string { return "job:" + id }

func (s *RedisStore) SaveJob(ctx context.Context, job *Job) error {
	data, err := job.Encode()
	if err != nil {
		return err
	}
	if err := s.Client.HSet(ctx, jobKey(job.ID), "data", data, "status", job.Status).Err(); err != nil {
		return fmt.Errorf("save job %s: %w", job.ID, err)
	}
	return nil
}

func (s *RedisStore) GetJob(ctx context.Context, id string) (*Job, error) {
	fields, err := s.Client.HGetAll(ctx, jobKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", id, err)
	}
	data, ok := fields["data"]
	if !ok {
		return nil, ErrNotFound
	}
	return DecodeJob(data)
}

func (s *RedisStore) Enqueue(ctx context.Context, jobID string) error {
	if err := s.Client.LPush(ctx, s.QueueKey, jobID).Err(); err != nil {
		return fmt.Errorf("enqueue %s: %w", jobID, err)
	}
	return nil
}

func (s *RedisStore) Dequeue(ctx context.Context) (string, error) {
	res, err := s.Client.BRPop(ctx, s.PollTimeout, s.QueueKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("dequeue: %w", err)
	}
	if len(res) != 2 {
		return "", fmt.Errorf("dequeue: unexpected reply %v", res)
	}
	return res[1], nil
}

func (s *RedisStore) ClaimRate(ctx context.Context, clientID string, window time.Duration) (bool, error) {
	ok, err := s.Client.SetNX(ctx, "rate:"+clientID, time.Now().Unix(), window).Result()
	if err != nil {
		return false, fmt.Errorf("rate claim %s: %w", clientID, err)
	}
	// SetNX false means a claim already exists inside the window.
	return !ok, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.Client.Ping(ctx).Err()
}

// MemoryStore is the in-process degraded mode used when Redis is not
// configured, and the fixture for worker tests.
type MemoryStore struct {
	mu          sync.Mutex
	jobs        map[string]string
	queue       chan string
	rates       map[string]time.Time
	PollTimeout time.Duration
}

func NewMemoryStore(pollTimeout time.Duration) *MemoryStore {
	return &MemoryStore{
		jobs:        make(map[string]string),
		queue:       make(chan string, 256),
		rates:       make(map[string]time.Time),
		PollTimeout: pollTimeout,
	}
}

func (s *MemoryStore) SaveJob(_ context.Context, job *Job) error {
	data, err := job.Encode()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.jobs[job.ID] = data
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) GetJob(_ context.Context, id string) (*Job, error) {
	s.mu.Lock()
	data, ok := s.jobs[id]
	s.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	return DecodeJob(data)
}

func (s *MemoryStore) Enqueue(_ context.Context, jobID string) error {
	select {
	case s.queue <- jobID:
		return nil
	default:
		return errors.New("queue full")
	}
}

func (s *MemoryStore) Dequeue(ctx context.Context) (string, error) {
	t := time.NewTimer(s.PollTimeout)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case id := <-s.queue:
		return id, nil
	case <-t.C:
		return "", nil
	}
}

func (s *MemoryStore) ClaimRate(_ context.Context, clientID string, window time.Duration) (bool, error) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.rates[clientID]; ok && now.Sub(prev) < window {
		return true, nil
	}
	s.rates[clientID] = now
	return false, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }
