package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// RateStore coordinates rate limiting counters for a specific key.
type RateStore interface {
	Increment(ctx context.Context, key string, window time.Duration) (count int, ttl time.Duration, err error)
}

// memoryRateStore provides process-local rate limiting. It is concurrency-safe.
type memoryRateStore struct {
	mu    sync.Mutex
	data  map[string]*memoryCounter
	clock func() time.Time
}

type memoryCounter struct {
	count     int
	windowEnd time.Time
}

// NewMemoryRateStore constructs an in-memory rate store. Expired counters
// are swept every sweep interval until ctx is cancelled.
func NewMemoryRateStore(ctx context.Context, sweep time.Duration) RateStore {
	store := &memoryRateStore{
		data:  make(map[string]*memoryCounter),
		clock: time.Now,
	}
	startSweeper(ctx, store, sweep)
	return store
}

// startSweeper schedules store.sweep on a cron scheduler that stops with ctx.
func startSweeper(ctx context.Context, store *memoryRateStore, sweep time.Duration) *cron.Cron {
	if sweep <= 0 {
		sweep = time.Minute
	}
	scheduler := cron.New(cron.WithLogger(cron.DiscardLogger))
	scheduler.Schedule(cron.Every(sweep), cron.FuncJob(store.sweep))
	scheduler.Start()
	go func() {
		<-ctx.Done()
		scheduler.Stop()
	}()
	return scheduler
}

func (s *memoryRateStore) sweep() {
	now := s.clock()
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, counter := range s.data {
		if now.After(counter.windowEnd) {
			delete(s.data, key)
		}
	}
}

func (s *memoryRateStore) Increment(_ context.Context, key string, window time.Duration) (int, time.Duration, error) {
	if window <= 0 {
		window = time.Minute
	}

	now := s.clock()

	s.mu.Lock()
	defer s.mu.Unlock()

	counter, ok := s.data[key]
	if !ok || now.After(counter.windowEnd) {
		counter = &memoryCounter{
			count:     0,
			windowEnd: now.Add(window),
		}
		s.data[key] = counter
	}

	counter.count++

	return counter.count, counter.windowEnd.Sub(now), nil
}
