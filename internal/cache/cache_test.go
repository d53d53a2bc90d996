package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cccbbbaaaa/culture-china/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return New(client, config.CacheConfig{Enabled: true, TTL: time.Minute, Prefix: "test:"}), mr
}

func TestFetchCachesValue(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	var calls int32
	load := func(context.Context) ([]int, error) {
		atomic.AddInt32(&calls, 1)
		return []int{3, 2, 1}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := Fetch(ctx, c, PrefixAlumni+"cohorts", load)
		if err != nil {
			t.Fatalf("fetch: %v", err)
		}
		if len(got) != 3 || got[0] != 3 {
			t.Fatalf("unexpected value %v", got)
		}
	}
	if calls != 1 {
		t.Fatalf("expected a single load, got %d", calls)
	}
	if !mr.Exists("test:alumni:cohorts") {
		t.Fatalf("expected prefixed key in redis")
	}
	if ttl := mr.TTL("test:alumni:cohorts"); ttl != time.Minute {
		t.Fatalf("unexpected ttl %v", ttl)
	}
}

func TestFetchDoesNotCacheErrors(t *testing.T) {
	c, mr := newTestCache(t)
	boom := errors.New("boom")

	_, err := Fetch(context.Background(), c, "resources:x", func(context.Context) (string, error) { return "", boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected loader error, got %v", err)
	}
	if mr.Exists("test:resources:x") {
		t.Fatalf("failed loads must not be cached")
	}
}

func TestInvalidateByPrefix(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	for _, key := range []string{"alumni:cohorts", "alumni:cohort:3", "resources:all:1"} {
		if _, err := Fetch(ctx, c, key, func(context.Context) (string, error) { return "v", nil }); err != nil {
			t.Fatalf("fetch %s: %v", key, err)
		}
	}

	c.Invalidate(ctx, PrefixAlumni)

	if mr.Exists("test:alumni:cohorts") || mr.Exists("test:alumni:cohort:3") {
		t.Fatalf("alumni keys should be gone")
	}
	if !mr.Exists("test:resources:all:1") {
		t.Fatalf("resource keys should survive")
	}
}

func TestFetchSurvivesRedisOutage(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	got, err := Fetch(context.Background(), c, "media:slot", func(context.Context) (string, error) { return "fresh", nil })
	if err != nil || got != "fresh" {
		t.Fatalf("expected loader result on outage, got %q %v", got, err)
	}
	c.Invalidate(context.Background(), PrefixMedia)
}

func TestNilCachePassesThrough(t *testing.T) {
	var c *Cache
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		got, err := Fetch(context.Background(), c, "k", func(context.Context) (int, error) { return 7, nil })
		if err != nil || got != 7 {
			t.Errorf("unexpected %d %v", got, err)
		}
	}()
	wg.Wait()
	c.Invalidate(context.Background(), PrefixAlumni)
}
