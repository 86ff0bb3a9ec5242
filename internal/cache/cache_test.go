// Cache tests require a running Valkey instance and are skipped when it
// is unreachable.
package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func testClient(t *testing.T) *redis.Client {
	t.Helper()

	host := os.Getenv("VALKEY_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("VALKEY_PORT")
	if port == "" {
		port = "6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}
	t.Cleanup(func() {
		keys, _ := client.Keys(context.Background(), responseKeyPrefix+"*").Result()
		if len(keys) > 0 {
			client.Del(context.Background(), keys...)
		}
		client.Close()
	})
	return client
}

func TestResponseCacheRoundtrip(t *testing.T) {
	rc := NewResponseCache(testClient(t), time.Minute)
	ctx := context.Background()

	if _, ok := rc.Get(ctx, PostKey("missing")); ok {
		t.Fatal("miss expected for unknown key")
	}

	payload := []byte(`{"slug":"mon-voyage"}`)
	rc.Set(ctx, PostKey("mon-voyage"), payload)

	got, ok := rc.Get(ctx, PostKey("mon-voyage"))
	if !ok {
		t.Fatal("hit expected after Set")
	}
	if string(got) != string(payload) {
		t.Errorf("payload = %q", got)
	}

	rc.Invalidate(ctx, PostKey("mon-voyage"))
	if _, ok := rc.Get(ctx, PostKey("mon-voyage")); ok {
		t.Fatal("miss expected after Invalidate")
	}
}

func TestResponseCacheInvalidateAll(t *testing.T) {
	rc := NewResponseCache(testClient(t), time.Minute)
	ctx := context.Background()

	rc.Set(ctx, PostListKey(), []byte(`[]`))
	rc.Set(ctx, PostKey("a"), []byte(`{}`))
	rc.Set(ctx, ItineraryKey("a"), []byte(`{}`))

	rc.InvalidateAll(ctx)

	for _, key := range []string{PostListKey(), PostKey("a"), ItineraryKey("a")} {
		if _, ok := rc.Get(ctx, key); ok {
			t.Errorf("key %q should be gone after InvalidateAll", key)
		}
	}
}

func TestKeyBuilders(t *testing.T) {
	if PostListKey() != "posts" {
		t.Errorf("PostListKey() = %q", PostListKey())
	}
	if PostKey("x") != "post:x" {
		t.Errorf("PostKey = %q", PostKey("x"))
	}
	if ItineraryKey("x") != "itinerary:x" {
		t.Errorf("ItineraryKey = %q", ItineraryKey("x"))
	}
}
