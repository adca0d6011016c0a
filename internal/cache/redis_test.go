package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func setupTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	cache := NewRedisCache(&CacheConfig{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Close() })

	return cache, mr
}

func TestDefaultCacheConfig(t *testing.T) {
	config := DefaultCacheConfig()

	if config.Addr != "localhost:6379" {
		t.Errorf("Expected Addr to be localhost:6379, got %s", config.Addr)
	}
	if config.PoolSize != 10 {
		t.Errorf("Expected PoolSize to be 10, got %d", config.PoolSize)
	}
	if config.DialTimeout != 5*time.Second {
		t.Errorf("Expected DialTimeout to be 5s, got %v", config.DialTimeout)
	}
}

func TestRedisCache_SetAndGet(t *testing.T) {
	cache, _ := setupTestCache(t)

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	if err := cache.Set("key1", payload{Name: "tasks", Count: 3}, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var got payload
	if err := cache.Get("key1", &got); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Name != "tasks" || got.Count != 3 {
		t.Errorf("Unexpected value: %+v", got)
	}
}

func TestRedisCache_GetMiss(t *testing.T) {
	cache, _ := setupTestCache(t)

	var dest string
	err := cache.Get("absent", &dest)
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss, got %v", err)
	}
}

func TestRedisCache_Delete(t *testing.T) {
	cache, _ := setupTestCache(t)

	if err := cache.Set("key1", "value", time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := cache.Delete("key1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	var dest string
	if err := cache.Get("key1", &dest); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss after delete, got %v", err)
	}
}

func TestRedisCache_DeletePattern(t *testing.T) {
	cache, _ := setupTestCache(t)

	for _, key := range []string{"tasks_list:a", "tasks_list:b", "task:1"} {
		if err := cache.Set(key, "v", time.Minute); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	if err := cache.DeletePattern("tasks_list:*"); err != nil {
		t.Fatalf("DeletePattern failed: %v", err)
	}

	var dest string
	if err := cache.Get("tasks_list:a", &dest); !errors.Is(err, ErrCacheMiss) {
		t.Error("Expected tasks_list:a to be gone")
	}
	if err := cache.Get("task:1", &dest); err != nil {
		t.Errorf("Expected task:1 to survive, got %v", err)
	}
}

func TestRedisCache_Expiration(t *testing.T) {
	cache, mr := setupTestCache(t)

	if err := cache.Set("key1", "value", time.Second); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	mr.FastForward(2 * time.Second)

	var dest string
	if err := cache.Get("key1", &dest); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss after expiration, got %v", err)
	}
}

func TestRedisCache_Exists(t *testing.T) {
	cache, _ := setupTestCache(t)

	exists, err := cache.Exists("key1")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("Expected key1 to not exist")
	}

	if err := cache.Set("key1", "value", time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	exists, err = cache.Exists("key1")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Error("Expected key1 to exist")
	}
}

func TestRedisCache_Health(t *testing.T) {
	cache, mr := setupTestCache(t)

	if err := cache.Health(); err != nil {
		t.Errorf("Expected healthy cache, got %v", err)
	}

	mr.Close()

	if err := cache.Health(); err == nil {
		t.Error("Expected health check to fail after server shutdown")
	}
}
