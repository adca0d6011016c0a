package services

import (
	"context"
	"errors"
	"testing"

	"taskboard/backend/internal/cache"
	"taskboard/backend/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newCachedService(t *testing.T) (*CachedTaskService, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	redisCache := cache.NewRedisCache(&cache.CacheConfig{Addr: mr.Addr()})
	t.Cleanup(func() { redisCache.Close() })

	return NewCachedTaskService(newTestService(t), redisCache), mr
}

func TestCachedService_PointLookupCached(t *testing.T) {
	svc, mr := newCachedService(t)
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, models.CreateTaskRequest{Title: "t", Description: "d"})
	require.NoError(t, err)

	got, err := svc.GetTaskByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	assert.True(t, mr.Exists("task:"+created.ID))
}

func TestCachedService_ServesFromCache(t *testing.T) {
	svc, _ := newCachedService(t)
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, models.CreateTaskRequest{Title: "t", Description: "d"})
	require.NoError(t, err)

	// Remove the row behind the cache's back; a hit proves the cache
	// answered.
	_, err = svc.taskService.DeleteTask(ctx, created.ID)
	require.NoError(t, err)

	got, err := svc.GetTaskByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestCachedService_ListInvalidatedOnMutation(t *testing.T) {
	svc, mr := newCachedService(t)
	ctx := context.Background()

	_, err := svc.CreateTask(ctx, models.CreateTaskRequest{Title: "first", Description: "d"})
	require.NoError(t, err)

	tasks, pagination, err := svc.GetTasks(ctx, models.DefaultFilters())
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
	assert.Equal(t, int64(1), pagination.Total)

	keys := mr.Keys()
	found := false
	for _, k := range keys {
		if len(k) > 10 && k[:10] == "tasks_list" {
			found = true
		}
	}
	assert.True(t, found, "expected a cached list page, keys: %v", keys)

	_, err = svc.CreateTask(ctx, models.CreateTaskRequest{Title: "second", Description: "d"})
	require.NoError(t, err)

	tasks, pagination, err = svc.GetTasks(ctx, models.DefaultFilters())
	require.NoError(t, err)
	assert.Len(t, tasks, 2, "new task must appear after invalidation")
	assert.Equal(t, int64(2), pagination.Total)
}

func TestCachedService_DeleteEvicts(t *testing.T) {
	svc, mr := newCachedService(t)
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, models.CreateTaskRequest{Title: "t", Description: "d"})
	require.NoError(t, err)
	require.True(t, mr.Exists("task:"+created.ID))

	deleted, err := svc.DeleteTask(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.False(t, mr.Exists("task:"+created.ID))

	_, err = svc.GetTaskByID(ctx, created.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestCachedService_UpdateRefreshesEntry(t *testing.T) {
	svc, _ := newCachedService(t)
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, models.CreateTaskRequest{Title: "before", Description: "d"})
	require.NoError(t, err)

	title := "after"
	updated, err := svc.UpdateTask(ctx, created.ID, models.UpdateTaskRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "after", updated.Title)

	got, err := svc.GetTaskByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "after", got.Title)
}

func TestListKey_SearchCannotForgeOtherComponents(t *testing.T) {
	low := models.PriorityLow

	withPriority := models.DefaultFilters()
	withPriority.Priority = &low
	withPriority.Search = "s"

	searchOnly := models.DefaultFilters()
	searchOnly.Search = "low:s"

	assert.NotEqual(t, listKey(withPriority), listKey(searchOnly))

	sameSearch := models.DefaultFilters()
	sameSearch.Search = "low:s"
	assert.Equal(t, listKey(searchOnly), listKey(sameSearch))
}
