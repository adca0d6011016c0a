package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"taskboard/backend/internal/cache"
	"taskboard/backend/internal/models"
)

const (
	taskCacheTTL = 30 * time.Minute
	listCacheTTL = 5 * time.Minute
)

// CachedTaskService is a read-through decorator over a TaskService. Point
// lookups and list pages are cached; every mutation invalidates both.
type CachedTaskService struct {
	taskService TaskService
	cache       *cache.RedisCache
}

func NewCachedTaskService(taskService TaskService, cacheInstance *cache.RedisCache) *CachedTaskService {
	return &CachedTaskService{
		taskService: taskService,
		cache:       cacheInstance,
	}
}

func taskKey(id string) string {
	return fmt.Sprintf("task:%s", id)
}

func listKey(filters models.TaskFilters) string {
	status, priority := "", ""
	if filters.Status != nil {
		status = string(*filters.Status)
	}
	if filters.Priority != nil {
		priority = string(*filters.Priority)
	}
	// Search is caller-controlled free text, so it is hashed to keep it
	// from forging the other key components.
	search := ""
	if filters.Search != "" {
		sum := sha256.Sum256([]byte(filters.Search))
		search = hex.EncodeToString(sum[:8])
	}
	return fmt.Sprintf("tasks_list:%s:%s:%s:%s:%s:%d:%d",
		status, priority, search,
		filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)
}

func (s *CachedTaskService) invalidateLists() {
	s.cache.DeletePattern("tasks_list:*")
}

func (s *CachedTaskService) CreateTask(ctx context.Context, req models.CreateTaskRequest) (models.Task, error) {
	task, err := s.taskService.CreateTask(ctx, req)
	if err != nil {
		return task, err
	}

	s.cache.Set(taskKey(task.ID), task, taskCacheTTL)
	s.invalidateLists()

	return task, nil
}

func (s *CachedTaskService) GetTaskByID(ctx context.Context, id string) (models.Task, error) {
	var cached models.Task
	if err := s.cache.Get(taskKey(id), &cached); err == nil {
		return cached, nil
	}

	task, err := s.taskService.GetTaskByID(ctx, id)
	if err != nil {
		return task, err
	}

	s.cache.Set(taskKey(id), task, taskCacheTTL)

	return task, nil
}

func (s *CachedTaskService) GetTasks(ctx context.Context, filters models.TaskFilters) ([]models.Task, models.Pagination, error) {
	key := listKey(filters)

	var cached struct {
		Tasks      []models.Task     `json:"tasks"`
		Pagination models.Pagination `json:"pagination"`
	}
	if err := s.cache.Get(key, &cached); err == nil {
		return cached.Tasks, cached.Pagination, nil
	}

	tasks, pagination, err := s.taskService.GetTasks(ctx, filters)
	if err != nil {
		return tasks, pagination, err
	}

	cached.Tasks = tasks
	cached.Pagination = pagination
	s.cache.Set(key, cached, listCacheTTL)

	return tasks, pagination, nil
}

func (s *CachedTaskService) UpdateTask(ctx context.Context, id string, req models.UpdateTaskRequest) (models.Task, error) {
	task, err := s.taskService.UpdateTask(ctx, id, req)
	if err != nil {
		return task, err
	}

	s.cache.Set(taskKey(id), task, taskCacheTTL)
	s.invalidateLists()

	return task, nil
}

func (s *CachedTaskService) DeleteTask(ctx context.Context, id string) (bool, error) {
	deleted, err := s.taskService.DeleteTask(ctx, id)
	if err != nil {
		return deleted, err
	}

	s.cache.Delete(taskKey(id))
	s.invalidateLists()

	return deleted, nil
}
