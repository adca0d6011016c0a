package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"taskboard/backend/internal/models"
	"taskboard/backend/internal/repositories"
	"taskboard/backend/internal/worker"

	"github.com/gofrs/uuid"
)

type TaskService interface {
	CreateTask(ctx context.Context, req models.CreateTaskRequest) (models.Task, error)
	GetTasks(ctx context.Context, filters models.TaskFilters) ([]models.Task, models.Pagination, error)
	GetTaskByID(ctx context.Context, id string) (models.Task, error)
	UpdateTask(ctx context.Context, id string, req models.UpdateTaskRequest) (models.Task, error)
	DeleteTask(ctx context.Context, id string) (bool, error)
}

type TaskServiceImpl struct {
	repo  *repositories.TaskRepository
	queue *worker.JobQueue
	now   func() time.Time
}

// NewTaskService builds the service around an explicit repository handle.
// The job queue is optional; without one, due-date reminders are skipped.
func NewTaskService(repo *repositories.TaskRepository, queue *worker.JobQueue) *TaskServiceImpl {
	return &TaskServiceImpl{
		repo:  repo,
		queue: queue,
		now:   time.Now,
	}
}

func (s *TaskServiceImpl) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

func (s *TaskServiceImpl) CreateTask(ctx context.Context, req models.CreateTaskRequest) (models.Task, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return models.Task{}, fmt.Errorf("failed to generate task id: %w", err)
	}

	priority := models.PriorityMedium
	if req.Priority != nil {
		priority = models.TaskPriority(*req.Priority)
	}

	now := s.timestamp()
	task := models.Task{
		ID:          id.String(),
		Title:       req.Title,
		Description: req.Description,
		Status:      models.StatusPending,
		Priority:    priority,
		CreatedAt:   now,
		UpdatedAt:   now,
		DueDate:     req.DueDate,
	}

	if err := s.repo.Insert(ctx, task); err != nil {
		return models.Task{}, err
	}

	s.scheduleReminder(task)

	return task, nil
}

// scheduleReminder enqueues a due-date reminder when a queue is wired.
// Scheduling failures are logged and never fail the create.
func (s *TaskServiceImpl) scheduleReminder(task models.Task) {
	if s.queue == nil || task.DueDate == nil {
		return
	}
	dueAt, err := time.Parse(time.RFC3339, *task.DueDate)
	if err != nil {
		if dueAt, err = time.Parse("2006-01-02", *task.DueDate); err != nil {
			return
		}
	}
	err = s.queue.EnqueueAt("default", worker.JobTypeTaskReminder, map[string]interface{}{
		"task_id": task.ID,
		"title":   task.Title,
	}, dueAt)
	if err != nil {
		log.Printf("Failed to schedule reminder for task %s: %v", task.ID, err)
	}
}

func (s *TaskServiceImpl) GetTasks(ctx context.Context, filters models.TaskFilters) ([]models.Task, models.Pagination, error) {
	tasks, total, err := s.repo.Query(ctx, filters)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return tasks, models.NewPagination(total, filters.Limit, filters.Offset), nil
}

func (s *TaskServiceImpl) GetTaskByID(ctx context.Context, id string) (models.Task, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateTask merges the provided fields over the existing task, restamps
// updatedAt, and rewrites the row. Concurrent updates to the same id are
// last-write-wins.
func (s *TaskServiceImpl) UpdateTask(ctx context.Context, id string, req models.UpdateTaskRequest) (models.Task, error) {
	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return models.Task{}, err
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Status != nil {
		task.Status = models.TaskStatus(*req.Status)
	}
	if req.Priority != nil {
		task.Priority = models.TaskPriority(*req.Priority)
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	task.UpdatedAt = s.timestamp()

	if err := s.repo.Update(ctx, id, task); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (s *TaskServiceImpl) DeleteTask(ctx context.Context, id string) (bool, error) {
	return s.repo.Delete(ctx, id)
}
