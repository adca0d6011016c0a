package repositories

import (
	"context"
	"fmt"

	"taskboard/backend/internal/models"

	"gorm.io/gorm"
)

// TaskRepository is the durable store for tasks. It holds its own handle
// so tests can run against isolated databases.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Insert(ctx context.Context, task models.Task) error {
	if err := r.db.WithContext(ctx).Create(&task).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// GetByID returns gorm.ErrRecordNotFound when the id is absent; callers
// treat that as a not-found outcome, not a failure.
func (r *TaskRepository) GetByID(ctx context.Context, id string) (models.Task, error) {
	var task models.Task
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error
	return task, err
}

// sortColumn maps logical sort fields to storage columns. Unknown fields
// fall back to created_at rather than failing; the API validator rejects
// them earlier, this leniency guards direct callers.
func sortColumn(sortBy models.SortField) string {
	switch sortBy {
	case models.SortByCreatedAt:
		return "created_at"
	case models.SortByUpdatedAt:
		return "updated_at"
	case models.SortByDueDate:
		return "due_date"
	case models.SortByPriority:
		return "priority"
	}
	return "created_at"
}

// Query runs a filtered, sorted, paginated scan and reports the total
// count of matching rows ignoring limit/offset.
//
// Search is a substring match against title OR description. SQLite's LIKE
// is case-insensitive for ASCII, so search behaves case-insensitively on
// the default driver.
func (r *TaskRepository) Query(ctx context.Context, filters models.TaskFilters) ([]models.Task, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Task{})

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Priority != nil {
		query = query.Where("priority = ?", *filters.Priority)
	}
	if filters.Search != "" {
		pattern := "%" + filters.Search + "%"
		query = query.Where("(title LIKE ? OR description LIKE ?)", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count tasks: %w", err)
	}

	order := fmt.Sprintf("%s %s", sortColumn(filters.SortBy), filters.SortOrder)
	tasks := []models.Task{}
	err := query.Order(order).
		Limit(filters.Limit).
		Offset(filters.Offset).
		Find(&tasks).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch tasks: %w", err)
	}

	return tasks, total, nil
}

// Update rewrites every mutable column from the given task. A true
// partial-column update is deliberately not attempted; the service merges
// fields first, and the full rewrite keeps application and storage state
// consistent.
func (r *TaskRepository) Update(ctx context.Context, id string, task models.Task) error {
	result := r.db.WithContext(ctx).Model(&models.Task{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"title":       task.Title,
			"description": task.Description,
			"status":      task.Status,
			"priority":    task.Priority,
			"updated_at":  task.UpdatedAt,
			"due_date":    task.DueDate,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a task and reports whether a row was actually removed.
// Deleting a nonexistent id is not an error.
func (r *TaskRepository) Delete(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Task{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete task: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
