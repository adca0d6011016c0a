package repositories_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"taskboard/backend/internal/models"
	"taskboard/backend/internal/repositories"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestRepo(t *testing.T) *repositories.TaskRepository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := repositories.EnsureSchema(db); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return repositories.NewTaskRepository(db)
}

func testTask(id, title string) models.Task {
	return models.Task{
		ID:          id,
		Title:       title,
		Description: "description of " + title,
		Status:      models.StatusPending,
		Priority:    models.PriorityMedium,
		CreatedAt:   "2026-01-01T00:00:00Z",
		UpdatedAt:   "2026-01-01T00:00:00Z",
	}
}

func TestTaskRepository_InsertAndGet(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	task := testTask("id-1", "Buy milk")
	if err := repo.Insert(ctx, task); err != nil {
		t.Fatalf("Failed to insert task: %v", err)
	}

	got, err := repo.GetByID(ctx, "id-1")
	if err != nil {
		t.Fatalf("Failed to fetch task: %v", err)
	}

	if got.Title != "Buy milk" {
		t.Errorf("Expected title 'Buy milk', got '%s'", got.Title)
	}
	if got.Status != models.StatusPending {
		t.Errorf("Expected status pending, got '%s'", got.Status)
	}
}

func TestTaskRepository_InsertDuplicateID(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	if err := repo.Insert(ctx, testTask("id-1", "first")); err != nil {
		t.Fatalf("Failed to insert task: %v", err)
	}
	if err := repo.Insert(ctx, testTask("id-1", "second")); err == nil {
		t.Error("Expected an error inserting a duplicate id")
	}
}

func TestTaskRepository_GetByID_NotFound(t *testing.T) {
	repo := setupTestRepo(t)

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("Expected ErrRecordNotFound, got %v", err)
	}
}

func TestTaskRepository_Query_StatusFilter(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	for i, status := range []models.TaskStatus{
		models.StatusPending, models.StatusCompleted, models.StatusCompleted,
	} {
		task := testTask(fmt.Sprintf("id-%d", i), fmt.Sprintf("task %d", i))
		task.Status = status
		if err := repo.Insert(ctx, task); err != nil {
			t.Fatalf("Failed to insert task: %v", err)
		}
	}

	filters := models.DefaultFilters()
	completed := models.StatusCompleted
	filters.Status = &completed

	tasks, total, err := repo.Query(ctx, filters)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	if total != 2 {
		t.Errorf("Expected total 2, got %d", total)
	}
	for _, task := range tasks {
		if task.Status != models.StatusCompleted {
			t.Errorf("Expected only completed tasks, got status '%s'", task.Status)
		}
	}
}

func TestTaskRepository_Query_PriorityFilter(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	urgent := testTask("id-1", "urgent task")
	urgent.Priority = models.PriorityUrgent
	low := testTask("id-2", "low task")
	low.Priority = models.PriorityLow

	for _, task := range []models.Task{urgent, low} {
		if err := repo.Insert(ctx, task); err != nil {
			t.Fatalf("Failed to insert task: %v", err)
		}
	}

	filters := models.DefaultFilters()
	p := models.PriorityUrgent
	filters.Priority = &p

	tasks, total, err := repo.Query(ctx, filters)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if total != 1 || len(tasks) != 1 || tasks[0].ID != "id-1" {
		t.Errorf("Expected only the urgent task, got total=%d tasks=%v", total, tasks)
	}
}

func TestTaskRepository_Query_Search(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	a := testTask("id-1", "Buy groceries")
	a.Description = "milk and eggs"
	b := testTask("id-2", "Write report")
	b.Description = "quarterly numbers"
	c := testTask("id-3", "Call the Milkman")
	c.Description = "reschedule delivery"

	for _, task := range []models.Task{a, b, c} {
		if err := repo.Insert(ctx, task); err != nil {
			t.Fatalf("Failed to insert task: %v", err)
		}
	}

	filters := models.DefaultFilters()
	filters.Search = "milk"

	tasks, total, err := repo.Query(ctx, filters)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	// Matches title or description; SQLite LIKE is case-insensitive for
	// ASCII, so "Milkman" counts.
	if total != 2 {
		t.Errorf("Expected total 2, got %d", total)
	}
	ids := map[string]bool{}
	for _, task := range tasks {
		ids[task.ID] = true
	}
	if !ids["id-1"] || !ids["id-3"] {
		t.Errorf("Expected id-1 and id-3, got %v", ids)
	}
}

func TestTaskRepository_Query_ConjunctiveFilters(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	match := testTask("id-1", "fix the build")
	match.Status = models.StatusInProgress
	wrongStatus := testTask("id-2", "fix the docs")
	wrongStatus.Status = models.StatusPending
	wrongText := testTask("id-3", "plan sprint")
	wrongText.Status = models.StatusInProgress

	for _, task := range []models.Task{match, wrongStatus, wrongText} {
		if err := repo.Insert(ctx, task); err != nil {
			t.Fatalf("Failed to insert task: %v", err)
		}
	}

	filters := models.DefaultFilters()
	inProgress := models.StatusInProgress
	filters.Status = &inProgress
	filters.Search = "fix"

	tasks, total, err := repo.Query(ctx, filters)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if total != 1 || len(tasks) != 1 || tasks[0].ID != "id-1" {
		t.Errorf("Expected only id-1, got total=%d tasks=%v", total, tasks)
	}
}

func TestTaskRepository_Query_SortAndPaginate(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		task := testTask(fmt.Sprintf("id-%d", i), fmt.Sprintf("task %d", i))
		task.CreatedAt = fmt.Sprintf("2026-01-0%dT00:00:00Z", i+1)
		task.UpdatedAt = task.CreatedAt
		if err := repo.Insert(ctx, task); err != nil {
			t.Fatalf("Failed to insert task: %v", err)
		}
	}

	filters := models.DefaultFilters()
	filters.SortBy = models.SortByCreatedAt
	filters.SortOrder = models.SortAsc
	filters.Limit = 2
	filters.Offset = 1

	tasks, total, err := repo.Query(ctx, filters)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	if total != 5 {
		t.Errorf("Expected total 5 regardless of paging, got %d", total)
	}
	if len(tasks) != 2 {
		t.Fatalf("Expected 2 tasks, got %d", len(tasks))
	}
	if tasks[0].ID != "id-1" || tasks[1].ID != "id-2" {
		t.Errorf("Expected id-1, id-2 in ascending order, got %s, %s", tasks[0].ID, tasks[1].ID)
	}
}

func TestTaskRepository_Query_DescendingDefault(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	early := testTask("id-early", "old")
	early.CreatedAt = "2026-01-01T00:00:00Z"
	late := testTask("id-late", "new")
	late.CreatedAt = "2026-02-01T00:00:00Z"

	for _, task := range []models.Task{early, late} {
		if err := repo.Insert(ctx, task); err != nil {
			t.Fatalf("Failed to insert task: %v", err)
		}
	}

	tasks, _, err := repo.Query(ctx, models.DefaultFilters())
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(tasks) != 2 || tasks[0].ID != "id-late" {
		t.Errorf("Expected newest first by default, got %v", tasks)
	}
}

func TestTaskRepository_Query_UnknownSortFallsBack(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	if err := repo.Insert(ctx, testTask("id-1", "only")); err != nil {
		t.Fatalf("Failed to insert task: %v", err)
	}

	filters := models.DefaultFilters()
	filters.SortBy = models.SortField("nonsense")

	tasks, _, err := repo.Query(ctx, filters)
	if err != nil {
		t.Fatalf("Expected fallback to created_at, got error: %v", err)
	}
	if len(tasks) != 1 {
		t.Errorf("Expected 1 task, got %d", len(tasks))
	}
}

func TestTaskRepository_Update(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	task := testTask("id-1", "before")
	if err := repo.Insert(ctx, task); err != nil {
		t.Fatalf("Failed to insert task: %v", err)
	}

	task.Title = "after"
	task.Status = models.StatusCompleted
	task.UpdatedAt = "2026-01-02T00:00:00Z"

	if err := repo.Update(ctx, "id-1", task); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := repo.GetByID(ctx, "id-1")
	if err != nil {
		t.Fatalf("Failed to fetch task: %v", err)
	}
	if got.Title != "after" || got.Status != models.StatusCompleted {
		t.Errorf("Update not persisted: %+v", got)
	}
	if got.UpdatedAt != "2026-01-02T00:00:00Z" {
		t.Errorf("Expected refreshed updatedAt, got %s", got.UpdatedAt)
	}
	if got.CreatedAt != "2026-01-01T00:00:00Z" {
		t.Errorf("createdAt must be immutable, got %s", got.CreatedAt)
	}
}

func TestTaskRepository_Update_NotFound(t *testing.T) {
	repo := setupTestRepo(t)

	err := repo.Update(context.Background(), "missing", testTask("missing", "x"))
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("Expected ErrRecordNotFound, got %v", err)
	}
}

func TestTaskRepository_Delete(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	if err := repo.Insert(ctx, testTask("id-1", "doomed")); err != nil {
		t.Fatalf("Failed to insert task: %v", err)
	}

	deleted, err := repo.Delete(ctx, "id-1")
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !deleted {
		t.Error("Expected deleted=true for existing row")
	}

	deleted, err = repo.Delete(ctx, "id-1")
	if err != nil {
		t.Fatalf("Second delete failed: %v", err)
	}
	if deleted {
		t.Error("Expected deleted=false for already-removed row")
	}

	if _, err := repo.GetByID(ctx, "id-1"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("Expected ErrRecordNotFound after delete, got %v", err)
	}
}
