package validation

import (
	"errors"
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"taskboard/backend/internal/models"
)

// Each validator reports the first violated rule only; callers surface a
// single message per request.

var ErrNothingToUpdate = errors.New("At least one field must be provided for update")

var isoDateLayouts = []string{time.RFC3339, "2006-01-02"}

func parseISODate(value string) error {
	for _, layout := range isoDateLayouts {
		if _, err := time.Parse(layout, value); err == nil {
			return nil
		}
	}
	return errors.New("Due date must be a valid ISO date string")
}

func ValidateCreate(req models.CreateTaskRequest) error {
	if req.Title == "" {
		return errors.New("Title is required")
	}
	if utf8.RuneCountInString(req.Title) > models.MaxTitleLen {
		return fmt.Errorf("Title cannot exceed %d characters", models.MaxTitleLen)
	}
	if req.Description == "" {
		return errors.New("Description is required")
	}
	if utf8.RuneCountInString(req.Description) > models.MaxDescLen {
		return fmt.Errorf("Description cannot exceed %d characters", models.MaxDescLen)
	}
	if req.Priority != nil && !models.TaskPriority(*req.Priority).IsValid() {
		return errors.New("Priority must be one of: low, medium, high, urgent")
	}
	if req.DueDate != nil {
		if err := parseISODate(*req.DueDate); err != nil {
			return err
		}
	}
	return nil
}

func ValidateUpdate(req models.UpdateTaskRequest) error {
	if req.IsEmpty() {
		return ErrNothingToUpdate
	}
	if req.Title != nil {
		if *req.Title == "" {
			return errors.New("Title must be at least 1 character long")
		}
		if utf8.RuneCountInString(*req.Title) > models.MaxTitleLen {
			return fmt.Errorf("Title cannot exceed %d characters", models.MaxTitleLen)
		}
	}
	if req.Description != nil {
		if *req.Description == "" {
			return errors.New("Description must be at least 1 character long")
		}
		if utf8.RuneCountInString(*req.Description) > models.MaxDescLen {
			return fmt.Errorf("Description cannot exceed %d characters", models.MaxDescLen)
		}
	}
	if req.Status != nil && !models.TaskStatus(*req.Status).IsValid() {
		return errors.New("Status must be one of: pending, in_progress, completed, cancelled")
	}
	if req.Priority != nil && !models.TaskPriority(*req.Priority).IsValid() {
		return errors.New("Priority must be one of: low, medium, high, urgent")
	}
	if req.DueDate != nil {
		if err := parseISODate(*req.DueDate); err != nil {
			return err
		}
	}
	return nil
}

// RawFilters carries the listing query parameters exactly as they arrived,
// before any typing or defaulting.
type RawFilters struct {
	Status    string `form:"status"`
	Priority  string `form:"priority"`
	Search    string `form:"search"`
	SortBy    string `form:"sortBy"`
	SortOrder string `form:"sortOrder"`
	Limit     string `form:"limit"`
	Offset    string `form:"offset"`
}

// ValidateFilters normalizes raw query parameters into typed filters,
// applying defaults for absent fields and rejecting unrecognized values.
func ValidateFilters(raw RawFilters) (models.TaskFilters, error) {
	filters := models.DefaultFilters()

	if raw.Status != "" {
		status := models.TaskStatus(raw.Status)
		if !status.IsValid() {
			return filters, errors.New("Status must be one of: pending, in_progress, completed, cancelled")
		}
		filters.Status = &status
	}
	if raw.Priority != "" {
		priority := models.TaskPriority(raw.Priority)
		if !priority.IsValid() {
			return filters, errors.New("Priority must be one of: low, medium, high, urgent")
		}
		filters.Priority = &priority
	}
	if raw.Search != "" {
		if utf8.RuneCountInString(raw.Search) > models.MaxSearchLen {
			return filters, fmt.Errorf("Search cannot exceed %d characters", models.MaxSearchLen)
		}
		filters.Search = raw.Search
	}
	if raw.SortBy != "" {
		sortBy := models.SortField(raw.SortBy)
		if !sortBy.IsValid() {
			return filters, errors.New("SortBy must be one of: createdAt, updatedAt, dueDate, priority")
		}
		filters.SortBy = sortBy
	}
	if raw.SortOrder != "" {
		sortOrder := models.SortOrder(raw.SortOrder)
		if !sortOrder.IsValid() {
			return filters, errors.New("SortOrder must be one of: asc, desc")
		}
		filters.SortOrder = sortOrder
	}
	if raw.Limit != "" {
		limit, err := strconv.Atoi(raw.Limit)
		if err != nil || limit < 1 || limit > models.MaxLimit {
			return filters, fmt.Errorf("Limit must be an integer between 1 and %d", models.MaxLimit)
		}
		filters.Limit = limit
	}
	if raw.Offset != "" {
		offset, err := strconv.Atoi(raw.Offset)
		if err != nil || offset < 0 {
			return filters, errors.New("Offset must be a non-negative integer")
		}
		filters.Offset = offset
	}

	return filters, nil
}
