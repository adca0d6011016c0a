package models

type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
	StatusCancelled  TaskStatus = "cancelled"
)

func (s TaskStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

func (p TaskPriority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Task timestamps are stored as RFC3339 strings so lexicographic ordering
// in the store matches chronological ordering.
type Task struct {
	ID          string       `json:"id" gorm:"primaryKey;column:id"`
	Title       string       `json:"title" gorm:"column:title;not null"`
	Description string       `json:"description" gorm:"column:description;not null"`
	Status      TaskStatus   `json:"status" gorm:"column:status;not null;default:'pending'"`
	Priority    TaskPriority `json:"priority" gorm:"column:priority;not null;default:'medium'"`
	CreatedAt   string       `json:"createdAt" gorm:"column:created_at;not null"`
	UpdatedAt   string       `json:"updatedAt" gorm:"column:updated_at;not null"`
	DueDate     *string      `json:"dueDate,omitempty" gorm:"column:due_date"`
}

func (Task) TableName() string {
	return "tasks"
}

type CreateTaskRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Priority    *string `json:"priority"`
	DueDate     *string `json:"dueDate"`
}

// UpdateTaskRequest uses pointers throughout: a nil field was absent from
// the request body and keeps its current value.
type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	DueDate     *string `json:"dueDate"`
}

func (r UpdateTaskRequest) IsEmpty() bool {
	return r.Title == nil && r.Description == nil && r.Status == nil &&
		r.Priority == nil && r.DueDate == nil
}

type SortField string

const (
	SortByCreatedAt SortField = "createdAt"
	SortByUpdatedAt SortField = "updatedAt"
	SortByDueDate   SortField = "dueDate"
	SortByPriority  SortField = "priority"
)

func (f SortField) IsValid() bool {
	switch f {
	case SortByCreatedAt, SortByUpdatedAt, SortByDueDate, SortByPriority:
		return true
	}
	return false
}

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

func (o SortOrder) IsValid() bool {
	return o == SortAsc || o == SortDesc
}

// TaskFilters is the normalized, validated form of the listing query.
type TaskFilters struct {
	Status    *TaskStatus
	Priority  *TaskPriority
	Search    string
	SortBy    SortField
	SortOrder SortOrder
	Limit     int
	Offset    int
}

const (
	DefaultLimit = 10
	MaxLimit     = 100
	MaxSearchLen = 100
	MaxTitleLen  = 200
	MaxDescLen   = 1000
)

func DefaultFilters() TaskFilters {
	return TaskFilters{
		SortBy:    SortByCreatedAt,
		SortOrder: SortDesc,
		Limit:     DefaultLimit,
		Offset:    0,
	}
}
