package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"taskboard/backend/internal/models"
	"taskboard/backend/internal/services"
	"taskboard/backend/internal/validation"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type TaskHandler struct {
	taskService services.TaskService
}

func NewTaskHandler(taskService services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req models.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.APIResponse{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	if err := validation.ValidateCreate(req); err != nil {
		c.JSON(http.StatusBadRequest, models.APIResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), req)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.APIResponse{
		Success: true,
		Data:    task,
		Message: "Task created successfully",
	})
}

func (h *TaskHandler) GetTasks(c *gin.Context) {
	var raw validation.RawFilters
	if err := c.ShouldBindQuery(&raw); err != nil {
		c.JSON(http.StatusBadRequest, models.APIResponse{
			Success: false,
			Error:   "Invalid query parameters",
		})
		return
	}

	filters, err := validation.ValidateFilters(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.APIResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	tasks, pagination, err := h.taskService.GetTasks(c.Request.Context(), filters)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.PaginatedResponse{
		Success:    true,
		Data:       tasks,
		Pagination: pagination,
	})
}

func (h *TaskHandler) GetTaskByID(c *gin.Context) {
	id, ok := requireID(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTaskByID(c.Request.Context(), id)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    task,
	})
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	id, ok := requireID(c)
	if !ok {
		return
	}

	var req models.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.APIResponse{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	if err := validation.ValidateUpdate(req); err != nil {
		c.JSON(http.StatusBadRequest, models.APIResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), id, req)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    task,
		Message: "Task updated successfully",
	})
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id, ok := requireID(c)
	if !ok {
		return
	}

	deleted, err := h.taskService.DeleteTask(c.Request.Context(), id)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, models.APIResponse{
			Success: false,
			Error:   "Task not found",
		})
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Message: "Task deleted successfully",
	})
}

// requireID rejects a missing or blank id path parameter before any
// service call is made.
func requireID(c *gin.Context) (string, bool) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, models.APIResponse{
			Success: false,
			Error:   "Task ID is required",
		})
		return "", false
	}
	return id, true
}

// handleTaskError is the single point deciding public-facing messages:
// not-found maps to 404, everything else is logged and replaced with a
// generic 500.
func handleTaskError(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, models.APIResponse{
			Success: false,
			Error:   "Task not found",
		})
		return
	}

	log.Printf("Error processing %s %s: %v", c.Request.Method, c.FullPath(), err)
	c.JSON(http.StatusInternalServerError, models.APIResponse{
		Success: false,
		Error:   "Internal server error",
	})
}
