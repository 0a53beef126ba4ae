package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taskpilot/internal/model"
	"taskpilot/internal/service"
	"taskpilot/internal/store"
)

const (
	errTaskNotFound    = "Task not found"
	errInvalidTask     = "Invalid task data"
	errInvalidActivity = "Invalid activity data"
)

type TaskHandler struct {
	taskService *service.TaskService
}

func NewTaskHandler(taskService *service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

type createTaskRequest struct {
	Title       string  `json:"title" binding:"required,max=500"`
	Description *string `json:"description"`
	Status      string  `json:"status" binding:"omitempty,oneof=not_started in_progress completed failed"`
	Priority    string  `json:"priority" binding:"omitempty,oneof=low medium high critical"`
	AssignedTo  *string `json:"assignedTo" binding:"omitempty,max=200"`
	DueDate     *string `json:"dueDate" binding:"omitempty,duedate"`
}

// updateTaskRequest 字段缺省表示不修改
type updateTaskRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=500"`
	Description *string `json:"description"`
	Status      *string `json:"status" binding:"omitempty,oneof=not_started in_progress completed failed"`
	Priority    *string `json:"priority" binding:"omitempty,oneof=low medium high critical"`
	AssignedTo  *string `json:"assignedTo" binding:"omitempty,max=200"`
	DueDate     *string `json:"dueDate" binding:"omitempty,duedate"`
}

type createActivityRequest struct {
	Type        string  `json:"type" binding:"required,oneof=created updated completed status_change comment"`
	Description string  `json:"description" binding:"required"`
	Remarks     *string `json:"remarks"`
	UserID      string  `json:"userId" binding:"omitempty,max=100"`
}

// ListTasks 按创建时间升序返回全部任务
func (h *TaskHandler) ListTasks(c *gin.Context) {
	tasks, err := h.taskService.ListTasks(c.Request.Context())
	if err != nil {
		internalError(c, "Failed to fetch tasks", err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *TaskHandler) GetTask(c *gin.Context) {
	task, err := h.taskService.GetTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errTaskNotFound})
			return
		}
		internalError(c, "Failed to fetch task", err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidTask, "details": validationDetails(err)})
		return
	}

	task := &model.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      model.TaskStatus(req.Status),
		Priority:    model.TaskPriority(req.Priority),
		AssignedTo:  req.AssignedTo,
		DueDate:     dueDate(req.DueDate),
	}
	if err := h.taskService.CreateTask(c.Request.Context(), task); err != nil {
		internalError(c, "Failed to create task", err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// UpdateTask 未知 id 返回 404，不写日志
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidTask, "details": validationDetails(err)})
		return
	}

	patch := model.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
		DueDate:     dueDate(req.DueDate),
	}
	if req.Status != nil {
		status := model.TaskStatus(*req.Status)
		patch.Status = &status
	}
	if req.Priority != nil {
		priority := model.TaskPriority(*req.Priority)
		patch.Priority = &priority
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errTaskNotFound})
			return
		}
		internalError(c, "Failed to update task", err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	if err := h.taskService.DeleteTask(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errTaskNotFound})
			return
		}
		internalError(c, "Failed to delete task", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListActivities 最新的在前
func (h *TaskHandler) ListActivities(c *gin.Context) {
	activities, err := h.taskService.ListActivities(c.Request.Context(), c.Param("id"))
	if err != nil {
		internalError(c, "Failed to fetch activities", err)
		return
	}
	c.JSON(http.StatusOK, activities)
}

func (h *TaskHandler) CreateActivity(c *gin.Context) {
	var req createActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidActivity, "details": validationDetails(err)})
		return
	}

	activity := &model.Activity{
		TaskID:      c.Param("id"),
		Type:        model.ActivityType(req.Type),
		Description: req.Description,
		Remarks:     req.Remarks,
		UserID:      req.UserID,
	}
	if err := h.taskService.AddActivity(c.Request.Context(), activity); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errTaskNotFound})
			return
		}
		internalError(c, "Failed to create activity", err)
		return
	}
	c.JSON(http.StatusCreated, activity)
}

func dueDate(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t, ok := service.ParseDueDate(*s)
	if !ok {
		return nil
	}
	return &t
}

// internalError 存储层错误只记日志，对外返回通用信息
func internalError(c *gin.Context, message string, err error) {
	log.Printf("[http] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": message})
}
