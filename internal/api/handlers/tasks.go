package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/hugh/teamboard/internal/api/dto"
	"github.com/hugh/teamboard/internal/api/middleware"
	"github.com/hugh/teamboard/internal/database/models"
	"github.com/hugh/teamboard/internal/task"
)

type TaskHandler struct {
	taskService *task.Service
}

func NewTaskHandler(taskService *task.Service) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	q := r.URL.Query()

	teamID, _ := strconv.ParseUint(q.Get("team_id"), 10, 32)
	assignedTo, _ := strconv.ParseUint(q.Get("assigned_to"), 10, 32)

	filter := task.ListFilter{
		TeamID:     uint(teamID),
		AssignedTo: uint(assignedTo),
		Status:     models.TaskStatus(q.Get("status")),
		Search:     q.Get("search"),
		Page:       parseIntQuery(r, "page"),
		Limit:      parseIntQuery(r, "limit"),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		respondError(w, http.StatusBadRequest, "Invalid status filter")
		return
	}

	tasks, err := h.taskService.List(r.Context(), filter, userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list tasks")
		return
	}

	respondData(w, http.StatusOK, "Tasks retrieved", tasks)
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req dto.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if details := req.Validate(); len(details) > 0 {
		respondValidation(w, details)
		return
	}

	input := task.CreateInput{
		TeamID:      req.TeamID,
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
		Status:      req.Status,
	}
	if req.DueDate != "" {
		due, _ := dto.ParseDueDate(req.DueDate)
		input.DueDate = &due
	}

	created, err := h.taskService.Create(r.Context(), input, userID)
	if err != nil {
		h.respondTaskError(w, err, "Failed to create task")
		return
	}

	respondData(w, http.StatusCreated, "Task created successfully", created)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	taskID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	t, err := h.taskService.GetByID(r.Context(), taskID, userID)
	if err != nil {
		h.respondTaskError(w, err, "Failed to load task")
		return
	}

	respondData(w, http.StatusOK, "Task retrieved", t)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	taskID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req dto.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if details := req.Validate(); len(details) > 0 {
		respondValidation(w, details)
		return
	}

	input := task.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		AssignedTo:  req.AssignedTo,
	}
	if req.DueDate != nil && *req.DueDate != "" {
		due, _ := dto.ParseDueDate(*req.DueDate)
		input.DueDate = &due
	}

	updated, err := h.taskService.Update(r.Context(), taskID, input, userID)
	if err != nil {
		h.respondTaskError(w, err, "Failed to update task")
		return
	}

	respondData(w, http.StatusOK, "Task updated successfully", updated)
}

func (h *TaskHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	taskID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req dto.UpdateTaskStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if details := req.Validate(); len(details) > 0 {
		respondValidation(w, details)
		return
	}

	updated, err := h.taskService.UpdateStatus(r.Context(), taskID, req.Status, userID)
	if err != nil {
		h.respondTaskError(w, err, "Failed to update task status")
		return
	}

	respondData(w, http.StatusOK, "Task status updated successfully", updated)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	taskID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.taskService.Delete(r.Context(), taskID, userID); err != nil {
		h.respondTaskError(w, err, "Failed to delete task")
		return
	}

	respondData(w, http.StatusOK, "Task deleted successfully", nil)
}

func (h *TaskHandler) respondTaskError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, task.ErrTaskNotFound):
		respondError(w, http.StatusNotFound, "Task not found")
	case errors.Is(err, task.ErrNotMember):
		respondError(w, http.StatusForbidden, "You are not a member of this team")
	case errors.Is(err, task.ErrStatusForbidden):
		respondError(w, http.StatusForbidden, "Only the assigned user or a team admin can update the status")
	case errors.Is(err, task.ErrNoFields):
		respondError(w, http.StatusBadRequest, "No valid fields to update")
	default:
		respondError(w, http.StatusInternalServerError, fallback)
	}
}
