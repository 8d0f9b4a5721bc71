package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/amalthea/finance-api/internal/domain"
	"github.com/amalthea/finance-api/internal/service"
	"go.uber.org/zap"
)

type ProjectHandler struct {
	projectService   *service.ProjectService
	financialService *service.FinancialService
	documentService  *service.DocumentService
	now              func() time.Time
	logger           *zap.Logger
}

func NewProjectHandler(projectService *service.ProjectService, financialService *service.FinancialService, documentService *service.DocumentService, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		projectService:   projectService,
		financialService: financialService,
		documentService:  documentService,
		now:              time.Now,
		logger:           logger,
	}
}

// List godoc
// @Summary List projects
// @Tags Projects
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Case-insensitive name search"
// @Param includeArchived query bool false "Include archived projects" default(false)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.ProjectDTO}
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects [get]
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	page, pageSize := parsePagination(r)
	includeArchived, _ := strconv.ParseBool(r.URL.Query().Get("includeArchived"))

	result, err := h.projectService.List(r.Context(), actor.OrgID, page, pageSize, r.URL.Query().Get("search"), includeArchived)
	if err != nil {
		handleError(w, h.logger, "failed to list projects", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Create godoc
// @Summary Create project
// @Tags Projects
// @Accept json
// @Produce json
// @Param request body domain.CreateProjectRequest true "Project data"
// @Success 201 {object} domain.ProjectDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects [post]
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req domain.CreateProjectRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	project, err := h.projectService.Create(r.Context(), actor, &req)
	if err != nil {
		handleError(w, h.logger, "failed to create project", err)
		return
	}
	w.Header().Set("Location", "/api/v1/projects/"+project.ID.String())
	respondJSON(w, http.StatusCreated, project)
}

// GetByID godoc
// @Summary Get project
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Success 200 {object} domain.ProjectDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id} [get]
func (h *ProjectHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}

	project, err := h.projectService.GetByID(r.Context(), actor.OrgID, id)
	if err != nil {
		handleError(w, h.logger, "failed to get project", err)
		return
	}
	respondJSON(w, http.StatusOK, project)
}

// GetFinancials godoc
// @Summary Project financial summary
// @Description Budget, revenue, cost breakdown by source, profit and budget usage, computed from current data.
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Success 200 {object} domain.ProjectFinancialSummary
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/financials [get]
func (h *ProjectHandler) GetFinancials(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}

	summary, err := h.financialService.Compute(r.Context(), actor.OrgID, id)
	if err != nil {
		handleError(w, h.logger, "failed to compute project financials", err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// GetOverview godoc
// @Summary Project overview
// @Description Financial summary together with task metrics and the derived risk assessment.
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Success 200 {object} domain.ProjectOverviewDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/overview [get]
func (h *ProjectHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}

	overview, err := h.financialService.ProjectOverview(r.Context(), actor.OrgID, id, h.now())
	if err != nil {
		handleError(w, h.logger, "failed to build project overview", err)
		return
	}
	respondJSON(w, http.StatusOK, overview)
}

// ListBillableExpenses godoc
// @Summary Expenses ready to be invoiced
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Success 200 {array} domain.DocumentDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/billable-expenses [get]
func (h *ProjectHandler) ListBillableExpenses(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}

	expenses, err := h.documentService.ListInvoiceEligibleExpenses(r.Context(), actor.OrgID, id)
	if err != nil {
		handleError(w, h.logger, "failed to list billable expenses", err)
		return
	}
	respondJSON(w, http.StatusOK, expenses)
}

// ListTasks godoc
// @Summary List project tasks
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Success 200 {array} domain.TaskDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/tasks [get]
func (h *ProjectHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}

	tasks, err := h.projectService.ListTasks(r.Context(), actor.OrgID, id)
	if err != nil {
		handleError(w, h.logger, "failed to list tasks", err)
		return
	}
	respondJSON(w, http.StatusOK, tasks)
}

// CreateTask godoc
// @Summary Add a task to a project
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param request body domain.CreateTaskRequest true "Task data"
// @Success 201 {object} domain.TaskDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/tasks [post]
func (h *ProjectHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}
	var req domain.CreateTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	task, err := h.projectService.CreateTask(r.Context(), actor, id, &req)
	if err != nil {
		handleError(w, h.logger, "failed to create task", err)
		return
	}
	respondJSON(w, http.StatusCreated, task)
}

// UpdateTaskState godoc
// @Summary Move a task to another state
// @Tags Projects
// @Accept json
// @Param id path string true "Project ID" format(uuid)
// @Param taskId path string true "Task ID" format(uuid)
// @Param request body domain.UpdateTaskStateRequest true "New state"
// @Success 204
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/tasks/{taskId}/state [put]
func (h *ProjectHandler) UpdateTaskState(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	projectID, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}
	taskID, ok := parseUUIDParam(w, r, "taskId", "task")
	if !ok {
		return
	}
	var req domain.UpdateTaskStateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.projectService.UpdateTaskState(r.Context(), actor, projectID, taskID, req.State); err != nil {
		handleError(w, h.logger, "failed to update task state", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
