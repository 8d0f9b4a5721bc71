package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/amalthea/finance-api/internal/domain"
	"github.com/amalthea/finance-api/internal/mapper"
	"github.com/amalthea/finance-api/internal/repository"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Project-specific service errors
var (
	// ErrInvalidProjectDates is returned when a project ends before it starts
	ErrInvalidProjectDates = errors.New("project end date is before its start date")
)

// ProjectService handles business logic for projects and their tasks
type ProjectService struct {
	projectRepo *repository.ProjectRepository
	now         func() time.Time
	logger      *zap.Logger
}

// NewProjectService creates a new ProjectService
func NewProjectService(projectRepo *repository.ProjectRepository, logger *zap.Logger) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		now:         time.Now,
		logger:      logger,
	}
}

// Create creates a project in the actor's organization
func (s *ProjectService) Create(ctx context.Context, actor *domain.Actor, req *domain.CreateProjectRequest) (*domain.ProjectDTO, error) {
	if err := requireWriter(actor); err != nil {
		return nil, err
	}
	if req.Budget != nil && req.Budget.IsNegative() {
		return nil, fmt.Errorf("%w: budget must not be negative", ErrInvalidInput)
	}
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, ErrInvalidProjectDates)
	}

	project := &domain.Project{
		OrgID:       actor.OrgID,
		Name:        req.Name,
		Description: req.Description,
		Budget:      lo.FromPtr(req.Budget),
		Currency:    currencyOrDefault(req.Currency),
		ManagerID:   req.ManagerID,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, mapper.FormatError("project", "create", err)
	}

	s.logger.Info("project created",
		zap.String("project_id", project.ID.String()),
		zap.String("org_id", project.OrgID.String()),
		zap.String("budget", project.Budget.String()))

	dto := mapper.ToProjectDTO(project)
	return &dto, nil
}

// GetByID returns a project of the organization
func (s *ProjectService) GetByID(ctx context.Context, orgID, id uuid.UUID) (*domain.ProjectDTO, error) {
	project, err := s.projectRepo.GetByID(ctx, orgID, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, fmt.Errorf("%w: project %s", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	dto := mapper.ToProjectDTO(project)
	return &dto, nil
}

// List returns a page of the organization's projects
func (s *ProjectService) List(ctx context.Context, orgID uuid.UUID, page, pageSize int, search string, includeArchived bool) (*domain.PaginatedResponse, error) {
	page, pageSize = repository.NormalizePagination(page, pageSize)
	projects, total, err := s.projectRepo.List(ctx, orgID, page, pageSize, search, includeArchived)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	return &domain.PaginatedResponse{
		Data: lo.Map(projects, func(p domain.Project, _ int) domain.ProjectDTO {
			return mapper.ToProjectDTO(&p)
		}),
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
	}, nil
}

// CreateTask adds a task to a project
func (s *ProjectService) CreateTask(ctx context.Context, actor *domain.Actor, projectID uuid.UUID, req *domain.CreateTaskRequest) (*domain.TaskDTO, error) {
	if err := requireWriter(actor); err != nil {
		return nil, err
	}
	if _, err := s.GetByID(ctx, actor.OrgID, projectID); err != nil {
		return nil, err
	}

	task := &domain.Task{
		OrgID:         actor.OrgID,
		ProjectID:     projectID,
		Title:         req.Title,
		State:         lo.CoalesceOrEmpty(req.State, domain.TaskStateTodo),
		DueDate:       req.DueDate,
		EstimateHours: lo.FromPtr(req.EstimateHours),
	}
	if err := s.projectRepo.CreateTask(ctx, task); err != nil {
		return nil, mapper.FormatError("task", "create", err)
	}

	dto := mapper.ToTaskDTO(task, s.now())
	return &dto, nil
}

// UpdateTaskState moves a task to another state
func (s *ProjectService) UpdateTaskState(ctx context.Context, actor *domain.Actor, projectID, taskID uuid.UUID, state domain.TaskState) error {
	if err := requireWriter(actor); err != nil {
		return err
	}
	if err := s.projectRepo.UpdateTaskState(ctx, actor.OrgID, projectID, taskID, state); err != nil {
		if repository.IsNotFound(err) {
			return fmt.Errorf("%w: task %s", domain.ErrNotFound, taskID)
		}
		return err
	}
	s.logger.Info("task state changed",
		zap.String("task_id", taskID.String()),
		zap.String("state", string(state)))
	return nil
}

// ListTasks returns the tasks of a project
func (s *ProjectService) ListTasks(ctx context.Context, orgID, projectID uuid.UUID) ([]domain.TaskDTO, error) {
	if _, err := s.GetByID(ctx, orgID, projectID); err != nil {
		return nil, err
	}
	tasks, err := s.projectRepo.ListTasks(ctx, orgID, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	now := s.now()
	return lo.Map(tasks, func(t domain.Task, _ int) domain.TaskDTO {
		return mapper.ToTaskDTO(&t, now)
	}), nil
}
