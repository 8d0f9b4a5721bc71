package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/amalthea/finance-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *ProjectRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*domain.Project, error) {
	var project domain.Project
	err := r.db.WithContext(ctx).
		Scopes(OrgScope(orgID)).
		Where("id = ?", id).
		First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// Exists reports whether a project belongs to the organization
func (r *ProjectRepository) Exists(ctx context.Context, orgID, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Project{}).
		Scopes(OrgScope(orgID)).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

func (r *ProjectRepository) List(ctx context.Context, orgID uuid.UUID, page, pageSize int, search string, includeArchived bool) ([]domain.Project, int64, error) {
	var projects []domain.Project
	var total int64
	page, pageSize = NormalizePagination(page, pageSize)

	query := r.db.WithContext(ctx).Model(&domain.Project{}).Scopes(OrgScope(orgID))
	if !includeArchived {
		query = query.Where("archived_at IS NULL")
	}
	if search = strings.TrimSpace(search); search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&projects).Error

	return projects, total, err
}

func (r *ProjectRepository) CreateTask(ctx context.Context, task *domain.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// UpdateTaskState sets the state of a task within a project
func (r *ProjectRepository) UpdateTaskState(ctx context.Context, orgID, projectID, taskID uuid.UUID, state domain.TaskState) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Task{}).
		Scopes(OrgScope(orgID)).
		Where("id = ? AND project_id = ?", taskID, projectID).
		Updates(map[string]interface{}{
			"state":      state,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update task state: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ProjectRepository) ListTasks(ctx context.Context, orgID, projectID uuid.UUID) ([]domain.Task, error) {
	var tasks []domain.Task
	err := r.db.WithContext(ctx).
		Scopes(OrgScope(orgID)).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&tasks).Error
	return tasks, err
}
