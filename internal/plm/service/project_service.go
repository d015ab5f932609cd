package service

import (
	"context"
	"fmt"

	"github.com/Dokuly-PLM/dokuly-sub000/internal/plm/entity"
	"github.com/Dokuly-PLM/dokuly-sub000/internal/plm/repository"
	"github.com/google/uuid"
)

// ProjectService 项目服务
type ProjectService struct {
	projectRepo *repository.ProjectRepository
	orgSvc      *OrganizationService
}

// NewProjectService 创建项目服务
func NewProjectService(projectRepo *repository.ProjectRepository, orgSvc *OrganizationService) *ProjectService {
	return &ProjectService{projectRepo: projectRepo, orgSvc: orgSvc}
}

// CreateProjectRequest 创建项目请求
type CreateProjectRequest struct {
	ProjectNumber string `json:"project_number" binding:"required"`
	Name          string `json:"name" binding:"required"`
	Description   string `json:"description"`
}

// UpdateProjectRequest 更新项目请求
type UpdateProjectRequest struct {
	ProjectNumber string  `json:"project_number"`
	Name          string  `json:"name"`
	Description   *string `json:"description"`
	Status        string  `json:"status"`
}

// ProjectListResult 项目列表结果
type ProjectListResult struct {
	Items      []entity.Project `json:"items"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}

// Create 创建项目
func (s *ProjectService) Create(ctx context.Context, orgID, userID string, req CreateProjectRequest) (*entity.Project, error) {
	if _, err := s.orgSvc.Get(ctx, orgID); err != nil {
		return nil, err
	}

	project := &entity.Project{
		ID:             uuid.New().String()[:32],
		OrganizationID: orgID,
		ProjectNumber:  req.ProjectNumber,
		Name:           req.Name,
		Description:    req.Description,
		Status:         entity.ProjectStatusActive,
		CreatedBy:      userID,
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return project, nil
}

// Get 获取项目详情（限定组织）
func (s *ProjectService) Get(ctx context.Context, orgID, id string) (*entity.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if project.OrganizationID != orgID {
		return nil, repository.ErrNotFound
	}
	return project, nil
}

// Update 更新项目
func (s *ProjectService) Update(ctx context.Context, orgID, id string, req UpdateProjectRequest) (*entity.Project, error) {
	project, err := s.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	if req.ProjectNumber != "" {
		project.ProjectNumber = req.ProjectNumber
	}
	if req.Name != "" {
		project.Name = req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Status != "" {
		if req.Status != entity.ProjectStatusActive && req.Status != entity.ProjectStatusArchived {
			return nil, fmt.Errorf("%w: status %q", ErrInvalidInput, req.Status)
		}
		project.Status = req.Status
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return project, nil
}

// List 获取项目列表
func (s *ProjectService) List(ctx context.Context, orgID string, page, pageSize int) (*ProjectListResult, error) {
	projects, total, err := s.projectRepo.List(ctx, orgID, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return &ProjectListResult{
		Items:      projects,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}
