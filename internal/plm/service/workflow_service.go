package service

import (
	"context"
	"fmt"

	"github.com/Dokuly-PLM/dokuly-sub000/internal/plm/entity"
	"github.com/Dokuly-PLM/dokuly-sub000/internal/plm/repository"
	"github.com/google/uuid"
)

var validTriggerTypes = map[string]bool{
	entity.TriggerPartCreated:     true,
	entity.TriggerPcbaCreated:     true,
	entity.TriggerAssemblyCreated: true,
	entity.TriggerDocumentCreated: true,
	entity.TriggerRevisionCreated: true,
}

var validEntityTypes = map[string]bool{
	entity.EntityTypeParts:      true,
	entity.EntityTypePcbas:      true,
	entity.EntityTypeAssemblies: true,
	entity.EntityTypeDocuments:  true,
	entity.EntityTypeAll:        true,
}

// WorkflowService 工作流定义服务
type WorkflowService struct {
	workflowRepo *repository.WorkflowRepository
	projectRepo  *repository.ProjectRepository
}

// NewWorkflowService 创建工作流定义服务
func NewWorkflowService(workflowRepo *repository.WorkflowRepository, projectRepo *repository.ProjectRepository) *WorkflowService {
	return &WorkflowService{workflowRepo: workflowRepo, projectRepo: projectRepo}
}

// WorkflowActionInput 工作流动作输入
type WorkflowActionInput struct {
	ActionType string                 `json:"action_type" binding:"required"`
	Config     map[string]interface{} `json:"config"`
	SortOrder  int                    `json:"sort_order"`
	IsEnabled  *bool                  `json:"is_enabled"`
}

// CreateWorkflowRequest 创建工作流请求
type CreateWorkflowRequest struct {
	Name              string                `json:"name" binding:"required"`
	Description       string                `json:"description"`
	TriggerType       string                `json:"trigger_type" binding:"required"`
	TriggerEntityType string                `json:"trigger_entity_type"`
	Scope             string                `json:"scope" binding:"required"`
	ProjectID         *string               `json:"project_id"`
	IsEnabled         *bool                 `json:"is_enabled"`
	Actions           []WorkflowActionInput `json:"actions"`
}

// UpdateWorkflowRequest 更新工作流请求
// Actions 为 nil 时保持现有动作不变，非 nil 时整体替换
type UpdateWorkflowRequest struct {
	Name              string                 `json:"name"`
	Description       *string                `json:"description"`
	TriggerType       string                 `json:"trigger_type"`
	TriggerEntityType string                 `json:"trigger_entity_type"`
	IsEnabled         *bool                  `json:"is_enabled"`
	Actions           *[]WorkflowActionInput `json:"actions"`
}

// WorkflowListResult 工作流列表结果
type WorkflowListResult struct {
	Items      []entity.Workflow `json:"items"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
}

// ExecutionListResult 执行记录列表结果
type ExecutionListResult struct {
	Items      []entity.WorkflowExecution `json:"items"`
	Total      int64                      `json:"total"`
	Page       int                        `json:"page"`
	PageSize   int                        `json:"page_size"`
	TotalPages int                        `json:"total_pages"`
}

// AuditLogListResult 审计日志列表结果
type AuditLogListResult struct {
	Items      []entity.WorkflowAuditLog `json:"items"`
	Total      int64                     `json:"total"`
	Page       int                       `json:"page"`
	PageSize   int                       `json:"page_size"`
	TotalPages int                       `json:"total_pages"`
}

// Create 创建工作流
// 作用域必须完整：组织级挂属主组织，项目级还必须指定本组织的项目
func (s *WorkflowService) Create(ctx context.Context, orgID, userID string, req CreateWorkflowRequest) (*entity.Workflow, error) {
	if !validTriggerTypes[req.TriggerType] {
		return nil, fmt.Errorf("%w: trigger_type %q", ErrInvalidInput, req.TriggerType)
	}
	if req.TriggerEntityType == "" {
		req.TriggerEntityType = entity.EntityTypeAll
	}
	if !validEntityTypes[req.TriggerEntityType] {
		return nil, fmt.Errorf("%w: trigger_entity_type %q", ErrInvalidInput, req.TriggerEntityType)
	}

	var projectID *string
	switch req.Scope {
	case entity.ScopeOrganization:
		if req.ProjectID != nil && *req.ProjectID != "" {
			return nil, fmt.Errorf("%w: 组织级工作流不能绑定项目", ErrInvalidInput)
		}
	case entity.ScopeProject:
		if req.ProjectID == nil || *req.ProjectID == "" {
			return nil, fmt.Errorf("%w: 项目级工作流必须指定项目", ErrInvalidInput)
		}
		project, err := s.projectRepo.FindByID(ctx, *req.ProjectID)
		if err != nil {
			return nil, err
		}
		if project.OrganizationID != orgID {
			return nil, repository.ErrNotFound
		}
		projectID = req.ProjectID
	default:
		return nil, fmt.Errorf("%w: scope %q", ErrInvalidInput, req.Scope)
	}

	enabled := true
	if req.IsEnabled != nil {
		enabled = *req.IsEnabled
	}

	workflow := &entity.Workflow{
		ID:                uuid.New().String()[:32],
		Name:              req.Name,
		Description:       req.Description,
		TriggerType:       req.TriggerType,
		TriggerEntityType: req.TriggerEntityType,
		Scope:             req.Scope,
		OrganizationID:    &orgID,
		ProjectID:         projectID,
		IsEnabled:         enabled,
		CreatedBy:         userID,
		Actions:           buildActions("", req.Actions),
	}
	for i := range workflow.Actions {
		workflow.Actions[i].WorkflowID = workflow.ID
	}

	if err := s.workflowRepo.Create(ctx, workflow); err != nil {
		return nil, fmt.Errorf("create workflow: %w", err)
	}

	s.appendAudit(ctx, orgID, userID, workflow, entity.WorkflowAuditCreated, entity.JSONB{
		"trigger_type": workflow.TriggerType,
		"scope":        workflow.Scope,
	})
	return s.workflowRepo.FindByID(ctx, workflow.ID)
}

// Get 获取工作流详情（限定组织）
func (s *WorkflowService) Get(ctx context.Context, orgID, id string) (*entity.Workflow, error) {
	workflow, err := s.workflowRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if workflow.OrganizationID == nil || *workflow.OrganizationID != orgID {
		return nil, repository.ErrNotFound
	}
	return workflow, nil
}

// Update 更新工作流
func (s *WorkflowService) Update(ctx context.Context, orgID, userID, id string, req UpdateWorkflowRequest) (*entity.Workflow, error) {
	workflow, err := s.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	detail := entity.JSONB{}
	if req.Name != "" {
		detail["name"] = map[string]interface{}{"from": workflow.Name, "to": req.Name}
		workflow.Name = req.Name
	}
	if req.Description != nil {
		workflow.Description = *req.Description
	}
	if req.TriggerType != "" {
		if !validTriggerTypes[req.TriggerType] {
			return nil, fmt.Errorf("%w: trigger_type %q", ErrInvalidInput, req.TriggerType)
		}
		detail["trigger_type"] = map[string]interface{}{"from": workflow.TriggerType, "to": req.TriggerType}
		workflow.TriggerType = req.TriggerType
	}
	if req.TriggerEntityType != "" {
		if !validEntityTypes[req.TriggerEntityType] {
			return nil, fmt.Errorf("%w: trigger_entity_type %q", ErrInvalidInput, req.TriggerEntityType)
		}
		workflow.TriggerEntityType = req.TriggerEntityType
	}
	if req.IsEnabled != nil {
		detail["is_enabled"] = *req.IsEnabled
		workflow.IsEnabled = *req.IsEnabled
	}

	if err := s.workflowRepo.Update(ctx, workflow); err != nil {
		return nil, fmt.Errorf("update workflow: %w", err)
	}
	if req.Actions != nil {
		if err := s.workflowRepo.ReplaceActions(ctx, workflow.ID, buildActions(workflow.ID, *req.Actions)); err != nil {
			return nil, fmt.Errorf("replace actions: %w", err)
		}
		detail["actions_replaced"] = len(*req.Actions)
	}

	s.appendAudit(ctx, orgID, userID, workflow, entity.WorkflowAuditUpdated, detail)
	return s.workflowRepo.FindByID(ctx, workflow.ID)
}

// Delete 删除工作流，审计日志带名称快照留存
func (s *WorkflowService) Delete(ctx context.Context, orgID, userID, id string) error {
	workflow, err := s.Get(ctx, orgID, id)
	if err != nil {
		return err
	}
	if err := s.workflowRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete workflow: %w", err)
	}

	s.appendAudit(ctx, orgID, userID, workflow, entity.WorkflowAuditDeleted, entity.JSONB{
		"trigger_type": workflow.TriggerType,
		"scope":        workflow.Scope,
	})
	return nil
}

// List 获取工作流列表
func (s *WorkflowService) List(ctx context.Context, orgID string, page, pageSize int) (*WorkflowListResult, error) {
	workflows, total, err := s.workflowRepo.List(ctx, orgID, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return &WorkflowListResult{
		Items:      workflows,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// ListExecutions 获取工作流执行记录列表
func (s *WorkflowService) ListExecutions(ctx context.Context, orgID, workflowID string, page, pageSize int) (*ExecutionListResult, error) {
	if _, err := s.Get(ctx, orgID, workflowID); err != nil {
		return nil, err
	}
	executions, total, err := s.workflowRepo.ListExecutions(ctx, workflowID, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("list executions: %w", err)
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return &ExecutionListResult{
		Items:      executions,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// ListAuditLogs 获取组织内工作流审计日志
func (s *WorkflowService) ListAuditLogs(ctx context.Context, orgID string, page, pageSize int) (*AuditLogListResult, error) {
	logs, total, err := s.workflowRepo.ListAuditLogs(ctx, orgID, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return &AuditLogListResult{
		Items:      logs,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// appendAudit 追加审计日志，失败不影响主流程
func (s *WorkflowService) appendAudit(ctx context.Context, orgID, userID string, workflow *entity.Workflow, action string, detail entity.JSONB) {
	workflowID := workflow.ID
	log := &entity.WorkflowAuditLog{
		ID:             uuid.New().String()[:32],
		OrganizationID: orgID,
		WorkflowID:     &workflowID,
		WorkflowName:   workflow.Name,
		Action:         action,
		PerformedBy:    userID,
		Detail:         detail,
	}
	_ = s.workflowRepo.AppendAuditLog(ctx, log)
}

func buildActions(workflowID string, inputs []WorkflowActionInput) []entity.WorkflowAction {
	actions := make([]entity.WorkflowAction, 0, len(inputs))
	for _, input := range inputs {
		enabled := true
		if input.IsEnabled != nil {
			enabled = *input.IsEnabled
		}
		actions = append(actions, entity.WorkflowAction{
			ID:         uuid.New().String()[:32],
			WorkflowID: workflowID,
			ActionType: input.ActionType,
			Config:     entity.JSONB(input.Config),
			SortOrder:  input.SortOrder,
			IsEnabled:  enabled,
		})
	}
	return actions
}
