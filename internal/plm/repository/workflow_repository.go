package repository

import (
	"context"
	"errors"

	"github.com/Dokuly-PLM/dokuly-sub000/internal/plm/entity"
	"gorm.io/gorm"
)

// WorkflowRepository 工作流仓库
type WorkflowRepository struct {
	db *gorm.DB
}

// NewWorkflowRepository 创建工作流仓库
func NewWorkflowRepository(db *gorm.DB) *WorkflowRepository {
	return &WorkflowRepository{db: db}
}

func actionOrder(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC, id ASC")
}

// Create 创建工作流（含动作，同一事务）
func (r *WorkflowRepository) Create(ctx context.Context, workflow *entity.Workflow) error {
	return r.db.WithContext(ctx).Create(workflow).Error
}

// Update 保存工作流本体（不触碰动作）
func (r *WorkflowRepository) Update(ctx context.Context, workflow *entity.Workflow) error {
	return r.db.WithContext(ctx).Omit("Actions").Save(workflow).Error
}

// ReplaceActions 整体替换工作流动作列表
func (r *WorkflowRepository) ReplaceActions(ctx context.Context, workflowID string, actions []entity.WorkflowAction) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("workflow_id = ?", workflowID).Delete(&entity.WorkflowAction{}).Error; err != nil {
			return err
		}
		if len(actions) == 0 {
			return nil
		}
		return tx.Create(&actions).Error
	})
}

// FindByID 按ID查询工作流，带有序动作
func (r *WorkflowRepository) FindByID(ctx context.Context, id string) (*entity.Workflow, error) {
	var workflow entity.Workflow
	err := r.db.WithContext(ctx).
		Preload("Actions", actionOrder).
		First(&workflow, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &workflow, nil
}

// List 列出组织拥有的工作流（organization_id 总是记录属主组织，项目级也不例外）
func (r *WorkflowRepository) List(ctx context.Context, orgID string, page, pageSize int) ([]entity.Workflow, int64, error) {
	var workflows []entity.Workflow
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Workflow{}).Where("organization_id = ?", orgID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.
		Preload("Actions", actionOrder).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&workflows).Error
	if err != nil {
		return nil, 0, err
	}
	return workflows, total, nil
}

// Match 解析命中某事件的已启用工作流
// 作用域字段缺失的工作流一律不命中：组织级必须 organization_id 非空且相等，
// 项目级必须 project_id 非空且等于事件项目；事件无项目时项目级全部落空
func (r *WorkflowRepository) Match(ctx context.Context, triggerType, entityType, orgID string, projectID *string) ([]entity.Workflow, error) {
	query := r.db.WithContext(ctx).
		Preload("Actions", actionOrder).
		Where("is_enabled = ?", true).
		Where("trigger_type = ?", triggerType).
		Where("trigger_entity_type IN ?", []string{entityType, entity.EntityTypeAll})

	if projectID != nil && *projectID != "" {
		query = query.Where(
			"(scope = ? AND organization_id = ?) OR (scope = ? AND project_id = ?)",
			entity.ScopeOrganization, orgID, entity.ScopeProject, *projectID,
		)
	} else {
		query = query.Where("scope = ? AND organization_id = ?", entity.ScopeOrganization, orgID)
	}

	var workflows []entity.Workflow
	err := query.Order("created_at ASC, id ASC").Find(&workflows).Error
	return workflows, err
}

// Delete 删除工作流及其动作
func (r *WorkflowRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("workflow_id = ?", id).Delete(&entity.WorkflowAction{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&entity.Workflow{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// CreateExecution 落库执行记录
func (r *WorkflowRepository) CreateExecution(ctx context.Context, execution *entity.WorkflowExecution) error {
	return r.db.WithContext(ctx).Create(execution).Error
}

// UpdateExecution 保存执行记录
func (r *WorkflowRepository) UpdateExecution(ctx context.Context, execution *entity.WorkflowExecution) error {
	return r.db.WithContext(ctx).Save(execution).Error
}

// FindExecutionByID 按ID查询执行记录
func (r *WorkflowRepository) FindExecutionByID(ctx context.Context, id string) (*entity.WorkflowExecution, error) {
	var execution entity.WorkflowExecution
	err := r.db.WithContext(ctx).First(&execution, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &execution, nil
}

// ListExecutions 列出某工作流的执行记录
func (r *WorkflowRepository) ListExecutions(ctx context.Context, workflowID string, page, pageSize int) ([]entity.WorkflowExecution, int64, error) {
	var executions []entity.WorkflowExecution
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.WorkflowExecution{}).Where("workflow_id = ?", workflowID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&executions).Error
	if err != nil {
		return nil, 0, err
	}
	return executions, total, nil
}

// AppendAuditLog 追加审计日志
func (r *WorkflowRepository) AppendAuditLog(ctx context.Context, log *entity.WorkflowAuditLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// ListAuditLogs 列出组织内工作流审计日志
func (r *WorkflowRepository) ListAuditLogs(ctx context.Context, orgID string, page, pageSize int) ([]entity.WorkflowAuditLog, int64, error) {
	var logs []entity.WorkflowAuditLog
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.WorkflowAuditLog{}).Where("organization_id = ?", orgID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
