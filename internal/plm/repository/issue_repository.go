package repository

import (
	"context"
	"errors"

	"github.com/Dokuly-PLM/dokuly-sub000/internal/plm/entity"
	"gorm.io/gorm"
)

// IssueRepository 问题单仓库
type IssueRepository struct {
	db *gorm.DB
}

// NewIssueRepository 创建问题单仓库
func NewIssueRepository(db *gorm.DB) *IssueRepository {
	return &IssueRepository{db: db}
}

// Create 创建问题单
func (r *IssueRepository) Create(ctx context.Context, issue *entity.Issue) error {
	return r.db.WithContext(ctx).Create(issue).Error
}

// Update 保存问题单
func (r *IssueRepository) Update(ctx context.Context, issue *entity.Issue) error {
	return r.db.WithContext(ctx).Save(issue).Error
}

// FindByID 按ID查询问题单
func (r *IssueRepository) FindByID(ctx context.Context, id string) (*entity.Issue, error) {
	var issue entity.Issue
	err := r.db.WithContext(ctx).First(&issue, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &issue, nil
}

// List 列出组织内问题单，status 为空时不过滤
func (r *IssueRepository) List(ctx context.Context, orgID, status string, page, pageSize int) ([]entity.Issue, int64, error) {
	var issues []entity.Issue
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Issue{}).Where("organization_id = ?", orgID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&issues).Error
	if err != nil {
		return nil, 0, err
	}
	return issues, total, nil
}

// ListByEntity 列出挂在某条目上的问题单
func (r *IssueRepository) ListByEntity(ctx context.Context, entityType, entityID string) ([]entity.Issue, error) {
	var issues []entity.Issue
	err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at DESC").
		Find(&issues).Error
	return issues, err
}
