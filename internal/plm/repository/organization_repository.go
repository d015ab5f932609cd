package repository

import (
	"context"
	"errors"

	"github.com/Dokuly-PLM/dokuly-sub000/internal/plm/entity"
	"gorm.io/gorm"
)

// OrganizationRepository 组织仓库
type OrganizationRepository struct {
	db *gorm.DB
}

// NewOrganizationRepository 创建组织仓库
func NewOrganizationRepository(db *gorm.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

// Create 创建组织
func (r *OrganizationRepository) Create(ctx context.Context, org *entity.Organization) error {
	return r.db.WithContext(ctx).Create(org).Error
}

// Update 保存组织
func (r *OrganizationRepository) Update(ctx context.Context, org *entity.Organization) error {
	return r.db.WithContext(ctx).Save(org).Error
}

// FindByID 按ID查询组织
func (r *OrganizationRepository) FindByID(ctx context.Context, id string) (*entity.Organization, error) {
	var org entity.Organization
	err := r.db.WithContext(ctx).First(&org, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &org, nil
}

// AddMember 添加组织成员
func (r *OrganizationRepository) AddMember(ctx context.Context, member *entity.OrganizationMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

// FindMember 查询组织成员关系
func (r *OrganizationRepository) FindMember(ctx context.Context, orgID, userID string) (*entity.OrganizationMember, error) {
	var member entity.OrganizationMember
	err := r.db.WithContext(ctx).
		First(&member, "organization_id = ? AND user_id = ?", orgID, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &member, nil
}

// ListMembers 列出组织成员
func (r *OrganizationRepository) ListMembers(ctx context.Context, orgID string) ([]entity.OrganizationMember, error) {
	var members []entity.OrganizationMember
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("created_at ASC").
		Find(&members).Error
	return members, err
}
