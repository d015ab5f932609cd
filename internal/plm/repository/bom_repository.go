package repository

import (
	"context"
	"errors"

	"github.com/Dokuly-PLM/dokuly-sub000/internal/plm/entity"
	"gorm.io/gorm"
)

// BOMRepository 装配体BOM仓库
type BOMRepository struct {
	db *gorm.DB
}

// NewBOMRepository 创建BOM仓库
func NewBOMRepository(db *gorm.DB) *BOMRepository {
	return &BOMRepository{db: db}
}

// Create 添加BOM行项
func (r *BOMRepository) Create(ctx context.Context, item *entity.BOMItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// Update 保存BOM行项
func (r *BOMRepository) Update(ctx context.Context, item *entity.BOMItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// FindByID 按ID查询BOM行项
func (r *BOMRepository) FindByID(ctx context.Context, id string) (*entity.BOMItem, error) {
	var item entity.BOMItem
	err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// ListByAssembly 列出装配体的全部BOM行项
func (r *BOMRepository) ListByAssembly(ctx context.Context, assemblyID string) ([]entity.BOMItem, error) {
	var items []entity.BOMItem
	err := r.db.WithContext(ctx).
		Where("assembly_id = ?", assemblyID).
		Order("part_number ASC").
		Find(&items).Error
	return items, err
}

// Delete 删除BOM行项
func (r *BOMRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&entity.BOMItem{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
