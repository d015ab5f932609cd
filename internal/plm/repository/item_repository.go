package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dokuly-PLM/dokuly-sub000/internal/plm/entity"
	"github.com/Dokuly-PLM/dokuly-sub000/internal/plm/numbering"
	"gorm.io/gorm"
)

// revisionedPtr 指向可修订条目实体的指针类型约束
type revisionedPtr[T any] interface {
	*T
	entity.Revisioned
}

// ItemRepository 可修订条目通用仓库
// Part/Pcba/Assembly/Document 四类条目共用同一套族查询和最新版重算逻辑，
// 仅编号列名不同（part_number / document_number）
type ItemRepository[T any, PT revisionedPtr[T]] struct {
	db        *gorm.DB
	numberCol string
}

// NewPartRepository 创建零件仓库
func NewPartRepository(db *gorm.DB) *ItemRepository[entity.Part, *entity.Part] {
	return &ItemRepository[entity.Part, *entity.Part]{db: db, numberCol: "part_number"}
}

// NewPcbaRepository 创建PCBA仓库
func NewPcbaRepository(db *gorm.DB) *ItemRepository[entity.Pcba, *entity.Pcba] {
	return &ItemRepository[entity.Pcba, *entity.Pcba]{db: db, numberCol: "part_number"}
}

// NewAssemblyRepository 创建装配体仓库
func NewAssemblyRepository(db *gorm.DB) *ItemRepository[entity.Assembly, *entity.Assembly] {
	return &ItemRepository[entity.Assembly, *entity.Assembly]{db: db, numberCol: "part_number"}
}

// NewDocumentRepository 创建文档仓库
func NewDocumentRepository(db *gorm.DB) *ItemRepository[entity.Document, *entity.Document] {
	return &ItemRepository[entity.Document, *entity.Document]{db: db, numberCol: "document_number"}
}

// Create 插入条目行
// 族唯一索引 (organization_id, 编号, major, minor) 在此生效，
// 并发重复插入由调用方根据 gorm.ErrDuplicatedKey 处理
func (r *ItemRepository[T, PT]) Create(ctx context.Context, item PT) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// Update 保存条目行
func (r *ItemRepository[T, PT]) Update(ctx context.Context, item PT) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// FindByID 按ID查询
func (r *ItemRepository[T, PT]) FindByID(ctx context.Context, id string) (PT, error) {
	var item T
	err := r.db.WithContext(ctx).First(PT(&item), "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return PT(&item), nil
}

// List 分页查询组织内条目
// latestOnly 为 true 时只返回各族未归档的最新修订
func (r *ItemRepository[T, PT]) List(ctx context.Context, orgID string, latestOnly bool, page, pageSize int) ([]T, int64, error) {
	var items []T
	var total int64

	query := r.db.WithContext(ctx).Model(PT(new(T))).Where("organization_id = ?", orgID)
	if latestOnly {
		query = query.Where("is_latest_revision = ? AND is_archived = ?", true, false)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order(fmt.Sprintf("%s ASC, revision_count_major ASC, revision_count_minor ASC", r.numberCol)).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Family 查询同一族（同组织同编号）的全部修订，含归档行
func (r *ItemRepository[T, PT]) Family(ctx context.Context, orgID string, number int) ([]T, error) {
	var items []T
	err := r.db.WithContext(ctx).
		Where(fmt.Sprintf("organization_id = ? AND %s = ?", r.numberCol), orgID, number).
		Order("revision_count_major ASC, revision_count_minor ASC").
		Find(&items).Error
	return items, err
}

// LatestOfFamily 查询族内计数最大的未归档修订
func (r *ItemRepository[T, PT]) LatestOfFamily(ctx context.Context, orgID string, number int) (PT, error) {
	var item T
	err := r.db.WithContext(ctx).
		Where(fmt.Sprintf("organization_id = ? AND %s = ? AND is_archived = ?", r.numberCol), orgID, number, false).
		Order("revision_count_major DESC, revision_count_minor DESC").
		First(PT(&item)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return PT(&item), nil
}

// NextNumber 分配族编号（组织内当前最大编号+1）
func (r *ItemRepository[T, PT]) NextNumber(ctx context.Context, orgID string) (int, error) {
	var max int
	err := r.db.WithContext(ctx).Model(PT(new(T))).
		Where("organization_id = ?", orgID).
		Select(fmt.Sprintf("COALESCE(MAX(%s), 0)", r.numberCol)).
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

// RecomputeLatest 重算族内 is_latest_revision 标志
// 全量扫描整族并按 (major, minor) 全序重新推导每一行的标志，
// 创建、归档、删除后都必须重跑；标志只是缓存，计数对才是事实
func (r *ItemRepository[T, PT]) RecomputeLatest(ctx context.Context, orgID string, number int) error {
	items, err := r.Family(ctx, orgID, number)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}

	activeIDs := make([]string, 0, len(items))
	counters := make([]numbering.Counters, 0, len(items))
	for i := range items {
		f := PT(&items[i]).Item()
		if f.IsArchived {
			continue
		}
		activeIDs = append(activeIDs, PT(&items[i]).GetID())
		counters = append(counters, numbering.Counters{Major: f.RevisionCountMajor, Minor: f.RevisionCountMinor})
	}

	latestID := ""
	if idx := numbering.LatestIndex(counters); idx >= 0 {
		latestID = activeIDs[idx]
	}

	for i := range items {
		item := PT(&items[i])
		want := item.GetID() == latestID
		if item.Item().IsLatestRevision == want {
			continue
		}
		err := r.db.WithContext(ctx).Model(PT(new(T))).
			Where("id = ?", item.GetID()).
			Update("is_latest_revision", want).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// SetArchived 归档/恢复单个修订行
func (r *ItemRepository[T, PT]) SetArchived(ctx context.Context, id string, archived bool) error {
	result := r.db.WithContext(ctx).Model(PT(new(T))).
		Where("id = ?", id).
		Update("is_archived", archived)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
