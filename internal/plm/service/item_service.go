package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dokuly-PLM/dokuly-sub000/internal/plm/entity"
	"github.com/Dokuly-PLM/dokuly-sub000/internal/plm/numbering"
	"github.com/Dokuly-PLM/dokuly-sub000/internal/plm/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// itemPtr 指向可修订条目实体的指针类型约束
type itemPtr[T any] interface {
	*T
	entity.Revisioned
}

// ItemService 可修订条目通用服务
// 编号分配、版本戳、完整编号渲染、最新版重算和工作流触发对四类条目完全一致，
// 差异收敛为前缀、条目类型和编号配置类别三个参数
type ItemService[T any, PT itemPtr[T]] struct {
	repo        *repository.ItemRepository[T, PT]
	projectRepo *repository.ProjectRepository
	orgSvc      *OrganizationService
	automation  *AutomationService

	entityType     string
	prefix         string
	numberingKind  string
	createdTrigger string
}

// NewPartService 创建零件服务
func NewPartService(repos *repository.Repositories, orgSvc *OrganizationService, automation *AutomationService) *ItemService[entity.Part, *entity.Part] {
	return &ItemService[entity.Part, *entity.Part]{
		repo:           repos.Part,
		projectRepo:    repos.Project,
		orgSvc:         orgSvc,
		automation:     automation,
		entityType:     entity.EntityTypeParts,
		prefix:         entity.PrefixPart,
		numberingKind:  NumberingKindPart,
		createdTrigger: entity.TriggerPartCreated,
	}
}

// NewPcbaService 创建PCBA服务
func NewPcbaService(repos *repository.Repositories, orgSvc *OrganizationService, automation *AutomationService) *ItemService[entity.Pcba, *entity.Pcba] {
	return &ItemService[entity.Pcba, *entity.Pcba]{
		repo:           repos.Pcba,
		projectRepo:    repos.Project,
		orgSvc:         orgSvc,
		automation:     automation,
		entityType:     entity.EntityTypePcbas,
		prefix:         entity.PrefixPcba,
		numberingKind:  NumberingKindPart,
		createdTrigger: entity.TriggerPcbaCreated,
	}
}

// NewAssemblyService 创建装配体服务
func NewAssemblyService(repos *repository.Repositories, orgSvc *OrganizationService, automation *AutomationService) *ItemService[entity.Assembly, *entity.Assembly] {
	return &ItemService[entity.Assembly, *entity.Assembly]{
		repo:           repos.Assembly,
		projectRepo:    repos.Project,
		orgSvc:         orgSvc,
		automation:     automation,
		entityType:     entity.EntityTypeAssemblies,
		prefix:         entity.PrefixAssembly,
		numberingKind:  NumberingKindPart,
		createdTrigger: entity.TriggerAssemblyCreated,
	}
}

// NewDocumentService 创建文档服务
func NewDocumentService(repos *repository.Repositories, orgSvc *OrganizationService, automation *AutomationService) *ItemService[entity.Document, *entity.Document] {
	return &ItemService[entity.Document, *entity.Document]{
		repo:           repos.Document,
		projectRepo:    repos.Project,
		orgSvc:         orgSvc,
		automation:     automation,
		entityType:     entity.EntityTypeDocuments,
		prefix:         entity.PrefixDocument,
		numberingKind:  NumberingKindDocument,
		createdTrigger: entity.TriggerDocumentCreated,
	}
}

// CreateItemRequest 创建条目请求
type CreateItemRequest struct {
	DisplayName   string  `json:"display_name" binding:"required"`
	Description   string  `json:"description"`
	ProjectID     *string `json:"project_id"`
	RevisionNotes string  `json:"revision_notes"`
}

// NewRevisionRequest 创建新修订请求
type NewRevisionRequest struct {
	MajorBump     bool    `json:"major_bump"`
	DisplayName   string  `json:"display_name"`
	Description   *string `json:"description"`
	RevisionNotes string  `json:"revision_notes"`
}

// UpdateItemRequest 更新条目请求
type UpdateItemRequest struct {
	DisplayName   string  `json:"display_name"`
	Description   *string `json:"description"`
	ReleaseState  string  `json:"release_state"`
	RevisionNotes *string `json:"revision_notes"`
}

// ItemListResult 条目列表结果
type ItemListResult[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// Create 创建条目（新族的首个修订，计数对从 (0,0) 起）
func (s *ItemService[T, PT]) Create(ctx context.Context, orgID, userID string, req CreateItemRequest) (PT, error) {
	cfg, template, err := s.orgSvc.Numbering(ctx, orgID, s.numberingKind)
	if err != nil {
		return nil, err
	}

	projectNumber, err := s.resolveProjectNumber(ctx, orgID, req.ProjectID)
	if err != nil {
		return nil, err
	}

	number, err := s.repo.NextNumber(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("allocate number: %w", err)
	}

	var item T
	pt := PT(&item)
	pt.SetID(uuid.New().String()[:32])
	pt.SetNumber(number)

	f := pt.Item()
	f.OrganizationID = orgID
	f.ProjectID = req.ProjectID
	f.Prefix = s.prefix
	f.DisplayName = req.DisplayName
	f.Description = req.Description
	f.ReleaseState = entity.ReleaseStateDraft
	f.RevisionCountMajor = 0
	f.RevisionCountMinor = 0
	f.FormattedRevision = numbering.FormatRevision(0, 0, cfg)
	f.RevisionNotes = req.RevisionNotes
	f.CreatedBy = userID

	pt.SetFullNumber(numbering.RenderNumber(template, numbering.NumberVars{
		Prefix:        s.prefix,
		Number:        number,
		Revision:      f.FormattedRevision,
		Major:         0,
		Minor:         0,
		ProjectNumber: projectNumber,
		CreatedAt:     time.Now(),
	}))

	if err := s.repo.Create(ctx, pt); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrRevisionConflict
		}
		return nil, fmt.Errorf("create item: %w", err)
	}
	if err := s.repo.RecomputeLatest(ctx, orgID, number); err != nil {
		return nil, fmt.Errorf("recompute latest: %w", err)
	}

	s.automation.Dispatch(ctx, AutomationEvent{
		TriggerType:    s.createdTrigger,
		EntityType:     s.entityType,
		EntityID:       pt.GetID(),
		OrganizationID: orgID,
		ProjectID:      req.ProjectID,
		UserID:         userID,
		Entity:         s.entityVars(pt),
	})

	return s.repo.FindByID(ctx, pt.GetID())
}

// NewRevision 在条目族上创建新修订
// 计数对从族内最大计数推进，基准条目只用于定位族；
// 并发推进撞到族唯一索引时返回修订冲突
func (s *ItemService[T, PT]) NewRevision(ctx context.Context, orgID, userID, id string, req NewRevisionRequest) (PT, error) {
	base, err := s.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	cfg, template, err := s.orgSvc.Numbering(ctx, orgID, s.numberingKind)
	if err != nil {
		return nil, err
	}

	family, err := s.repo.Family(ctx, orgID, base.GetNumber())
	if err != nil {
		return nil, fmt.Errorf("load family: %w", err)
	}
	counters := make([]numbering.Counters, len(family))
	for i := range family {
		f := PT(&family[i]).Item()
		counters[i] = numbering.Counters{Major: f.RevisionCountMajor, Minor: f.RevisionCountMinor}
	}
	idx := numbering.LatestIndex(counters)
	if idx < 0 {
		return nil, repository.ErrNotFound
	}
	major, minor := numbering.Bump(counters[idx].Major, counters[idx].Minor, req.MajorBump)

	baseFields := base.Item()
	projectNumber, err := s.resolveProjectNumber(ctx, orgID, baseFields.ProjectID)
	if err != nil {
		return nil, err
	}

	var item T
	pt := PT(&item)
	pt.SetID(uuid.New().String()[:32])
	pt.SetNumber(base.GetNumber())

	f := pt.Item()
	f.OrganizationID = orgID
	f.ProjectID = baseFields.ProjectID
	f.Prefix = baseFields.Prefix
	f.DisplayName = baseFields.DisplayName
	if req.DisplayName != "" {
		f.DisplayName = req.DisplayName
	}
	f.Description = baseFields.Description
	if req.Description != nil {
		f.Description = *req.Description
	}
	// 新修订一律回到草稿态，发布需要重新走发布流程
	f.ReleaseState = entity.ReleaseStateDraft
	f.RevisionCountMajor = major
	f.RevisionCountMinor = minor
	f.FormattedRevision = numbering.FormatRevision(major, minor, cfg)
	f.RevisionNotes = req.RevisionNotes
	f.CreatedBy = userID

	pt.SetFullNumber(numbering.RenderNumber(template, numbering.NumberVars{
		Prefix:        f.Prefix,
		Number:        base.GetNumber(),
		Revision:      f.FormattedRevision,
		Major:         major,
		Minor:         minor,
		ProjectNumber: projectNumber,
		CreatedAt:     time.Now(),
	}))

	if err := s.repo.Create(ctx, pt); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrRevisionConflict
		}
		return nil, fmt.Errorf("create revision: %w", err)
	}
	if err := s.repo.RecomputeLatest(ctx, orgID, base.GetNumber()); err != nil {
		return nil, fmt.Errorf("recompute latest: %w", err)
	}

	s.automation.Dispatch(ctx, AutomationEvent{
		TriggerType:    entity.TriggerRevisionCreated,
		EntityType:     s.entityType,
		EntityID:       pt.GetID(),
		OrganizationID: orgID,
		ProjectID:      baseFields.ProjectID,
		UserID:         userID,
		Entity:         s.entityVars(pt),
	})

	return s.repo.FindByID(ctx, pt.GetID())
}

// Get 获取条目详情（限定组织）
func (s *ItemService[T, PT]) Get(ctx context.Context, orgID, id string) (PT, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.Item().OrganizationID != orgID {
		return nil, repository.ErrNotFound
	}
	return item, nil
}

// List 获取条目列表
func (s *ItemService[T, PT]) List(ctx context.Context, orgID string, latestOnly bool, page, pageSize int) (*ItemListResult[T], error) {
	items, total, err := s.repo.List(ctx, orgID, latestOnly, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return &ItemListResult[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// Revisions 获取条目所在族的全部修订（含归档行），按计数对升序
func (s *ItemService[T, PT]) Revisions(ctx context.Context, orgID, id string) ([]T, error) {
	item, err := s.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	return s.repo.Family(ctx, orgID, item.GetNumber())
}

// Update 更新条目可变字段（不触碰修订计数与编号）
func (s *ItemService[T, PT]) Update(ctx context.Context, orgID, id string, req UpdateItemRequest) (PT, error) {
	item, err := s.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	f := item.Item()
	if req.DisplayName != "" {
		f.DisplayName = req.DisplayName
	}
	if req.Description != nil {
		f.Description = *req.Description
	}
	if req.RevisionNotes != nil {
		f.RevisionNotes = *req.RevisionNotes
	}
	if req.ReleaseState != "" {
		if req.ReleaseState != entity.ReleaseStateDraft && req.ReleaseState != entity.ReleaseStateReleased {
			return nil, fmt.Errorf("%w: release_state %q", ErrInvalidInput, req.ReleaseState)
		}
		f.ReleaseState = req.ReleaseState
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return item, nil
}

// Archive 归档单个修订行并重算族内最新版标志
func (s *ItemService[T, PT]) Archive(ctx context.Context, orgID, id string) error {
	return s.setArchived(ctx, orgID, id, true)
}

// Restore 恢复已归档的修订行
func (s *ItemService[T, PT]) Restore(ctx context.Context, orgID, id string) error {
	return s.setArchived(ctx, orgID, id, false)
}

func (s *ItemService[T, PT]) setArchived(ctx context.Context, orgID, id string, archived bool) error {
	item, err := s.Get(ctx, orgID, id)
	if err != nil {
		return err
	}
	if err := s.repo.SetArchived(ctx, id, archived); err != nil {
		return fmt.Errorf("set archived: %w", err)
	}
	if err := s.repo.RecomputeLatest(ctx, orgID, item.GetNumber()); err != nil {
		return fmt.Errorf("recompute latest: %w", err)
	}
	return nil
}

// resolveProjectNumber 解析项目编号，项目必须属于同一组织
func (s *ItemService[T, PT]) resolveProjectNumber(ctx context.Context, orgID string, projectID *string) (string, error) {
	if projectID == nil || *projectID == "" {
		return "", nil
	}
	project, err := s.projectRepo.FindByID(ctx, *projectID)
	if err != nil {
		return "", err
	}
	if project.OrganizationID != orgID {
		return "", repository.ErrNotFound
	}
	return project.ProjectNumber, nil
}

// entityVars 展开条目字段，供工作流动作做占位符替换
func (s *ItemService[T, PT]) entityVars(pt PT) map[string]interface{} {
	f := pt.Item()
	vars := map[string]interface{}{
		"id":            pt.GetID(),
		"number":        pt.GetNumber(),
		"full_number":   pt.GetFullNumber(),
		"display_name":  f.DisplayName,
		"description":   f.Description,
		"revision":      f.FormattedRevision,
		"release_state": f.ReleaseState,
		"prefix":        f.Prefix,
	}
	if f.ProjectID != nil {
		vars["project_id"] = *f.ProjectID
	}
	return vars
}
