package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dokuly-PLM/dokuly-sub000/internal/plm/entity"
	"github.com/Dokuly-PLM/dokuly-sub000/internal/plm/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BOMService 装配体BOM服务
type BOMService struct {
	bomRepo      *repository.BOMRepository
	assemblyRepo *repository.ItemRepository[entity.Assembly, *entity.Assembly]
	partRepo     *repository.ItemRepository[entity.Part, *entity.Part]
}

// NewBOMService 创建BOM服务
func NewBOMService(bomRepo *repository.BOMRepository, assemblyRepo *repository.ItemRepository[entity.Assembly, *entity.Assembly], partRepo *repository.ItemRepository[entity.Part, *entity.Part]) *BOMService {
	return &BOMService{bomRepo: bomRepo, assemblyRepo: assemblyRepo, partRepo: partRepo}
}

// AddBOMItemRequest 添加BOM行项请求
type AddBOMItemRequest struct {
	PartNumber int     `json:"part_number" binding:"required"`
	Quantity   float64 `json:"quantity"`
	Designator string  `json:"designator"`
	Notes      string  `json:"notes"`
}

// UpdateBOMItemRequest 更新BOM行项请求
type UpdateBOMItemRequest struct {
	Quantity   *float64 `json:"quantity"`
	Designator *string  `json:"designator"`
	Notes      *string  `json:"notes"`
}

// BOMLine BOM行项及其解析出的零件最新修订
type BOMLine struct {
	entity.BOMItem
	Part *entity.Part `json:"part,omitempty"`
}

// AddItem 向装配体添加BOM行项
// 行项按零件族编号引用，零件族必须在同组织内存在
func (s *BOMService) AddItem(ctx context.Context, orgID, userID, assemblyID string, req AddBOMItemRequest) (*entity.BOMItem, error) {
	if err := s.checkAssembly(ctx, orgID, assemblyID); err != nil {
		return nil, err
	}

	family, err := s.partRepo.Family(ctx, orgID, req.PartNumber)
	if err != nil {
		return nil, fmt.Errorf("load part family: %w", err)
	}
	if len(family) == 0 {
		return nil, repository.ErrNotFound
	}

	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	item := &entity.BOMItem{
		ID:             uuid.New().String()[:32],
		OrganizationID: orgID,
		AssemblyID:     assemblyID,
		PartNumber:     req.PartNumber,
		Quantity:       quantity,
		Designator:     req.Designator,
		Notes:          req.Notes,
		CreatedBy:      userID,
	}
	if err := s.bomRepo.Create(ctx, item); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: 零件已在BOM中", ErrInvalidInput)
		}
		return nil, fmt.Errorf("add BOM item: %w", err)
	}
	return item, nil
}

// List 列出装配体BOM，每行解析零件族当前最新修订
// 零件族全部归档时 part 为空，行项仍然返回
func (s *BOMService) List(ctx context.Context, orgID, assemblyID string) ([]BOMLine, error) {
	if err := s.checkAssembly(ctx, orgID, assemblyID); err != nil {
		return nil, err
	}

	items, err := s.bomRepo.ListByAssembly(ctx, assemblyID)
	if err != nil {
		return nil, fmt.Errorf("list BOM items: %w", err)
	}

	lines := make([]BOMLine, 0, len(items))
	for _, item := range items {
		line := BOMLine{BOMItem: item}
		part, err := s.partRepo.LatestOfFamily(ctx, orgID, item.PartNumber)
		if err == nil {
			line.Part = part
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("resolve part: %w", err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// UpdateItem 更新BOM行项
func (s *BOMService) UpdateItem(ctx context.Context, orgID, id string, req UpdateBOMItemRequest) (*entity.BOMItem, error) {
	item, err := s.bomRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.OrganizationID != orgID {
		return nil, repository.ErrNotFound
	}

	if req.Quantity != nil {
		if *req.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity 必须大于0", ErrInvalidInput)
		}
		item.Quantity = *req.Quantity
	}
	if req.Designator != nil {
		item.Designator = *req.Designator
	}
	if req.Notes != nil {
		item.Notes = *req.Notes
	}

	if err := s.bomRepo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("update BOM item: %w", err)
	}
	return item, nil
}

// RemoveItem 删除BOM行项
func (s *BOMService) RemoveItem(ctx context.Context, orgID, id string) error {
	item, err := s.bomRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if item.OrganizationID != orgID {
		return repository.ErrNotFound
	}
	return s.bomRepo.Delete(ctx, id)
}

func (s *BOMService) checkAssembly(ctx context.Context, orgID, assemblyID string) error {
	assembly, err := s.assemblyRepo.FindByID(ctx, assemblyID)
	if err != nil {
		return err
	}
	if assembly.OrganizationID != orgID {
		return repository.ErrNotFound
	}
	return nil
}
