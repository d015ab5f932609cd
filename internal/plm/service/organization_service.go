package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Dokuly-PLM/dokuly-sub000/internal/plm/entity"
	"github.com/Dokuly-PLM/dokuly-sub000/internal/plm/numbering"
	"github.com/Dokuly-PLM/dokuly-sub000/internal/plm/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const orgSettingsCacheTTL = 10 * time.Minute

// OrganizationService 组织服务
type OrganizationService struct {
	orgRepo *repository.OrganizationRepository
	rdb     *redis.Client
}

// NewOrganizationService 创建组织服务
func NewOrganizationService(orgRepo *repository.OrganizationRepository, rdb *redis.Client) *OrganizationService {
	return &OrganizationService{orgRepo: orgRepo, rdb: rdb}
}

// CreateOrganizationRequest 创建组织请求
type CreateOrganizationRequest struct {
	Name string `json:"name" binding:"required"`
}

// UpdateNumberingRequest 更新编号配置请求
// 零件与文档各自独立配置；留空字段不修改
type UpdateNumberingRequest struct {
	PartRevision       *entity.RevisionSettings `json:"part_revision"`
	DocRevision        *entity.RevisionSettings `json:"doc_revision"`
	PartNumberTemplate *string                  `json:"part_number_template"`
	DocNumberTemplate  *string                  `json:"doc_number_template"`
}

// Create 创建组织，创建者自动成为管理员成员
func (s *OrganizationService) Create(ctx context.Context, userID string, req CreateOrganizationRequest) (*entity.Organization, error) {
	org := &entity.Organization{
		ID:   uuid.New().String()[:32],
		Name: req.Name,
		PartRevision: entity.RevisionSettings{
			RevisionFormat: entity.RevisionFormatMajorMinor,
		},
		DocRevision: entity.RevisionSettings{
			RevisionFormat: entity.RevisionFormatMajorMinor,
		},
	}
	if err := s.orgRepo.Create(ctx, org); err != nil {
		return nil, fmt.Errorf("create organization: %w", err)
	}

	member := &entity.OrganizationMember{
		ID:             uuid.New().String()[:32],
		OrganizationID: org.ID,
		UserID:         userID,
		Role:           "admin",
	}
	if err := s.orgRepo.AddMember(ctx, member); err != nil {
		return nil, fmt.Errorf("add creator member: %w", err)
	}
	return org, nil
}

// Get 获取组织详情
func (s *OrganizationService) Get(ctx context.Context, id string) (*entity.Organization, error) {
	org, err := s.getCached(ctx, id)
	if err != nil {
		return nil, err
	}
	return org, nil
}

// UpdateNumbering 更新组织编号配置
// 配置变更只影响之后渲染的编号，已落库的完整编号不回写
func (s *OrganizationService) UpdateNumbering(ctx context.Context, id string, req UpdateNumberingRequest) (*entity.Organization, error) {
	org, err := s.orgRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.PartRevision != nil {
		if err := validateRevisionSettings(req.PartRevision); err != nil {
			return nil, err
		}
		org.PartRevision = *req.PartRevision
	}
	if req.DocRevision != nil {
		if err := validateRevisionSettings(req.DocRevision); err != nil {
			return nil, err
		}
		org.DocRevision = *req.DocRevision
	}
	if req.PartNumberTemplate != nil {
		org.PartNumberTemplate = *req.PartNumberTemplate
	}
	if req.DocNumberTemplate != nil {
		org.DocNumberTemplate = *req.DocNumberTemplate
	}

	if err := s.orgRepo.Update(ctx, org); err != nil {
		return nil, fmt.Errorf("update organization: %w", err)
	}
	s.invalidate(ctx, id)
	return org, nil
}

// AddMember 添加组织成员
func (s *OrganizationService) AddMember(ctx context.Context, orgID, userID, role string) (*entity.OrganizationMember, error) {
	if role == "" {
		role = "member"
	}
	member := &entity.OrganizationMember{
		ID:             uuid.New().String()[:32],
		OrganizationID: orgID,
		UserID:         userID,
		Role:           role,
	}
	if err := s.orgRepo.AddMember(ctx, member); err != nil {
		return nil, fmt.Errorf("add member: %w", err)
	}
	return member, nil
}

// ListMembers 列出组织成员
func (s *OrganizationService) ListMembers(ctx context.Context, orgID string) ([]entity.OrganizationMember, error) {
	return s.orgRepo.ListMembers(ctx, orgID)
}

// CheckMembership 校验用户是否为组织成员
func (s *OrganizationService) CheckMembership(ctx context.Context, orgID, userID string) error {
	_, err := s.orgRepo.FindMember(ctx, orgID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotMember
		}
		return err
	}
	return nil
}

// Numbering 解析某类条目的版本格式配置与编号模板
func (s *OrganizationService) Numbering(ctx context.Context, orgID, kind string) (numbering.Config, string, error) {
	org, err := s.getCached(ctx, orgID)
	if err != nil {
		return numbering.Config{}, "", err
	}

	settings := org.PartRevision
	template := org.PartNumberTemplate
	if kind == NumberingKindDocument {
		settings = org.DocRevision
		template = org.DocNumberTemplate
	}
	cfg := numbering.Config{
		UseNumberRevisions:      settings.UseNumberRevisions,
		RevisionFormat:          settings.RevisionFormat,
		StartMajorRevisionAtOne: settings.StartMajorRevisionAtOne,
	}
	return cfg, template, nil
}

func validateRevisionSettings(settings *entity.RevisionSettings) error {
	switch settings.RevisionFormat {
	case entity.RevisionFormatMajorOnly, entity.RevisionFormatMajorMinor:
		return nil
	case "":
		settings.RevisionFormat = entity.RevisionFormatMajorMinor
		return nil
	default:
		return fmt.Errorf("%w: revision_format %q", ErrInvalidInput, settings.RevisionFormat)
	}
}

func (s *OrganizationService) cacheKey(orgID string) string {
	return "plm:org:" + orgID
}

// getCached 读取组织，优先走Redis缓存
func (s *OrganizationService) getCached(ctx context.Context, orgID string) (*entity.Organization, error) {
	if s.rdb != nil {
		data, err := s.rdb.Get(ctx, s.cacheKey(orgID)).Bytes()
		if err == nil {
			var org entity.Organization
			if json.Unmarshal(data, &org) == nil {
				return &org, nil
			}
		}
	}

	org, err := s.orgRepo.FindByID(ctx, orgID)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if data, err := json.Marshal(org); err == nil {
			s.rdb.Set(ctx, s.cacheKey(orgID), data, orgSettingsCacheTTL)
		}
	}
	return org, nil
}

func (s *OrganizationService) invalidate(ctx context.Context, orgID string) {
	if s.rdb != nil {
		s.rdb.Del(ctx, s.cacheKey(orgID))
	}
}
