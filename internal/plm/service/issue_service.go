package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Dokuly-PLM/dokuly-sub000/internal/plm/entity"
	"github.com/Dokuly-PLM/dokuly-sub000/internal/plm/repository"
	"github.com/Dokuly-PLM/dokuly-sub000/internal/shared/notify"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// IssueService 问题单服务
type IssueService struct {
	issueRepo *repository.IssueRepository
	notifier  *notify.Client
	logger    *zap.Logger
}

// NewIssueService 创建问题单服务
func NewIssueService(issueRepo *repository.IssueRepository, notifier *notify.Client, logger *zap.Logger) *IssueService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IssueService{issueRepo: issueRepo, notifier: notifier, logger: logger}
}

// CreateIssueRequest 创建问题单请求
type CreateIssueRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	ProjectID   *string `json:"project_id"`
	EntityType  string  `json:"entity_type"`
	EntityID    string  `json:"entity_id"`
}

// IssueListResult 问题单列表结果
type IssueListResult struct {
	Items      []entity.Issue `json:"items"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
}

// Create 手工创建问题单
func (s *IssueService) Create(ctx context.Context, orgID, userID string, req CreateIssueRequest) (*entity.Issue, error) {
	issue := &entity.Issue{
		OrganizationID: orgID,
		ProjectID:      req.ProjectID,
		EntityType:     req.EntityType,
		EntityID:       req.EntityID,
		Title:          req.Title,
		Description:    req.Description,
		CreatedBy:      userID,
	}
	if err := s.create(ctx, issue); err != nil {
		return nil, err
	}
	return issue, nil
}

// CreateFromWorkflow 由工作流 create_issue 动作创建问题单
// 与手工创建共用同一条创建路径，校验和通知对两条入口一致生效
func (s *IssueService) CreateFromWorkflow(ctx context.Context, issue *entity.Issue) (*entity.Issue, error) {
	if err := s.create(ctx, issue); err != nil {
		return nil, err
	}
	return issue, nil
}

// create 统一创建路径：落库后外发创建通知
func (s *IssueService) create(ctx context.Context, issue *entity.Issue) error {
	issue.ID = uuid.New().String()[:32]
	issue.Status = entity.IssueStatusOpen
	if err := s.issueRepo.Create(ctx, issue); err != nil {
		return fmt.Errorf("create issue: %w", err)
	}
	s.notifyCreated(issue)
	return nil
}

// notifyCreated 外发问题单创建通知，发送失败不影响主流程
func (s *IssueService) notifyCreated(issue *entity.Issue) {
	if s.notifier == nil {
		return
	}
	go func(issue entity.Issue) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := s.notifier.Send(ctx, notify.Message{
			Title: "新问题单",
			Text:  fmt.Sprintf("问题单 %s 已创建", issue.Title),
		})
		if err != nil {
			s.logger.Warn("send issue notification",
				zap.String("issue_id", issue.ID),
				zap.Error(err))
		}
	}(*issue)
}

// Get 获取问题单详情（限定组织）
func (s *IssueService) Get(ctx context.Context, orgID, id string) (*entity.Issue, error) {
	issue, err := s.issueRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if issue.OrganizationID != orgID {
		return nil, repository.ErrNotFound
	}
	return issue, nil
}

// List 获取问题单列表，status 为空时返回全部
func (s *IssueService) List(ctx context.Context, orgID, status string, page, pageSize int) (*IssueListResult, error) {
	if status != "" && status != entity.IssueStatusOpen && status != entity.IssueStatusClosed {
		return nil, fmt.Errorf("%w: status %q", ErrInvalidInput, status)
	}
	issues, total, err := s.issueRepo.List(ctx, orgID, status, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return &IssueListResult{
		Items:      issues,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// ListByEntity 获取挂在某条目上的问题单
func (s *IssueService) ListByEntity(ctx context.Context, orgID, entityType, entityID string) ([]entity.Issue, error) {
	issues, err := s.issueRepo.ListByEntity(ctx, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("list issues by entity: %w", err)
	}
	filtered := make([]entity.Issue, 0, len(issues))
	for _, issue := range issues {
		if issue.OrganizationID == orgID {
			filtered = append(filtered, issue)
		}
	}
	return filtered, nil
}

// Close 关闭问题单
func (s *IssueService) Close(ctx context.Context, orgID, userID, id string) (*entity.Issue, error) {
	issue, err := s.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if issue.Status == entity.IssueStatusClosed {
		return issue, nil
	}

	now := time.Now()
	issue.Status = entity.IssueStatusClosed
	issue.ClosedBy = &userID
	issue.ClosedAt = &now
	if err := s.issueRepo.Update(ctx, issue); err != nil {
		return nil, fmt.Errorf("close issue: %w", err)
	}
	return issue, nil
}

// Reopen 重开问题单
func (s *IssueService) Reopen(ctx context.Context, orgID, id string) (*entity.Issue, error) {
	issue, err := s.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if issue.Status == entity.IssueStatusOpen {
		return issue, nil
	}

	issue.Status = entity.IssueStatusOpen
	issue.ClosedBy = nil
	issue.ClosedAt = nil
	if err := s.issueRepo.Update(ctx, issue); err != nil {
		return nil, fmt.Errorf("reopen issue: %w", err)
	}
	return issue, nil
}
