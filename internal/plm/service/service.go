package service

import (
	"errors"

	"github.com/Dokuly-PLM/dokuly-sub000/internal/plm/entity"
	"github.com/Dokuly-PLM/dokuly-sub000/internal/plm/repository"
	"github.com/Dokuly-PLM/dokuly-sub000/internal/shared/notify"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// 业务错误
var (
	ErrInvalidInput     = errors.New("参数无效")
	ErrNotMember        = errors.New("用户不是该组织成员")
	ErrRevisionConflict = errors.New("修订计数冲突，请重试")
)

// 编号配置类别：零件类条目（Part/Pcba/Assembly）共用零件配置
const (
	NumberingKindPart     = "part"
	NumberingKindDocument = "document"
)

// Services 服务集合
type Services struct {
	Organization *OrganizationService
	Project      *ProjectService
	Part         *ItemService[entity.Part, *entity.Part]
	Pcba         *ItemService[entity.Pcba, *entity.Pcba]
	Assembly     *ItemService[entity.Assembly, *entity.Assembly]
	Document     *ItemService[entity.Document, *entity.Document]
	BOM          *BOMService
	Issue        *IssueService
	Workflow     *WorkflowService
	Automation   *AutomationService
}

// NewServices 创建服务集合
func NewServices(repos *repository.Repositories, rdb *redis.Client, notifier *notify.Client, logger *zap.Logger) *Services {
	orgSvc := NewOrganizationService(repos.Organization, rdb)
	issueSvc := NewIssueService(repos.Issue, notifier, logger)
	automationSvc := NewAutomationService(repos.Workflow, issueSvc, repos.User, notifier, logger)

	return &Services{
		Organization: orgSvc,
		Project:      NewProjectService(repos.Project, orgSvc),
		Part:         NewPartService(repos, orgSvc, automationSvc),
		Pcba:         NewPcbaService(repos, orgSvc, automationSvc),
		Assembly:     NewAssemblyService(repos, orgSvc, automationSvc),
		Document:     NewDocumentService(repos, orgSvc, automationSvc),
		BOM:          NewBOMService(repos.BOM, repos.Assembly, repos.Part),
		Issue:        issueSvc,
		Workflow:     NewWorkflowService(repos.Workflow, repos.Project),
		Automation:   automationSvc,
	}
}
