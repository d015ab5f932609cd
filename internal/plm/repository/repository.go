package repository

import (
	"errors"

	"github.com/Dokuly-PLM/dokuly-sub000/internal/plm/entity"
	"gorm.io/gorm"
)

// 错误定义
var (
	ErrNotFound = errors.New("record not found")
)

// Repositories 仓库集合
type Repositories struct {
	User         *UserRepository
	Organization *OrganizationRepository
	Project      *ProjectRepository
	Part         *ItemRepository[entity.Part, *entity.Part]
	Pcba         *ItemRepository[entity.Pcba, *entity.Pcba]
	Assembly     *ItemRepository[entity.Assembly, *entity.Assembly]
	Document     *ItemRepository[entity.Document, *entity.Document]
	BOM          *BOMRepository
	Issue        *IssueRepository
	Workflow     *WorkflowRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Organization: NewOrganizationRepository(db),
		Project:      NewProjectRepository(db),
		Part:         NewPartRepository(db),
		Pcba:         NewPcbaRepository(db),
		Assembly:     NewAssemblyRepository(db),
		Document:     NewDocumentRepository(db),
		BOM:          NewBOMRepository(db),
		Issue:        NewIssueRepository(db),
		Workflow:     NewWorkflowRepository(db),
	}
}
