package entity

import "time"

// 版本号显示格式
const (
	RevisionFormatMajorOnly  = "major-only"
	RevisionFormatMajorMinor = "major-minor"
)

// RevisionSettings 版本号格式配置
// 组织级配置，零件和文档各持有一份独立拷贝
type RevisionSettings struct {
	UseNumberRevisions      bool   `json:"use_number_revisions" gorm:"default:false"`
	RevisionFormat          string `json:"revision_format" gorm:"size:16;not null;default:major-minor"`
	StartMajorRevisionAtOne bool   `json:"start_major_revision_at_one" gorm:"default:false"`
}

// Organization 组织（租户）
type Organization struct {
	ID   string `json:"id" gorm:"primaryKey;size:32"`
	Name string `json:"name" gorm:"size:256;not null"`

	// 零件/文档编号模板与版本格式，零件类（Part/Pcba/Assembly）共用零件配置
	PartRevision       RevisionSettings `json:"part_revision" gorm:"embedded;embeddedPrefix:part_"`
	DocRevision        RevisionSettings `json:"doc_revision" gorm:"embedded;embeddedPrefix:doc_"`
	PartNumberTemplate string           `json:"part_number_template" gorm:"size:256"`
	DocNumberTemplate  string           `json:"doc_number_template" gorm:"size:256"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Organization) TableName() string {
	return "organizations"
}

// OrganizationMember 组织成员
type OrganizationMember struct {
	ID             string    `json:"id" gorm:"primaryKey;size:32"`
	OrganizationID string    `json:"organization_id" gorm:"size:32;not null;uniqueIndex:uq_org_members"`
	UserID         string    `json:"user_id" gorm:"size:32;not null;uniqueIndex:uq_org_members"`
	Role           string    `json:"role" gorm:"size:32;not null;default:member"`
	CreatedAt      time.Time `json:"created_at"`

	// Relations
	Organization *Organization `json:"organization,omitempty" gorm:"foreignKey:OrganizationID"`
	User         *User         `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (OrganizationMember) TableName() string {
	return "organization_members"
}
