package entity

import "time"

// 项目状态
const (
	ProjectStatusActive   = "active"
	ProjectStatusArchived = "archived"
)

// Project 项目
type Project struct {
	ID             string    `json:"id" gorm:"primaryKey;size:32"`
	OrganizationID string    `json:"organization_id" gorm:"size:32;not null;index"`
	ProjectNumber  string    `json:"project_number" gorm:"size:32;not null"`
	Name           string    `json:"name" gorm:"size:256;not null"`
	Description    string    `json:"description" gorm:"type:text"`
	Status         string    `json:"status" gorm:"size:16;not null;default:active"`
	CreatedBy      string    `json:"created_by" gorm:"size:32;not null"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Relations
	Organization *Organization `json:"organization,omitempty" gorm:"foreignKey:OrganizationID"`
}

func (Project) TableName() string {
	return "projects"
}
