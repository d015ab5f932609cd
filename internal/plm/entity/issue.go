package entity

import "time"

// 问题状态
const (
	IssueStatusOpen   = "open"
	IssueStatusClosed = "closed"
)

// Issue 问题单
// 可由用户手工创建，也可由工作流 create_issue 动作创建（走同一条创建路径）；
// 工作流创建的问题单带有 workflow_id / execution_id 回溯引用
type Issue struct {
	ID             string     `json:"id" gorm:"primaryKey;size:32"`
	OrganizationID string     `json:"organization_id" gorm:"size:32;not null;index"`
	ProjectID      *string    `json:"project_id" gorm:"size:32;index"`
	EntityType     string     `json:"entity_type" gorm:"size:16"`
	EntityID       string     `json:"entity_id" gorm:"size:32;index"`
	Title          string     `json:"title" gorm:"size:256;not null"`
	Description    string     `json:"description" gorm:"type:text"`
	Status         string     `json:"status" gorm:"size:16;not null;default:open"`
	CreatedBy      string     `json:"created_by" gorm:"size:32;not null"`
	WorkflowID     *string    `json:"workflow_id" gorm:"size:32"`
	ExecutionID    *string    `json:"execution_id" gorm:"size:32"`
	ClosedBy       *string    `json:"closed_by" gorm:"size:32"`
	ClosedAt       *time.Time `json:"closed_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (Issue) TableName() string {
	return "issues"
}
