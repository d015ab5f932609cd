package entity

import "time"

// 工作流触发类型
const (
	TriggerPartCreated     = "part_created"
	TriggerPcbaCreated     = "pcba_created"
	TriggerAssemblyCreated = "assembly_created"
	TriggerDocumentCreated = "document_created"
	TriggerRevisionCreated = "revision_created"
)

// 工作流触发条目类型过滤
const (
	EntityTypeParts      = "parts"
	EntityTypePcbas      = "pcbas"
	EntityTypeAssemblies = "assemblies"
	EntityTypeDocuments  = "documents"
	EntityTypeAll        = "all"
)

// 工作流作用域，组织级与项目级互斥
const (
	ScopeOrganization = "organization"
	ScopeProject      = "project"
)

// 动作类型
const (
	ActionTypeCreateIssue = "create_issue"
)

// 执行状态
const (
	ExecutionStatusSuccess = "success"
	ExecutionStatusPartial = "partial"
	ExecutionStatusFailed  = "failed"
)

// 审计动作
const (
	WorkflowAuditCreated = "created"
	WorkflowAuditUpdated = "updated"
	WorkflowAuditDeleted = "deleted"
)

// Workflow 工作流定义：触发条件 + 作用域 + 有序动作列表
type Workflow struct {
	ID                string    `json:"id" gorm:"primaryKey;size:32"`
	Name              string    `json:"name" gorm:"size:256;not null"`
	Description       string    `json:"description" gorm:"type:text"`
	TriggerType       string    `json:"trigger_type" gorm:"size:32;not null;index"`
	TriggerEntityType string    `json:"trigger_entity_type" gorm:"size:16;not null;default:all"`
	Scope             string    `json:"scope" gorm:"size:16;not null"`
	OrganizationID    *string   `json:"organization_id" gorm:"size:32;index"`
	ProjectID         *string   `json:"project_id" gorm:"size:32;index"`
	IsEnabled         bool      `json:"is_enabled" gorm:"not null;default:true"`
	CreatedBy         string    `json:"created_by" gorm:"size:32;not null"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	// Relations
	Actions []WorkflowAction `json:"actions,omitempty" gorm:"foreignKey:WorkflowID"`
}

func (Workflow) TableName() string {
	return "workflows"
}

// WorkflowAction 工作流动作
// config 为动作类型自定义的JSON配置（create_issue: title / template_text）
type WorkflowAction struct {
	ID         string    `json:"id" gorm:"primaryKey;size:32"`
	WorkflowID string    `json:"workflow_id" gorm:"size:32;not null;index"`
	ActionType string    `json:"action_type" gorm:"size:32;not null"`
	Config     JSONB     `json:"config" gorm:"type:jsonb"`
	SortOrder  int       `json:"sort_order" gorm:"not null;default:0"`
	IsEnabled  bool      `json:"is_enabled" gorm:"not null;default:true"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (WorkflowAction) TableName() string {
	return "workflow_actions"
}

// WorkflowExecution 单次触发的执行记录
// 动作执行前先落库（status默认success），全部动作失败也不丢弃
type WorkflowExecution struct {
	ID           string     `json:"id" gorm:"primaryKey;size:32"`
	WorkflowID   string     `json:"workflow_id" gorm:"size:32;not null;index"`
	WorkflowName string     `json:"workflow_name" gorm:"size:256;not null"`
	TriggerType  string     `json:"trigger_type" gorm:"size:32;not null"`
	EntityType   string     `json:"entity_type" gorm:"size:16;not null"`
	EntityID     string     `json:"entity_id" gorm:"size:32;not null;index"`
	Status       string     `json:"status" gorm:"size:16;not null;default:success"`
	ActionsRun   JSONBArray `json:"actions_run" gorm:"type:jsonb"`
	Errors       JSONBArray `json:"errors" gorm:"type:jsonb"`
	TriggeredBy  string     `json:"triggered_by" gorm:"size:32"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (WorkflowExecution) TableName() string {
	return "workflow_executions"
}

// WorkflowAuditLog 工作流变更审计日志
// 只追加不修改；workflow_id 可空 + 名称快照，工作流删除后日志仍可读
type WorkflowAuditLog struct {
	ID             string    `json:"id" gorm:"primaryKey;size:32"`
	OrganizationID string    `json:"organization_id" gorm:"size:32;index"`
	WorkflowID     *string   `json:"workflow_id" gorm:"size:32;index"`
	WorkflowName   string    `json:"workflow_name" gorm:"size:256;not null"`
	Action         string    `json:"action" gorm:"size:16;not null"`
	PerformedBy    string    `json:"performed_by" gorm:"size:32;not null"`
	Detail         JSONB     `json:"detail" gorm:"type:jsonb"`
	CreatedAt      time.Time `json:"created_at"`
}

func (WorkflowAuditLog) TableName() string {
	return "workflow_audit_logs"
}
