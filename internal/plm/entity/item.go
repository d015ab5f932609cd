package entity

import "time"

// 条目发布状态
const (
	ReleaseStateDraft    = "draft"
	ReleaseStateReleased = "released"
)

// 条目前缀，渲染完整编号时作为 <prefix> 变量
const (
	PrefixPart     = "PRT"
	PrefixPcba     = "PCA"
	PrefixAssembly = "ASM"
	PrefixDocument = "DOC"
)

// ItemFields 可修订条目公共字段
// Part/Pcba/Assembly/Document 四类条目共用；修订计数对是排序的唯一依据，
// formatted_revision / is_latest_revision 均为派生缓存，由服务层重算刷新
type ItemFields struct {
	OrganizationID     string  `json:"organization_id" gorm:"size:32;not null;index;uniqueIndex:,composite:family"`
	ProjectID          *string `json:"project_id" gorm:"size:32;index"`
	Prefix             string  `json:"prefix" gorm:"size:8;not null"`
	DisplayName        string  `json:"display_name" gorm:"size:256;not null"`
	Description        string  `json:"description" gorm:"type:text"`
	ReleaseState       string  `json:"release_state" gorm:"size:16;not null;default:draft"`
	RevisionCountMajor int     `json:"revision_count_major" gorm:"not null;default:0;uniqueIndex:,composite:family"`
	RevisionCountMinor int     `json:"revision_count_minor" gorm:"not null;default:0;uniqueIndex:,composite:family"`
	FormattedRevision  string  `json:"formatted_revision" gorm:"size:16"`
	IsLatestRevision   bool    `json:"is_latest_revision" gorm:"not null;default:false"`
	IsArchived         bool    `json:"is_archived" gorm:"not null;default:false"`
	RevisionNotes      string  `json:"revision_notes" gorm:"type:text"`
	CreatedBy          string  `json:"created_by" gorm:"size:32;not null"`
}

// Revisioned 可修订条目的统一访问接口
// 修订核心（编号分配、版本戳、最新版重算、工作流触发）只通过它操作条目，
// 不感知具体条目类型
type Revisioned interface {
	GetID() string
	SetID(id string)
	GetNumber() int
	SetNumber(n int)
	GetFullNumber() string
	SetFullNumber(s string)
	Item() *ItemFields
}

// Part 零件
type Part struct {
	ID         string `json:"id" gorm:"primaryKey;size:32"`
	PartNumber int    `json:"part_number" gorm:"not null;uniqueIndex:,composite:family"`
	ItemFields
	FullPartNumber string    `json:"full_part_number" gorm:"size:128"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Part) TableName() string {
	return "parts"
}

func (p *Part) GetID() string          { return p.ID }
func (p *Part) SetID(id string)        { p.ID = id }
func (p *Part) GetNumber() int         { return p.PartNumber }
func (p *Part) SetNumber(n int)        { p.PartNumber = n }
func (p *Part) GetFullNumber() string  { return p.FullPartNumber }
func (p *Part) SetFullNumber(s string) { p.FullPartNumber = s }
func (p *Part) Item() *ItemFields      { return &p.ItemFields }

// Pcba PCBA（电路板组件）
type Pcba struct {
	ID         string `json:"id" gorm:"primaryKey;size:32"`
	PartNumber int    `json:"part_number" gorm:"not null;uniqueIndex:,composite:family"`
	ItemFields
	FullPartNumber string    `json:"full_part_number" gorm:"size:128"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Pcba) TableName() string {
	return "pcbas"
}

func (p *Pcba) GetID() string          { return p.ID }
func (p *Pcba) SetID(id string)        { p.ID = id }
func (p *Pcba) GetNumber() int         { return p.PartNumber }
func (p *Pcba) SetNumber(n int)        { p.PartNumber = n }
func (p *Pcba) GetFullNumber() string  { return p.FullPartNumber }
func (p *Pcba) SetFullNumber(s string) { p.FullPartNumber = s }
func (p *Pcba) Item() *ItemFields      { return &p.ItemFields }

// Assembly 装配体
type Assembly struct {
	ID         string `json:"id" gorm:"primaryKey;size:32"`
	PartNumber int    `json:"part_number" gorm:"not null;uniqueIndex:,composite:family"`
	ItemFields
	FullPartNumber string    `json:"full_part_number" gorm:"size:128"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Assembly) TableName() string {
	return "assemblies"
}

func (a *Assembly) GetID() string          { return a.ID }
func (a *Assembly) SetID(id string)        { a.ID = id }
func (a *Assembly) GetNumber() int         { return a.PartNumber }
func (a *Assembly) SetNumber(n int)        { a.PartNumber = n }
func (a *Assembly) GetFullNumber() string  { return a.FullPartNumber }
func (a *Assembly) SetFullNumber(s string) { a.FullPartNumber = s }
func (a *Assembly) Item() *ItemFields      { return &a.ItemFields }
