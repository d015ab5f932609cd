package entity

import "time"

// Document 文档
// 与零件类条目同构，但使用组织的文档编号配置（doc_*）和文档编号模板
type Document struct {
	ID             string `json:"id" gorm:"primaryKey;size:32"`
	DocumentNumber int    `json:"document_number" gorm:"not null;uniqueIndex:,composite:family"`
	ItemFields
	FullDocNumber string    `json:"full_doc_number" gorm:"size:128"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Document) TableName() string {
	return "documents"
}

func (d *Document) GetID() string          { return d.ID }
func (d *Document) SetID(id string)        { d.ID = id }
func (d *Document) GetNumber() int         { return d.DocumentNumber }
func (d *Document) SetNumber(n int)        { d.DocumentNumber = n }
func (d *Document) GetFullNumber() string  { return d.FullDocNumber }
func (d *Document) SetFullNumber(s string) { d.FullDocNumber = s }
func (d *Document) Item() *ItemFields      { return &d.ItemFields }
