package entity

import "time"

// BOMItem 装配体BOM行项
// 通过零件族编号引用零件（而非某个具体修订行），装配体换版后BOM仍然有效
type BOMItem struct {
	ID             string    `json:"id" gorm:"primaryKey;size:32"`
	OrganizationID string    `json:"organization_id" gorm:"size:32;not null;index"`
	AssemblyID     string    `json:"assembly_id" gorm:"size:32;not null;index;uniqueIndex:uq_bom_items"`
	PartNumber     int       `json:"part_number" gorm:"not null;uniqueIndex:uq_bom_items"`
	Quantity       float64   `json:"quantity" gorm:"not null;default:1"`
	Designator     string    `json:"designator" gorm:"size:256"`
	Notes          string    `json:"notes" gorm:"type:text"`
	CreatedBy      string    `json:"created_by" gorm:"size:32;not null"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (BOMItem) TableName() string {
	return "bom_items"
}
