package types

import (
	"time"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category is one admissible value of a Dimension. ParentID links to another
// Category of the same Dimension, forming a forest for hierarchical
// codelists (age bands grouped under a total, districts under a region).
type Category struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Code string `gorm:"column:code;not null;index:idx_category_dimension_code,priority:2" json:"code"`
	Name string `gorm:"column:name;not null" json:"name"`
	Label string `gorm:"column:label" json:"label"`
	DatasetID uuid.UUID `gorm:"type:uuid;not null;index" json:"dataset_id"`
	Dataset *Dataset `gorm:"constraint:OnDelete:CASCADE;foreignKey:DatasetID;references:ID" json:"dataset,omitempty"`
	DimensionID uuid.UUID `gorm:"type:uuid;not null;index:idx_category_dimension_code,priority:1" json:"dimension_id"`
	Dimension *Dimension `gorm:"constraint:OnDelete:CASCADE;foreignKey:DimensionID;references:ID" json:"dimension,omitempty"`
	ParentID *uuid.UUID `gorm:"type:uuid;index" json:"parent_id,omitempty"`
	Parent *Category `gorm:"foreignKey:ParentID;references:ID" json:"parent,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Category) TableName() string { return "category" }

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
