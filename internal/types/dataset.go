package types

import (
	"time"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Dataset is one ingested SDMX dataflow. Code is the external dataflow
// identifier and is unique across the store.
type Dataset struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Code string `gorm:"column:code;uniqueIndex;not null" json:"code"`
	Name string `gorm:"column:name;not null" json:"name"`
	Description *string `gorm:"column:description" json:"description,omitempty"`
	Provider *string `gorm:"column:provider" json:"provider,omitempty"`
	// Raw per-language dataflow names as published upstream.
	NameTranslations datatypes.JSON `gorm:"column:name_translations" json:"name_translations,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Dataset) TableName() string { return "dataset" }

func (d *Dataset) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
