package types

import (
	"time"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Dimension is one classification axis of a Dataset (SEX, AGE, TIME_PERIOD).
// Position defines the canonical ordering used when decoding positional
// observation keys. The (dataset_id, code) index is deliberately non-unique:
// stores populated by older, non-idempotent runs contain duplicate rows that
// the dedup job repairs after the fact.
type Dimension struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Code string `gorm:"column:code;not null;index:idx_dimension_dataset_code,priority:2" json:"code"`
	Name string `gorm:"column:name;not null" json:"name"`
	Label string `gorm:"column:label;not null" json:"label"`
	Position int `gorm:"column:position;not null" json:"position"`
	CodelistID *string `gorm:"column:codelist_id" json:"codelist_id,omitempty"`
	DatasetID uuid.UUID `gorm:"type:uuid;not null;index:idx_dimension_dataset_code,priority:1" json:"dataset_id"`
	Dataset *Dataset `gorm:"constraint:OnDelete:CASCADE;foreignKey:DatasetID;references:ID" json:"dataset,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Dimension) TableName() string { return "dimension" }

func (d *Dimension) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
