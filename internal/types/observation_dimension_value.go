package types

import (
	"time"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ObservationDimensionValue pins one Observation to exactly one Category per
// Dimension. An observation with k applicable dimensions owns k rows, at
// most one per (observation, dimension) pair.
type ObservationDimensionValue struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ObservationID uuid.UUID `gorm:"type:uuid;not null;index" json:"observation_id"`
	Observation *Observation `gorm:"constraint:OnDelete:CASCADE;foreignKey:ObservationID;references:ID" json:"observation,omitempty"`
	DimensionID uuid.UUID `gorm:"type:uuid;not null;index" json:"dimension_id"`
	Dimension *Dimension `gorm:"foreignKey:DimensionID;references:ID" json:"dimension,omitempty"`
	CategoryID uuid.UUID `gorm:"type:uuid;not null;index" json:"category_id"`
	Category *Category `gorm:"foreignKey:CategoryID;references:ID" json:"category,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (ObservationDimensionValue) TableName() string { return "observation_dimension_value" }

func (v *ObservationDimensionValue) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
