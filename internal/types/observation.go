package types

import (
	"time"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Observation is one fact value of a Dataset. Its dimension→category
// assignments live in ObservationDimensionValue rows.
type Observation struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Value float64 `gorm:"column:value;not null" json:"value"`
	TimePeriod *string `gorm:"column:time_period;index" json:"time_period,omitempty"`
	DatasetID uuid.UUID `gorm:"type:uuid;not null;index" json:"dataset_id"`
	Dataset *Dataset `gorm:"constraint:OnDelete:CASCADE;foreignKey:DatasetID;references:ID" json:"dataset,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Observation) TableName() string { return "observation" }

func (o *Observation) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
