package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/BESSER-PEARL/statec-hackathon/internal/logger"
  "github.com/BESSER-PEARL/statec-hackathon/internal/types"
)

type ObservationDimensionValueRepo interface {
  Create(ctx context.Context, tx *gorm.DB, value *types.ObservationDimensionValue) error
  ListByObservation(ctx context.Context, tx *gorm.DB, observationID uuid.UUID) ([]*types.ObservationDimensionValue, error)
  RedirectCategory(ctx context.Context, tx *gorm.DB, fromCategoryID, toCategoryID uuid.UUID) (int64, error)
  RedirectDimension(ctx context.Context, tx *gorm.DB, fromDimensionID, toDimensionID uuid.UUID) (int64, error)
  DeleteByDataset(ctx context.Context, tx *gorm.DB, datasetID uuid.UUID) (int64, error)
  Count(ctx context.Context, tx *gorm.DB) (int64, error)
}

type observationDimensionValueRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewObservationDimensionValueRepo(db *gorm.DB, baseLog *logger.Logger) ObservationDimensionValueRepo {
  repoLog := baseLog.With("repo", "ObservationDimensionValueRepo")
  return &observationDimensionValueRepo{db: db, log: repoLog}
}

func (vr *observationDimensionValueRepo) handle(tx *gorm.DB) *gorm.DB {
  if tx != nil {
    return tx
  }
  return vr.db
}

func (vr *observationDimensionValueRepo) Create(ctx context.Context, tx *gorm.DB, value *types.ObservationDimensionValue) error {
  return vr.handle(tx).WithContext(ctx).Create(value).Error
}

func (vr *observationDimensionValueRepo) ListByObservation(ctx context.Context, tx *gorm.DB, observationID uuid.UUID) ([]*types.ObservationDimensionValue, error) {
  var results []*types.ObservationDimensionValue
  if err := vr.handle(tx).WithContext(ctx).
    Where("observation_id = ?", observationID).
    Order("created_at, id").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (vr *observationDimensionValueRepo) RedirectCategory(ctx context.Context, tx *gorm.DB, fromCategoryID, toCategoryID uuid.UUID) (int64, error) {
  result := vr.handle(tx).WithContext(ctx).
    Model(&types.ObservationDimensionValue{}).
    Where("category_id = ?", fromCategoryID).
    Update("category_id", toCategoryID)
  return result.RowsAffected, result.Error
}

func (vr *observationDimensionValueRepo) RedirectDimension(ctx context.Context, tx *gorm.DB, fromDimensionID, toDimensionID uuid.UUID) (int64, error) {
  result := vr.handle(tx).WithContext(ctx).
    Model(&types.ObservationDimensionValue{}).
    Where("dimension_id = ?", fromDimensionID).
    Update("dimension_id", toDimensionID)
  return result.RowsAffected, result.Error
}

func (vr *observationDimensionValueRepo) DeleteByDataset(ctx context.Context, tx *gorm.DB, datasetID uuid.UUID) (int64, error) {
  observationIDs := vr.handle(tx).WithContext(ctx).
    Model(&types.Observation{}).
    Select("id").
    Where("dataset_id = ?", datasetID)
  result := vr.handle(tx).WithContext(ctx).
    Where("observation_id IN (?)", observationIDs).
    Delete(&types.ObservationDimensionValue{})
  return result.RowsAffected, result.Error
}

func (vr *observationDimensionValueRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
  var count int64
  err := vr.handle(tx).WithContext(ctx).Model(&types.ObservationDimensionValue{}).Count(&count).Error
  return count, err
}
