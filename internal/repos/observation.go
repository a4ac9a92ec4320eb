package repos

import (
  "context"
  "errors"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/BESSER-PEARL/statec-hackathon/internal/logger"
  "github.com/BESSER-PEARL/statec-hackathon/internal/types"
)

type ObservationRepo interface {
  Create(ctx context.Context, tx *gorm.DB, observation *types.Observation) error
  GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Observation, error)
  CountByDataset(ctx context.Context, tx *gorm.DB, datasetID uuid.UUID) (int64, error)
  DeleteByDataset(ctx context.Context, tx *gorm.DB, datasetID uuid.UUID) (int64, error)
  Count(ctx context.Context, tx *gorm.DB) (int64, error)
}

type observationRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewObservationRepo(db *gorm.DB, baseLog *logger.Logger) ObservationRepo {
  repoLog := baseLog.With("repo", "ObservationRepo")
  return &observationRepo{db: db, log: repoLog}
}

func (or *observationRepo) handle(tx *gorm.DB) *gorm.DB {
  if tx != nil {
    return tx
  }
  return or.db
}

func (or *observationRepo) Create(ctx context.Context, tx *gorm.DB, observation *types.Observation) error {
  return or.handle(tx).WithContext(ctx).Create(observation).Error
}

func (or *observationRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Observation, error) {
  var result types.Observation
  err := or.handle(tx).WithContext(ctx).
    Where("id = ?", id).
    First(&result).Error
  if errors.Is(err, gorm.ErrRecordNotFound) {
    return nil, nil
  }
  if err != nil {
    return nil, err
  }
  return &result, nil
}

func (or *observationRepo) CountByDataset(ctx context.Context, tx *gorm.DB, datasetID uuid.UUID) (int64, error) {
  var count int64
  err := or.handle(tx).WithContext(ctx).
    Model(&types.Observation{}).
    Where("dataset_id = ?", datasetID).
    Count(&count).Error
  return count, err
}

func (or *observationRepo) DeleteByDataset(ctx context.Context, tx *gorm.DB, datasetID uuid.UUID) (int64, error) {
  result := or.handle(tx).WithContext(ctx).
    Where("dataset_id = ?", datasetID).
    Delete(&types.Observation{})
  return result.RowsAffected, result.Error
}

func (or *observationRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
  var count int64
  err := or.handle(tx).WithContext(ctx).Model(&types.Observation{}).Count(&count).Error
  return count, err
}
