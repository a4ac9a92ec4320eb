package repos

import (
  "context"
  "errors"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/BESSER-PEARL/statec-hackathon/internal/logger"
  "github.com/BESSER-PEARL/statec-hackathon/internal/types"
)

type DimensionRepo interface {
  Create(ctx context.Context, tx *gorm.DB, dimension *types.Dimension) error
  GetByDatasetAndCode(ctx context.Context, tx *gorm.DB, datasetID uuid.UUID, code string) (*types.Dimension, error)
  GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Dimension, error)
  ListByDataset(ctx context.Context, tx *gorm.DB, datasetID uuid.UUID) ([]*types.Dimension, error)
  Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
  Count(ctx context.Context, tx *gorm.DB) (int64, error)
}

type dimensionRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewDimensionRepo(db *gorm.DB, baseLog *logger.Logger) DimensionRepo {
  repoLog := baseLog.With("repo", "DimensionRepo")
  return &dimensionRepo{db: db, log: repoLog}
}

func (dr *dimensionRepo) handle(tx *gorm.DB) *gorm.DB {
  if tx != nil {
    return tx
  }
  return dr.db
}

func (dr *dimensionRepo) Create(ctx context.Context, tx *gorm.DB, dimension *types.Dimension) error {
  return dr.handle(tx).WithContext(ctx).Create(dimension).Error
}

func (dr *dimensionRepo) GetByDatasetAndCode(ctx context.Context, tx *gorm.DB, datasetID uuid.UUID, code string) (*types.Dimension, error) {
  var result types.Dimension
  err := dr.handle(tx).WithContext(ctx).
    Where("dataset_id = ? AND code = ?", datasetID, code).
    Order("created_at, id").
    First(&result).Error
  if errors.Is(err, gorm.ErrRecordNotFound) {
    return nil, nil
  }
  if err != nil {
    return nil, err
  }
  return &result, nil
}

func (dr *dimensionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Dimension, error) {
  var result types.Dimension
  err := dr.handle(tx).WithContext(ctx).
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

func (dr *dimensionRepo) ListByDataset(ctx context.Context, tx *gorm.DB, datasetID uuid.UUID) ([]*types.Dimension, error) {
  var results []*types.Dimension
  if err := dr.handle(tx).WithContext(ctx).
    Where("dataset_id = ?", datasetID).
    Order("created_at, id").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (dr *dimensionRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
  return dr.handle(tx).WithContext(ctx).
    Where("id = ?", id).
    Delete(&types.Dimension{}).Error
}

func (dr *dimensionRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
  var count int64
  err := dr.handle(tx).WithContext(ctx).Model(&types.Dimension{}).Count(&count).Error
  return count, err
}
