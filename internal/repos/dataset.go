package repos

import (
  "context"
  "errors"
  "gorm.io/gorm"
  "github.com/BESSER-PEARL/statec-hackathon/internal/logger"
  "github.com/BESSER-PEARL/statec-hackathon/internal/types"
)

type DatasetRepo interface {
  Create(ctx context.Context, tx *gorm.DB, dataset *types.Dataset) error
  Save(ctx context.Context, tx *gorm.DB, dataset *types.Dataset) error
  GetByCode(ctx context.Context, tx *gorm.DB, code string) (*types.Dataset, error)
  List(ctx context.Context, tx *gorm.DB) ([]*types.Dataset, error)
  Count(ctx context.Context, tx *gorm.DB) (int64, error)
}

type datasetRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewDatasetRepo(db *gorm.DB, baseLog *logger.Logger) DatasetRepo {
  repoLog := baseLog.With("repo", "DatasetRepo")
  return &datasetRepo{db: db, log: repoLog}
}

func (dr *datasetRepo) handle(tx *gorm.DB) *gorm.DB {
  if tx != nil {
    return tx
  }
  return dr.db
}

func (dr *datasetRepo) Create(ctx context.Context, tx *gorm.DB, dataset *types.Dataset) error {
  return dr.handle(tx).WithContext(ctx).Create(dataset).Error
}

func (dr *datasetRepo) Save(ctx context.Context, tx *gorm.DB, dataset *types.Dataset) error {
  return dr.handle(tx).WithContext(ctx).Save(dataset).Error
}

func (dr *datasetRepo) GetByCode(ctx context.Context, tx *gorm.DB, code string) (*types.Dataset, error) {
  var result types.Dataset
  err := dr.handle(tx).WithContext(ctx).
    Where("code = ?", code).
    First(&result).Error
  if errors.Is(err, gorm.ErrRecordNotFound) {
    return nil, nil
  }
  if err != nil {
    return nil, err
  }
  return &result, nil
}

func (dr *datasetRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Dataset, error) {
  var results []*types.Dataset
  if err := dr.handle(tx).WithContext(ctx).
    Order("created_at, id").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (dr *datasetRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
  var count int64
  err := dr.handle(tx).WithContext(ctx).Model(&types.Dataset{}).Count(&count).Error
  return count, err
}
