package repos

import (
  "context"
  "errors"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/BESSER-PEARL/statec-hackathon/internal/logger"
  "github.com/BESSER-PEARL/statec-hackathon/internal/types"
)

type CategoryRepo interface {
  Create(ctx context.Context, tx *gorm.DB, category *types.Category) error
  Save(ctx context.Context, tx *gorm.DB, category *types.Category) error
  GetByDimensionAndCode(ctx context.Context, tx *gorm.DB, dimensionID uuid.UUID, code string) (*types.Category, error)
  GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Category, error)
  ListByDimension(ctx context.Context, tx *gorm.DB, dimensionID uuid.UUID) ([]*types.Category, error)
  ReassignDimension(ctx context.Context, tx *gorm.DB, categoryID, dimensionID uuid.UUID) error
  RedirectParent(ctx context.Context, tx *gorm.DB, fromParentID, toParentID uuid.UUID) (int64, error)
  Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
  Count(ctx context.Context, tx *gorm.DB) (int64, error)
}

type categoryRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewCategoryRepo(db *gorm.DB, baseLog *logger.Logger) CategoryRepo {
  repoLog := baseLog.With("repo", "CategoryRepo")
  return &categoryRepo{db: db, log: repoLog}
}

func (cr *categoryRepo) handle(tx *gorm.DB) *gorm.DB {
  if tx != nil {
    return tx
  }
  return cr.db
}

func (cr *categoryRepo) Create(ctx context.Context, tx *gorm.DB, category *types.Category) error {
  return cr.handle(tx).WithContext(ctx).Create(category).Error
}

func (cr *categoryRepo) Save(ctx context.Context, tx *gorm.DB, category *types.Category) error {
  return cr.handle(tx).WithContext(ctx).Save(category).Error
}

func (cr *categoryRepo) GetByDimensionAndCode(ctx context.Context, tx *gorm.DB, dimensionID uuid.UUID, code string) (*types.Category, error) {
  var result types.Category
  err := cr.handle(tx).WithContext(ctx).
    Where("dimension_id = ? AND code = ?", dimensionID, code).
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

func (cr *categoryRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Category, error) {
  var result types.Category
  err := cr.handle(tx).WithContext(ctx).
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

func (cr *categoryRepo) ListByDimension(ctx context.Context, tx *gorm.DB, dimensionID uuid.UUID) ([]*types.Category, error) {
  var results []*types.Category
  if err := cr.handle(tx).WithContext(ctx).
    Where("dimension_id = ?", dimensionID).
    Order("created_at, id").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (cr *categoryRepo) ReassignDimension(ctx context.Context, tx *gorm.DB, categoryID, dimensionID uuid.UUID) error {
  return cr.handle(tx).WithContext(ctx).
    Model(&types.Category{}).
    Where("id = ?", categoryID).
    Update("dimension_id", dimensionID).Error
}

func (cr *categoryRepo) RedirectParent(ctx context.Context, tx *gorm.DB, fromParentID, toParentID uuid.UUID) (int64, error) {
  result := cr.handle(tx).WithContext(ctx).
    Model(&types.Category{}).
    Where("parent_id = ?", fromParentID).
    Update("parent_id", toParentID)
  return result.RowsAffected, result.Error
}

func (cr *categoryRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
  return cr.handle(tx).WithContext(ctx).
    Where("id = ?", id).
    Delete(&types.Category{}).Error
}

func (cr *categoryRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
  var count int64
  err := cr.handle(tx).WithContext(ctx).Model(&types.Category{}).Count(&count).Error
  return count, err
}
