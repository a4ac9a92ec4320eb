package services

import (
  "context"
  "fmt"
  "gorm.io/gorm"
  "github.com/BESSER-PEARL/statec-hackathon/internal/logger"
  "github.com/BESSER-PEARL/statec-hackathon/internal/repos"
  "github.com/BESSER-PEARL/statec-hackathon/internal/types"
)

// DedupService repairs stores populated by earlier non-idempotent runs:
// duplicate dimension/category rows (same code within the same scope) are
// merged into the earliest-created row, with every dependent link redirected
// before the duplicate is deleted. Running it twice produces the same final
// state as running it once. Observation values are never touched.
type DedupService struct {
  db           *gorm.DB
  log          *logger.Logger
  datasetRepo  repos.DatasetRepo
  dimensionRepo repos.DimensionRepo
  categoryRepo repos.CategoryRepo
  obsValueRepo repos.ObservationDimensionValueRepo
}

func NewDedupService(
  db *gorm.DB,
  log *logger.Logger,
  datasetRepo repos.DatasetRepo,
  dimensionRepo repos.DimensionRepo,
  categoryRepo repos.CategoryRepo,
  obsValueRepo repos.ObservationDimensionValueRepo,
) *DedupService {
  return &DedupService{
    db:           db,
    log:          log.With("service", "DedupService"),
    datasetRepo:  datasetRepo,
    dimensionRepo: dimensionRepo,
    categoryRepo: categoryRepo,
    obsValueRepo: obsValueRepo,
  }
}

// Run merges duplicate categories first so the dimension pass operates on an
// already-deduplicated category set.
func (s *DedupService) Run(ctx context.Context) error {
  if err := s.dedupCategories(ctx); err != nil {
    return err
  }
  return s.dedupDimensions(ctx)
}

// groupByCode preserves first-seen order so duplicate groups are processed
// deterministically. Rows must already be sorted earliest-created first.
func groupCategoriesByCode(categories []*types.Category) ([]string, map[string][]*types.Category) {
  var codes []string
  groups := make(map[string][]*types.Category)
  for _, category := range categories {
    if _, seen := groups[category.Code]; !seen {
      codes = append(codes, category.Code)
    }
    groups[category.Code] = append(groups[category.Code], category)
  }
  return codes, groups
}

func groupDimensionsByCode(dimensions []*types.Dimension) ([]string, map[string][]*types.Dimension) {
  var codes []string
  groups := make(map[string][]*types.Dimension)
  for _, dimension := range dimensions {
    if _, seen := groups[dimension.Code]; !seen {
      codes = append(codes, dimension.Code)
    }
    groups[dimension.Code] = append(groups[dimension.Code], dimension)
  }
  return codes, groups
}

func (s *DedupService) dedupCategories(ctx context.Context) error {
  s.log.Info("Scanning for duplicate categories...")

  datasets, err := s.datasetRepo.List(ctx, nil)
  if err != nil {
    return fmt.Errorf("list datasets: %w", err)
  }
  merged := 0

  for _, dataset := range datasets {
    dimensions, err := s.dimensionRepo.ListByDataset(ctx, nil, dataset.ID)
    if err != nil {
      return fmt.Errorf("list dimensions of %s: %w", dataset.Code, err)
    }
    for _, dimension := range dimensions {
      categories, err := s.categoryRepo.ListByDimension(ctx, nil, dimension.ID)
      if err != nil {
        return fmt.Errorf("list categories of %s: %w", dimension.Code, err)
      }
      codes, groups := groupCategoriesByCode(categories)
      for _, code := range codes {
        group := groups[code]
        if len(group) < 2 {
          continue
        }
        primary, duplicates := group[0], group[1:]
        s.log.Info("Merging duplicate categories",
          "dataset", dataset.Code,
          "dimension", dimension.Code,
          "code", code,
          "duplicates", len(duplicates),
        )
        // One transaction per duplicate group bounds the write size.
        err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
          for _, duplicate := range duplicates {
            if err := s.mergeCategory(ctx, tx, duplicate, primary); err != nil {
              return err
            }
          }
          return nil
        })
        if err != nil {
          return fmt.Errorf("merge categories %s/%s: %w", dimension.Code, code, err)
        }
        merged += len(duplicates)
      }
    }
  }

  s.log.Info("Category deduplication complete", "merged", merged)
  return nil
}

func (s *DedupService) mergeCategory(ctx context.Context, tx *gorm.DB, duplicate, primary *types.Category) error {
  redirected, err := s.obsValueRepo.RedirectCategory(ctx, tx, duplicate.ID, primary.ID)
  if err != nil {
    return err
  }
  if _, err := s.categoryRepo.RedirectParent(ctx, tx, duplicate.ID, primary.ID); err != nil {
    return err
  }
  if err := s.categoryRepo.Delete(ctx, tx, duplicate.ID); err != nil {
    return err
  }
  s.log.Debug("Redirected observation values to primary category",
    "code", primary.Code,
    "redirected", redirected,
  )
  return nil
}

func (s *DedupService) dedupDimensions(ctx context.Context) error {
  s.log.Info("Scanning for duplicate dimensions...")

  datasets, err := s.datasetRepo.List(ctx, nil)
  if err != nil {
    return fmt.Errorf("list datasets: %w", err)
  }
  merged := 0

  for _, dataset := range datasets {
    dimensions, err := s.dimensionRepo.ListByDataset(ctx, nil, dataset.ID)
    if err != nil {
      return fmt.Errorf("list dimensions of %s: %w", dataset.Code, err)
    }
    codes, groups := groupDimensionsByCode(dimensions)
    for _, code := range codes {
      group := groups[code]
      if len(group) < 2 {
        continue
      }
      primary, duplicates := group[0], group[1:]
      s.log.Info("Merging duplicate dimensions",
        "dataset", dataset.Code,
        "code", code,
        "duplicates", len(duplicates),
      )
      err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
        for _, duplicate := range duplicates {
          if err := s.mergeDimension(ctx, tx, duplicate, primary); err != nil {
            return err
          }
        }
        return nil
      })
      if err != nil {
        return fmt.Errorf("merge dimensions %s/%s: %w", dataset.Code, code, err)
      }
      merged += len(duplicates)
    }
  }

  s.log.Info("Dimension deduplication complete", "merged", merged)
  return nil
}

// mergeDimension folds a duplicate dimension into the primary: each of its
// categories either merges into the primary's same-code category or moves
// under the primary dimension, then the remaining links are redirected and
// the duplicate row deleted.
func (s *DedupService) mergeDimension(ctx context.Context, tx *gorm.DB, duplicate, primary *types.Dimension) error {
  categories, err := s.categoryRepo.ListByDimension(ctx, tx, duplicate.ID)
  if err != nil {
    return err
  }
  for _, category := range categories {
    existing, err := s.categoryRepo.GetByDimensionAndCode(ctx, tx, primary.ID, category.Code)
    if err != nil {
      return err
    }
    if existing != nil {
      if err := s.mergeCategory(ctx, tx, category, existing); err != nil {
        return err
      }
      continue
    }
    if err := s.categoryRepo.ReassignDimension(ctx, tx, category.ID, primary.ID); err != nil {
      return err
    }
  }

  redirected, err := s.obsValueRepo.RedirectDimension(ctx, tx, duplicate.ID, primary.ID)
  if err != nil {
    return err
  }
  if err := s.dimensionRepo.Delete(ctx, tx, duplicate.ID); err != nil {
    return err
  }
  s.log.Debug("Redirected observation values to primary dimension",
    "code", primary.Code,
    "redirected", redirected,
  )
  return nil
}
