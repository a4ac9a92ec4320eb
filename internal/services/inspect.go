package services

import (
  "context"
  "fmt"
  "strings"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/BESSER-PEARL/statec-hackathon/internal/logger"
  "github.com/BESSER-PEARL/statec-hackathon/internal/repos"
)

// InspectService offers read-only diagnostics over the normalized store. It
// never mutates anything.
type InspectService struct {
  db           *gorm.DB
  log          *logger.Logger
  datasetRepo  repos.DatasetRepo
  dimensionRepo repos.DimensionRepo
  categoryRepo repos.CategoryRepo
  observationRepo repos.ObservationRepo
  obsValueRepo repos.ObservationDimensionValueRepo
}

func NewInspectService(
  db *gorm.DB,
  log *logger.Logger,
  datasetRepo repos.DatasetRepo,
  dimensionRepo repos.DimensionRepo,
  categoryRepo repos.CategoryRepo,
  observationRepo repos.ObservationRepo,
  obsValueRepo repos.ObservationDimensionValueRepo,
) *InspectService {
  return &InspectService{
    db:           db,
    log:          log.With("service", "InspectService"),
    datasetRepo:  datasetRepo,
    dimensionRepo: dimensionRepo,
    categoryRepo: categoryRepo,
    observationRepo: observationRepo,
    obsValueRepo: obsValueRepo,
  }
}

type StoreStats struct {
  Datasets    int64
  Dimensions  int64
  Categories  int64
  Observations int64
  ObservationValues int64
}

func (s *InspectService) Stats(ctx context.Context) (StoreStats, error) {
  var stats StoreStats
  var err error
  if stats.Datasets, err = s.datasetRepo.Count(ctx, nil); err != nil {
    return stats, err
  }
  if stats.Dimensions, err = s.dimensionRepo.Count(ctx, nil); err != nil {
    return stats, err
  }
  if stats.Categories, err = s.categoryRepo.Count(ctx, nil); err != nil {
    return stats, err
  }
  if stats.Observations, err = s.observationRepo.Count(ctx, nil); err != nil {
    return stats, err
  }
  if stats.ObservationValues, err = s.obsValueRepo.Count(ctx, nil); err != nil {
    return stats, err
  }
  s.log.Info("Store statistics",
    "datasets", stats.Datasets,
    "dimensions", stats.Dimensions,
    "categories", stats.Categories,
    "observations", stats.Observations,
    "observation_values", stats.ObservationValues,
  )
  return stats, nil
}

// DuplicateGroup reports one code occurring more than once within its scope.
type DuplicateGroup struct {
  DatasetCode   string
  DimensionCode string
  Code          string
  Count         int
}

// DuplicateReport scans for duplicate dimension and category codes without
// mutating anything. A non-empty result is the cue to run the dedup job.
func (s *InspectService) DuplicateReport(ctx context.Context) (dimensionDupes, categoryDupes []DuplicateGroup, err error) {
  datasets, err := s.datasetRepo.List(ctx, nil)
  if err != nil {
    return nil, nil, err
  }
  for _, dataset := range datasets {
    dimensions, err := s.dimensionRepo.ListByDataset(ctx, nil, dataset.ID)
    if err != nil {
      return nil, nil, err
    }
    dimCodes, dimGroups := groupDimensionsByCode(dimensions)
    for _, code := range dimCodes {
      if n := len(dimGroups[code]); n > 1 {
        dimensionDupes = append(dimensionDupes, DuplicateGroup{
          DatasetCode: dataset.Code,
          Code:        code,
          Count:       n,
        })
      }
    }
    for _, dimension := range dimensions {
      categories, err := s.categoryRepo.ListByDimension(ctx, nil, dimension.ID)
      if err != nil {
        return nil, nil, err
      }
      catCodes, catGroups := groupCategoriesByCode(categories)
      for _, code := range catCodes {
        if n := len(catGroups[code]); n > 1 {
          categoryDupes = append(categoryDupes, DuplicateGroup{
            DatasetCode:   dataset.Code,
            DimensionCode: dimension.Code,
            Code:          code,
            Count:         n,
          })
        }
      }
    }
  }
  s.log.Info("Duplicate scan finished",
    "duplicate_dimension_codes", len(dimensionDupes),
    "duplicate_category_codes", len(categoryDupes),
  )
  return dimensionDupes, categoryDupes, nil
}

// ExplainObservation renders the complete dimension→category mapping for one
// observation, parent categories included.
func (s *InspectService) ExplainObservation(ctx context.Context, id uuid.UUID) (string, error) {
  observation, err := s.observationRepo.GetByID(ctx, nil, id)
  if err != nil {
    return "", err
  }
  if observation == nil {
    return "", fmt.Errorf("observation %s not found", id)
  }

  var b strings.Builder
  fmt.Fprintf(&b, "Observation %s\n", observation.ID)
  fmt.Fprintf(&b, "  value: %g\n", observation.Value)
  if observation.TimePeriod != nil {
    fmt.Fprintf(&b, "  time period: %s\n", *observation.TimePeriod)
  }

  values, err := s.obsValueRepo.ListByObservation(ctx, nil, observation.ID)
  if err != nil {
    return "", err
  }
  for _, value := range values {
    dimension, err := s.dimensionRepo.GetByID(ctx, nil, value.DimensionID)
    if err != nil {
      return "", err
    }
    category, err := s.categoryRepo.GetByID(ctx, nil, value.CategoryID)
    if err != nil {
      return "", err
    }
    if dimension == nil || category == nil {
      fmt.Fprintf(&b, "  (dangling link %s)\n", value.ID)
      continue
    }
    fmt.Fprintf(&b, "  %s (%s) = %s (%s)\n", dimension.Label, dimension.Code, category.Label, category.Code)
    if category.ParentID != nil {
      parent, err := s.categoryRepo.GetByID(ctx, nil, *category.ParentID)
      if err != nil {
        return "", err
      }
      if parent != nil {
        fmt.Fprintf(&b, "    parent: %s (%s)\n", parent.Label, parent.Code)
      }
    }
  }
  return b.String(), nil
}
