package services

import (
  "context"
  "encoding/json"
  "errors"
  "fmt"
  "golang.org/x/sync/errgroup"
  "gorm.io/gorm"
  "github.com/BESSER-PEARL/statec-hackathon/internal/logger"
  "github.com/BESSER-PEARL/statec-hackathon/internal/repos"
  "github.com/BESSER-PEARL/statec-hackathon/internal/sdmx"
  "github.com/BESSER-PEARL/statec-hackathon/internal/types"
)

// IngestService normalizes SDMX dataflows into the star schema. One dataset
// is fully fetched, upserted, and persisted before the next begins; all
// writes for a dataset share one transaction so a failure leaves no partial
// commit.
type IngestService struct {
  db           *gorm.DB
  log          *logger.Logger
  client       *sdmx.Client
  datasetRepo  repos.DatasetRepo
  dimensionRepo repos.DimensionRepo
  categoryRepo repos.CategoryRepo
  observationRepo repos.ObservationRepo
  obsValueRepo repos.ObservationDimensionValueRepo
}

func NewIngestService(
  db *gorm.DB,
  log *logger.Logger,
  client *sdmx.Client,
  datasetRepo repos.DatasetRepo,
  dimensionRepo repos.DimensionRepo,
  categoryRepo repos.CategoryRepo,
  observationRepo repos.ObservationRepo,
  obsValueRepo repos.ObservationDimensionValueRepo,
) *IngestService {
  return &IngestService{
    db:           db,
    log:          log.With("service", "IngestService"),
    client:       client,
    datasetRepo:  datasetRepo,
    dimensionRepo: dimensionRepo,
    categoryRepo: categoryRepo,
    observationRepo: observationRepo,
    obsValueRepo: obsValueRepo,
  }
}

// ingestContext carries the lookups built by the structure upsert. The
// decoder's index tables are only valid once these are fully populated.
type ingestContext struct {
  dataset    *types.Dataset
  dimensions map[string]*types.Dimension
  categories map[string]map[string]*types.Category
  order      []string
  valueCodes map[string][]string
}

// Run processes the sources sequentially. A per-dataset failure is logged
// and the run continues; cancellation stops before the next dataset.
func (s *IngestService) Run(ctx context.Context, sources []sdmx.Source) {
  processed, failed := 0, 0
  for _, src := range sources {
    if ctx.Err() != nil {
      s.log.Info("Ingestion interrupted, stopping before next dataset")
      break
    }
    if err := s.IngestSource(ctx, src); err != nil {
      failed++
      s.log.Error("Failed to process dataset source", "data_url", src.DataURL, "error", err)
      continue
    }
    processed++
    s.log.Info("Successfully processed dataset source", "data_url", src.DataURL)
  }
  s.log.Info("Ingestion run finished", "processed", processed, "failed", failed)
}

// IngestSource fetches and parses one source, then persists it. A bare data
// URL must be a self-contained SDMX-JSON payload; a source with a separate
// structure URL has the two documents fetched concurrently, each parsed by
// wire shape.
func (s *IngestService) IngestSource(ctx context.Context, src sdmx.Source) error {
  var structure sdmx.Structure
  var records []sdmx.Record

  if src.StructureURL == "" {
    body, err := s.client.Get(ctx, src.DataURL)
    if err != nil {
      return err
    }
    if !sdmx.IsJSONPayload(body) {
      return fmt.Errorf("source %s is not SDMX-JSON and names no structure document", src.DataURL)
    }
    structure, records, err = sdmx.ParseJSONPayload(body)
    if err != nil {
      return err
    }
  } else {
    var structureBody, dataBody []byte
    group, groupCtx := errgroup.WithContext(ctx)
    group.Go(func() error {
      var err error
      structureBody, err = s.client.Get(groupCtx, src.StructureURL)
      return err
    })
    group.Go(func() error {
      var err error
      dataBody, err = s.client.Get(groupCtx, src.DataURL)
      return err
    })
    if err := group.Wait(); err != nil {
      return err
    }

    var err error
    if sdmx.IsJSONPayload(structureBody) {
      structure, _, err = sdmx.ParseJSONPayload(structureBody)
    } else {
      structure, err = sdmx.ParseXMLStructure(structureBody)
    }
    if err != nil {
      return err
    }
    if sdmx.IsJSONPayload(dataBody) {
      _, records, err = sdmx.ParseJSONPayload(dataBody)
    } else {
      records, err = sdmx.ParseXMLData(dataBody)
    }
    if err != nil {
      return err
    }
  }

  code := src.Code
  if code == "" {
    code = structure.Code
  }
  if code == "" {
    inferred, err := sdmx.DatasetCode(src.DataURL)
    if err != nil {
      return err
    }
    code = inferred
  }

  return s.IngestPayload(ctx, code, structure, records)
}

// IngestPayload upserts the structure and persists the observations for one
// dataset inside a single transaction.
func (s *IngestService) IngestPayload(ctx context.Context, code string, structure sdmx.Structure, records []sdmx.Record) error {
  return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    ing, err := s.upsertStructure(ctx, tx, code, structure)
    if err != nil {
      return err
    }
    return s.persistObservations(ctx, tx, ing, records)
  })
}

type pendingParent struct {
  dimCode    string
  category   *types.Category
  parentCode string
}

// upsertStructure creates or reuses the dataset, dimension, and category
// rows. Category parents resolve in a second pass once every category of the
// batch exists, since a child code may be declared before its parent; a
// parent absent from the batch falls back to a store lookup, and an
// unresolvable parent stays null.
func (s *IngestService) upsertStructure(ctx context.Context, tx *gorm.DB, code string, structure sdmx.Structure) (*ingestContext, error) {
  name := structure.Name
  if name == "" {
    name = code
  }
  var description *string
  if structure.Description != "" {
    description = &structure.Description
  }
  var translations []byte
  if m := structure.Names.Map(); m != nil {
    translations, _ = json.Marshal(m)
  }

  dataset, err := s.datasetRepo.GetByCode(ctx, tx, code)
  if err != nil {
    return nil, fmt.Errorf("look up dataset %s: %w", code, err)
  }
  if dataset != nil {
    dataset.Name = name
    dataset.Description = description
    if structure.Provider != "" {
      provider := structure.Provider
      dataset.Provider = &provider
    }
    if translations != nil {
      dataset.NameTranslations = translations
    }
    if err := s.datasetRepo.Save(ctx, tx, dataset); err != nil {
      return nil, fmt.Errorf("update dataset %s: %w", code, err)
    }
  } else {
    dataset = &types.Dataset{
      Code:        code,
      Name:        name,
      Description: description,
      NameTranslations: translations,
    }
    if structure.Provider != "" {
      provider := structure.Provider
      dataset.Provider = &provider
    }
    if err := s.datasetRepo.Create(ctx, tx, dataset); err != nil {
      return nil, fmt.Errorf("create dataset %s: %w", code, err)
    }
  }

  ing := &ingestContext{
    dataset:    dataset,
    dimensions: make(map[string]*types.Dimension),
    categories: make(map[string]map[string]*types.Category),
    valueCodes: make(map[string][]string),
  }
  var pending []pendingParent
  newDimensions, newCategories, totalCategories := 0, 0, 0

  for _, meta := range structure.Dimensions {
    dimension, err := s.dimensionRepo.GetByDatasetAndCode(ctx, tx, dataset.ID, meta.Code)
    if err != nil {
      return nil, fmt.Errorf("look up dimension %s: %w", meta.Code, err)
    }
    if dimension == nil {
      dimension = &types.Dimension{
        Code:      meta.Code,
        Name:      meta.Label,
        Label:     meta.Label,
        Position:  meta.Position,
        DatasetID: dataset.ID,
      }
      if meta.CodelistID != "" {
        codelistID := meta.CodelistID
        dimension.CodelistID = &codelistID
      }
      if err := s.dimensionRepo.Create(ctx, tx, dimension); err != nil {
        return nil, fmt.Errorf("create dimension %s: %w", meta.Code, err)
      }
      newDimensions++
    }

    ing.dimensions[meta.Code] = dimension
    ing.order = append(ing.order, meta.Code)
    ing.categories[meta.Code] = make(map[string]*types.Category, len(meta.Values))

    codes := make([]string, 0, len(meta.Values))
    for _, value := range meta.Values {
      category, err := s.categoryRepo.GetByDimensionAndCode(ctx, tx, dimension.ID, value.Code)
      if err != nil {
        return nil, fmt.Errorf("look up category %s/%s: %w", meta.Code, value.Code, err)
      }
      if category != nil {
        category.Name = value.Label
        category.Label = value.Label
        if err := s.categoryRepo.Save(ctx, tx, category); err != nil {
          return nil, fmt.Errorf("refresh category %s/%s: %w", meta.Code, value.Code, err)
        }
      } else {
        category = &types.Category{
          Code:        value.Code,
          Name:        value.Label,
          Label:       value.Label,
          DatasetID:   dataset.ID,
          DimensionID: dimension.ID,
        }
        if err := s.categoryRepo.Create(ctx, tx, category); err != nil {
          return nil, fmt.Errorf("create category %s/%s: %w", meta.Code, value.Code, err)
        }
        newCategories++
      }

      ing.categories[meta.Code][value.Code] = category
      codes = append(codes, value.Code)
      totalCategories++

      if value.ParentCode != "" {
        pending = append(pending, pendingParent{dimCode: meta.Code, category: category, parentCode: value.ParentCode})
      }
    }
    ing.valueCodes[meta.Code] = codes
  }

  for _, p := range pending {
    parent := ing.categories[p.dimCode][p.parentCode]
    if parent == nil {
      parent, err = s.categoryRepo.GetByDimensionAndCode(ctx, tx, ing.dimensions[p.dimCode].ID, p.parentCode)
      if err != nil {
        return nil, fmt.Errorf("look up parent category %s/%s: %w", p.dimCode, p.parentCode, err)
      }
    }
    if parent == nil || parent.ID == p.category.ID {
      continue
    }
    parentID := parent.ID
    p.category.ParentID = &parentID
    if err := s.categoryRepo.Save(ctx, tx, p.category); err != nil {
      return nil, fmt.Errorf("link parent category %s/%s: %w", p.dimCode, p.parentCode, err)
    }
  }

  s.log.Info("Upserted dataset structure",
    "dataset", code,
    "dimensions", len(ing.order),
    "new_dimensions", newDimensions,
    "categories", totalCategories,
    "new_categories", newCategories,
  )
  return ing, nil
}

// persistObservations decodes each record against the canonical dimension
// order and writes the observation plus one link row per decoded pair. A
// re-ingested dataset has its prior observations replaced wholesale, so the
// fact tables never accumulate duplicates across runs.
func (s *IngestService) persistObservations(ctx context.Context, tx *gorm.DB, ing *ingestContext, records []sdmx.Record) error {
  if len(records) == 0 {
    s.log.Warn("Dataset has no observation entries", "dataset", ing.dataset.Code)
    return nil
  }

  if _, err := s.obsValueRepo.DeleteByDataset(ctx, tx, ing.dataset.ID); err != nil {
    return fmt.Errorf("clear observation links of %s: %w", ing.dataset.Code, err)
  }
  replaced, err := s.observationRepo.DeleteByDataset(ctx, tx, ing.dataset.ID)
  if err != nil {
    return fmt.Errorf("clear observations of %s: %w", ing.dataset.Code, err)
  }
  if replaced > 0 {
    s.log.Info("Replacing prior observations for dataset", "dataset", ing.dataset.Code, "replaced", replaced)
  }

  decoder := sdmx.NewDecoder(ing.order, ing.valueCodes)
  stored, missingValue, missingCategory, repairedKeys := 0, 0, 0, 0

  for _, rec := range records {
    decoded, err := decoder.Decode(rec)
    if errors.Is(err, sdmx.ErrMissingValue) {
      missingValue++
      continue
    }
    if errors.Is(err, sdmx.ErrIndexOutOfRange) {
      missingCategory++
      s.log.Debug("Discarding observation with out-of-range key", "dataset", ing.dataset.Code, "key", rec.Key, "error", err)
      continue
    }
    if err != nil {
      return err
    }
    if decoded.Repaired {
      repairedKeys++
      s.log.Warn("Observation key length mismatch repaired",
        "dataset", ing.dataset.Code,
        "key", rec.Key,
        "expected", len(ing.order),
      )
    }

    observation := &types.Observation{
      Value:     decoded.Value,
      DatasetID: ing.dataset.ID,
    }
    if timePeriod, ok := decoded.Dims["TIME_PERIOD"]; ok {
      observation.TimePeriod = &timePeriod
    }
    if err := s.observationRepo.Create(ctx, tx, observation); err != nil {
      return fmt.Errorf("create observation: %w", err)
    }

    for dimCode, categoryCode := range decoded.Dims {
      dimension := ing.dimensions[dimCode]
      if dimension == nil {
        continue
      }
      category := ing.categories[dimCode][categoryCode]
      if category == nil {
        category, err = s.ensureCategory(ctx, tx, ing, dimension, dimCode, categoryCode)
        if err != nil {
          return err
        }
      }
      link := &types.ObservationDimensionValue{
        ObservationID: observation.ID,
        DimensionID:   dimension.ID,
        CategoryID:    category.ID,
      }
      if err := s.obsValueRepo.Create(ctx, tx, link); err != nil {
        return fmt.Errorf("link observation to %s/%s: %w", dimCode, categoryCode, err)
      }
    }
    stored++
  }

  s.log.Info("Stored observations",
    "dataset", ing.dataset.Code,
    "stored", stored,
    "skipped_missing_value", missingValue,
    "skipped_missing_category", missingCategory,
    "repaired_keys", repairedKeys,
  )
  return nil
}

// ensureCategory resolves or auto-vivifies a category referenced by an
// observation but absent from the upserted set. The code doubles as name
// and label.
func (s *IngestService) ensureCategory(ctx context.Context, tx *gorm.DB, ing *ingestContext, dimension *types.Dimension, dimCode, categoryCode string) (*types.Category, error) {
  catMap := ing.categories[dimCode]
  if catMap == nil {
    catMap = make(map[string]*types.Category)
    ing.categories[dimCode] = catMap
  }
  if category := catMap[categoryCode]; category != nil {
    return category, nil
  }

  category, err := s.categoryRepo.GetByDimensionAndCode(ctx, tx, dimension.ID, categoryCode)
  if err != nil {
    return nil, fmt.Errorf("look up category %s/%s: %w", dimCode, categoryCode, err)
  }
  if category == nil {
    category = &types.Category{
      Code:        categoryCode,
      Name:        categoryCode,
      Label:       categoryCode,
      DatasetID:   ing.dataset.ID,
      DimensionID: dimension.ID,
    }
    if err := s.categoryRepo.Create(ctx, tx, category); err != nil {
      return nil, fmt.Errorf("create category %s/%s: %w", dimCode, categoryCode, err)
    }
  }
  catMap[categoryCode] = category
  return category, nil
}
