package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/BESSER-PEARL/statec-hackathon/internal/types"
)

// seedDataset writes rows directly, bypassing the upsert path, to model a
// store populated by older, non-idempotent runs.
func seedDataset(t *testing.T, ts *testStore, code string) *types.Dataset {
	t.Helper()
	dataset := &types.Dataset{Code: code, Name: code}
	if err := ts.datasets.Create(context.Background(), nil, dataset); err != nil {
		t.Fatalf("seed dataset: %v", err)
	}
	return dataset
}

func seedDimension(t *testing.T, ts *testStore, datasetID uuid.UUID, code string, createdAt time.Time) *types.Dimension {
	t.Helper()
	dimension := &types.Dimension{
		Code:      code,
		Name:      code,
		Label:     code,
		Position:  1,
		DatasetID: datasetID,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	if err := ts.dimensions.Create(context.Background(), nil, dimension); err != nil {
		t.Fatalf("seed dimension: %v", err)
	}
	return dimension
}

func seedCategory(t *testing.T, ts *testStore, datasetID, dimensionID uuid.UUID, code string, createdAt time.Time) *types.Category {
	t.Helper()
	category := &types.Category{
		Code:        code,
		Name:        code,
		Label:       code,
		DatasetID:   datasetID,
		DimensionID: dimensionID,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	if err := ts.categories.Create(context.Background(), nil, category); err != nil {
		t.Fatalf("seed category: %v", err)
	}
	return category
}

func seedObservation(t *testing.T, ts *testStore, datasetID, dimensionID, categoryID uuid.UUID, value float64) *types.Observation {
	t.Helper()
	ctx := context.Background()
	observation := &types.Observation{Value: value, DatasetID: datasetID}
	if err := ts.observations.Create(ctx, nil, observation); err != nil {
		t.Fatalf("seed observation: %v", err)
	}
	link := &types.ObservationDimensionValue{
		ObservationID: observation.ID,
		DimensionID:   dimensionID,
		CategoryID:    categoryID,
	}
	if err := ts.links.Create(ctx, nil, link); err != nil {
		t.Fatalf("seed link: %v", err)
	}
	return observation
}

func TestDedupMergesDuplicateCategories(t *testing.T) {
	ts := newTestStore(t)
	ctx := context.Background()

	earlier := time.Now().Add(-time.Hour).UTC()
	later := time.Now().UTC()

	dataset := seedDataset(t, ts, "DF_B1100")
	dimension := seedDimension(t, ts, dataset.ID, "SEX", earlier)
	primary := seedCategory(t, ts, dataset.ID, dimension.ID, "F", earlier)
	duplicate := seedCategory(t, ts, dataset.ID, dimension.ID, "F", later)

	// A child category and a link both point at the duplicate.
	child := seedCategory(t, ts, dataset.ID, dimension.ID, "F_SUB", later)
	child.ParentID = &duplicate.ID
	if err := ts.categories.Save(ctx, nil, child); err != nil {
		t.Fatalf("seed child parent: %v", err)
	}
	seedObservation(t, ts, dataset.ID, dimension.ID, duplicate.ID, 1)
	seedObservation(t, ts, dataset.ID, dimension.ID, primary.ID, 2)

	if err := ts.dedup.Run(ctx); err != nil {
		t.Fatalf("dedup: %v", err)
	}

	gone, err := ts.categories.GetByID(ctx, nil, duplicate.ID)
	if err != nil {
		t.Fatalf("lookup duplicate: %v", err)
	}
	if gone != nil {
		t.Fatalf("duplicate category survived the merge: %+v", gone)
	}

	survivor, err := ts.categories.GetByDimensionAndCode(ctx, nil, dimension.ID, "F")
	if err != nil || survivor == nil {
		t.Fatalf("survivor lookup: %v %v", survivor, err)
	}
	if survivor.ID != primary.ID {
		t.Fatalf("earliest-created row should be the primary, got %s", survivor.ID)
	}

	reparented, err := ts.categories.GetByID(ctx, nil, child.ID)
	if err != nil || reparented == nil {
		t.Fatalf("child lookup: %v %v", reparented, err)
	}
	if reparented.ParentID == nil || *reparented.ParentID != primary.ID {
		t.Fatalf("child parent pointer not redirected: %+v", reparented)
	}

	var danglingLinks int64
	if err := ts.db.Model(&types.ObservationDimensionValue{}).
		Where("category_id = ?", duplicate.ID).
		Count(&danglingLinks).Error; err != nil {
		t.Fatalf("count links: %v", err)
	}
	if danglingLinks != 0 {
		t.Fatalf("%d links still reference the deleted category", danglingLinks)
	}
	if stats := ts.stats(t); stats.Observations != 2 || stats.ObservationValues != 2 {
		t.Fatalf("dedup must not touch the fact tables: %+v", stats)
	}
}

func TestDedupMergesDuplicateDimensions(t *testing.T) {
	ts := newTestStore(t)
	ctx := context.Background()

	earlier := time.Now().Add(-time.Hour).UTC()
	later := time.Now().UTC()

	dataset := seedDataset(t, ts, "DF_B1100")
	primary := seedDimension(t, ts, dataset.ID, "SEX", earlier)
	duplicate := seedDimension(t, ts, dataset.ID, "SEX", later)

	primaryF := seedCategory(t, ts, dataset.ID, primary.ID, "F", earlier)
	duplicateF := seedCategory(t, ts, dataset.ID, duplicate.ID, "F", later)
	duplicateM := seedCategory(t, ts, dataset.ID, duplicate.ID, "M", later)

	seedObservation(t, ts, dataset.ID, primary.ID, primaryF.ID, 1)
	seedObservation(t, ts, dataset.ID, duplicate.ID, duplicateF.ID, 2)
	seedObservation(t, ts, dataset.ID, duplicate.ID, duplicateM.ID, 3)

	if err := ts.dedup.Run(ctx); err != nil {
		t.Fatalf("dedup: %v", err)
	}

	count, err := ts.dimensions.Count(ctx, nil)
	if err != nil {
		t.Fatalf("count dimensions: %v", err)
	}
	if count != 1 {
		t.Fatalf("dimensions = %d, want 1", count)
	}
	survivor, err := ts.dimensions.GetByDatasetAndCode(ctx, nil, dataset.ID, "SEX")
	if err != nil || survivor == nil {
		t.Fatalf("survivor lookup: %v %v", survivor, err)
	}
	if survivor.ID != primary.ID {
		t.Fatalf("earliest-created dimension should survive, got %s", survivor.ID)
	}

	// Same-code category merged, the other re-parented under the primary.
	mergedF, err := ts.categories.GetByDimensionAndCode(ctx, nil, primary.ID, "F")
	if err != nil || mergedF == nil || mergedF.ID != primaryF.ID {
		t.Fatalf("F should merge into the primary's category: %+v %v", mergedF, err)
	}
	movedM, err := ts.categories.GetByDimensionAndCode(ctx, nil, primary.ID, "M")
	if err != nil || movedM == nil || movedM.ID != duplicateM.ID {
		t.Fatalf("M should move under the primary dimension: %+v %v", movedM, err)
	}

	var stale int64
	if err := ts.db.Model(&types.ObservationDimensionValue{}).
		Where("dimension_id = ? OR category_id = ?", duplicate.ID, duplicateF.ID).
		Count(&stale).Error; err != nil {
		t.Fatalf("count links: %v", err)
	}
	if stale != 0 {
		t.Fatalf("%d links still reference merged rows", stale)
	}
	if stats := ts.stats(t); stats.Observations != 3 || stats.ObservationValues != 3 {
		t.Fatalf("dedup must not touch the fact tables: %+v", stats)
	}
}

func TestDedupRunIsIdempotent(t *testing.T) {
	ts := newTestStore(t)
	ctx := context.Background()

	earlier := time.Now().Add(-time.Hour).UTC()
	later := time.Now().UTC()

	dataset := seedDataset(t, ts, "DF_B1100")
	primary := seedDimension(t, ts, dataset.ID, "SEX", earlier)
	duplicate := seedDimension(t, ts, dataset.ID, "SEX", later)
	seedCategory(t, ts, dataset.ID, primary.ID, "F", earlier)
	duplicateF := seedCategory(t, ts, dataset.ID, duplicate.ID, "F", later)
	seedObservation(t, ts, dataset.ID, duplicate.ID, duplicateF.ID, 1)

	if err := ts.dedup.Run(ctx); err != nil {
		t.Fatalf("first run: %v", err)
	}
	first := ts.stats(t)

	if err := ts.dedup.Run(ctx); err != nil {
		t.Fatalf("second run: %v", err)
	}
	second := ts.stats(t)

	if first != second {
		t.Fatalf("second run changed the store: %+v then %+v", first, second)
	}

	dimDupes, catDupes, err := ts.inspect.DuplicateReport(ctx)
	if err != nil {
		t.Fatalf("duplicate report: %v", err)
	}
	if len(dimDupes) != 0 || len(catDupes) != 0 {
		t.Fatalf("duplicates remain after dedup: %v %v", dimDupes, catDupes)
	}
}
