package main

import (
  "context"
  "fmt"
  "os"
  "os/signal"
  "syscall"
  "github.com/joho/godotenv"
  "gorm.io/gorm"
  "github.com/BESSER-PEARL/statec-hackathon/internal/db"
  "github.com/BESSER-PEARL/statec-hackathon/internal/logger"
  "github.com/BESSER-PEARL/statec-hackathon/internal/repos"
  "github.com/BESSER-PEARL/statec-hackathon/internal/services"
  "github.com/BESSER-PEARL/statec-hackathon/internal/utils"
)

// Batch repair job: merges duplicate dimension and category rows left behind
// by earlier non-idempotent ingestion runs. Safe to re-run.
func main() {
  _ = godotenv.Load()

  logMode := os.Getenv("LOG_MODE")
  if logMode == "" {
    logMode = "development"
  }
  log, err := logger.New(logMode)
  if err != nil {
    fmt.Printf("Failed to init logger: %v\n", err)
    os.Exit(1)
  }
  defer log.Sync()

  gormDB, err := openStore(log)
  if err != nil {
    log.Error("Store init failed", "error", err)
    os.Exit(1)
  }

  datasetRepo := repos.NewDatasetRepo(gormDB, log)
  dimensionRepo := repos.NewDimensionRepo(gormDB, log)
  categoryRepo := repos.NewCategoryRepo(gormDB, log)
  observationRepo := repos.NewObservationRepo(gormDB, log)
  obsValueRepo := repos.NewObservationDimensionValueRepo(gormDB, log)

  dedupService := services.NewDedupService(gormDB, log, datasetRepo, dimensionRepo, categoryRepo, obsValueRepo)
  inspectService := services.NewInspectService(gormDB, log, datasetRepo, dimensionRepo, categoryRepo, observationRepo, obsValueRepo)

  ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
  defer stop()

  log.Info("Statistics before cleanup:")
  if _, err := inspectService.Stats(ctx); err != nil {
    log.Warn("Could not collect store statistics", "error", err)
  }

  if err := dedupService.Run(ctx); err != nil {
    log.Error("Deduplication failed", "error", err)
    os.Exit(1)
  }

  log.Info("Statistics after cleanup:")
  if _, err := inspectService.Stats(ctx); err != nil {
    log.Warn("Could not collect store statistics", "error", err)
  }
}

func openStore(log *logger.Logger) (*gorm.DB, error) {
  storeDriver := utils.GetEnv("STORE_DRIVER", "postgres", log)
  switch storeDriver {
  case "sqlite":
    sqlitePath := utils.GetEnv("SQLITE_PATH", "sdmx.db", log)
    service, err := db.NewSQLiteService(sqlitePath, log)
    if err != nil {
      return nil, err
    }
    if err := service.AutoMigrateAll(); err != nil {
      return nil, err
    }
    return service.DB(), nil
  default:
    service, err := db.NewPostgresService(log)
    if err != nil {
      return nil, err
    }
    if err := service.AutoMigrateAll(); err != nil {
      return nil, err
    }
    return service.DB(), nil
  }
}
