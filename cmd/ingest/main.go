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
  "github.com/BESSER-PEARL/statec-hackathon/internal/sdmx"
  "github.com/BESSER-PEARL/statec-hackathon/internal/services"
  "github.com/BESSER-PEARL/statec-hackathon/internal/utils"
)

func main() {
  _ = godotenv.Load()

  // Logger
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

  // Store
  gormDB, err := openStore(log)
  if err != nil {
    log.Error("Store init failed", "error", err)
    os.Exit(1)
  }

  // Repos
  log.Info("Setting up repos...")
  datasetRepo := repos.NewDatasetRepo(gormDB, log)
  dimensionRepo := repos.NewDimensionRepo(gormDB, log)
  categoryRepo := repos.NewCategoryRepo(gormDB, log)
  observationRepo := repos.NewObservationRepo(gormDB, log)
  obsValueRepo := repos.NewObservationDimensionValueRepo(gormDB, log)

  // Services
  client := sdmx.NewClient(log)
  ingestService := services.NewIngestService(gormDB, log, client, datasetRepo, dimensionRepo, categoryRepo, observationRepo, obsValueRepo)
  inspectService := services.NewInspectService(gormDB, log, datasetRepo, dimensionRepo, categoryRepo, observationRepo, obsValueRepo)

  // Sources
  sourceList := utils.GetEnv("SOURCE_LIST", "sources.txt", log)
  sources, err := sdmx.LoadSources(sourceList)
  if err != nil {
    log.Error("Failed to load source list", "path", sourceList, "error", err)
    os.Exit(1)
  }
  log.Info("Loaded dataset sources", "count", len(sources), "path", sourceList)

  // An interrupt stops the run before the next dataset begins.
  ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
  defer stop()

  ingestService.Run(ctx, sources)
  if _, err := inspectService.Stats(context.Background()); err != nil {
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
