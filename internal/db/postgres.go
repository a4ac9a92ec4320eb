package db

import (
  "fmt"
  "gorm.io/driver/postgres"
  "gorm.io/gorm"
  gormlogger "gorm.io/gorm/logger"
  "github.com/BESSER-PEARL/statec-hackathon/internal/logger"
  "github.com/BESSER-PEARL/statec-hackathon/internal/types"
  "github.com/BESSER-PEARL/statec-hackathon/internal/utils"
)

type PostgresService struct {
  db *gorm.DB
  log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
  serviceLog := log.With("service", "PostgresService")

  log.Info("Loading environment variables...")
  postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
  postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
  postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
  postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
  postgresName := utils.GetEnv("POSTGRES_NAME", "sdmx", log)

  dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

  log.Info("Connecting to Postgres...")
  db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
    Logger: gormlogger.Default.LogMode(gormlogger.Silent),
  })
  if err != nil {
    log.Error("Failed to connect to Postgres", "error", err)
    return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
  }

  return &PostgresService{db: db, log: serviceLog}, nil
}

func (s *PostgresService) DB() *gorm.DB {
  return s.db
}

func (s *PostgresService) AutoMigrateAll() error {
  s.log.Info("Auto migrating postgres tables...")
  return AutoMigrateAll(s.db, s.log)
}

// AutoMigrateAll creates or updates the star-schema tables.
func AutoMigrateAll(db *gorm.DB, log *logger.Logger) error {
  err := db.AutoMigrate(
    &types.Dataset{},
    &types.Dimension{},
    &types.Category{},
    &types.Observation{},
    &types.ObservationDimensionValue{},
  )
  if err != nil {
    log.Error("Auto migration failed", "error", err)
    return err
  }
  return nil
}
