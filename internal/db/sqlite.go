package db

import (
  "fmt"
  "gorm.io/driver/sqlite"
  "gorm.io/gorm"
  gormlogger "gorm.io/gorm/logger"
  "github.com/BESSER-PEARL/statec-hackathon/internal/logger"
)

// SQLiteService backs local runs and package tests with a file database.
type SQLiteService struct {
  db *gorm.DB
  log *logger.Logger
}

func NewSQLiteService(path string, log *logger.Logger) (*SQLiteService, error) {
  serviceLog := log.With("service", "SQLiteService")

  log.Info("Opening SQLite database...", "path", path)
  db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
    Logger: gormlogger.Default.LogMode(gormlogger.Silent),
  })
  if err != nil {
    log.Error("Failed to open SQLite database", "error", err, "path", path)
    return nil, fmt.Errorf("failed to open SQLite database %s: %w", path, err)
  }

  return &SQLiteService{db: db, log: serviceLog}, nil
}

func (s *SQLiteService) DB() *gorm.DB {
  return s.db
}

func (s *SQLiteService) AutoMigrateAll() error {
  s.log.Info("Auto migrating sqlite tables...")
  return AutoMigrateAll(s.db, s.log)
}
