package main

import (
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// RunRecord represents the schema of the run_records table: one row per
// visualized document, so re-runs over the same results directory can skip
// work that is already done.
type RunRecord struct {
	ID         uint   `gorm:"primaryKey"`         // Auto-incrementing primary key
	RunID      string `gorm:"size:36;not null"`   // UUID of the batch run
	Archive    string `gorm:"size:1024;not null"` // Path of the result archive
	Entry      string `gorm:"size:1024;not null"` // Document entry inside the archive
	Pages      int    `gorm:"not null"`           // Number of pages rendered
	Status     string `gorm:"size:32;not null"`   // "completed" or "failed"
	OutputPath string `gorm:"size:1024"`          // Where the HTML report was written
	CreatedAt  time.Time
}

// InitializeDB initializes the SQLite database and migrates the schema
func InitializeDB() *gorm.DB {
	// Ensure db directory exists
	dbDir := "db"
	if err := os.MkdirAll(dbDir, os.ModePerm); err != nil {
		log.Fatalf("Failed to create db directory: %v", err)
	}

	dbPath := filepath.Join(dbDir, "visualization_history.db")

	// Connect to SQLite database
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Migrate the schema (create the table if it doesn't exist)
	err = db.AutoMigrate(&RunRecord{})
	if err != nil {
		log.Fatalf("Failed to migrate database schema: %v", err)
	}

	return db
}

// InsertRunRecord inserts a new run record into the database
func InsertRunRecord(db *gorm.DB, record RunRecord) error {
	result := db.Create(&record)
	return result.Error
}

// GetAllRunRecords retrieves all run records, newest first
func GetAllRunRecords(db *gorm.DB) ([]RunRecord, error) {
	var records []RunRecord
	result := db.Order("created_at desc").Find(&records)
	return records, result.Error
}

// HasCompletedRun reports whether the given archive entry was already
// visualized successfully.
func HasCompletedRun(db *gorm.DB, archive, entry string) (bool, error) {
	var count int64
	result := db.Model(&RunRecord{}).
		Where("archive = ? AND entry = ? AND status = ?", archive, entry, "completed").
		Count(&count)
	return count > 0, result.Error
}
