package testutil

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Sternrassler/restext/pkg/view"
)

// Record is a small versioned model for key bit and field tests.
type Record struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `json:"name"`
	Owner     string `json:"owner"`
	Revision  int    `json:"revision"`
	UpdatedAt time.Time
}

// OpenDB opens a private in-memory sqlite database and migrates models.
// The pool is limited to one connection so every query sees the same
// in-memory database.
func OpenDB(t *testing.T, models ...any) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			t.Fatalf("migrate: %v", err)
		}
	}
	return db
}

// RecordView is a view over Record rows. Owner filters the list query
// when set; the version column is "revision".
type RecordView struct {
	DB    *gorm.DB
	Owner string
}

// ListQuery implements view.ListQuerier.
func (v *RecordView) ListQuery(*view.Call) *gorm.DB {
	q := v.DB.Model(&Record{})
	if v.Owner != "" {
		q = q.Where("owner = ?", v.Owner)
	}
	return q
}

// VersionColumn implements view.Versioned.
func (v *RecordView) VersionColumn() string { return "revision" }
