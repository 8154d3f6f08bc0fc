// Package dbtest opens throwaway SQLite databases for repository and service tests.
package dbtest

import (
	"io"
	"log"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/edelguur/admin-backend/pkg/db"
	"github.com/edelguur/admin-backend/pkg/db/models"
)

// AllModels lists every table the application persists.
func AllModels() []any {
	return []any{
		&models.User{},
		&models.Brand{},
		&models.Unit{},
		&models.Status{},
		&models.ProductType{},
		&models.Category{},
		&models.Subcategory{},
		&models.Product{},
		&models.ProductVariant{},
		&models.ProductImage{},
		&models.Order{},
		&models.OrderItem{},
		&models.Banner{},
		&models.OutboxEvent{},
		&models.OutboxDLQ{},
	}
}

// Open returns a client over a private in-memory database. The pool is pinned to
// one connection so every statement sees the same database; code under test must
// not touch the base handle while a transaction is open.
func Open(t testing.TB, tables ...any) *db.Client {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.New(log.New(io.Discard, "", 0), gormlogger.Config{LogLevel: gormlogger.Silent}),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if len(tables) == 0 {
		tables = AllModels()
	}
	if err := conn.AutoMigrate(tables...); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db.FromConn(conn)
}
