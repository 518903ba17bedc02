package routes

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/punamchanne/Property-Dealing/models"
	"github.com/punamchanne/Property-Dealing/storage"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBCounter int64

// setupTestDB opens a fresh in-memory database and points the global handle at
// it. Each test gets its own named database so state never leaks between tests.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared",
		atomic.AddInt64(&testDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A single connection keeps the shared in-memory database alive and avoids
	// table locking under concurrent writers
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Listing{},
		&models.Meeting{},
		&models.ActivityLog{},
	))

	prev := storage.DB
	storage.DB = db
	t.Cleanup(func() {
		storage.DB = prev
		sqlDB.Close()
	})

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email, role string) models.User {
	t.Helper()
	user := models.User{
		Name:     "Test " + role,
		Email:    email,
		Password: "not-a-real-hash",
		Role:     role,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}
