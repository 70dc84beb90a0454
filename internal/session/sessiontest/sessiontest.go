// Package sessiontest provides helpers for tests that need a session store
// and API-shaped bearer tokens.
package sessiontest

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/xelth-com/fabtrack/internal/models"
	"github.com/xelth-com/fabtrack/internal/session"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a private in-memory sqlite database with the session table.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// one connection keeps the in-memory database alive and private
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(&models.Session{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// NewStore returns a session store over a fresh in-memory database.
func NewStore(t *testing.T) *session.Store {
	t.Helper()
	return session.NewStore(NewDB(t), time.Hour)
}

// Token signs a token shaped like the API's: { user: { id, role } }.
// The key is irrelevant because the front end never verifies it.
func Token(t *testing.T, userID string, role models.Role) string {
	t.Helper()

	claims := jwt.MapClaims{
		"user": map[string]interface{}{
			"id":   userID,
			"role": string(role),
		},
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("api-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}
