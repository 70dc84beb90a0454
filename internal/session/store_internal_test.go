package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xelth-com/fabtrack/internal/models"
)

func TestStore_ExpiryAndPurge(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatal(err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	defer sqlDB.Close()
	if err := db.AutoMigrate(&models.Session{}); err != nil {
		t.Fatal(err)
	}

	clock := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	store := NewStore(db, time.Hour)
	store.now = func() time.Time { return clock }

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user": map[string]interface{}{"id": "u-9", "role": "Manager"},
	}).SignedString([]byte("k"))
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	sess, _, err := store.Create(ctx, token)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	clock = clock.Add(2 * time.Hour)
	if _, err := store.Get(ctx, sess.ID); !errors.Is(err, ErrNoSession) {
		t.Errorf("expired Get: err = %v, want ErrNoSession", err)
	}

	n, err := store.Purge(ctx)
	if err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if n != 1 {
		t.Errorf("Purge removed %d, want 1", n)
	}
}
