package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xelth-com/fabtrack/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Store keeps sessions in the session table
type Store struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

// NewStore creates a session store; sessions live for ttl after login.
func NewStore(db *gorm.DB, ttl time.Duration) *Store {
	return &Store{db: db, ttl: ttl, now: time.Now}
}

// Create decodes the API token and stores a new session for it.
func (s *Store) Create(ctx context.Context, token string) (*models.Session, Identity, error) {
	id, err := DecodeToken(token)
	if err != nil {
		return nil, Identity{}, err
	}

	now := s.now().UTC()
	sess := &models.Session{
		ID:        uuid.NewString(),
		Token:     token,
		UserID:    id.UserID,
		Role:      id.Role,
		Flash:     datatypes.JSON("[]"),
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.db.WithContext(ctx).Create(sess).Error; err != nil {
		return nil, Identity{}, fmt.Errorf("failed to create session: %w", err)
	}
	return sess, id, nil
}

// Get returns a live session. Missing and expired sessions are ErrNoSession.
func (s *Store) Get(ctx context.Context, id string) (*models.Session, error) {
	if id == "" {
		return nil, ErrNoSession
	}

	var sess models.Session
	err := s.db.WithContext(ctx).First(&sess, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	if !sess.ExpiresAt.After(s.now().UTC()) {
		return nil, ErrNoSession
	}
	return &sess, nil
}

// Delete removes a session (logout)
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Delete(&models.Session{}, "id = ?", id).Error
}

// Purge deletes expired sessions and reports how many were removed
func (s *Store) Purge(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at <= ?", s.now().UTC()).Delete(&models.Session{})
	return res.RowsAffected, res.Error
}

// AddFlash queues a one-shot message for the next render
func (s *Store) AddFlash(ctx context.Context, id string, level models.FlashLevel, msg string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sess models.Session
		if err := tx.First(&sess, "id = ?", id).Error; err != nil {
			return err
		}
		msgs := decodeFlash(sess.Flash)
		msgs = append(msgs, models.FlashMessage{Level: level, Message: msg})
		raw, err := json.Marshal(msgs)
		if err != nil {
			return err
		}
		return tx.Model(&models.Session{}).Where("id = ?", id).Update("flash", datatypes.JSON(raw)).Error
	})
}

// PopFlash returns queued messages and clears them
func (s *Store) PopFlash(ctx context.Context, id string) ([]models.FlashMessage, error) {
	var msgs []models.FlashMessage
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sess models.Session
		if err := tx.First(&sess, "id = ?", id).Error; err != nil {
			return err
		}
		msgs = decodeFlash(sess.Flash)
		if len(msgs) == 0 {
			return nil
		}
		return tx.Model(&models.Session{}).Where("id = ?", id).Update("flash", datatypes.JSON("[]")).Error
	})
	return msgs, err
}

func decodeFlash(raw datatypes.JSON) []models.FlashMessage {
	var msgs []models.FlashMessage
	if len(raw) == 0 {
		return nil
	}
	_ = json.Unmarshal(raw, &msgs)
	return msgs
}
