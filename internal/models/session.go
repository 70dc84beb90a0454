package models

import (
	"time"

	"gorm.io/datatypes"
)

// Session is the server-side half of a browser login. The browser holds
// only the opaque ID; the bearer token issued by the API stays here.
type Session struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	Token     string         `gorm:"type:text;not null" json:"-"`
	UserID    string         `gorm:"index;size:64" json:"userId"`
	Role      Role           `gorm:"size:16" json:"role"`
	Flash     datatypes.JSON `json:"flash"`
	CreatedAt time.Time      `json:"createdAt"`
	ExpiresAt time.Time      `gorm:"index" json:"expiresAt"`
}

// TableName specifies the table name for Session model
func (Session) TableName() string {
	return "sessions"
}

// FlashLevel is the severity of a one-shot notification
type FlashLevel string

const (
	FlashSuccess FlashLevel = "success"
	FlashError   FlashLevel = "error"
)

// FlashMessage is a one-shot notification shown on the next page render.
type FlashMessage struct {
	Level   FlashLevel `json:"level"`
	Message string     `json:"message"`
}
