package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Room is a managed space with an admin owner, an expiry and an optional camera.
// CreatedAt is stamped by the database (DEFAULT now()) so every console
// process orders rooms by the same clock; clients never supply it.
type Room struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Room      string    `gorm:"not null" json:"room"`
	Admin     string    `gorm:"not null" json:"admin"`
	Expire    string    `json:"expire"`
	CameraID  string    `json:"cameraId"`
	CreatedAt time.Time `gorm:"autoCreateTime:false;default:now();index" json:"createdAt"`
}

func (r *Room) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// NewRoom is the write-only shape accepted by the store.
type NewRoom struct {
	Room     string
	Admin    string
	Expire   string
	CameraID string
}
