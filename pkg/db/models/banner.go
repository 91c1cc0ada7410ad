package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Banner is a storefront hero slide.
type Banner struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Title     string    `gorm:"column:title;not null"`
	Subtitle  string    `gorm:"column:subtitle;not null;default:''"`
	ImageURL  string    `gorm:"column:image_url;not null"`
	Link      string    `gorm:"column:link;not null;default:''"`
	Active    bool      `gorm:"column:active;not null"`
	Position  int       `gorm:"column:position;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (b *Banner) BeforeCreate(*gorm.DB) error {
	assignID(&b.ID)
	return nil
}
