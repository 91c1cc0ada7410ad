package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Testimonial struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	CustomerName string    `gorm:"column:customer_name;not null"`
	Title        string    `gorm:"column:title;not null;default:''"`
	Content      string    `gorm:"column:content;not null"`
	Rating       int       `gorm:"column:rating;not null"`
	Location     string    `gorm:"column:location;not null;default:''"`
	Date         time.Time `gorm:"column:date;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (t *Testimonial) BeforeCreate(*gorm.DB) error {
	assignID(&t.ID)
	if t.Date.IsZero() {
		t.Date = time.Now().UTC()
	}
	return nil
}
