package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer is a back-office contact record. Order aggregates are maintained by hand.
type Customer struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	UserID      *uuid.UUID `gorm:"column:user_id;type:uuid"`
	Name        string     `gorm:"column:name;not null"`
	Email       string     `gorm:"column:email;not null;uniqueIndex"`
	Phone       string     `gorm:"column:phone;not null;default:''"`
	Address     string     `gorm:"column:address;not null;default:''"`
	TotalOrders int        `gorm:"column:total_orders;not null;default:0"`
	TotalSpent  int        `gorm:"column:total_spent;not null;default:0"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Customer) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}
