package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductReview is a rating left on a product by a customer or an admin.
type ProductReview struct {
	ID               uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ProductID        uuid.UUID  `gorm:"column:product_id;type:uuid;not null;index" json:"productId"`
	Rating           int        `gorm:"column:rating;not null" json:"rating"`
	Content          string     `gorm:"column:content;not null" json:"content"`
	CustomerName     string     `gorm:"column:customer_name;not null" json:"customerName"`
	CustomerID       *uuid.UUID `gorm:"column:customer_id;type:uuid" json:"customerId,omitempty"`
	IsCustomerReview bool       `gorm:"column:is_customer_review;not null;default:false" json:"isCustomerReview"`
	Date             time.Time  `gorm:"column:date;not null" json:"date"`
	CreatedAt        time.Time  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (r *ProductReview) BeforeCreate(*gorm.DB) error {
	assignID(&r.ID)
	if r.Date.IsZero() {
		r.Date = time.Now().UTC()
	}
	return nil
}
