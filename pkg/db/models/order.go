package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vaporhaus/storefront-backend/pkg/enums"
)

// Order is an immutable purchase record; only Status changes after creation.
type Order struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	UserID    *uuid.UUID        `gorm:"column:user_id;type:uuid"`
	UserName  string            `gorm:"column:user_name;not null"`
	UserEmail string            `gorm:"column:user_email;not null"`
	UserPhone string            `gorm:"column:user_phone;not null"`
	IsGuest   bool              `gorm:"column:is_guest;not null;default:false"`
	Total     int               `gorm:"column:total;not null"`
	Status    enums.OrderStatus `gorm:"column:status;not null"`
	Street    string            `gorm:"column:street;not null"`
	City      string            `gorm:"column:city;not null"`
	State     string            `gorm:"column:state;not null"`
	Pincode   string            `gorm:"column:pincode;not null"`
	Items     []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	assignID(&o.ID)
	return nil
}

// OrderItem is a snapshot of a cart line at submission time.
type OrderItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OrderID   uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	Position  int       `gorm:"column:position;not null"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Name      string    `gorm:"column:name;not null"`
	Price     int       `gorm:"column:price;not null"`
	SalePrice *int      `gorm:"column:sale_price"`
	Quantity  int       `gorm:"column:quantity;not null"`
	ImageURL  string    `gorm:"column:image_url;not null;default:''"`
	Flavor    *string   `gorm:"column:flavor"`
	Variant   *string   `gorm:"column:variant"`
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	assignID(&i.ID)
	return nil
}

// UnitPrice is the sale price when present, else the list price.
func (i OrderItem) UnitPrice() int {
	if i.SalePrice != nil {
		return *i.SalePrice
	}
	return i.Price
}
