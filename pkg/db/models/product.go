package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vaporhaus/storefront-backend/pkg/enums"
	"github.com/vaporhaus/storefront-backend/pkg/types"
)

// Product is a catalog listing. Money columns are minor units.
type Product struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	Name        string                `gorm:"column:name;not null"`
	Description string                `gorm:"column:description;not null"`
	Price       int                   `gorm:"column:price;not null"`
	SalePrice   *int                  `gorm:"column:sale_price"`
	Stock       int                   `gorm:"column:stock;not null;default:0"`
	Category    enums.ProductCategory `gorm:"column:category;not null"`
	Brand       string                `gorm:"column:brand;not null"`
	ImageURL    string                `gorm:"column:image_url;not null;default:''"`
	Images      types.StringList      `gorm:"column:images;type:jsonb;not null"`
	Flavors     types.Flavors         `gorm:"column:flavors;type:jsonb;not null"`
	Variants    types.Variants        `gorm:"column:variants;type:jsonb;not null"`
	Featured    bool                  `gorm:"column:featured;not null;default:false"`
	MostSelling bool                  `gorm:"column:most_selling;not null;default:false"`
	Reviews     []ProductReview       `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	if p.Images == nil {
		p.Images = types.StringList{}
	}
	if p.Flavors == nil {
		p.Flavors = types.Flavors{}
	}
	if p.Variants == nil {
		p.Variants = types.Variants{}
	}
	return nil
}

// EffectivePrice is the price a shopper pays before variant overrides.
func (p Product) EffectivePrice() int {
	if p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.Price
}
