package orders

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vaporhaus/storefront-backend/pkg/db/models"
	"github.com/vaporhaus/storefront-backend/pkg/enums"
)

// SortOrder selects the admin order listing order.
type SortOrder string

const (
	SortDateDesc   SortOrder = "date-desc"
	SortDateAsc    SortOrder = "date-asc"
	SortAmountDesc SortOrder = "amount-desc"
	SortAmountAsc  SortOrder = "amount-asc"
)

// ParseSortOrder defaults to newest first.
func ParseSortOrder(value string) (SortOrder, error) {
	switch SortOrder(strings.ToLower(strings.TrimSpace(value))) {
	case "", SortDateDesc:
		return SortDateDesc, nil
	case SortDateAsc:
		return SortDateAsc, nil
	case SortAmountDesc:
		return SortAmountDesc, nil
	case SortAmountAsc:
		return SortAmountAsc, nil
	}
	return "", fmt.Errorf("invalid sort %q", value)
}

// ListParams are the raw admin listing inputs.
type ListParams struct {
	Status string
	Search string
	Sort   string
	Page   int
	Limit  int
}

// ListFilter is the parsed form of ListParams.
type ListFilter struct {
	Status *enums.OrderStatus
	Search string
	Sort   SortOrder
	Offset int
	Limit  int
}

// CustomerDTO is the contact block embedded in an order.
type CustomerDTO struct {
	UserID  *uuid.UUID `json:"userId,omitempty"`
	Name    string     `json:"name"`
	Email   string     `json:"email"`
	Phone   string     `json:"phone"`
	IsGuest bool       `json:"isGuest"`
}

// AddressDTO is the shipping address of an order.
type AddressDTO struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

// ItemDTO is one purchased line.
type ItemDTO struct {
	ProductID uuid.UUID `json:"productId"`
	Name      string    `json:"name"`
	Price     int       `json:"price"`
	SalePrice *int      `json:"salePrice,omitempty"`
	Quantity  int       `json:"quantity"`
	ImageURL  string    `json:"imageUrl"`
	Flavor    *string   `json:"flavor,omitempty"`
	Variant   *string   `json:"variant,omitempty"`
	Subtotal  int       `json:"subtotal"`
}

// OrderDTO is the order shape returned by the API.
type OrderDTO struct {
	ID              uuid.UUID         `json:"id"`
	Customer        CustomerDTO       `json:"user"`
	Items           []ItemDTO         `json:"items"`
	Total           int               `json:"total"`
	Status          enums.OrderStatus `json:"status"`
	ShippingAddress AddressDTO        `json:"shippingAddress"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// ToDTO maps a stored order and its items.
func ToDTO(o models.Order) OrderDTO {
	dto := OrderDTO{
		ID: o.ID,
		Customer: CustomerDTO{
			UserID:  o.UserID,
			Name:    o.UserName,
			Email:   o.UserEmail,
			Phone:   o.UserPhone,
			IsGuest: o.IsGuest,
		},
		Items:  make([]ItemDTO, 0, len(o.Items)),
		Total:  o.Total,
		Status: o.Status,
		ShippingAddress: AddressDTO{
			Street:  o.Street,
			City:    o.City,
			State:   o.State,
			Pincode: o.Pincode,
		},
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
	for _, item := range o.Items {
		dto.Items = append(dto.Items, ItemDTO{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			SalePrice: item.SalePrice,
			Quantity:  item.Quantity,
			ImageURL:  item.ImageURL,
			Flavor:    item.Flavor,
			Variant:   item.Variant,
			Subtotal:  item.UnitPrice() * item.Quantity,
		})
	}
	return dto
}
