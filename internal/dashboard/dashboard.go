// Package dashboard computes back-office counters and revenue reports.
package dashboard

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vaporhaus/storefront-backend/pkg/db/models"
	"github.com/vaporhaus/storefront-backend/pkg/enums"
	pkgerrors "github.com/vaporhaus/storefront-backend/pkg/errors"
)

const (
	recentOrderLimit = 10
	topProductLimit  = 5
)

type Totals struct {
	Products       int64  `json:"products"`
	Orders         int64  `json:"orders"`
	PendingOrders  int64  `json:"pendingOrders"`
	Customers      int64  `json:"customers"`
	Banners        int64  `json:"banners"`
	Reviews        int64  `json:"reviews"`
	Testimonials   int64  `json:"testimonials"`
	Revenue        int64  `json:"revenue"`
	RevenueDisplay string `json:"revenueDisplay"`
}

// MonthPoint is one YYYY-MM revenue bucket.
type MonthPoint struct {
	Month   string `json:"month"`
	Revenue int64  `json:"revenue"`
	Orders  int64  `json:"orders"`
}

// LabelValue is a top-N entry such as a product name and units sold.
type LabelValue struct {
	Label string `json:"label"`
	Value int64  `json:"value"`
}

type RecentOrder struct {
	ID           uuid.UUID         `json:"id"`
	CustomerName string            `json:"customerName"`
	Total        int               `json:"total"`
	Status       enums.OrderStatus `json:"status"`
	CreatedAt    time.Time         `json:"createdAt"`
}

type RevenueReport struct {
	Total        int64         `json:"total"`
	TotalDisplay string        `json:"totalDisplay"`
	AverageOrder int64         `json:"averageOrder"`
	Monthly      []MonthPoint  `json:"monthly"`
	Recent       []RecentOrder `json:"recentOrders"`
	TopProducts  []LabelValue  `json:"topProducts"`
}

type Service interface {
	Totals(ctx context.Context) (*Totals, error)
	Revenue(ctx context.Context) (*RevenueReport, error)
}

type service struct {
	db *gorm.DB
}

func NewService(conn *gorm.DB) (Service, error) {
	if conn == nil {
		return nil, fmt.Errorf("db required")
	}
	return &service{db: conn}, nil
}

func (s *service) Totals(ctx context.Context) (*Totals, error) {
	conn := s.db.WithContext(ctx)
	out := &Totals{}
	counts := []struct {
		model any
		dest  *int64
		label string
	}{
		{&models.Product{}, &out.Products, "products"},
		{&models.Order{}, &out.Orders, "orders"},
		{&models.Customer{}, &out.Customers, "customers"},
		{&models.Banner{}, &out.Banners, "banners"},
		{&models.ProductReview{}, &out.Reviews, "reviews"},
		{&models.Testimonial{}, &out.Testimonials, "testimonials"},
	}
	for _, c := range counts {
		if err := conn.Model(c.model).Count(c.dest).Error; err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count "+c.label)
		}
	}
	if err := conn.Model(&models.Order{}).Where("status = ?", enums.OrderStatusPending).Count(&out.PendingOrders).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count pending orders")
	}
	revenue, err := s.revenue(conn)
	if err != nil {
		return nil, err
	}
	out.Revenue = revenue
	out.RevenueDisplay = FormatMinor(revenue)
	return out, nil
}

func (s *service) Revenue(ctx context.Context) (*RevenueReport, error) {
	conn := s.db.WithContext(ctx)

	var rows []struct {
		Total     int
		CreatedAt time.Time
	}
	err := conn.Model(&models.Order{}).
		Select("total", "created_at").
		Where("status <> ?", enums.OrderStatusCancelled).
		Scan(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order totals")
	}

	report := &RevenueReport{Monthly: []MonthPoint{}, Recent: []RecentOrder{}, TopProducts: []LabelValue{}}
	buckets := map[string]*MonthPoint{}
	for _, row := range rows {
		report.Total += int64(row.Total)
		month := row.CreatedAt.UTC().Format("2006-01")
		point, ok := buckets[month]
		if !ok {
			point = &MonthPoint{Month: month}
			buckets[month] = point
		}
		point.Revenue += int64(row.Total)
		point.Orders++
	}
	for _, point := range buckets {
		report.Monthly = append(report.Monthly, *point)
	}
	sort.Slice(report.Monthly, func(i, j int) bool { return report.Monthly[i].Month < report.Monthly[j].Month })
	report.TotalDisplay = FormatMinor(report.Total)
	if len(rows) > 0 {
		report.AverageOrder = decimal.NewFromInt(report.Total).
			Div(decimal.NewFromInt(int64(len(rows)))).
			Round(0).IntPart()
	}

	var recent []models.Order
	err = conn.Where("status <> ?", enums.OrderStatusCancelled).
		Order("created_at DESC").Order("id DESC").
		Limit(recentOrderLimit).
		Find(&recent).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load recent orders")
	}
	for _, o := range recent {
		report.Recent = append(report.Recent, RecentOrder{
			ID:           o.ID,
			CustomerName: o.UserName,
			Total:        o.Total,
			Status:       o.Status,
			CreatedAt:    o.CreatedAt,
		})
	}

	err = conn.Table("order_items AS oi").
		Select("oi.name AS label, SUM(oi.quantity) AS value").
		Joins("JOIN orders o ON o.id = oi.order_id").
		Where("o.status <> ?", enums.OrderStatusCancelled).
		Group("oi.name").
		Order("value DESC").Order("label ASC").
		Limit(topProductLimit).
		Scan(&report.TopProducts).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: top products")
	}
	return report, nil
}

func (s *service) revenue(conn *gorm.DB) (int64, error) {
	var total int64
	err := conn.Model(&models.Order{}).
		Select("COALESCE(SUM(total), 0)").
		Where("status <> ?", enums.OrderStatusCancelled).
		Scan(&total).Error
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: sum revenue")
	}
	return total, nil
}

// FormatMinor renders minor units as a two-decimal major amount, e.g. 4597 -> "45.97".
func FormatMinor(amount int64) string {
	return decimal.New(amount, -2).StringFixed(2)
}
