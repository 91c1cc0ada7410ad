package importer

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vaporhaus/storefront-backend/internal/catalog"
	"github.com/vaporhaus/storefront-backend/pkg/db/models"
	"github.com/vaporhaus/storefront-backend/pkg/types"
)

// RowError is a validation or write failure tied to one spreadsheet row.
type RowError struct {
	Row     int    `json:"row"`
	Name    string `json:"name"`
	Field   string `json:"field,omitempty"`
	Message string `json:"error"`
}

func (e RowError) Error() string {
	label := e.Name
	if label == "" {
		label = "unnamed product"
	}
	if e.Field != "" {
		return fmt.Sprintf("row %d (%s): %s %s", e.Row, label, e.Field, e.Message)
	}
	return fmt.Sprintf("row %d (%s): %s", e.Row, label, e.Message)
}

// Candidate is a validated row ready to be written.
type Candidate struct {
	Row     int
	Input   catalog.ProductInput
	Ratings []models.ProductReview
}

type variantCell struct {
	Name  string           `json:"name"`
	Price *decimal.Decimal `json:"price"`
	Stock *decimal.Decimal `json:"stock"`
}

type ratingCell struct {
	Rating           decimal.Decimal `json:"rating"`
	Content          string          `json:"content"`
	CustomerName     string          `json:"customerName"`
	CustomerID       *uuid.UUID      `json:"customerId"`
	IsCustomerReview bool            `json:"isCustomerReview"`
	Date             *time.Time      `json:"date"`
}

var (
	errNotNumber   = errors.New("must be a number")
	errNegative    = errors.New("must be non-negative")
	errPrecision   = errors.New("must have at most two decimal places")
	errNotIntegral = errors.New("must be a whole number")
	errTooLarge    = errors.New("is too large")
)

// maxStored is the largest value the INTEGER price and stock columns hold.
var maxStored = decimal.NewFromInt(math.MaxInt32)

// ParseMoney converts a major-unit amount such as "19.99" into minor units.
func ParseMoney(raw string) (int, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return 0, errNotNumber
	}
	return moneyFromDecimal(d)
}

func moneyFromDecimal(d decimal.Decimal) (int, error) {
	if d.IsNegative() {
		return 0, errNegative
	}
	if !d.Equal(d.Round(2)) {
		return 0, errPrecision
	}
	minor := d.Shift(2)
	if minor.GreaterThan(maxStored) {
		return 0, errTooLarge
	}
	return int(minor.IntPart()), nil
}

func countFromDecimal(d decimal.Decimal) (int, error) {
	if d.IsNegative() {
		return 0, errNegative
	}
	if !d.IsInteger() {
		return 0, errNotIntegral
	}
	if d.GreaterThan(maxStored) {
		return 0, errTooLarge
	}
	return int(d.IntPart()), nil
}

func parseCount(raw string) (int, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return 0, errNotNumber
	}
	return countFromDecimal(d)
}

func parseFlag(raw string) (bool, error) {
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(strings.ToLower(raw))
	if err != nil {
		return false, errors.New("must be true or false")
	}
	return v, nil
}

// ParseRecord turns a raw row into a candidate. Every problem in the row is reported.
func ParseRecord(rec Record) (Candidate, []RowError) {
	cell := func(col string) string { return rec.Cells[col] }
	name := cell(colName)
	var errs []RowError
	unparsed := map[string]bool{}
	fail := func(field string, err error) {
		unparsed[field] = true
		errs = append(errs, RowError{Row: rec.Row, Name: name, Field: field, Message: err.Error()})
	}

	input := catalog.ProductInput{
		Name:        name,
		Description: cell(colDescription),
		Category:    cell(colCategory),
		Brand:       cell(colBrand),
		ImageURL:    cell(colImageURL),
		Images:      []string{},
		Flavors:     []types.Flavor{},
		Variants:    []types.Variant{},
	}

	if raw := cell(colPrice); raw == "" {
		fail(colPrice, errors.New("is required"))
	} else if v, err := ParseMoney(raw); err != nil {
		fail(colPrice, err)
	} else {
		input.Price = v
	}
	if raw := cell(colStock); raw == "" {
		fail(colStock, errors.New("is required"))
	} else if v, err := parseCount(raw); err != nil {
		fail(colStock, err)
	} else {
		input.Stock = v
	}
	if raw := cell(colSalePrice); raw != "" {
		if v, err := ParseMoney(raw); err != nil {
			fail(colSalePrice, err)
		} else {
			input.SalePrice = &v
		}
	}
	if v, err := parseFlag(cell(colFeatured)); err != nil {
		fail(colFeatured, err)
	} else {
		input.Featured = v
	}
	if v, err := parseFlag(cell(colMostSelling)); err != nil {
		fail(colMostSelling, err)
	} else {
		input.MostSelling = v
	}

	for _, flavor := range strings.Split(cell(colFlavors), ",") {
		if trimmed := strings.TrimSpace(flavor); trimmed != "" {
			input.Flavors = append(input.Flavors, types.Flavor{Name: trimmed, InStock: true})
		}
	}

	if raw := cell(colImages); raw != "" {
		if err := json.Unmarshal([]byte(raw), &input.Images); err != nil {
			fail(colImages, errors.New("must be a JSON array of URLs"))
		}
	}

	if raw := cell(colVariants); raw != "" {
		var cells []variantCell
		if err := json.Unmarshal([]byte(raw), &cells); err != nil {
			fail(colVariants, errors.New("must be a JSON array of objects"))
		}
		for i, vc := range cells {
			variant := types.Variant{Name: vc.Name}
			if vc.Price != nil {
				if v, err := moneyFromDecimal(*vc.Price); err != nil {
					fail(fmt.Sprintf("variants[%d].price", i), err)
				} else {
					variant.Price = &v
				}
			}
			if vc.Stock != nil {
				if v, err := countFromDecimal(*vc.Stock); err != nil {
					fail(fmt.Sprintf("variants[%d].stock", i), err)
				} else {
					variant.Stock = &v
				}
			}
			input.Variants = append(input.Variants, variant)
		}
	}

	var ratings []models.ProductReview
	if raw := cell(colRatings); raw != "" {
		var cells []ratingCell
		if err := json.Unmarshal([]byte(raw), &cells); err != nil {
			fail(colRatings, errors.New("must be a JSON array of objects"))
		}
		for i, rc := range cells {
			if !rc.Rating.IsInteger() || rc.Rating.LessThan(decimal.NewFromInt(1)) || rc.Rating.GreaterThan(decimal.NewFromInt(5)) {
				fail(fmt.Sprintf("ratings[%d].rating", i), errors.New("must be a whole number between 1 and 5"))
				continue
			}
			review := models.ProductReview{
				Rating:           int(rc.Rating.IntPart()),
				Content:          strings.TrimSpace(rc.Content),
				CustomerName:     strings.TrimSpace(rc.CustomerName),
				CustomerID:       rc.CustomerID,
				IsCustomerReview: rc.IsCustomerReview,
			}
			if rc.Date != nil {
				review.Date = rc.Date.UTC()
			}
			ratings = append(ratings, review)
		}
	}

	for _, fe := range input.Validate() {
		if unparsed[fe.Field] || (fe.Field == colSalePrice && unparsed[colPrice]) {
			continue
		}
		errs = append(errs, RowError{Row: rec.Row, Name: name, Field: fe.Field, Message: fe.Message})
	}
	if len(errs) > 0 {
		return Candidate{}, errs
	}
	return Candidate{Row: rec.Row, Input: input, Ratings: ratings}, nil
}

// ValidateSheet parses every record and returns either candidates or the complete error list.
func ValidateSheet(sheet *Sheet) ([]Candidate, []RowError) {
	candidates := make([]Candidate, 0, len(sheet.Records))
	var invalid []RowError
	for _, rec := range sheet.Records {
		candidate, errs := ParseRecord(rec)
		if len(errs) > 0 {
			invalid = append(invalid, errs...)
			continue
		}
		candidates = append(candidates, candidate)
	}
	if len(invalid) > 0 {
		return nil, invalid
	}
	return candidates, nil
}
