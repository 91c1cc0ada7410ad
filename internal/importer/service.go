// Package importer loads products in bulk from CSV or XLSX spreadsheets.
package importer

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/vaporhaus/storefront-backend/internal/catalog"
	"github.com/vaporhaus/storefront-backend/pkg/db/models"
	"github.com/vaporhaus/storefront-backend/pkg/enums"
	pkgerrors "github.com/vaporhaus/storefront-backend/pkg/errors"
	"github.com/vaporhaus/storefront-backend/pkg/logger"
	"github.com/vaporhaus/storefront-backend/pkg/metrics"
	"github.com/vaporhaus/storefront-backend/pkg/outbox"
	"github.com/vaporhaus/storefront-backend/pkg/outbox/payloads"
)

// ProgressFunc observes the import after every written row.
type ProgressFunc func(done, total int, percent float64)

type RunOptions struct {
	// Source labels the upload in logs and the products_imported event.
	Source   string
	DryRun   bool
	Progress ProgressFunc
}

type Result struct {
	ImportID uuid.UUID  `json:"importId"`
	Total    int        `json:"total"`
	Imported int        `json:"imported"`
	Progress float64    `json:"progress"`
	DryRun   bool       `json:"dryRun,omitempty"`
	Errors   []RowError `json:"errors"`
}

type Service interface {
	Import(ctx context.Context, r io.Reader, format Format, opts RunOptions) (*Result, error)
	Template() ([]byte, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	products *catalog.Repository
	tx       txRunner
	emitter  outbox.Emitter
	metrics  *metrics.CommerceMetrics
	logg     *logger.Logger
	maxRows  int
}

// NewService wires the importer. maxRows <= 0 disables the row cap.
func NewService(products *catalog.Repository, tx txRunner, emitter outbox.Emitter, m *metrics.CommerceMetrics, logg *logger.Logger, maxRows int) (Service, error) {
	if products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{products: products, tx: tx, emitter: emitter, metrics: m, logg: logg, maxRows: maxRows}, nil
}

// Import validates the whole file before writing anything, then writes rows one at a time.
// A row that fails to write is recorded and the remaining rows still run.
func (s *service) Import(ctx context.Context, r io.Reader, format Format, opts RunOptions) (*Result, error) {
	sheet, err := ReadSheet(r, format)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}
	result := &Result{ImportID: uuid.New(), Total: len(sheet.Records), DryRun: opts.DryRun, Errors: []RowError{}}
	if result.Total == 0 {
		return nil, pkgerrors.Validation("import file has no product rows")
	}
	if s.maxRows > 0 && result.Total > s.maxRows {
		return nil, pkgerrors.Validation(fmt.Sprintf("import file has %d rows; the limit is %d", result.Total, s.maxRows))
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"import_id": result.ImportID.String(),
		"source":    opts.Source,
		"rows":      result.Total,
	})

	candidates, invalid := ValidateSheet(sheet)
	if len(invalid) > 0 {
		result.Errors = invalid
		return result, rejection(invalid)
	}
	if opts.DryRun {
		return result, nil
	}

	for i, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := s.writeRow(ctx, candidate); err != nil {
			s.logg.Error(s.logg.WithField(ctx, "row", candidate.Row), "import row failed", err)
			result.Errors = append(result.Errors, RowError{Row: candidate.Row, Name: candidate.Input.Name, Message: err.Error()})
		} else {
			result.Imported++
		}
		result.Progress = percent(i+1, len(candidates))
		if opts.Progress != nil {
			opts.Progress(i+1, len(candidates), result.Progress)
		}
	}

	failed := len(result.Errors)
	s.metrics.ImportRows(result.Imported, failed)
	event := outbox.DomainEvent{
		EventType:     enums.EventProductsImported,
		AggregateType: enums.AggregateProduct,
		AggregateID:   result.ImportID,
		Data: payloads.ProductsImportedEvent{
			ImportID:  result.ImportID,
			Succeeded: result.Imported,
			Failed:    failed,
			Source:    opts.Source,
		},
	}
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error { return s.emitter.Emit(ctx, tx, event) }); err != nil {
		s.logg.Error(ctx, "queue products_imported event", err)
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"imported": result.Imported, "failed": failed}), "import finished")
	return result, nil
}

func (s *service) writeRow(ctx context.Context, candidate Candidate) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		product := &models.Product{}
		candidate.Input.ApplyTo(product)
		if err := s.products.WithTx(tx).Create(ctx, product); err != nil {
			return err
		}
		if len(candidate.Ratings) == 0 {
			return nil
		}
		reviews := make([]models.ProductReview, len(candidate.Ratings))
		for i, rating := range candidate.Ratings {
			rating.ProductID = product.ID
			reviews[i] = rating
		}
		return tx.WithContext(ctx).Create(&reviews).Error
	})
}

func rejection(invalid []RowError) error {
	var combined error
	rows := map[int]struct{}{}
	for _, e := range invalid {
		combined = multierr.Append(combined, e)
		rows[e.Row] = struct{}{}
	}
	msg := fmt.Sprintf("%d of the rows are invalid; nothing was imported", len(rows))
	return pkgerrors.Wrap(pkgerrors.CodeValidation, combined, msg).WithDetails(invalid)
}

func percent(done, total int) float64 {
	if total == 0 {
		return 100
	}
	return math.Round(float64(done)/float64(total)*1000) / 10
}
