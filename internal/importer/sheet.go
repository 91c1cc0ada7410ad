package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Format is the spreadsheet encoding of an import file.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const (
	colName        = "name"
	colDescription = "description"
	colPrice       = "price"
	colSalePrice   = "salePrice"
	colStock       = "stock"
	colCategory    = "category"
	colBrand       = "brand"
	colFlavors     = "flavors"
	colVariants    = "variants"
	colFeatured    = "featured"
	colMostSelling = "mostSelling"
	colImages      = "images"
	colImageURL    = "imageUrl"
	colRatings     = "ratings"
)

// Columns lists every recognised header in template order.
var Columns = []string{
	colName, colDescription, colPrice, colSalePrice, colStock, colCategory, colBrand,
	colFlavors, colVariants, colFeatured, colMostSelling, colImages, colImageURL, colRatings,
}

var requiredColumns = []string{colName, colDescription, colPrice, colStock, colCategory, colBrand}

var headerKey = strings.NewReplacer("_", "", "-", "", " ", "")

var canonicalColumns = func() map[string]string {
	out := make(map[string]string, len(Columns))
	for _, c := range Columns {
		out[strings.ToLower(c)] = c
	}
	return out
}()

// FormatFromFilename picks the decoder from the file extension.
func FormatFromFilename(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported import file %q: expected .csv or .xlsx", filepath.Base(name))
	}
}

// Record is one data row keyed by canonical column name. Row is 1-based and excludes the header.
type Record struct {
	Row   int
	Cells map[string]string
}

// Sheet holds the data rows of an import file in file order.
type Sheet struct {
	Columns []string
	Records []Record
}

// ReadSheet decodes the first sheet of r. Unknown columns are ignored and blank rows are skipped.
func ReadSheet(r io.Reader, format Format) (*Sheet, error) {
	var rows [][]string
	switch format {
	case FormatCSV:
		reader := csv.NewReader(r)
		reader.FieldsPerRecord = -1
		reader.TrimLeadingSpace = true
		parsed, err := reader.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		rows = parsed
	case FormatXLSX:
		book, err := excelize.OpenReader(r)
		if err != nil {
			return nil, fmt.Errorf("open xlsx: %w", err)
		}
		defer book.Close()
		sheets := book.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("workbook has no sheets")
		}
		parsed, err := book.GetRows(sheets[0])
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
		}
		rows = parsed
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}

	if len(rows) == 0 {
		return nil, errors.New("file is empty")
	}
	header := make([]string, len(rows[0]))
	present := map[string]bool{}
	for i, raw := range rows[0] {
		key := headerKey.Replace(strings.ToLower(strings.TrimSpace(strings.TrimPrefix(raw, "\ufeff"))))
		if col, ok := canonicalColumns[key]; ok {
			header[i] = col
			present[col] = true
		}
	}
	var missing []string
	for _, col := range requiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	sheet := &Sheet{}
	for _, col := range header {
		if col != "" {
			sheet.Columns = append(sheet.Columns, col)
		}
	}
	for _, row := range rows[1:] {
		cells := make(map[string]string, len(header))
		blank := true
		for i, value := range row {
			if i >= len(header) || header[i] == "" {
				continue
			}
			value = strings.TrimSpace(value)
			if value != "" {
				blank = false
			}
			cells[header[i]] = value
		}
		if blank {
			continue
		}
		sheet.Records = append(sheet.Records, Record{Row: len(sheet.Records) + 1, Cells: cells})
	}
	return sheet, nil
}
