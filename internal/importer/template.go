package importer

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	templateSheet = "Products"
	notesSheet    = "Notes"
)

// moneyNote is repeated wherever a price is entered. The admin JSON API takes
// minor units, spreadsheets take major units.
const moneyNote = "Major units with at most two decimals: 19.99 is stored as 1999. Do not enter paise or cents."

// columnNotes are written to the Notes sheet and as comments on the money headers.
var columnNotes = [][2]string{
	{colPrice, moneyNote},
	{colSalePrice, "Optional. " + moneyNote + " Must be below price."},
	{colStock, "Whole number, 0 or more."},
	{colCategory, "One of PODKITS, DISPOSABLE, NIC & SALTS, Accessories, MOST SELLING or their slugs."},
	{colFlavors, "Comma separated flavor names."},
	{colVariants, `JSON array like [{"name":"Black","price":19.99,"stock":5}]. Variant price is in major units too.`},
	{colRatings, `JSON array like [{"rating":5,"content":"Great"}]. Rating 1 to 5.`},
}

var templateRows = [][]any{
	{
		"Sample Pod Kit", "A refillable pod kit with adjustable airflow", "19.99", "17.99", 50, "podkits", "VapeX",
		"Mango, Strawberry, Blueberry",
		`[{"name":"Black","price":19.99,"stock":25},{"name":"Silver","price":21.99,"stock":25}]`,
		"true", "false",
		`["https://example.com/pod-kit.jpg"]`, "https://example.com/pod-kit.jpg",
		`[{"rating":5,"content":"Great airflow","customerName":"Store team"}]`,
	},
	{
		"Disposable Vape", "Disposable vape with 5000 puffs", "9.99", "", 100, "disposable", "VapeX",
		"Mint, Watermelon", "", "false", "true", "", "https://example.com/disposable.jpg", "",
	},
}

// Template renders the import workbook with a header row and two sample products.
func (s *service) Template() ([]byte, error) {
	return BuildTemplate()
}

func BuildTemplate() ([]byte, error) {
	book := excelize.NewFile()
	defer book.Close()

	if err := book.SetSheetName("Sheet1", templateSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	header := make([]any, len(Columns))
	for i, col := range Columns {
		header[i] = col
	}
	if err := book.SetSheetRow(templateSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	if err := annotate(book); err != nil {
		return nil, err
	}
	for i, row := range templateRows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := row
		if err := book.SetSheetRow(templateSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write sample row %d: %w", i+1, err)
		}
	}
	buf, err := book.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}
	return buf.Bytes(), nil
}

// annotate adds header comments on the money columns and a Notes sheet after the
// product sheet, which the importer ignores.
func annotate(book *excelize.File) error {
	headerCell := func(col string) (string, error) {
		for i, c := range Columns {
			if c == col {
				return excelize.CoordinatesToCellName(i+1, 1)
			}
		}
		return "", fmt.Errorf("unknown column %q", col)
	}
	for _, col := range []string{colPrice, colSalePrice, colVariants} {
		cell, err := headerCell(col)
		if err != nil {
			return err
		}
		if err := book.AddComment(templateSheet, excelize.Comment{
			Cell:      cell,
			Author:    "Storefront",
			Paragraph: []excelize.RichTextRun{{Text: moneyNote}},
		}); err != nil {
			return fmt.Errorf("comment %s: %w", col, err)
		}
	}

	if _, err := book.NewSheet(notesSheet); err != nil {
		return fmt.Errorf("add notes sheet: %w", err)
	}
	rows := [][]any{{"column", "format"}}
	for _, note := range columnNotes {
		rows = append(rows, []any{note[0], note[1]})
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := book.SetSheetRow(notesSheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("write notes: %w", err)
		}
	}
	return nil
}
