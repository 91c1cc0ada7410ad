package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vaporhaus/storefront-backend/internal/bootstrap"
	"github.com/vaporhaus/storefront-backend/internal/catalog"
	"github.com/vaporhaus/storefront-backend/internal/importer"
	"github.com/vaporhaus/storefront-backend/pkg/outbox"
)

func main() {
	file := flag.String("file", "", "product spreadsheet to import (.csv or .xlsx)")
	dryRun := flag.Bool("dry-run", false, "validate every row without writing")
	template := flag.String("template", "", "write the blank xlsx template to this path and exit")
	flag.Parse()

	if *template != "" {
		if err := writeTemplate(*template); err != nil {
			fmt.Fprintf(os.Stderr, "write template: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("template written:", *template)
		return
	}
	if *file == "" {
		fmt.Fprintln(os.Stderr, "missing -file")
		os.Exit(2)
	}
	format, err := importer.FormatFromFilename(*file)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	proc := bootstrap.Start("importer", "importer")
	cfg, logg := proc.Config, proc.Logger
	ctx := logg.WithField(proc.Context(), "file", filepath.Base(*file))
	dbClient := proc.Database()

	conn := dbClient.DB()
	svc, err := importer.NewService(
		catalog.NewRepository(conn),
		dbClient,
		outbox.NewService(outbox.NewRepository(conn), logg),
		nil,
		logg,
		cfg.Import.MaxRows,
	)
	proc.Must("build importer", err)

	f, err := os.Open(*file)
	proc.Must("open input file", err)
	proc.OnClose("input file", f.Close)

	result, err := svc.Import(ctx, f, format, importer.RunOptions{
		Source: "cli:" + filepath.Base(*file),
		DryRun: *dryRun,
		Progress: func(done, total int, percent float64) {
			if done == total || done%100 == 0 {
				logg.Info(logg.WithFields(ctx, map[string]any{"done": done, "total": total, "percent": percent}), "import progress")
			}
		},
	})
	if result != nil {
		printResult(result)
	}
	if errors.Is(err, context.Canceled) {
		logg.Warn(ctx, "import interrupted")
		_ = proc.Close()
		os.Exit(1)
	}
	proc.Must("import products", err)
	_ = proc.Close()
	if len(result.Errors) > 0 {
		os.Exit(1)
	}
}

func writeTemplate(path string) error {
	raw, err := importer.BuildTemplate()
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

func printResult(result *importer.Result) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
}
