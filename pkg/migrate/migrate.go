package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"text/tabwriter"
	"time"

	"github.com/pressly/goose/v3"
)

// DefaultDir is where new migration files are created, relative to the repo root.
const DefaultDir = "pkg/migrate/migrations"

//go:embed migrations/*.sql
var embedded embed.FS

// Embedded returns the migrations compiled into the binary.
func Embedded() fs.FS {
	sub, err := fs.Sub(embedded, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// Migrator runs goose against a postgres database. It never closes the
// connection it was given.
type Migrator struct {
	provider *goose.Provider
	out      io.Writer
}

// New builds a Migrator over fsys, or over the embedded files when fsys is nil.
// Progress lines go to out when it is non-nil.
func New(db *sql.DB, fsys fs.FS, out io.Writer) (*Migrator, error) {
	if db == nil {
		return nil, errors.New("migrate: db required")
	}
	if fsys == nil {
		fsys = Embedded()
	}
	if out == nil {
		out = io.Discard
	}
	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Migrator{provider: provider, out: out}, nil
}

// Exec runs one command: up, up-by-one, down, redo, reset, status or to.
// target is only read by "to".
func (m *Migrator) Exec(ctx context.Context, command string, target int64) error {
	switch command {
	case "up":
		results, err := m.provider.Up(ctx)
		return m.report("up", results, err)
	case "up-by-one":
		result, err := m.provider.UpByOne(ctx)
		if errors.Is(err, goose.ErrNoNextVersion) {
			fmt.Fprintln(m.out, "already at the latest version")
			return nil
		}
		return m.report("up-by-one", single(result), err)
	case "down":
		result, err := m.provider.Down(ctx)
		return m.report("down", single(result), err)
	case "redo":
		down, err := m.provider.Down(ctx)
		if err := m.report("redo", single(down), err); err != nil {
			return err
		}
		up, err := m.provider.UpByOne(ctx)
		return m.report("redo", single(up), err)
	case "reset":
		results, err := m.provider.DownTo(ctx, 0)
		return m.report("reset", results, err)
	case "status":
		return m.status(ctx)
	case "to":
		return m.migrateTo(ctx, target)
	}
	return fmt.Errorf("migrate: unknown command %q", command)
}

// Version returns the highest applied migration version.
func (m *Migrator) Version(ctx context.Context) (int64, error) {
	return m.provider.GetDBVersion(ctx)
}

func (m *Migrator) migrateTo(ctx context.Context, target int64) error {
	if target < 0 {
		return fmt.Errorf("migrate: invalid target version %d", target)
	}
	current, err := m.provider.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("migrate: read version: %w", err)
	}
	switch {
	case current < target:
		results, err := m.provider.UpTo(ctx, target)
		return m.report("to", results, err)
	case current > target:
		results, err := m.provider.DownTo(ctx, target)
		return m.report("to", results, err)
	}
	fmt.Fprintf(m.out, "already at version %d\n", current)
	return nil
}

func (m *Migrator) status(ctx context.Context) error {
	statuses, err := m.provider.Status(ctx)
	if err != nil {
		return fmt.Errorf("migrate status: %w", err)
	}
	tw := tabwriter.NewWriter(m.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tSTATE\tAPPLIED AT\tFILE")
	for _, st := range statuses {
		applied := "-"
		if !st.AppliedAt.IsZero() {
			applied = st.AppliedAt.UTC().Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", st.Source.Version, st.State, applied, st.Source.Path)
	}
	return tw.Flush()
}

func (m *Migrator) report(command string, results []*goose.MigrationResult, err error) error {
	for _, r := range results {
		fmt.Fprintf(m.out, "%-4s %d %s (%s)\n", r.Direction, r.Source.Version, r.Source.Path, r.Duration.Round(time.Millisecond))
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", command, err)
	}
	if len(results) == 0 {
		fmt.Fprintln(m.out, "no migrations to run")
	}
	return nil
}

func single(r *goose.MigrationResult) []*goose.MigrationResult {
	if r == nil {
		return nil
	}
	return []*goose.MigrationResult{r}
}
