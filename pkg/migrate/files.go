package migrate

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"
	"time"
)

var (
	fileNameRe  = regexp.MustCompile(`^(\d{14})_([a-z0-9_]+)\.sql$`)
	unsafeChars = regexp.MustCompile(`[^a-z0-9]+`)
)

var sqlTemplate = template.Must(template.New("migration").Parse(`-- +goose Up
-- +goose StatementBegin
-- {{.}}
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
-- revert {{.}}
-- +goose StatementEnd
`))

// Validate checks every .sql file in fsys for a timestamped name, a unique
// version and an Up section that comes before its Down section.
func Validate(fsys fs.FS) error {
	names, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	versions := make(map[string]string, len(names))
	var problems []error
	for _, name := range names {
		match := fileNameRe.FindStringSubmatch(path.Base(name))
		if match == nil {
			problems = append(problems, fmt.Errorf("%s: expected YYYYMMDDHHMMSS_name.sql", name))
			continue
		}
		if prev, dup := versions[match[1]]; dup {
			problems = append(problems, fmt.Errorf("%s: version %s already used by %s", name, match[1], prev))
			continue
		}
		versions[match[1]] = name

		body, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		up := bytes.Index(body, []byte("-- +goose Up"))
		down := bytes.Index(body, []byte("-- +goose Down"))
		switch {
		case up < 0:
			problems = append(problems, fmt.Errorf("%s: missing -- +goose Up", name))
		case down < 0:
			problems = append(problems, fmt.Errorf("%s: missing -- +goose Down", name))
		case down < up:
			problems = append(problems, fmt.Errorf("%s: Down section precedes Up", name))
		}
	}
	return errors.Join(problems...)
}

// CreateSQLMigration writes an empty migration named after a slug of name and
// returns its path.
func CreateSQLMigration(dir, name string) (string, error) {
	if dir == "" {
		return "", errors.New("migration dir required")
	}
	slug := strings.Trim(unsafeChars.ReplaceAllString(strings.ToLower(name), "_"), "_")
	if slug == "" {
		return "", fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}

	var body bytes.Buffer
	if err := sqlTemplate.Execute(&body, slug); err != nil {
		return "", err
	}
	full := filepath.Join(dir, time.Now().UTC().Format("20060102150405")+"_"+slug+".sql")
	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create migration: %w", err)
	}
	if _, err := f.Write(body.Bytes()); err != nil {
		f.Close()
		return "", fmt.Errorf("write %s: %w", full, err)
	}
	return full, f.Close()
}
