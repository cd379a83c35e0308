package migrate

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"
	"time"
)

var nonSlugRe = regexp.MustCompile(`[^a-z0-9]+`)

// now stamps new migration versions; tests pin it.
var now = func() time.Time { return time.Now().UTC() }

// scaffold is the body of a new migration. Names of the form create_<table>
// get a table skeleton with the columns every jewelmart table carries; any
// other name gets an empty statement pair.
var scaffold = template.Must(template.New("migration").Parse(`-- +goose Up
-- +goose StatementBegin
{{- if .Table}}
CREATE TABLE IF NOT EXISTS {{.Table}} (
    id UUID PRIMARY KEY,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
    -- CONSTRAINT chk_{{.Table}}_<column> CHECK (...), mirrored by a gorm check tag
);
{{- else}}
-- {{.Slug}}: money columns are NUMERIC(12,2), weights NUMERIC(10,3)
{{- end}}
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
{{- if .Table}}
DROP TABLE IF EXISTS {{.Table}};
{{- else}}
-- undo {{.Slug}}
{{- end}}
-- +goose StatementEnd
`))

type scaffoldData struct {
	Slug  string
	Table string
}

// CreateSQLMigration writes <dir>/<YYYYMMDDHHMMSS>_<slug>.sql from the
// project scaffold and returns its path. An existing file is never replaced.
func CreateSQLMigration(dir string, name string) (string, error) {
	if dir == "" {
		return "", errors.New("dir is required")
	}
	slug := slugify(name)
	if slug == "" {
		return "", fmt.Errorf("migration name %q has no usable characters", name)
	}

	data := scaffoldData{Slug: slug}
	if table, ok := strings.CutPrefix(slug, "create_"); ok && table != "" {
		data.Table = table
	}
	var body bytes.Buffer
	if err := scaffold.Execute(&body, data); err != nil {
		return "", fmt.Errorf("render migration: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}
	path := filepath.Join(dir, now().Format("20060102150405")+"_"+slug+".sql")
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("migration already exists: %s", path)
		}
		return "", fmt.Errorf("create migration %q: %w", path, err)
	}
	if _, err := f.Write(body.Bytes()); err != nil {
		f.Close()
		return "", fmt.Errorf("write migration %q: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close migration %q: %w", path, err)
	}
	return path, nil
}

// slugify lower-cases name and collapses every run of other characters to a
// single underscore.
func slugify(name string) string {
	return strings.Trim(nonSlugRe.ReplaceAllString(strings.ToLower(name), "_"), "_")
}
