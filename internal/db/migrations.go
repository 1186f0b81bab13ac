package db

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"regexp"
	"slices"
	"strconv"
	"strings"

	embeddedmigrations "github.com/terraincognita07/chitra/migrations"
	"gorm.io/gorm"
)

var (
	schemaFileName   = regexp.MustCompile(`^(\d+)_[^/]*\.sql$`)
	addColumnPattern = regexp.MustCompile(`(?i)^ALTER\s+TABLE\s+(\S+)\s+ADD\s+COLUMN\s+(\S+)`)
)

var errSchemaFromNewerBuild = errors.New("database schema is newer than this build")

// schemaStep is one embedded NNN_name.sql file, already split into statements.
type schemaStep struct {
	Number     int
	Version    string
	File       string
	Statements []string
}

type schemaMigrationRow struct {
	Version string `gorm:"column:version"`
}

// upgradeSchema brings the database to the newest embedded step. Each step
// runs in its own transaction together with its schema_migrations row.
func upgradeSchema(database *gorm.DB) error {
	if err := database.Exec(`
CREATE TABLE IF NOT EXISTS schema_migrations (
  version TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);`).Error; err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	steps, err := embeddedSchemaSteps()
	if err != nil {
		return err
	}

	rows := make([]schemaMigrationRow, 0)
	if err := database.Raw(`SELECT version FROM schema_migrations`).Scan(&rows).Error; err != nil {
		return fmt.Errorf("load applied migration versions: %w", err)
	}
	applied := make(map[string]bool, len(rows))
	for _, row := range rows {
		applied[row.Version] = true
	}

	known := make(map[string]bool, len(steps))
	for _, step := range steps {
		known[step.Version] = true
	}
	for version := range applied {
		if !known[version] {
			return fmt.Errorf("%w: unknown applied migration %s", errSchemaFromNewerBuild, version)
		}
	}

	for _, step := range steps {
		if applied[step.Version] {
			continue
		}
		if err := database.Transaction(func(tx *gorm.DB) error {
			return runSchemaStep(tx, step)
		}); err != nil {
			return err
		}
		log.Printf("db: applied schema migration %s", step.File)
	}
	return nil
}

func runSchemaStep(tx *gorm.DB, step schemaStep) error {
	if len(step.Statements) == 0 {
		return fmt.Errorf("migration %s has no SQL statements", step.File)
	}

	for _, statement := range step.Statements {
		// Databases written before schema_migrations existed may already
		// carry a column a later step adds.
		if table, column, ok := addedColumn(statement); ok && tx.Migrator().HasColumn(table, column) {
			continue
		}
		if err := tx.Exec(statement).Error; err != nil {
			return fmt.Errorf("execute migration %s statement %q: %w", step.File, statement, err)
		}
	}

	if err := tx.Exec(
		`INSERT INTO schema_migrations(version, name) VALUES (?, ?)`,
		step.Version, step.File,
	).Error; err != nil {
		return fmt.Errorf("record migration %s: %w", step.File, err)
	}
	return nil
}

func embeddedSchemaSteps() ([]schemaStep, error) {
	entries, err := fs.ReadDir(embeddedmigrations.Files, ".")
	if err != nil {
		return nil, fmt.Errorf("read embedded migrations: %w", err)
	}

	steps := make([]schemaStep, 0, len(entries))
	byVersion := make(map[string]string, len(entries))
	for _, entry := range entries {
		match := schemaFileName.FindStringSubmatch(entry.Name())
		if entry.IsDir() || match == nil {
			continue
		}

		version := match[1]
		if previous, dup := byVersion[version]; dup {
			return nil, fmt.Errorf("duplicate migration version %s in %s and %s", version, previous, entry.Name())
		}
		byVersion[version] = entry.Name()

		number, err := strconv.Atoi(version)
		if err != nil {
			return nil, fmt.Errorf("parse migration version from %s: %w", entry.Name(), err)
		}
		body, err := fs.ReadFile(embeddedmigrations.Files, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}

		steps = append(steps, schemaStep{
			Number:     number,
			Version:    version,
			File:       entry.Name(),
			Statements: sqlStatements(string(body)),
		})
	}

	slices.SortFunc(steps, func(a, b schemaStep) int {
		return cmp.Or(cmp.Compare(a.Number, b.Number), strings.Compare(a.File, b.File))
	})
	return steps, nil
}

// sqlStatements splits on ';'. Migration files must not put semicolons
// inside string literals.
func sqlStatements(body string) []string {
	statements := make([]string, 0)
	for _, part := range strings.Split(body, ";") {
		if statement := strings.TrimSpace(part); statement != "" {
			statements = append(statements, statement)
		}
	}
	return statements
}

func addedColumn(statement string) (table string, column string, ok bool) {
	match := addColumnPattern.FindStringSubmatch(statement)
	if match == nil {
		return "", "", false
	}
	unquote := func(identifier string) string {
		return strings.Trim(identifier, "\"`[]")
	}
	return unquote(match[1]), unquote(match[2]), true
}

// SchemaVersion reports the highest applied migration number. Migrations are
// forward-only, so the value never decreases across opens.
func SchemaVersion(ctx context.Context, database *gorm.DB) (int, error) {
	var version struct {
		Value *int `gorm:"column:value"`
	}
	if err := database.WithContext(ctx).
		Raw(`SELECT MAX(CAST(version AS INTEGER)) AS value FROM schema_migrations`).
		Scan(&version).Error; err != nil {
		return 0, fmt.Errorf("load schema version: %w", err)
	}
	if version.Value == nil {
		return 0, nil
	}
	return *version.Value, nil
}
