package recipes

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS recipes (
	position INTEGER PRIMARY KEY,
	name     TEXT NOT NULL,
	data     TEXT NOT NULL
)`

// recipeRow is one row of the recipes table. Data holds the recipe as JSON,
// embedding included.
type recipeRow struct {
	Position int    `db:"position"`
	Name     string `db:"name"`
	Data     string `db:"data"`
}

// SQLitePersister keeps recipes in a single SQLite table ordered by position.
type SQLitePersister struct {
	path string
	db   *sqlx.DB
}

// NewSQLitePersister opens or creates the database at path and makes sure the
// recipes table exists. Close releases the connection.
func NewSQLitePersister(ctx context.Context, path string) (*SQLitePersister, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "failed to create database directory")
		}
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}

	if err := configureSQLite(ctx, db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to configure database")
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to create recipes table")
	}

	return &SQLitePersister{path: path, db: db}, nil
}

// configureSQLite enables WAL mode and a busy timeout so a second process can
// read while the store is being written.
func configureSQLite(ctx context.Context, db *sqlx.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return errors.Wrapf(err, "failed to execute pragma: %s", pragma)
		}
	}

	db.SetMaxIdleConns(1)
	db.SetMaxOpenConns(1)

	var journalMode string
	if err := db.GetContext(ctx, &journalMode, "PRAGMA journal_mode"); err != nil {
		return errors.Wrap(err, "failed to query journal mode")
	}
	if strings.ToLower(journalMode) != "wal" {
		return errors.Errorf("WAL mode not enabled. Current mode: %s", journalMode)
	}
	return nil
}

// Load reads every recipe in position order.
func (p *SQLitePersister) Load(ctx context.Context) ([]Recipe, error) {
	var rows []recipeRow
	if err := p.db.SelectContext(ctx, &rows, `SELECT position, name, data FROM recipes ORDER BY position`); err != nil {
		return nil, errors.Wrapf(err, "failed to query recipes from %s", p.path)
	}

	recipes := make([]Recipe, 0, len(rows))
	for _, row := range rows {
		var recipe Recipe
		if err := json.Unmarshal([]byte(row.Data), &recipe); err != nil {
			return nil, errors.Wrapf(err, "failed to decode recipe %d (%s)", row.Position, row.Name)
		}
		recipes = append(recipes, recipe)
	}
	return recipes, nil
}

// Save replaces the table contents with recipes in one transaction.
func (p *SQLitePersister) Save(ctx context.Context, recipes []Recipe) error {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM recipes`); err != nil {
		return errors.Wrap(err, "failed to clear recipes")
	}

	for i, recipe := range recipes {
		data, err := json.Marshal(recipe)
		if err != nil {
			return errors.Wrapf(err, "failed to marshal recipe %q", recipe.Name)
		}
		row := recipeRow{Position: i, Name: recipe.Name, Data: string(data)}
		if _, err := tx.NamedExecContext(ctx, `INSERT INTO recipes (position, name, data) VALUES (:position, :name, :data)`, row); err != nil {
			return errors.Wrapf(err, "failed to store recipe %q", recipe.Name)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit recipes")
	}
	return nil
}

// Close closes the database.
func (p *SQLitePersister) Close() error {
	return p.db.Close()
}
