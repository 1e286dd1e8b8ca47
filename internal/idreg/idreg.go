// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package idreg persists export ID assignments in SQLite so that repeated
// exports of the same manuscript produce stable element IDs.
// Implements: prd003-jats-export (R6: stable ID registry).
package idreg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/beevik/etree"
	_ "github.com/mattn/go-sqlite3"
)

// Registry assigns "tag-N" ids like the default generator, but records each
// assignment keyed by the element's original id. Re-exporting a manuscript
// replays the recorded assignments, so downstream links keep working even
// when elements are reordered.
type Registry struct {
	db           *sql.DB
	manuscriptID string
}

// NewRegistry opens or creates the registry database at path. The schema is
// created if it does not exist.
func NewRegistry(path, manuscriptID string) (*Registry, error) {
	if manuscriptID == "" {
		return nil, fmt.Errorf("registry requires a manuscript id")
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening registry database: %w", err)
	}

	r := &Registry{db: db, manuscriptID: manuscriptID}
	if err := r.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return r, nil
}

// Close releases the database connection.
func (r *Registry) Close() error {
	return r.db.Close()
}

func (r *Registry) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS assignments (
			manuscript_id TEXT NOT NULL,
			original_id TEXT NOT NULL,
			assigned_id TEXT NOT NULL,
			PRIMARY KEY (manuscript_id, original_id)
		)`,
		`CREATE TABLE IF NOT EXISTS counters (
			manuscript_id TEXT NOT NULL,
			tag TEXT NOT NULL,
			next INTEGER NOT NULL,
			PRIMARY KEY (manuscript_id, tag)
		)`,
	}
	for _, stmt := range statements {
		if _, err := r.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// GenerateID returns the id recorded for the element's original id, minting
// and recording a new "tag-N" assignment on first sight. Elements without an
// original id always mint a fresh one.
func (r *Registry) GenerateID(ctx context.Context, el *etree.Element) (string, error) {
	original := el.SelectAttrValue("id", "")

	if original != "" {
		var assigned string
		err := r.db.QueryRowContext(ctx,
			`SELECT assigned_id FROM assignments WHERE manuscript_id = ? AND original_id = ?`,
			r.manuscriptID, original,
		).Scan(&assigned)
		if err == nil {
			return assigned, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("looking up assignment for %s: %w", original, err)
		}
	}

	assigned, err := r.mint(ctx, el.Tag)
	if err != nil {
		return "", err
	}

	if original != "" {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO assignments (manuscript_id, original_id, assigned_id) VALUES (?, ?, ?)`,
			r.manuscriptID, original, assigned,
		); err != nil {
			return "", fmt.Errorf("recording assignment for %s: %w", original, err)
		}
	}
	return assigned, nil
}

func (r *Registry) mint(ctx context.Context, tag string) (string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	var next int
	err = tx.QueryRowContext(ctx,
		`SELECT next FROM counters WHERE manuscript_id = ? AND tag = ?`,
		r.manuscriptID, tag,
	).Scan(&next)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		next = 1
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO counters (manuscript_id, tag, next) VALUES (?, ?, ?)`,
			r.manuscriptID, tag, next+1,
		); err != nil {
			return "", fmt.Errorf("initializing counter for %s: %w", tag, err)
		}
	case err != nil:
		return "", fmt.Errorf("reading counter for %s: %w", tag, err)
	default:
		if _, err := tx.ExecContext(ctx,
			`UPDATE counters SET next = ? WHERE manuscript_id = ? AND tag = ?`,
			next+1, r.manuscriptID, tag,
		); err != nil {
			return "", fmt.Errorf("advancing counter for %s: %w", tag, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing counter: %w", err)
	}
	return fmt.Sprintf("%s-%d", tag, next), nil
}
