package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jonathan/cover-letter-studio/internal/sections"
	"github.com/jonathan/cover-letter-studio/internal/store"
	"github.com/jonathan/cover-letter-studio/internal/types"
)

// -----------------------------------------------------------------------------
// Cover Letter Methods
// -----------------------------------------------------------------------------

// Cover letters are stored as one JSONB document per version. Mutations
// lock the row, apply the shared versioning rules from the store package
// and write the document back in the same transaction.

// CreateCoverLetter parses and stores a new draft
func (db *DB) CreateCoverLetter(ctx context.Context, req *types.CreateDraftRequest) (*types.CoverLetter, error) {
	doc := store.NewCoverLetter(req, db.now())

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cover letter: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO cover_letters (version_id, job_title, company_name, document, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		doc.VersionID, doc.JobTitle, doc.CompanyName, data, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cover letter: %w", err)
	}
	return doc, nil
}

// GetCoverLetter loads one version
func (db *DB) GetCoverLetter(ctx context.Context, versionID string) (*types.CoverLetter, error) {
	return loadCoverLetter(db.pool.QueryRow(ctx,
		`SELECT document FROM cover_letters WHERE version_id = $1`, versionID), versionID)
}

// ListCoverLetters returns every version, most recently updated first
func (db *DB) ListCoverLetters(ctx context.Context) ([]types.VersionSummary, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT document FROM cover_letters ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list cover letters: %w", err)
	}
	defer rows.Close()

	var out []types.VersionSummary
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan cover letter: %w", err)
		}
		var doc types.CoverLetter
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode cover letter: %w", err)
		}
		out = append(out, store.Summary(&doc))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list cover letters: %w", err)
	}
	return out, nil
}

// DeleteCoverLetter removes a version
func (db *DB) DeleteCoverLetter(ctx context.Context, versionID string) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM cover_letters WHERE version_id = $1`, versionID)
	if err != nil {
		return fmt.Errorf("failed to delete cover letter: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &store.NotFoundError{Resource: "cover letter", ID: versionID}
	}
	return nil
}

// UpdateSection replaces one section, recording the previous content
func (db *DB) UpdateSection(ctx context.Context, versionID string, name sections.Name, content, description string) error {
	return db.mutate(ctx, versionID, func(doc *types.CoverLetter, now time.Time) error {
		return store.ApplyUpdate(doc, name, content, description, now)
	})
}

// SaveAllSections replaces every section without recording history
func (db *DB) SaveAllSections(ctx context.Context, versionID string, contents map[string]string) error {
	return db.mutate(ctx, versionID, func(doc *types.CoverLetter, now time.Time) error {
		store.ApplySaveAll(doc, contents, now)
		return nil
	})
}

// CreateSnapshot records the current content of a section
func (db *DB) CreateSnapshot(ctx context.Context, versionID string, name sections.Name, description string) (string, error) {
	var id string
	err := db.mutate(ctx, versionID, func(doc *types.CoverLetter, now time.Time) error {
		var err error
		id, err = store.ApplySnapshot(doc, name, description, now)
		return err
	})
	return id, err
}

// RevertSection restores a section to a snapshot
func (db *DB) RevertSection(ctx context.Context, versionID string, name sections.Name, targetVersionID string) error {
	return db.mutate(ctx, versionID, func(doc *types.CoverLetter, now time.Time) error {
		return store.ApplyRevert(doc, name, targetVersionID, now)
	})
}

// SectionHistory returns the snapshots of a section, newest first
func (db *DB) SectionHistory(ctx context.Context, versionID string, name sections.Name) ([]types.SectionSnapshot, error) {
	doc, err := db.GetCoverLetter(ctx, versionID)
	if err != nil {
		return nil, err
	}
	return store.History(doc, name)
}

func (db *DB) mutate(ctx context.Context, versionID string, fn func(doc *types.CoverLetter, now time.Time) error) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	doc, err := loadCoverLetter(tx.QueryRow(ctx,
		`SELECT document FROM cover_letters WHERE version_id = $1 FOR UPDATE`, versionID), versionID)
	if err != nil {
		return err
	}

	if err := fn(doc, db.now()); err != nil {
		return err
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal cover letter: %w", err)
	}
	_, err = tx.Exec(ctx,
		`UPDATE cover_letters SET document = $1, updated_at = $2 WHERE version_id = $3`,
		data, doc.UpdatedAt, versionID,
	)
	if err != nil {
		return fmt.Errorf("failed to update cover letter: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit cover letter update: %w", err)
	}
	return nil
}

func loadCoverLetter(row pgx.Row, versionID string) (*types.CoverLetter, error) {
	var data []byte
	if err := row.Scan(&data); err != nil {
		if isNoRows(err) {
			return nil, &store.NotFoundError{Resource: "cover letter", ID: versionID}
		}
		return nil, fmt.Errorf("failed to get cover letter: %w", err)
	}

	var doc types.CoverLetter
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode cover letter: %w", err)
	}
	return &doc, nil
}
