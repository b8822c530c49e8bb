package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jonathan/cover-letter-studio/internal/store"
	"github.com/jonathan/cover-letter-studio/internal/types"
)

// -----------------------------------------------------------------------------
// Context Document Methods
// -----------------------------------------------------------------------------

// AddDocuments inserts context documents in one batch
func (db *DB) AddDocuments(ctx context.Context, docs []store.Document) error {
	if len(docs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, d := range docs {
		metadata, err := json.Marshal(d.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata for %s: %w", d.ID, err)
		}
		batch.Queue(
			`INSERT INTO context_documents (id, kind, source_id, content, metadata, embedding, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (id) DO UPDATE SET content = $4, metadata = $5, embedding = $6`,
			d.ID, d.Kind, d.SourceID, d.Content, metadata, d.Embedding, d.CreatedAt,
		)
	}

	results := db.pool.SendBatch(ctx, batch)
	defer func() { _ = results.Close() }()
	for range docs {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to add context document: %w", err)
		}
	}
	return nil
}

// ListDocuments returns documents of one kind, or all when kind is empty
func (db *DB) ListDocuments(ctx context.Context, kind string) ([]store.Document, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, kind, source_id, content, metadata, embedding, created_at
		 FROM context_documents
		 WHERE $1 = '' OR kind = $1
		 ORDER BY created_at`, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list context documents: %w", err)
	}
	defer rows.Close()

	var out []store.Document
	for rows.Next() {
		var d store.Document
		var metadata []byte
		if err := rows.Scan(&d.ID, &d.Kind, &d.SourceID, &d.Content, &metadata, &d.Embedding, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan context document: %w", err)
		}
		if metadata != nil {
			_ = json.Unmarshal(metadata, &d.Metadata)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// -----------------------------------------------------------------------------
// PDF File Methods
// -----------------------------------------------------------------------------

// AddPDFFile records an uploaded PDF, replacing one with the same name
func (db *DB) AddPDFFile(ctx context.Context, f types.PDFFile) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO pdf_files (filename, size_bytes, pages, uploaded_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (filename) DO UPDATE SET size_bytes = $2, pages = $3, uploaded_at = $4`,
		f.Filename, f.SizeBytes, f.Pages, f.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record pdf file: %w", err)
	}
	return nil
}

// ListPDFFiles returns uploaded PDFs, newest first
func (db *DB) ListPDFFiles(ctx context.Context) ([]types.PDFFile, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT filename, size_bytes, pages, uploaded_at FROM pdf_files ORDER BY uploaded_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list pdf files: %w", err)
	}
	defer rows.Close()

	var out []types.PDFFile
	for rows.Next() {
		var f types.PDFFile
		if err := rows.Scan(&f.Filename, &f.SizeBytes, &f.Pages, &f.UploadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pdf file: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
