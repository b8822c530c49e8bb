package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jonathan/cover-letter-studio/internal/store"
	"github.com/jonathan/cover-letter-studio/internal/types"
)

// -----------------------------------------------------------------------------
// Job Posting Methods
// -----------------------------------------------------------------------------

const jobPostingColumns = `id, job_title, company_name, job_description, requirements,
	company_vision, status, source_file, created_at`

// CreateJobPosting inserts a job posting
func (db *DB) CreateJobPosting(ctx context.Context, p *types.JobPosting) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO job_postings (`+jobPostingColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.JobTitle, p.CompanyName, p.JobDescription, p.Requirements,
		p.CompanyVision, p.Status, p.SourceFile, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create job posting: %w", err)
	}
	return nil
}

// GetJobPosting retrieves a job posting by its ID
func (db *DB) GetJobPosting(ctx context.Context, id string) (*types.JobPosting, error) {
	p, err := scanJobPosting(db.pool.QueryRow(ctx,
		`SELECT `+jobPostingColumns+` FROM job_postings WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, &store.NotFoundError{Resource: "job posting", ID: id}
		}
		return nil, fmt.Errorf("failed to get job posting: %w", err)
	}
	return p, nil
}

// ListJobPostings returns every posting, newest first
func (db *DB) ListJobPostings(ctx context.Context) ([]types.JobPosting, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+jobPostingColumns+` FROM job_postings ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list job postings: %w", err)
	}
	defer rows.Close()

	var out []types.JobPosting
	for rows.Next() {
		p, err := scanJobPosting(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job posting: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func scanJobPosting(row pgx.Row) (*types.JobPosting, error) {
	var p types.JobPosting
	err := row.Scan(&p.ID, &p.JobTitle, &p.CompanyName, &p.JobDescription, &p.Requirements,
		&p.CompanyVision, &p.Status, &p.SourceFile, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
