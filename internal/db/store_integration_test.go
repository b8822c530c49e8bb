//go:build integration

package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/cover-letter-studio/internal/sections"
	"github.com/jonathan/cover-letter-studio/internal/store"
	"github.com/jonathan/cover-letter-studio/internal/types"
)

func getTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	db, err := Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

func TestIntegration_CoverLetter_Versioning(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	ctx := context.Background()

	doc, err := db.CreateCoverLetter(ctx, &types.CreateDraftRequest{
		CoverLetter: "Acme\nDear Hiring Manager,\nHello\nSincerely,\nJane",
		JobTitle:    "Integration Engineer",
		CompanyName: "Integration Corp",
	})
	if err != nil {
		t.Fatalf("CreateCoverLetter failed: %v", err)
	}
	defer func() { _ = db.DeleteCoverLetter(ctx, doc.VersionID) }()

	t.Run("update records history", func(t *testing.T) {
		if err := db.UpdateSection(ctx, doc.VersionID, sections.Body, "Body text", ""); err != nil {
			t.Fatalf("UpdateSection failed: %v", err)
		}
		history, err := db.SectionHistory(ctx, doc.VersionID, sections.Body)
		if err != nil {
			t.Fatalf("SectionHistory failed: %v", err)
		}
		if len(history) != 1 {
			t.Fatalf("history length = %d, want 1", len(history))
		}
	})

	t.Run("snapshot and revert", func(t *testing.T) {
		snapID, err := db.CreateSnapshot(ctx, doc.VersionID, sections.Body, "")
		if err != nil {
			t.Fatalf("CreateSnapshot failed: %v", err)
		}
		if err := db.UpdateSection(ctx, doc.VersionID, sections.Body, "Other", ""); err != nil {
			t.Fatalf("UpdateSection failed: %v", err)
		}
		if err := db.RevertSection(ctx, doc.VersionID, sections.Body, snapID); err != nil {
			t.Fatalf("RevertSection failed: %v", err)
		}
		got, err := db.GetCoverLetter(ctx, doc.VersionID)
		if err != nil {
			t.Fatalf("GetCoverLetter failed: %v", err)
		}
		if got.Sections["body"].Content != "Body text" {
			t.Errorf("body = %q, want %q", got.Sections["body"].Content, "Body text")
		}
	})

	t.Run("unknown version", func(t *testing.T) {
		_, err := db.GetCoverLetter(ctx, uuid.NewString())
		if !store.IsNotFound(err) {
			t.Errorf("expected not found, got %v", err)
		}
	})
}

func TestIntegration_JobPostingsAndDocuments(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	ctx := context.Background()

	id := "job_test_" + uuid.NewString()[:8]
	posting := &types.JobPosting{
		ID: id, JobTitle: "SRE", CompanyName: "Acme",
		Status: types.JobPostingStatusActive, CreatedAt: time.Now().UTC(),
	}
	if err := db.CreateJobPosting(ctx, posting); err != nil {
		t.Fatalf("CreateJobPosting failed: %v", err)
	}
	defer func() { _, _ = db.pool.Exec(ctx, "DELETE FROM job_postings WHERE id = $1", id) }()

	got, err := db.GetJobPosting(ctx, id)
	if err != nil {
		t.Fatalf("GetJobPosting failed: %v", err)
	}
	if got.JobTitle != "SRE" {
		t.Errorf("JobTitle = %q, want SRE", got.JobTitle)
	}

	docID := "doc_" + uuid.NewString()
	err = db.AddDocuments(ctx, []store.Document{{
		ID: docID, Kind: store.KindJobPosting, SourceID: id, Content: "SRE at Acme",
		Metadata: map[string]string{"company_name": "Acme"}, Embedding: []float32{0.1, 0.2},
		CreatedAt: time.Now().UTC(),
	}})
	if err != nil {
		t.Fatalf("AddDocuments failed: %v", err)
	}
	defer func() { _, _ = db.pool.Exec(ctx, "DELETE FROM context_documents WHERE id = $1", docID) }()

	docs, err := db.ListDocuments(ctx, store.KindJobPosting)
	if err != nil {
		t.Fatalf("ListDocuments failed: %v", err)
	}
	found := false
	for _, d := range docs {
		if d.ID == docID {
			found = true
			if len(d.Embedding) != 2 || d.Metadata["company_name"] != "Acme" {
				t.Errorf("document round trip mismatch: %+v", d)
			}
		}
	}
	if !found {
		t.Error("added document not listed")
	}
}
