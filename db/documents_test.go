// ABOUTME: Tests for the documents repository
// ABOUTME: Covers create, merge, list ordering and not-found handling
package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test db: %v", err)
	}
	database.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = database.Close() })

	if err := InitSchema(database); err != nil {
		t.Fatalf("Failed to init schema: %v", err)
	}
	return database
}

func TestDocumentsCreateAndGet(t *testing.T) {
	repo := NewDocumentsRepository(setupTestDB(t))
	ctx := context.Background()

	doc := &Document{Collection: "accounts", Fields: map[string]any{"name": "Acme", "arr": 1200.5}}
	if err := repo.Create(ctx, doc); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if doc.ID == "" {
		t.Fatal("expected generated ID")
	}

	got, err := repo.Get(ctx, "accounts", doc.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Fields["name"] != "Acme" {
		t.Errorf("expected name Acme, got %v", got.Fields["name"])
	}
	if got.Fields["arr"] != 1200.5 {
		t.Errorf("expected arr 1200.5, got %v", got.Fields["arr"])
	}
}

func TestDocumentsCreateRejectsMissingCollection(t *testing.T) {
	repo := NewDocumentsRepository(setupTestDB(t))
	if err := repo.Create(context.Background(), &Document{}); !errors.Is(err, ErrInvalidDocument) {
		t.Errorf("expected ErrInvalidDocument, got %v", err)
	}
}

func TestDocumentsMergeKeepsOtherFields(t *testing.T) {
	repo := NewDocumentsRepository(setupTestDB(t))
	ctx := context.Background()

	doc := &Document{Collection: "accounts", ID: "a1", Fields: map[string]any{"name": "Acme", "status": "Prospect"}}
	if err := repo.Create(ctx, doc); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := repo.Merge(ctx, "accounts", "a1", map[string]any{"status": "Active"}); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	got, err := repo.Get(ctx, "accounts", "a1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Fields["status"] != "Active" || got.Fields["name"] != "Acme" {
		t.Errorf("unexpected fields after merge: %v", got.Fields)
	}
}

func TestDocumentsNotFound(t *testing.T) {
	repo := NewDocumentsRepository(setupTestDB(t))
	ctx := context.Background()

	if _, err := repo.Get(ctx, "accounts", "missing"); !errors.Is(err, ErrDocumentNotFound) {
		t.Errorf("Get: expected ErrDocumentNotFound, got %v", err)
	}
	if err := repo.Merge(ctx, "accounts", "missing", map[string]any{"a": 1}); !errors.Is(err, ErrDocumentNotFound) {
		t.Errorf("Merge: expected ErrDocumentNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, "accounts", "missing"); !errors.Is(err, ErrDocumentNotFound) {
		t.Errorf("Delete: expected ErrDocumentNotFound, got %v", err)
	}
}

func TestDocumentsListScopedToCollection(t *testing.T) {
	repo := NewDocumentsRepository(setupTestDB(t))
	ctx := context.Background()

	for _, d := range []*Document{
		{Collection: "accounts", ID: "a1"},
		{Collection: "accounts", ID: "a2"},
		{Collection: "notes", ID: "n1"},
	} {
		if err := repo.Create(ctx, d); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	docs, err := repo.List(ctx, "accounts")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0].Fields == nil {
		t.Error("expected non-nil fields map")
	}

	if err := repo.Delete(ctx, "accounts", "a1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	docs, _ = repo.List(ctx, "accounts")
	if len(docs) != 1 || docs[0].ID != "a2" {
		t.Errorf("expected only a2 to remain, got %v", docs)
	}
}
