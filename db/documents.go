// ABOUTME: Repository for schemaless documents grouped into named collections
// ABOUTME: Fields are stored as a JSON object; updates merge top-level keys

package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidDocument  = errors.New("invalid document")
)

// Document is one row of the documents table.
type Document struct {
	Collection string
	ID         string
	Fields     map[string]any
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// DocumentsRepository provides CRUD operations over the documents table.
type DocumentsRepository struct {
	db *sql.DB
}

func NewDocumentsRepository(db *sql.DB) *DocumentsRepository {
	return &DocumentsRepository{db: db}
}

// Create inserts doc. An empty ID is filled with a fresh UUID.
func (r *DocumentsRepository) Create(ctx context.Context, doc *Document) error {
	if doc == nil || doc.Collection == "" {
		return ErrInvalidDocument
	}

	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	fieldsJSON, err := encodeFields(doc.Fields)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO documents (collection, id, fields, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		doc.Collection,
		doc.ID,
		fieldsJSON,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	return err
}

// Get retrieves a document by collection and ID.
func (r *DocumentsRepository) Get(ctx context.Context, collection, id string) (*Document, error) {
	query := `
		SELECT collection, id, fields, created_at, updated_at
		FROM documents
		WHERE collection = ? AND id = ?
	`

	doc, err := scanDocument(r.db.QueryRowContext(ctx, query, collection, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Merge overwrites the given top-level fields of an existing document, leaving
// the others untouched.
func (r *DocumentsRepository) Merge(ctx context.Context, collection, id string, fields map[string]any) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var raw []byte
	err = tx.QueryRowContext(ctx,
		`SELECT fields FROM documents WHERE collection = ? AND id = ?`,
		collection, id,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrDocumentNotFound
	}
	if err != nil {
		return err
	}

	current, err := decodeFields(raw)
	if err != nil {
		return err
	}
	for k, v := range fields {
		current[k] = v
	}

	merged, err := encodeFields(current)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE documents SET fields = ?, updated_at = ? WHERE collection = ? AND id = ?`,
		merged, time.Now().UTC(), collection, id,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// Delete deletes a document by collection and ID.
func (r *DocumentsRepository) Delete(ctx context.Context, collection, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id = ?`,
		collection, id,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrDocumentNotFound
	}

	return nil
}

// List retrieves every document in a collection, oldest first.
func (r *DocumentsRepository) List(ctx context.Context, collection string) ([]*Document, error) {
	query := `
		SELECT collection, id, fields, created_at, updated_at
		FROM documents
		WHERE collection = ?
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, collection)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	docs := make([]*Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return docs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*Document, error) {
	var doc Document
	var fieldsJSON []byte

	if err := row.Scan(&doc.Collection, &doc.ID, &fieldsJSON, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		return nil, err
	}

	fields, err := decodeFields(fieldsJSON)
	if err != nil {
		return nil, fmt.Errorf("document %s/%s: %w", doc.Collection, doc.ID, err)
	}
	doc.Fields = fields

	return &doc, nil
}

func encodeFields(fields map[string]any) (string, error) {
	if fields == nil {
		return "{}", nil
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeFields(raw []byte) (map[string]any, error) {
	fields := make(map[string]any)
	if len(raw) == 0 || string(raw) == "null" {
		return fields, nil
	}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}
