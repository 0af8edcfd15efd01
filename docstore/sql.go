// ABOUTME: Collection backed by the local SQLite documents table
// ABOUTME: Adapts db.DocumentsRepository to the Collection interface
package docstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/harperreed/keyaccounts/db"
)

type SQLCollection struct {
	repo *db.DocumentsRepository
	name string
}

func NewSQLCollection(database *sql.DB, name string) *SQLCollection {
	return &SQLCollection{repo: db.NewDocumentsRepository(database), name: name}
}

func (c *SQLCollection) Name() string { return c.name }

func (c *SQLCollection) Add(ctx context.Context, fields Fields) (string, error) {
	doc := &db.Document{Collection: c.name, ID: NewID(), Fields: fields}
	if err := c.repo.Create(ctx, doc); err != nil {
		return "", err
	}
	return doc.ID, nil
}

func (c *SQLCollection) Get(ctx context.Context, id string) (Document, error) {
	doc, err := c.repo.Get(ctx, c.name, id)
	if errors.Is(err, db.ErrDocumentNotFound) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, err
	}
	return Document{ID: doc.ID, Fields: doc.Fields}, nil
}

func (c *SQLCollection) List(ctx context.Context) ([]Document, error) {
	docs, err := c.repo.List(ctx, c.name)
	if err != nil {
		return nil, err
	}
	out := make([]Document, 0, len(docs))
	for _, d := range docs {
		out = append(out, Document{ID: d.ID, Fields: d.Fields})
	}
	return out, nil
}

func (c *SQLCollection) Update(ctx context.Context, id string, fields Fields) error {
	err := c.repo.Merge(ctx, c.name, id, fields)
	if errors.Is(err, db.ErrDocumentNotFound) {
		return ErrNotFound
	}
	return err
}

func (c *SQLCollection) Set(ctx context.Context, id string, fields Fields) error {
	if err := c.Delete(ctx, id); err != nil {
		return err
	}
	return c.repo.Create(ctx, &db.Document{Collection: c.name, ID: id, Fields: fields})
}

func (c *SQLCollection) Delete(ctx context.Context, id string) error {
	err := c.repo.Delete(ctx, c.name, id)
	if errors.Is(err, db.ErrDocumentNotFound) {
		return nil
	}
	return err
}
