// ABOUTME: Collection backed by the charm KV store
// ABOUTME: Documents live under "<collection>:<id>" keys as JSON objects
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/harperreed/keyaccounts/charm"
)

// KVCollection stores documents in charm KV. Writes sync to the charm server
// when the client has auto-sync enabled.
type KVCollection struct {
	client *charm.Client
	name   string
	// mu serializes read-modify-write in Update
	mu sync.Mutex
}

func NewKVCollection(client *charm.Client, name string) *KVCollection {
	return &KVCollection{client: client, name: name}
}

func (c *KVCollection) Name() string { return c.name }

func (c *KVCollection) key(id string) []byte {
	return []byte(c.name + ":" + id)
}

func (c *KVCollection) Add(_ context.Context, fields Fields) (string, error) {
	id := NewID()
	if err := c.put(id, fields); err != nil {
		return "", err
	}
	return id, nil
}

func (c *KVCollection) Get(_ context.Context, id string) (Document, error) {
	raw, err := c.client.Get(c.key(id))
	if errors.Is(err, charm.ErrNotFound) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("get %s/%s: %w", c.name, id, err)
	}

	fields := Fields{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Document{}, fmt.Errorf("decode %s/%s: %w", c.name, id, err)
	}
	return Document{ID: id, Fields: fields}, nil
}

// List returns documents ordered by identifier, which is creation order for
// store-assigned IDs.
func (c *KVCollection) List(ctx context.Context) ([]Document, error) {
	prefix := c.name + ":"
	keys, err := c.client.KeysWithPrefix([]byte(prefix))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c.name, err)
	}

	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, strings.TrimPrefix(string(k), prefix))
	}
	sort.Strings(ids)

	docs := make([]Document, 0, len(ids))
	for _, id := range ids {
		doc, err := c.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			// deleted between Keys and Get
			continue
		}
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (c *KVCollection) Update(ctx context.Context, id string, fields Fields) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	doc, err := c.Get(ctx, id)
	if err != nil {
		return err
	}
	merged := cloneFields(doc.Fields)
	for k, v := range fields {
		merged[k] = v
	}
	return c.put(id, merged)
}

func (c *KVCollection) Set(_ context.Context, id string, fields Fields) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.put(id, fields)
}

func (c *KVCollection) Delete(_ context.Context, id string) error {
	if err := c.client.Delete(c.key(id)); err != nil {
		return fmt.Errorf("delete %s/%s: %w", c.name, id, err)
	}
	return nil
}

func (c *KVCollection) put(id string, fields Fields) error {
	if fields == nil {
		fields = Fields{}
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", c.name, id, err)
	}
	if err := c.client.Set(c.key(id), raw); err != nil {
		return fmt.Errorf("put %s/%s: %w", c.name, id, err)
	}
	return nil
}
