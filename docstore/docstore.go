// ABOUTME: Document-store abstraction the account records are read and written through
// ABOUTME: Store-assigned ULID identifiers, merge updates and a store-native timestamp encoding
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ErrNotFound is returned by Get and Update when the document does not exist.
var ErrNotFound = errors.New("document not found")

// Fields is the top-level field map of a document.
type Fields map[string]any

// Document is a stored document and its identifier.
type Document struct {
	ID     string
	Fields Fields
}

// Collection is a named set of documents.
//
// Update merges top-level fields. Delete of a missing document succeeds.
type Collection interface {
	Name() string
	Add(ctx context.Context, fields Fields) (string, error)
	Get(ctx context.Context, id string) (Document, error)
	List(ctx context.Context) ([]Document, error)
	Update(ctx context.Context, id string, fields Fields) error
	// Set writes the document under id, replacing any existing fields.
	Set(ctx context.Context, id string, fields Fields) error
	Delete(ctx context.Context, id string) error
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
)

// NewID generates a store identifier. IDs sort by creation time.
func NewID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// Timestamp is the store-native time representation.
type Timestamp struct {
	Seconds     int64 `json:"_seconds"`
	Nanoseconds int64 `json:"_nanoseconds"`
}

func TimestampOf(t time.Time) Timestamp {
	return Timestamp{Seconds: t.Unix(), Nanoseconds: int64(t.Nanosecond())}
}

// Time converts to a UTC time.Time.
func (ts Timestamp) Time() time.Time {
	return time.Unix(ts.Seconds, ts.Nanoseconds).UTC()
}

func (ts Timestamp) IsZero() bool {
	return ts.Seconds == 0 && ts.Nanoseconds == 0
}

// UnmarshalJSON accepts the native object form and, for documents written
// before timestamps were normalized, an RFC 3339 string.
func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*ts = Timestamp{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("timestamp: %w", err)
		}
		*ts = TimestampOf(t)
		return nil
	}
	type native Timestamp
	var n native
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	*ts = Timestamp(n)
	return nil
}

// Encode converts a struct into document fields using its JSON tags.
func Encode(v any) (Fields, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	fields := Fields{}
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// Decode fills dst from the document's fields using dst's JSON tags.
func Decode(doc Document, dst any) error {
	b, err := json.Marshal(doc.Fields)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("decode document %s: %w", doc.ID, err)
	}
	return nil
}

// Where returns the documents whose field equals value.
func Where(ctx context.Context, c Collection, field string, value any) ([]Document, error) {
	docs, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	want := fmt.Sprint(value)
	var out []Document
	for _, d := range docs {
		if v, ok := d.Fields[field]; ok && fmt.Sprint(v) == want {
			out = append(out, d)
		}
	}
	return out, nil
}

func cloneFields(f Fields) Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}
