// ABOUTME: Node, edge and command types for the stakeholder and territory map editors
// ABOUTME: Relationship labels come from a fixed five-value vocabulary
package graph

import (
	"errors"
	"fmt"

	"github.com/harperreed/keyaccounts/models"
)

var (
	ErrWrongPayload        = errors.New("drop payload does not match this map")
	ErrEmptyDrop           = errors.New("drop carries no record")
	ErrEdgesDisabled       = errors.New("this map does not support edges")
	ErrUnknownNode         = errors.New("unknown node")
	ErrUnknownEdge         = errors.New("unknown edge")
	ErrSelfLoop            = errors.New("cannot connect a node to itself")
	ErrUnknownRelationship = errors.New("unknown relationship")
)

type Kind string

const (
	KindStakeholder Kind = "stakeholder"
	KindAccount     Kind = "account"
)

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Position) Sub(o Position) Position {
	return Position{X: p.X - o.X, Y: p.Y - o.Y}
}

// Node wraps one dropped record. Exactly one of Contact or Account is set,
// matching Kind.
type Node struct {
	ID       string                `json:"id"`
	Kind     Kind                  `json:"kind"`
	Position Position              `json:"position"`
	Contact  *models.ContactPerson `json:"contact,omitempty"`
	Account  *models.Account       `json:"account,omitempty"`
	Selected bool                  `json:"selected,omitempty"`
}

// Label is the display name of the wrapped record.
func (n Node) Label() string {
	switch {
	case n.Contact != nil:
		return n.Contact.Name
	case n.Account != nil:
		return n.Account.Name
	}
	return n.ID
}

// Subtitle is the secondary display line: title and role for a contact,
// status for an account.
func (n Node) Subtitle() string {
	switch {
	case n.Contact != nil:
		return fmt.Sprintf("%s · %s", n.Contact.Title, n.Contact.Role)
	case n.Account != nil:
		return string(n.Account.Status)
	}
	return ""
}

type Relationship string

const (
	ReportsTo  Relationship = "Reports to"
	WorksWith  Relationship = "Works with"
	Influences Relationship = "Influences"
	Supports   Relationship = "Supports"
	Blocks     Relationship = "Blocks"
)

// DefaultRelationship labels newly drawn edges.
const DefaultRelationship = WorksWith

var relationships = []Relationship{ReportsTo, WorksWith, Influences, Supports, Blocks}

// Relationships returns the edge vocabulary in menu order.
func Relationships() []Relationship {
	return append([]Relationship(nil), relationships...)
}

func (r Relationship) Valid() bool {
	for _, v := range relationships {
		if r == v {
			return true
		}
	}
	return false
}

func ParseRelationship(s string) (Relationship, error) {
	r := Relationship(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRelationship, s)
	}
	return r, nil
}

type Edge struct {
	ID           string       `json:"id"`
	Source       string       `json:"source"`
	Target       string       `json:"target"`
	Relationship Relationship `json:"relationship"`
	Selected     bool         `json:"selected,omitempty"`
}

// EdgeID derives the identifier of the edge from source to target.
func EdgeID(source, target string) string {
	return "edge-" + source + "-" + target
}

// DropCommand places a record on the canvas. Pointer and Canvas are in the
// same coordinate space; the node lands at Pointer minus the canvas origin.
type DropCommand struct {
	Contact *models.ContactPerson
	Account *models.Account
	Pointer Position
	Canvas  Position
}

// Connection is a user-drawn link between two node ids.
type Connection struct {
	Source string
	Target string
}

type ChangeType string

const (
	ChangePosition ChangeType = "position"
	ChangeRemove   ChangeType = "remove"
	ChangeSelect   ChangeType = "select"
)

// NodeChange is one incremental edit. Position is absolute for ChangePosition;
// Delta, when non-zero, is added instead.
type NodeChange struct {
	Type     ChangeType
	ID       string
	Position Position
	Delta    Position
	Selected bool
}

type EdgeChange struct {
	Type     ChangeType
	ID       string
	Selected bool
}

// Snapshot is an immutable copy of an editor's graph.
type Snapshot struct {
	Variant string
	Nodes   []Node
	Edges   []Edge
}

func (s Snapshot) Node(id string) (Node, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

func (s Snapshot) Edge(id string) (Edge, bool) {
	for _, e := range s.Edges {
		if e.ID == id {
			return e, true
		}
	}
	return Edge{}, false
}
