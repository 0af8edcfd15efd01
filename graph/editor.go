// ABOUTME: Editable node graph shared by the stakeholder and territory maps
// ABOUTME: Commands and change records produce a new graph that replaces the old one atomically
package graph

import (
	"fmt"
	"sync"

	"github.com/harperreed/keyaccounts/observe"
)

// variant captures what differs between the two maps.
type variant struct {
	name  string
	kind  Kind
	edges bool
	// node builds the node a drop would add.
	node func(cmd DropCommand) (Node, error)
	// same reports whether an existing node already represents the dropped record.
	same func(existing Node, cmd DropCommand) bool
}

var stakeholderVariant = variant{
	name:  "stakeholder",
	kind:  KindStakeholder,
	edges: true,
	node: func(cmd DropCommand) (Node, error) {
		if cmd.Account != nil {
			return Node{}, ErrWrongPayload
		}
		if cmd.Contact == nil {
			return Node{}, ErrEmptyDrop
		}
		c := cmd.Contact.Clone()
		return Node{ID: "stakeholder-" + c.ID, Kind: KindStakeholder, Contact: &c}, nil
	},
	// contacts match by name and title, not by identifier
	same: func(existing Node, cmd DropCommand) bool {
		return existing.Contact != nil &&
			existing.Contact.Name == cmd.Contact.Name &&
			existing.Contact.Title == cmd.Contact.Title
	},
}

var territoryVariant = variant{
	name:  "territory",
	kind:  KindAccount,
	edges: false,
	node: func(cmd DropCommand) (Node, error) {
		if cmd.Contact != nil {
			return Node{}, ErrWrongPayload
		}
		if cmd.Account == nil {
			return Node{}, ErrEmptyDrop
		}
		a := cmd.Account.Clone()
		return Node{ID: "account-" + a.ID, Kind: KindAccount, Account: &a}, nil
	},
	same: func(existing Node, cmd DropCommand) bool {
		return existing.Account != nil && existing.Account.ID == cmd.Account.ID
	},
}

// Editor holds one map's nodes and edges. Nothing it holds is persisted.
// It is safe for concurrent use.
type Editor struct {
	v     variant
	mu    sync.Mutex
	nodes []Node
	edges []Edge
	subs  observe.Broadcaster[Snapshot]
}

// NewStakeholderMap creates an editor for contact nodes with typed edges.
func NewStakeholderMap() *Editor {
	return &Editor{v: stakeholderVariant}
}

// NewTerritoryMap creates an editor for account nodes without edges.
func NewTerritoryMap() *Editor {
	return &Editor{v: territoryVariant}
}

func (e *Editor) Variant() string { return e.v.name }

func (e *Editor) EdgesEnabled() bool { return e.v.edges }

func (e *Editor) snapshotLocked() Snapshot {
	return Snapshot{
		Variant: e.v.name,
		Nodes:   cloneNodes(e.nodes),
		Edges:   append([]Edge(nil), e.edges...),
	}
}

// cloneNodes copies nodes along with the records they wrap.
func cloneNodes(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		if n.Contact != nil {
			c := n.Contact.Clone()
			n.Contact = &c
		}
		if n.Account != nil {
			a := n.Account.Clone()
			n.Account = &a
		}
		out[i] = n
	}
	return out
}

func (e *Editor) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Editor) Subscribe(fn func(Snapshot)) func() {
	return e.subs.Subscribe(fn)
}

// commit swaps in new lists and notifies subscribers.
func (e *Editor) commit(fn func(nodes []Node, edges []Edge) ([]Node, []Edge, bool)) bool {
	e.mu.Lock()
	nodes, edges, changed := fn(e.nodes, e.edges)
	if !changed {
		e.mu.Unlock()
		return false
	}
	e.nodes, e.edges = nodes, edges
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.subs.Publish(snap)
	return true
}

// Drop adds a node for the record in cmd unless one already represents it.
// It reports whether a node was added.
func (e *Editor) Drop(cmd DropCommand) (bool, error) {
	node, err := e.v.node(cmd)
	if err != nil {
		return false, err
	}
	node.Position = cmd.Pointer.Sub(cmd.Canvas)

	added := e.commit(func(nodes []Node, edges []Edge) ([]Node, []Edge, bool) {
		for _, n := range nodes {
			if n.ID == node.ID || e.v.same(n, cmd) {
				return nodes, edges, false
			}
		}
		out := make([]Node, len(nodes), len(nodes)+1)
		copy(out, nodes)
		return append(out, node), edges, true
	})
	return added, nil
}

// Connect draws an edge labelled DefaultRelationship between two existing
// nodes. Connecting the same ordered pair twice keeps a single edge; the
// returned bool reports whether an edge was added.
func (e *Editor) Connect(conn Connection) (Edge, bool, error) {
	if !e.v.edges {
		return Edge{}, false, ErrEdgesDisabled
	}
	if conn.Source == conn.Target {
		return Edge{}, false, ErrSelfLoop
	}

	edge := Edge{
		ID:           EdgeID(conn.Source, conn.Target),
		Source:       conn.Source,
		Target:       conn.Target,
		Relationship: DefaultRelationship,
	}

	var err error
	added := e.commit(func(nodes []Node, edges []Edge) ([]Node, []Edge, bool) {
		if !hasNode(nodes, conn.Source) {
			err = fmt.Errorf("%w: %s", ErrUnknownNode, conn.Source)
			return nodes, edges, false
		}
		if !hasNode(nodes, conn.Target) {
			err = fmt.Errorf("%w: %s", ErrUnknownNode, conn.Target)
			return nodes, edges, false
		}
		for _, existing := range edges {
			if existing.ID == edge.ID {
				edge = existing
				return nodes, edges, false
			}
		}
		out := make([]Edge, len(edges), len(edges)+1)
		copy(out, edges)
		return nodes, append(out, edge), true
	})
	if err != nil {
		return Edge{}, false, err
	}
	return edge, added, nil
}

// Relabel replaces the relationship of one edge. Every other edge is left as is.
func (e *Editor) Relabel(edgeID string, rel Relationship) error {
	if !e.v.edges {
		return ErrEdgesDisabled
	}
	if !rel.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownRelationship, rel)
	}

	found := false
	e.commit(func(nodes []Node, edges []Edge) ([]Node, []Edge, bool) {
		out := make([]Edge, len(edges))
		for i, edge := range edges {
			if edge.ID == edgeID {
				found = true
				edge.Relationship = rel
			}
			out[i] = edge
		}
		return nodes, out, found
	})
	if !found {
		return fmt.Errorf("%w: %s", ErrUnknownEdge, edgeID)
	}
	return nil
}

// ApplyNodeChanges applies each change in order. Changes naming unknown
// nodes are skipped. Removing a node also removes its incident edges.
func (e *Editor) ApplyNodeChanges(changes []NodeChange) {
	if len(changes) == 0 {
		return
	}
	e.commit(func(nodes []Node, edges []Edge) ([]Node, []Edge, bool) {
		outNodes := append([]Node(nil), nodes...)
		outEdges := edges
		for _, ch := range changes {
			outNodes, outEdges = applyNodeChange(outNodes, outEdges, ch)
		}
		return outNodes, outEdges, true
	})
}

func applyNodeChange(nodes []Node, edges []Edge, ch NodeChange) ([]Node, []Edge) {
	switch ch.Type {
	case ChangePosition:
		for i := range nodes {
			if nodes[i].ID == ch.ID {
				if ch.Delta != (Position{}) {
					nodes[i].Position.X += ch.Delta.X
					nodes[i].Position.Y += ch.Delta.Y
				} else {
					nodes[i].Position = ch.Position
				}
			}
		}
	case ChangeSelect:
		for i := range nodes {
			if nodes[i].ID == ch.ID {
				nodes[i].Selected = ch.Selected
			}
		}
	case ChangeRemove:
		kept := nodes[:0]
		for _, n := range nodes {
			if n.ID != ch.ID {
				kept = append(kept, n)
			}
		}
		nodes = kept

		keptEdges := make([]Edge, 0, len(edges))
		for _, edge := range edges {
			if edge.Source != ch.ID && edge.Target != ch.ID {
				keptEdges = append(keptEdges, edge)
			}
		}
		edges = keptEdges
	}
	return nodes, edges
}

// ApplyEdgeChanges applies remove and select changes in order.
func (e *Editor) ApplyEdgeChanges(changes []EdgeChange) {
	if len(changes) == 0 {
		return
	}
	e.commit(func(nodes []Node, edges []Edge) ([]Node, []Edge, bool) {
		out := append([]Edge(nil), edges...)
		for _, ch := range changes {
			switch ch.Type {
			case ChangeRemove:
				kept := out[:0]
				for _, edge := range out {
					if edge.ID != ch.ID {
						kept = append(kept, edge)
					}
				}
				out = kept
			case ChangeSelect:
				for i := range out {
					if out[i].ID == ch.ID {
						out[i].Selected = ch.Selected
					}
				}
			}
		}
		return nodes, out, true
	})
}

// Reset discards every node and edge.
func (e *Editor) Reset() {
	e.commit(func([]Node, []Edge) ([]Node, []Edge, bool) {
		return nil, nil, true
	})
}

func hasNode(nodes []Node, id string) bool {
	for _, n := range nodes {
		if n.ID == id {
			return true
		}
	}
	return false
}
