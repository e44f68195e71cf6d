package potree

import (
	"fmt"

	"github.com/Faultbox/potree-loader/pkg/geom"
)

// NodeType is the kind of a hierarchy node as stored in its record.
type NodeType uint8

// Node type constants.
const (
	NodeNormal NodeType = 0 // Inner node with point payload
	NodeLeaf   NodeType = 1 // Node without children
	NodeProxy  NodeType = 2 // Placeholder for a node described by another page
)

// String returns a human-readable node type name.
func (t NodeType) String() string {
	switch t {
	case NodeNormal:
		return "Normal"
	case NodeLeaf:
		return "Leaf"
	case NodeProxy:
		return "Proxy"
	default:
		return fmt.Sprintf("Unknown(%d)", t)
	}
}

// LocationKind tells which file a Location addresses.
type LocationKind uint8

const (
	// PointPayload addresses the node's points in the point-data file.
	PointPayload LocationKind = iota
	// NextPage addresses a further page inside the hierarchy file.
	NextPage
)

// String returns the kind name.
func (k LocationKind) String() string {
	if k == NextPage {
		return "NextPage"
	}
	return "PointPayload"
}

// Location is a byte range whose meaning depends on Kind.
type Location struct {
	Kind   LocationKind
	Offset uint64
	Size   uint64
}

// End returns the first byte past the range.
func (l Location) End() uint64 {
	return l.Offset + l.Size
}

// NodeID is a stable index into the octree's node arena.
type NodeID int32

// NoNode marks an absent parent or child.
const NoNode NodeID = -1

// Node is one element of the octree. Parent and Children refer to other
// nodes of the same Octree by ID.
type Node struct {
	ID        NodeID
	Name      string
	Level     int
	Box       geom.BoundingBox
	Spacing   float64
	NumPoints uint32
	Type      NodeType
	Location  Location
	Parent    NodeID
	Children  [8]NodeID
}

func newNode(id NodeID, name string, box geom.BoundingBox) Node {
	n := Node{
		ID:     id,
		Name:   name,
		Level:  len(name) - 1,
		Box:    box,
		Parent: NoNode,
	}
	for i := range n.Children {
		n.Children[i] = NoNode
	}
	return n
}

// Index returns the octant of the node within its parent, or -1 for the root.
func (n *Node) Index() int {
	if n.Parent == NoNode || len(n.Name) < 2 {
		return -1
	}
	return int(n.Name[len(n.Name)-1] - '0')
}

// IsProxy reports whether the node still defers to another hierarchy page.
func (n *Node) IsProxy() bool {
	return n.Type == NodeProxy
}

// HasChildren reports whether any octant is occupied.
func (n *Node) HasChildren() bool {
	for _, c := range n.Children {
		if c != NoNode {
			return true
		}
	}
	return false
}

// ChildCount returns the number of occupied octants.
func (n *Node) ChildCount() int {
	count := 0
	for _, c := range n.Children {
		if c != NoNode {
			count++
		}
	}
	return count
}

// Payload returns the node's location in the point-data file. The second
// result is false while the node is a proxy.
func (n *Node) Payload() (Location, bool) {
	if n.Location.Kind != PointPayload {
		return Location{}, false
	}
	return n.Location, true
}

// ByteSize returns the payload size, or zero for an unresolved proxy.
func (n *Node) ByteSize() uint64 {
	loc, ok := n.Payload()
	if !ok {
		return 0
	}
	return loc.Size
}

// apply stamps a decoded record onto the node.
func (n *Node) apply(rec Record) {
	n.Type = rec.Type
	n.NumPoints = rec.NumPoints
	kind := PointPayload
	if rec.Type == NodeProxy {
		kind = NextPage
	}
	n.Location = Location{Kind: kind, Offset: rec.ByteOffset, Size: rec.ByteSize}
	if rec.ByteSize == 0 {
		n.NumPoints = 0
	}
}
