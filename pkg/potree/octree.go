package potree

import (
	"iter"

	"github.com/Faultbox/potree-loader/pkg/geom"
)

// HierarchyEnvelope describes how the hierarchy file is paged.
type HierarchyEnvelope struct {
	FirstChunkSize int64
	StepSize       int64
	Depth          int64
}

// Octree is a decoded hierarchy. It owns all nodes; Node.Parent and
// Node.Children index into the same arena. The tree is read-only once
// Load returns.
type Octree struct {
	Version     string
	Name        string
	Description string
	Projection  string
	TotalPoints int64
	Spacing     float64

	Hierarchy        HierarchyEnvelope
	Schema           *AttributeSchema
	BoundingBox      geom.BoundingBox
	TightBoundingBox geom.BoundingBox

	nodes       []Node
	records     []NodeID
	byName      map[string]NodeID
	traversable int
}

// Root returns the root node.
func (t *Octree) Root() *Node {
	return t.Node(0)
}

// Node returns the node with the given ID, or nil.
func (t *Octree) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(t.nodes) {
		return nil
	}
	return &t.nodes[id]
}

// Lookup returns the node with the given name, e.g. "r04".
func (t *Octree) Lookup(name string) (*Node, bool) {
	id, ok := t.byName[name]
	if !ok {
		return nil, false
	}
	return &t.nodes[id], true
}

// Parent returns the parent of n, or false for the root.
func (t *Octree) Parent(n *Node) (*Node, bool) {
	p := t.Node(n.Parent)
	return p, p != nil
}

// Child returns the child of n in the given octant.
func (t *Octree) Child(n *Node, octant int) (*Node, bool) {
	if octant < 0 || octant > 7 {
		return nil, false
	}
	c := t.Node(n.Children[octant])
	return c, c != nil
}

// Nodes returns the node arena. Every node appears exactly once.
func (t *Octree) Nodes() []Node {
	return t.nodes
}

// Len returns the number of distinct nodes.
func (t *Octree) Len() int {
	return len(t.nodes)
}

// Records returns node IDs in hierarchy record order. A node that was a
// proxy appears twice: once for its placeholder record and once as the
// first record of its own page. The length always equals the hierarchy
// file size divided by RecordSize.
func (t *Octree) Records() []NodeID {
	return t.records
}

// TraversableNodeCount returns the number of nodes reachable from the root.
func (t *Octree) TraversableNodeCount() int {
	return t.traversable
}

// TraversableNodes returns every node reachable from the root in pre-order.
func (t *Octree) TraversableNodes() []*Node {
	out := make([]*Node, 0, t.traversable)
	for n := range t.Traverse(0) {
		out = append(out, n)
	}
	return out
}

// Traverse yields the subtree rooted at start in depth-first pre-order,
// children in octant order.
func (t *Octree) Traverse(start NodeID) iter.Seq[*Node] {
	return t.TraverseIf(start, nil)
}

// TraverseIf is like Traverse but does not yield or descend into a node
// rejected by keep. A nil keep accepts every node.
func (t *Octree) TraverseIf(start NodeID, keep func(*Node) bool) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		if t.Node(start) == nil {
			return
		}
		stack := []NodeID{start}
		for len(stack) > 0 {
			n := &t.nodes[stack[len(stack)-1]]
			stack = stack[:len(stack)-1]

			if keep != nil && !keep(n) {
				continue
			}
			if !yield(n) {
				return
			}
			for i := 7; i >= 0; i-- {
				if c := n.Children[i]; c != NoNode {
					stack = append(stack, c)
				}
			}
		}
	}
}

// TraverseDepth yields nodes like Traverse together with their depth
// relative to start.
func (t *Octree) TraverseDepth(start NodeID) iter.Seq2[*Node, int] {
	return func(yield func(*Node, int) bool) {
		s := t.Node(start)
		if s == nil {
			return
		}
		for n := range t.Traverse(start) {
			if !yield(n, n.Level-s.Level) {
				return
			}
		}
	}
}

// MaxLevel returns the deepest level present in the tree.
func (t *Octree) MaxLevel() int {
	deepest := 0
	for n := range t.Traverse(0) {
		deepest = max(deepest, n.Level)
	}
	return deepest
}

// index builds the name lookup and the reachable node count.
func (t *Octree) index() {
	t.byName = make(map[string]NodeID, len(t.nodes))
	for _, n := range t.nodes {
		t.byName[n.Name] = n.ID
	}

	t.traversable = 0
	for range t.Traverse(0) {
		t.traversable++
	}
}
