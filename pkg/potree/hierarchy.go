package potree

import (
	"encoding/binary"
	"fmt"
	"strconv"
)

// RecordSize is the size of one hierarchy record in bytes.
const RecordSize = 22

// Record is one decoded hierarchy entry.
//
// Layout (little-endian):
//
//	0      type       uint8
//	1      childMask  uint8
//	2..5   numPoints  uint32
//	6..13  byteOffset uint64
//	14..21 byteSize   uint64
type Record struct {
	Type       NodeType
	ChildMask  uint8
	NumPoints  uint32
	ByteOffset uint64
	ByteSize   uint64
}

// DecodeRecord decodes the record at the start of b. b must hold at least
// RecordSize bytes.
func DecodeRecord(b []byte) Record {
	_ = b[RecordSize-1]
	return Record{
		Type:       NodeType(b[0]),
		ChildMask:  b[1],
		NumPoints:  binary.LittleEndian.Uint32(b[2:]),
		ByteOffset: binary.LittleEndian.Uint64(b[6:]),
		ByteSize:   binary.LittleEndian.Uint64(b[14:]),
	}
}

// HasChild reports whether the octant bit is set in the child mask.
func (r Record) HasChild(octant int) bool {
	return r.ChildMask&(1<<octant) != 0
}

// DecodeChunk decodes the hierarchy page addressed by the proxy node target
// and returns the IDs of its nodes in record order. Record 0 is target
// itself, re-stamped with the decoded fields. Children of non-proxy records
// are created in the tree; proxy records are left for a later call.
func (t *Octree) DecodeChunk(target NodeID, hierarchy []byte) ([]NodeID, error) {
	start := t.Node(target)
	if start == nil {
		return nil, fmt.Errorf("decoding chunk: unknown node %d", target)
	}

	name, page := start.Name, start.Location
	if page.Kind != NextPage {
		return nil, fmt.Errorf("decoding chunk: node %s does not address a hierarchy page", name)
	}
	if page.End() > uint64(len(hierarchy)) || page.End() < page.Offset {
		return nil, fmt.Errorf("%w: node %s page [%d, %d) exceeds %d bytes",
			ErrHierarchyOverrun, name, page.Offset, page.End(), len(hierarchy))
	}
	if page.Size == 0 {
		return nil, fmt.Errorf("%w: node %s has an empty page", ErrShortRead, name)
	}
	if page.Size%RecordSize != 0 {
		return nil, fmt.Errorf("%w: node %s page size %d is not a multiple of %d",
			ErrHierarchyOverrun, name, page.Size, RecordSize)
	}

	count := int(page.Size / RecordSize)
	data := hierarchy[page.Offset:page.End()]
	ids := make([]NodeID, 1, count)
	ids[0] = target

	for i := 0; i < count; i++ {
		if i >= len(ids) {
			return nil, fmt.Errorf("%w: record %d of page at %s", ErrOrphanRecord, i, name)
		}

		rec := DecodeRecord(data[i*RecordSize:])
		if rec.Type > NodeProxy {
			return nil, fmt.Errorf("%w: %d in record %d of page at %s", ErrInvalidNodeType, rec.Type, i, name)
		}

		current := ids[i]
		t.nodes[current].apply(rec)

		if rec.Type == NodeProxy {
			continue
		}

		for octant := 0; octant < 8; octant++ {
			if !rec.HasChild(octant) {
				continue
			}
			if len(ids) >= count {
				return nil, fmt.Errorf("%w: children of %s exceed %d records",
					ErrHierarchyOverrun, t.nodes[current].Name, count)
			}
			ids = append(ids, t.addChild(current, octant))
		}
	}

	return ids, nil
}

// addChild creates the child of parent in the given octant.
func (t *Octree) addChild(parent NodeID, octant int) NodeID {
	p := t.nodes[parent]
	id := NodeID(len(t.nodes))

	child := newNode(id, p.Name+strconv.Itoa(octant), p.Box.ChildBox(octant))
	child.Level = p.Level + 1
	child.Spacing = p.Spacing / 2
	child.Parent = parent

	t.nodes = append(t.nodes, child)
	t.nodes[parent].Children[octant] = id
	return id
}
