package potree

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/potree-loader/pkg/geom"
)

// Option configures Load.
type Option func(*loadOptions)

type loadOptions struct {
	logger *zap.Logger
}

// WithLogger sets the logger used while resolving the hierarchy.
func WithLogger(l *zap.Logger) Option {
	return func(o *loadOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// Load decodes a metadata document and its hierarchy file.
func Load(metadata, hierarchy []byte, opts ...Option) (*Octree, error) {
	meta, err := ParseMetadata(metadata)
	if err != nil {
		return nil, err
	}
	return FromMetadata(meta, hierarchy, opts...)
}

// LoadFiles reads and decodes the metadata and hierarchy files.
func LoadFiles(metadataPath, hierarchyPath string, opts ...Option) (*Octree, error) {
	meta, err := ParseMetadataFile(metadataPath)
	if err != nil {
		return nil, err
	}

	hierarchy, err := os.ReadFile(hierarchyPath)
	if err != nil {
		return nil, fmt.Errorf("reading hierarchy file: %w", err)
	}

	return FromMetadata(meta, hierarchy, opts...)
}

// FromMetadata builds the octree described by an already parsed metadata
// document, resolving every hierarchy page.
func FromMetadata(meta *Metadata, hierarchy []byte, opts ...Option) (*Octree, error) {
	o := loadOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	if err := meta.Validate(); err != nil {
		return nil, err
	}

	schema, err := ParseAttributes(meta.Attributes, triple(meta.Scale), triple(meta.Offset))
	if err != nil {
		return nil, err
	}

	box := geom.NewBoundingBox(triple(meta.BoundingBox.Min), triple(meta.BoundingBox.Max))
	if !box.Valid() {
		return nil, fmt.Errorf("%w: bounding box %v has min > max", ErrMalformedMetadata, box)
	}

	t := &Octree{
		Version:     *meta.Version,
		Name:        meta.Name,
		Description: meta.Description,
		Projection:  meta.Projection,
		TotalPoints: *meta.Points,
		Spacing:     *meta.Spacing,
		Hierarchy: HierarchyEnvelope{
			FirstChunkSize: *meta.Hierarchy.FirstChunkSize,
			StepSize:       *meta.Hierarchy.StepSize,
			Depth:          *meta.Hierarchy.Depth,
		},
		Schema:           schema,
		BoundingBox:      box,
		TightBoundingBox: box,
	}

	if err := t.resolve(hierarchy, o.logger); err != nil {
		return nil, err
	}

	o.logger.Info("octree loaded",
		zap.String("name", t.Name),
		zap.Int("nodes", t.Len()),
		zap.Int("traversable", t.traversable),
		zap.Int("records", len(t.records)),
		zap.Int64("points", t.TotalPoints),
	)
	return t, nil
}

// resolve decodes hierarchy pages starting at the root until every record
// of the file has been consumed. Each page is addressed by a proxy node
// found earlier in record order.
func (t *Octree) resolve(hierarchy []byte, log *zap.Logger) error {
	if len(hierarchy) == 0 {
		return fmt.Errorf("%w: hierarchy is empty", ErrShortRead)
	}
	if len(hierarchy)%RecordSize != 0 {
		return fmt.Errorf("%w: hierarchy length %d is not a multiple of %d",
			ErrHierarchyOverrun, len(hierarchy), RecordSize)
	}

	expected := len(hierarchy) / RecordSize

	root := newNode(0, "r", t.BoundingBox)
	root.Type = NodeProxy
	root.Spacing = t.Spacing
	root.Location = Location{Kind: NextPage, Offset: 0, Size: uint64(t.Hierarchy.FirstChunkSize)}

	t.nodes = make([]Node, 0, expected)
	t.nodes = append(t.nodes, root)
	t.records = make([]NodeID, 0, expected)

	visited := make(map[Location]bool)
	target := NodeID(0)
	scan := 0

	for page := 0; ; page++ {
		loc := t.nodes[target].Location
		if visited[loc] {
			return fmt.Errorf("%w: node %s page at offset %d", ErrPageCycle, t.nodes[target].Name, loc.Offset)
		}
		visited[loc] = true

		ids, err := t.DecodeChunk(target, hierarchy)
		if err != nil {
			return fmt.Errorf("decoding page %d: %w", page, err)
		}
		t.records = append(t.records, ids...)

		log.Debug("hierarchy page decoded",
			zap.Int("page", page),
			zap.String("node", t.nodes[target].Name),
			zap.Uint64("offset", loc.Offset),
			zap.Int("records", len(ids)),
		)

		if len(t.records) >= expected {
			break
		}

		next := NoNode
		for ; scan < len(t.records); scan++ {
			if t.nodes[t.records[scan]].IsProxy() {
				next = t.records[scan]
				scan++
				break
			}
		}
		if next == NoNode {
			return fmt.Errorf("%w: only %d of %d records reachable from the root",
				ErrOrphanRecord, len(t.records), expected)
		}
		target = next
	}

	if len(t.records) != expected {
		return fmt.Errorf("%w: decoded %d records, file holds %d",
			ErrHierarchyOverrun, len(t.records), expected)
	}

	t.index()
	return nil
}
