package pointdata

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/potree-loader/pkg/potree"
)

// Reader fetches node payloads of a decoded octree.
type Reader struct {
	tree         *potree.Octree
	src          RangeReader
	layout       Layout
	maxNodeBytes uint64
	srcSize      uint64
	sized        bool
	logger       *zap.Logger
}

// Option configures a Reader.
type Option func(*Reader)

// WithLogger sets the reader's logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Reader) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewReader creates a reader for tree backed by src.
func NewReader(tree *potree.Octree, src RangeReader, opts ...Option) *Reader {
	r := &Reader{
		tree:   tree,
		src:    src,
		layout: NewLayout(tree.Schema),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	if sz, ok := src.(Sizer); ok {
		r.srcSize, r.sized = sz.Size(), true
	}

	for n := range tree.Traverse(0) {
		loc, ok := n.Payload()
		if !ok {
			continue
		}
		size, err := r.payloadLen(loc)
		if err != nil {
			r.logger.Warn("payload exceeds read limit", zap.String("node", n.Name), zap.Uint64("size", loc.Size))
			continue
		}
		r.maxNodeBytes = max(r.maxNodeBytes, uint64(size))
	}

	for _, name := range r.layout.Missing() {
		r.logger.Warn("attribute not found in schema", zap.String("attribute", name))
	}
	for _, name := range r.layout.Undersized() {
		r.logger.Warn("attribute narrower than its decoded width", zap.String("attribute", name))
	}
	return r
}

// Tree returns the octree the reader serves.
func (r *Reader) Tree() *potree.Octree {
	return r.tree
}

// Layout returns the offsets of the well-known attributes.
func (r *Reader) Layout() Layout {
	return r.layout
}

// MaxNodeBytes returns the largest payload of any reachable node that can
// actually be read from the source.
func (r *Reader) MaxNodeBytes() uint64 {
	return r.maxNodeBytes
}

// NewScratch returns a buffer large enough for any node of the tree.
func (r *Reader) NewScratch() *Buffer {
	return NewBuffer(int(r.maxNodeBytes))
}

// Fetch reads the payload of n into buf, growing it if needed, and returns
// the filled prefix. The result is only valid until the next Fetch into
// the same buffer.
func (r *Reader) Fetch(n *potree.Node, buf *Buffer) ([]byte, error) {
	loc, ok := n.Payload()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoPayload, n.Name)
	}

	size, err := r.payloadLen(loc)
	if err != nil {
		return nil, fmt.Errorf("node %s: %w", n.Name, err)
	}

	buf.Extend(size)
	read, err := r.src.ReadRange(loc.Offset, uint64(size), buf.data)
	if err != nil {
		return nil, fmt.Errorf("reading node %s: %w", n.Name, err)
	}
	if uint64(read) < loc.Size {
		r.logger.Warn("short read",
			zap.String("node", n.Name),
			zap.Uint64("want", loc.Size),
			zap.Int("got", read),
		)
	}
	return buf.data[:read], nil
}

// FetchOwned reads the payload of n into freshly allocated memory.
func (r *Reader) FetchOwned(n *potree.Node) ([]byte, error) {
	loc, ok := n.Payload()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoPayload, n.Name)
	}
	size, err := r.payloadLen(loc)
	if err != nil {
		return nil, fmt.Errorf("node %s: %w", n.Name, err)
	}
	data, err := r.Fetch(n, NewBuffer(size))
	if err != nil {
		return nil, err
	}
	return data, nil
}

// payloadLen returns how many bytes of loc can be read. Sized sources clamp
// to their end; anything above MaxPayloadBytes is refused.
func (r *Reader) payloadLen(loc potree.Location) (int, error) {
	size := loc.Size
	if r.sized {
		if loc.Offset >= r.srcSize {
			size = 0
		} else {
			size = min(size, r.srcSize-loc.Offset)
		}
	}
	if size > MaxPayloadBytes {
		return 0, fmt.Errorf("%w: %d bytes at offset %d", ErrPayloadTooLarge, loc.Size, loc.Offset)
	}
	return int(size), nil
}

// CollectOptions controls Collect.
type CollectOptions struct {
	MaxLevel    int  // Deepest level to decode
	ReuseBuffer bool // Fetch through one scratch buffer
}

// Collect decodes the points of every node down to opts.MaxLevel.
func (r *Reader) Collect(opts CollectOptions) ([]Point, error) {
	dec, err := NewDecoder(r.tree.Schema)
	if err != nil {
		return nil, err
	}

	keep := func(n *potree.Node) bool { return n.Level <= opts.MaxLevel }
	total := 0
	for n := range r.tree.TraverseIf(0, keep) {
		if loc, ok := n.Payload(); ok {
			if size, err := r.payloadLen(loc); err == nil {
				total += size / r.layout.Stride
			}
		}
	}

	points := make([]Point, 0, min(total, MaxPayloadBytes/r.layout.Stride))
	scratch := r.NewScratch()

	for n := range r.tree.TraverseIf(0, keep) {
		var data []byte
		if opts.ReuseBuffer {
			data, err = r.Fetch(n, scratch)
		} else {
			data, err = r.FetchOwned(n)
		}
		if err != nil {
			return nil, err
		}
		points = dec.Decode(data, points)
	}

	r.logger.Debug("points collected",
		zap.Int("points", len(points)),
		zap.Int("max_level", opts.MaxLevel),
	)
	return points, nil
}
