// Package potree decodes Potree 2.0 octree hierarchies: the JSON metadata
// descriptor, the paged binary hierarchy file and the attribute layout of
// the point-data file.
package potree

import "errors"

// Load and decode errors.
var (
	ErrMalformedMetadata   = errors.New("malformed metadata")
	ErrHierarchyOverrun    = errors.New("hierarchy chunk overruns buffer")
	ErrShortRead           = errors.New("short hierarchy read")
	ErrOrphanRecord        = errors.New("hierarchy record without owning node")
	ErrPageCycle           = errors.New("hierarchy page decoded twice")
	ErrInvalidNodeType     = errors.New("invalid hierarchy node type")
	ErrUnresolvedAttribute = errors.New("attribute not present in schema")
)
