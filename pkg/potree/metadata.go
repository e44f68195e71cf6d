package potree

import (
	"encoding/json"
	"fmt"
	"os"
)

// MetadataAttribute is one entry of the metadata "attributes" array.
// Min and Max may contain nulls.
type MetadataAttribute struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Size        int        `json:"size"`
	NumElements int        `json:"numElements"`
	ElementSize int        `json:"elementSize"`
	Type        string     `json:"type"`
	Min         []*float64 `json:"min"`
	Max         []*float64 `json:"max"`
}

// MetadataBox is the "boundingBox" object.
type MetadataBox struct {
	Min []float64 `json:"min"`
	Max []float64 `json:"max"`
}

// MetadataHierarchy is the "hierarchy" object.
type MetadataHierarchy struct {
	FirstChunkSize *int64 `json:"firstChunkSize"`
	StepSize       *int64 `json:"stepSize"`
	Depth          *int64 `json:"depth"`
}

// Metadata is the decoded metadata.json document. Pointer and slice fields
// are required and checked by Validate. Scale, Offset and the bounding box
// corners hold exactly three components.
type Metadata struct {
	Version     *string             `json:"version"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Points      *int64              `json:"points"`
	Projection  string              `json:"projection"`
	Spacing     *float64            `json:"spacing"`
	BoundingBox *MetadataBox        `json:"boundingBox"`
	Scale       []float64           `json:"scale"`
	Offset      []float64           `json:"offset"`
	Hierarchy   *MetadataHierarchy  `json:"hierarchy"`
	Attributes  []MetadataAttribute `json:"attributes"`
}

// ParseMetadata decodes and validates a metadata document.
func ParseMetadata(data []byte) (*Metadata, error) {
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMetadata, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// triple converts a validated three-component field.
func triple(v []float64) [3]float64 {
	return [3]float64{v[0], v[1], v[2]}
}

// ParseMetadataFile parses a metadata document from disk.
func ParseMetadataFile(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading metadata file: %w", err)
	}
	return ParseMetadata(data)
}

// Validate reports the first missing required field.
func (m *Metadata) Validate() error {
	missing := func(field string) error {
		return fmt.Errorf("%w: missing %q", ErrMalformedMetadata, field)
	}

	switch {
	case m.Version == nil:
		return missing("version")
	case m.Points == nil:
		return missing("points")
	case m.Spacing == nil:
		return missing("spacing")
	case m.BoundingBox == nil:
		return missing("boundingBox")
	case m.BoundingBox.Min == nil:
		return missing("boundingBox.min")
	case m.BoundingBox.Max == nil:
		return missing("boundingBox.max")
	case m.Scale == nil:
		return missing("scale")
	case m.Offset == nil:
		return missing("offset")
	case m.Hierarchy == nil:
		return missing("hierarchy")
	case m.Hierarchy.FirstChunkSize == nil:
		return missing("hierarchy.firstChunkSize")
	case m.Hierarchy.StepSize == nil:
		return missing("hierarchy.stepSize")
	case m.Hierarchy.Depth == nil:
		return missing("hierarchy.depth")
	case m.Attributes == nil:
		return missing("attributes")
	}

	for _, v := range []struct {
		field string
		value []float64
	}{
		{"boundingBox.min", m.BoundingBox.Min},
		{"boundingBox.max", m.BoundingBox.Max},
		{"scale", m.Scale},
		{"offset", m.Offset},
	} {
		if len(v.value) != 3 {
			return fmt.Errorf("%w: %q has %d components, want 3", ErrMalformedMetadata, v.field, len(v.value))
		}
	}

	if *m.Hierarchy.FirstChunkSize < 0 {
		return fmt.Errorf("%w: negative hierarchy.firstChunkSize", ErrMalformedMetadata)
	}
	return nil
}
