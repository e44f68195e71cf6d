package potree

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
)

// Well-known attribute names.
const (
	AttrPosition  = "position"
	AttrIntensity = "intensity"
	AttrRGB       = "rgb"
	AttrGPSTime   = "gps-time"
)

// AttributeType is the scalar kind of an attribute's elements.
type AttributeType uint8

// Attribute type constants.
const (
	AttrUndefined AttributeType = iota
	AttrInt8
	AttrInt16
	AttrInt32
	AttrInt64
	AttrUint8
	AttrUint16
	AttrUint32
	AttrUint64
	AttrFloat
	AttrDouble
)

var attributeTypeNames = map[AttributeType]string{
	AttrUndefined: "undefined",
	AttrInt8:      "int8",
	AttrInt16:     "int16",
	AttrInt32:     "int32",
	AttrInt64:     "int64",
	AttrUint8:     "uint8",
	AttrUint16:    "uint16",
	AttrUint32:    "uint32",
	AttrUint64:    "uint64",
	AttrFloat:     "float",
	AttrDouble:    "double",
}

// ParseAttributeType maps a metadata type name to its AttributeType.
// Unknown names map to AttrUndefined.
func ParseAttributeType(name string) AttributeType {
	for t, n := range attributeTypeNames {
		if n == name {
			return t
		}
	}
	return AttrUndefined
}

// String returns the metadata name of the type.
func (t AttributeType) String() string {
	if n, ok := attributeTypeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("Unknown(%d)", t)
}

// Size returns the byte size of one element of this type.
func (t AttributeType) Size() int {
	switch t {
	case AttrInt8, AttrUint8:
		return 1
	case AttrInt16, AttrUint16:
		return 2
	case AttrInt32, AttrUint32, AttrFloat:
		return 4
	case AttrInt64, AttrUint64, AttrDouble:
		return 8
	default:
		return 0
	}
}

// Attribute describes one named field of a point record.
type Attribute struct {
	Name        string
	Description string
	Size        int // Total bytes per point
	NumElements int
	ElementSize int
	Type        AttributeType

	// Decoded value bounds for up to three components. Missing bounds
	// are -Inf/+Inf.
	Min r3.Vector
	Max r3.Vector
}

// NewAttribute creates an attribute with unbounded Min/Max.
func NewAttribute(name string, size, numElements, elementSize int, typ AttributeType) Attribute {
	inf := math.Inf(1)
	return Attribute{
		Name:        name,
		Size:        size,
		NumElements: numElements,
		ElementSize: elementSize,
		Type:        typ,
		Min:         r3.Vector{X: -inf, Y: -inf, Z: -inf},
		Max:         r3.Vector{X: inf, Y: inf, Z: inf},
	}
}

// AttributeSchema is the ordered list of attributes making up one point
// record. Order defines byte layout.
type AttributeSchema struct {
	Attributes     []Attribute
	PositionScale  r3.Vector
	PositionOffset r3.Vector
	stride         int
}

// NewAttributeSchema builds a schema and computes its stride.
func NewAttributeSchema(attrs []Attribute, scale, offset r3.Vector) *AttributeSchema {
	s := &AttributeSchema{
		Attributes:     attrs,
		PositionScale:  scale,
		PositionOffset: offset,
	}
	for _, a := range attrs {
		s.stride += a.Size
	}
	return s
}

// ParseAttributes builds a schema from metadata attribute descriptors.
func ParseAttributes(descs []MetadataAttribute, scale, offset [3]float64) (*AttributeSchema, error) {
	attrs := make([]Attribute, 0, len(descs))
	seen := make(map[string]bool, len(descs))

	for i, d := range descs {
		if d.Name == "" {
			return nil, fmt.Errorf("%w: attribute %d has no name", ErrMalformedMetadata, i)
		}
		if seen[d.Name] {
			return nil, fmt.Errorf("%w: duplicate attribute %q", ErrMalformedMetadata, d.Name)
		}
		if d.Size < 0 || d.NumElements < 0 || d.ElementSize < 0 {
			return nil, fmt.Errorf("%w: attribute %q has negative size", ErrMalformedMetadata, d.Name)
		}
		seen[d.Name] = true

		a := NewAttribute(d.Name, d.Size, d.NumElements, d.ElementSize, ParseAttributeType(d.Type))
		a.Description = d.Description
		applyBounds(&a.Min, d.Min, d.NumElements)
		applyBounds(&a.Max, d.Max, d.NumElements)
		attrs = append(attrs, a)
	}

	return NewAttributeSchema(attrs, vec(scale), vec(offset)), nil
}

// applyBounds copies up to three present components into v.
func applyBounds(v *r3.Vector, bounds []*float64, numElements int) {
	dst := []*float64{&v.X, &v.Y, &v.Z}
	for i := 0; i < numElements && i < 3 && i < len(bounds); i++ {
		if bounds[i] != nil {
			*dst[i] = *bounds[i]
		}
	}
}

// Stride returns the byte length of one point record.
func (s *AttributeSchema) Stride() int {
	return s.stride
}

// Lookup returns the attribute with the given name.
func (s *AttributeSchema) Lookup(name string) (Attribute, bool) {
	for _, a := range s.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

// OffsetOf returns the byte offset of the named attribute inside a point
// record, or false if the schema does not contain it.
func (s *AttributeSchema) OffsetOf(name string) (int, bool) {
	offset := 0
	for _, a := range s.Attributes {
		if a.Name == name {
			return offset, true
		}
		offset += a.Size
	}
	return 0, false
}

func vec(a [3]float64) r3.Vector {
	return r3.Vector{X: a[0], Y: a[1], Z: a[2]}
}
