package pointdata

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/golang/geo/r3"

	"github.com/Faultbox/potree-loader/pkg/geom"
	"github.com/Faultbox/potree-loader/pkg/potree"
)

// Bytes read per well-known attribute.
const (
	positionWidth  = 12
	intensityWidth = 2
	rgbWidth       = 6
	gpsTimeWidth   = 8
)

// Field is the byte offset of a well-known attribute inside a point
// record. Present is false when the schema lacks the attribute or declares
// it narrower than the decoder reads; Undersized marks the latter.
type Field struct {
	Offset     int
	Present    bool
	Undersized bool
}

// Layout holds the record stride and offsets of the well-known attributes.
type Layout struct {
	Stride    int
	Position  Field
	Intensity Field
	RGB       Field
	GPSTime   Field
}

// NewLayout looks up the well-known attributes in schema.
func NewLayout(schema *potree.AttributeSchema) Layout {
	stride := schema.Stride()
	field := func(name string, width int) Field {
		off, ok := schema.OffsetOf(name)
		if !ok {
			return Field{}
		}
		a, _ := schema.Lookup(name)
		if a.Size < width || off+width > stride {
			return Field{Offset: off, Undersized: true}
		}
		return Field{Offset: off, Present: true}
	}
	return Layout{
		Stride:    stride,
		Position:  field(potree.AttrPosition, positionWidth),
		Intensity: field(potree.AttrIntensity, intensityWidth),
		RGB:       field(potree.AttrRGB, rgbWidth),
		GPSTime:   field(potree.AttrGPSTime, gpsTimeWidth),
	}
}

func (l Layout) fields() []struct {
	name  string
	field Field
} {
	return []struct {
		name  string
		field Field
	}{
		{potree.AttrPosition, l.Position},
		{potree.AttrIntensity, l.Intensity},
		{potree.AttrRGB, l.RGB},
		{potree.AttrGPSTime, l.GPSTime},
	}
}

// Missing returns the names of well-known attributes absent from the schema.
func (l Layout) Missing() []string {
	var out []string
	for _, f := range l.fields() {
		if !f.field.Present && !f.field.Undersized {
			out = append(out, f.name)
		}
	}
	return out
}

// Undersized returns the names of well-known attributes the schema declares
// with fewer bytes than the decoder reads. They decode as zero.
func (l Layout) Undersized() []string {
	var out []string
	for _, f := range l.fields() {
		if f.field.Undersized {
			out = append(out, f.name)
		}
	}
	return out
}

// Point is one decoded point. Color and intensity are zero when the
// schema does not carry them.
type Point struct {
	Position  r3.Vector
	R, G, B   uint16
	Intensity uint16
	GPSTime   float64
}

// Decoder turns raw point records into Points.
type Decoder struct {
	layout Layout
	scale  r3.Vector
	offset r3.Vector
}

// NewDecoder creates a decoder for schema. The schema must contain a
// position attribute.
func NewDecoder(schema *potree.AttributeSchema) (*Decoder, error) {
	layout := NewLayout(schema)
	if layout.Position.Undersized {
		a, _ := schema.Lookup(potree.AttrPosition)
		return nil, fmt.Errorf("%w: %q declares %d bytes, need %d",
			potree.ErrMalformedMetadata, potree.AttrPosition, a.Size, positionWidth)
	}
	if !layout.Position.Present {
		return nil, fmt.Errorf("%w: %q", potree.ErrUnresolvedAttribute, potree.AttrPosition)
	}
	if layout.Stride <= 0 {
		return nil, fmt.Errorf("invalid point stride %d", layout.Stride)
	}
	return &Decoder{
		layout: layout,
		scale:  schema.PositionScale,
		offset: schema.PositionOffset,
	}, nil
}

// Layout returns the decoder's record layout.
func (d *Decoder) Layout() Layout {
	return d.layout
}

// Count returns the number of whole records in data.
func (d *Decoder) Count(data []byte) int {
	return len(data) / d.layout.Stride
}

// Decode appends every whole record in data to dst. A trailing partial
// record is ignored.
func (d *Decoder) Decode(data []byte, dst []Point) []Point {
	stride := d.layout.Stride
	for i := 0; i+stride <= len(data); i += stride {
		dst = append(dst, d.DecodePoint(data[i:i+stride]))
	}
	return dst
}

// DecodePoint decodes a single record. rec must hold a whole record.
func (d *Decoder) DecodePoint(rec []byte) Point {
	le := binary.LittleEndian

	pos := rec[d.layout.Position.Offset:]
	raw := [3]int32{
		int32(le.Uint32(pos[0:])),
		int32(le.Uint32(pos[4:])),
		int32(le.Uint32(pos[8:])),
	}
	p := Point{Position: geom.Dequantize(raw, d.scale, d.offset)}

	if d.layout.RGB.Present {
		rgb := rec[d.layout.RGB.Offset:]
		p.R = le.Uint16(rgb[0:])
		p.G = le.Uint16(rgb[2:])
		p.B = le.Uint16(rgb[4:])
	}
	if d.layout.Intensity.Present {
		p.Intensity = le.Uint16(rec[d.layout.Intensity.Offset:])
	}
	if d.layout.GPSTime.Present {
		p.GPSTime = math.Float64frombits(le.Uint64(rec[d.layout.GPSTime.Offset:]))
	}
	return p
}
