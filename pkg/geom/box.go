// Package geom provides the axis-aligned bounding volumes used by the octree.
package geom

import (
	"fmt"

	"github.com/golang/geo/r3"
)

// Octant bit masks. Bit 0 selects the upper Z half, bit 1 the upper Y half
// and bit 2 the upper X half.
const (
	OctantZ = 0b001
	OctantY = 0b010
	OctantX = 0b100
)

// BoundingBox is an axis-aligned box with Min <= Max componentwise.
type BoundingBox struct {
	Min r3.Vector
	Max r3.Vector
}

// NewBoundingBox builds a box from two corner arrays as stored in metadata.
func NewBoundingBox(min, max [3]float64) BoundingBox {
	return BoundingBox{
		Min: r3.Vector{X: min[0], Y: min[1], Z: min[2]},
		Max: r3.Vector{X: max[0], Y: max[1], Z: max[2]},
	}
}

// String returns the box as "[min - max]".
func (b BoundingBox) String() string {
	return fmt.Sprintf("[%v - %v]", b.Min, b.Max)
}

// Size returns the extent along each axis.
func (b BoundingBox) Size() r3.Vector {
	return b.Max.Sub(b.Min)
}

// Center returns the midpoint of the box.
func (b BoundingBox) Center() r3.Vector {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Volume returns the product of the three extents.
func (b BoundingBox) Volume() float64 {
	s := b.Size()
	return s.X * s.Y * s.Z
}

// Valid reports whether Min <= Max on every axis.
func (b BoundingBox) Valid() bool {
	return b.Min.X <= b.Max.X && b.Min.Y <= b.Max.Y && b.Min.Z <= b.Max.Z
}

// Contains reports whether p lies inside the box, boundaries included.
func (b BoundingBox) Contains(p r3.Vector) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Intersection returns the overlap of two boxes and whether it has a
// non-empty interior.
func (b BoundingBox) Intersection(other BoundingBox) (BoundingBox, bool) {
	out := BoundingBox{
		Min: r3.Vector{X: max(b.Min.X, other.Min.X), Y: max(b.Min.Y, other.Min.Y), Z: max(b.Min.Z, other.Min.Z)},
		Max: r3.Vector{X: min(b.Max.X, other.Max.X), Y: min(b.Max.Y, other.Max.Y), Z: min(b.Max.Z, other.Max.Z)},
	}
	interior := out.Min.X < out.Max.X && out.Min.Y < out.Max.Y && out.Min.Z < out.Max.Z
	return out, interior
}

// ChildBox returns the octant of b selected by the low three bits of index.
// For each axis the upper half raises Min by half the extent, otherwise Max
// is lowered by half the extent.
func (b BoundingBox) ChildBox(index int) BoundingBox {
	lo, hi := b.Min, b.Max
	half := b.Size().Mul(0.5)

	if index&OctantZ != 0 {
		lo.Z += half.Z
	} else {
		hi.Z -= half.Z
	}

	if index&OctantY != 0 {
		lo.Y += half.Y
	} else {
		hi.Y -= half.Y
	}

	if index&OctantX != 0 {
		lo.X += half.X
	} else {
		hi.X -= half.X
	}

	return BoundingBox{Min: lo, Max: hi}
}
