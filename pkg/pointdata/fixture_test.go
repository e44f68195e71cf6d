package pointdata

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Faultbox/potree-loader/pkg/potree"
)

type rawPoint struct {
	X, Y, Z   int32
	Intensity uint16
	R, G, B   uint16
}

// testPoints are stored as: root payload = first two, r0 payload = last three.
var testPoints = []rawPoint{
	{1000, 2000, 3000, 10, 255, 0, 0},
	{-500, 0, 250, 20, 0, 255, 0},
	{4000, 4000, 4000, 30, 0, 0, 255},
	{5000, 6000, 7000, 40, 1, 2, 3},
	{8000, 8000, 8000, 50, 9, 9, 9},
}

const testStride = 20

func metadataJSON(attributes string) []byte {
	return []byte(fmt.Sprintf(`{
  "version": "2.0",
  "name": "fixture",
  "description": "",
  "points": 5,
  "projection": "",
  "hierarchy": {"firstChunkSize": 44, "stepSize": 4, "depth": 1},
  "offset": [0, 0, 0],
  "scale": [0.001, 0.001, 0.001],
  "spacing": 1.0,
  "boundingBox": {"min": [0, 0, 0], "max": [10, 10, 10]},
  "attributes": [%s]
}`, attributes))
}

const (
	attrPosition  = `{"name": "position", "description": "", "size": 12, "numElements": 3, "elementSize": 4, "type": "int32", "min": [0, 0, 0], "max": [10, 10, 10]}`
	attrIntensity = `{"name": "intensity", "description": "", "size": 2, "numElements": 1, "elementSize": 2, "type": "uint16", "min": [0], "max": [65535]}`
	attrRGB       = `{"name": "rgb", "description": "", "size": 6, "numElements": 3, "elementSize": 2, "type": "uint16", "min": [0, 0, 0], "max": [65535, 65535, 65535]}`
)

func encodeRecord(buf *bytes.Buffer, typ, mask uint8, numPoints uint32, offset, size uint64) {
	buf.WriteByte(typ)
	buf.WriteByte(mask)
	binary.Write(buf, binary.LittleEndian, numPoints)
	binary.Write(buf, binary.LittleEndian, offset)
	binary.Write(buf, binary.LittleEndian, size)
}

// testHierarchy: root (Normal, 2 points) -> r0 (Leaf, 3 points).
func testHierarchy() []byte {
	buf := new(bytes.Buffer)
	encodeRecord(buf, 0, 0b1, 2, 0, 2*testStride)
	encodeRecord(buf, 1, 0, 3, 2*testStride, 3*testStride)
	return buf.Bytes()
}

func encodePoints(points []rawPoint) []byte {
	buf := new(bytes.Buffer)
	for _, p := range points {
		binary.Write(buf, binary.LittleEndian, [3]int32{p.X, p.Y, p.Z})
		binary.Write(buf, binary.LittleEndian, p.Intensity)
		binary.Write(buf, binary.LittleEndian, [3]uint16{p.R, p.G, p.B})
	}
	return buf.Bytes()
}

func loadTestTree(t *testing.T, attributes string) *potree.Octree {
	t.Helper()
	tree, err := potree.Load(metadataJSON(attributes), testHierarchy())
	require.NoError(t, err)
	return tree
}

// writePointFile writes data to a temporary octree.bin and opens it.
func writePointFile(t *testing.T, data []byte) *File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "octree.bin")
	require.NoError(t, os.WriteFile(path, data, 0644))

	f, err := OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

// memSource serves ranges from memory and counts reads.
type memSource struct {
	data  []byte
	reads int
}

func (m *memSource) ReadRange(offset, length uint64, dst []byte) (int, error) {
	m.reads++
	if offset >= uint64(len(m.data)) {
		return 0, nil
	}
	end := min(offset+length, uint64(len(m.data)))
	return copy(dst[:length], m.data[offset:end]), nil
}
