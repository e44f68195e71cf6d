package potree

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"testing"
)

// writeRecord appends one 22-byte hierarchy record to buf.
func writeRecord(buf *bytes.Buffer, rec Record) {
	buf.WriteByte(byte(rec.Type))
	buf.WriteByte(rec.ChildMask)
	binary.Write(buf, binary.LittleEndian, rec.NumPoints)
	binary.Write(buf, binary.LittleEndian, rec.ByteOffset)
	binary.Write(buf, binary.LittleEndian, rec.ByteSize)
}

// createTestHierarchy encodes records back to back.
func createTestHierarchy(recs ...Record) []byte {
	buf := new(bytes.Buffer)
	for _, r := range recs {
		writeRecord(buf, r)
	}
	return buf.Bytes()
}

// createTestMetadata returns a metadata document with a position/intensity/rgb
// schema. firstChunkSize is the size of the root page in bytes.
func createTestMetadata(t *testing.T, firstChunkSize int) []byte {
	t.Helper()

	doc := map[string]any{
		"version":     "2.0",
		"name":        "sparse_junction",
		"description": "test cloud",
		"points":      1234,
		"projection":  "",
		"spacing":     2.5,
		"boundingBox": map[string]any{
			"min": []float64{0, 0, 0},
			"max": []float64{16, 16, 16},
		},
		"scale":  []float64{0.001, 0.001, 0.001},
		"offset": []float64{0, 0, 0},
		"hierarchy": map[string]any{
			"firstChunkSize": firstChunkSize,
			"stepSize":       4,
			"depth":          3,
		},
		"attributes": []map[string]any{
			{
				"name": "position", "description": "", "size": 12, "numElements": 3,
				"elementSize": 4, "type": "int32",
				"min": []any{-1.5, 0.0, nil}, "max": []any{10.0, 12.0, nil},
			},
			{
				"name": "intensity", "description": "", "size": 2, "numElements": 1,
				"elementSize": 2, "type": "uint16",
				"min": []any{0}, "max": []any{65535},
			},
			{
				"name": "rgb", "description": "", "size": 6, "numElements": 3,
				"elementSize": 2, "type": "uint16",
				"min": []any{0, 0, 0}, "max": []any{255, 255, 255},
			},
		},
	}

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("failed to marshal metadata: %v", err)
	}
	return data
}
