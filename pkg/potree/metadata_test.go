package potree

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMetadata(t *testing.T) {
	m, err := ParseMetadata(createTestMetadata(t, 66))
	require.NoError(t, err)

	assert.Equal(t, "2.0", *m.Version)
	assert.Equal(t, int64(1234), *m.Points)
	assert.Equal(t, []float64{16, 16, 16}, m.BoundingBox.Max)
	assert.Equal(t, int64(66), *m.Hierarchy.FirstChunkSize)
	require.Len(t, m.Attributes, 3)
	assert.Nil(t, m.Attributes[0].Min[2])
}

func TestParseMetadataMissingFields(t *testing.T) {
	fields := []string{"version", "points", "spacing", "boundingBox", "scale", "offset", "hierarchy", "attributes"}

	for _, field := range fields {
		t.Run(field, func(t *testing.T) {
			var doc map[string]any
			require.NoError(t, json.Unmarshal(createTestMetadata(t, 22), &doc))
			delete(doc, field)
			data, err := json.Marshal(doc)
			require.NoError(t, err)

			_, err = ParseMetadata(data)
			assert.ErrorIs(t, err, ErrMalformedMetadata)
			assert.Contains(t, err.Error(), field)
		})
	}
}

func TestParseMetadataNestedFields(t *testing.T) {
	var doc map[string]any
	require.NoError(t, json.Unmarshal(createTestMetadata(t, 22), &doc))
	delete(doc["hierarchy"].(map[string]any), "stepSize")
	data, _ := json.Marshal(doc)

	_, err := ParseMetadata(data)
	assert.ErrorIs(t, err, ErrMalformedMetadata)
	assert.Contains(t, err.Error(), "hierarchy.stepSize")
}

func TestParseMetadataTripleLength(t *testing.T) {
	tests := []struct {
		name  string
		field string
		edit  func(doc map[string]any)
	}{
		{"short min", "boundingBox.min", func(doc map[string]any) {
			doc["boundingBox"].(map[string]any)["min"] = []float64{0, 0}
		}},
		{"long max", "boundingBox.max", func(doc map[string]any) {
			doc["boundingBox"].(map[string]any)["max"] = []float64{1, 1, 1, 9}
		}},
		{"short scale", "scale", func(doc map[string]any) {
			doc["scale"] = []float64{1}
		}},
		{"empty offset", "offset", func(doc map[string]any) {
			doc["offset"] = []float64{}
		}},
		{"null min", "boundingBox.min", func(doc map[string]any) {
			doc["boundingBox"].(map[string]any)["min"] = nil
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var doc map[string]any
			require.NoError(t, json.Unmarshal(createTestMetadata(t, 22), &doc))
			tt.edit(doc)
			data, err := json.Marshal(doc)
			require.NoError(t, err)

			_, err = ParseMetadata(data)
			assert.ErrorIs(t, err, ErrMalformedMetadata)
			assert.Contains(t, err.Error(), tt.field)

			_, err = Load(data, createTestHierarchy(Record{Type: NodeLeaf}))
			assert.ErrorIs(t, err, ErrMalformedMetadata)
		})
	}
}

func TestParseMetadataFileMissing(t *testing.T) {
	_, err := ParseMetadataFile("/nonexistent/metadata.json")
	assert.Error(t, err)
}
