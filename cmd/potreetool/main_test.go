package main

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/potree-loader/internal/config"
	"github.com/Faultbox/potree-loader/internal/logger"
)

const testMetadata = `{
  "version": "2.0",
  "name": "cli_fixture",
  "points": 3,
  "spacing": 1.0,
  "boundingBox": {"min": [0, 0, 0], "max": [8, 8, 8]},
  "scale": [0.001, 0.001, 0.001],
  "offset": [0, 0, 0],
  "hierarchy": {"firstChunkSize": 44, "stepSize": 4, "depth": 1},
  "attributes": [
    {"name": "position", "size": 12, "numElements": 3, "elementSize": 4, "type": "int32", "min": [0, 0, 0], "max": [8, 8, 8]},
    {"name": "intensity", "size": 2, "numElements": 1, "elementSize": 2, "type": "uint16", "min": [0], "max": [65535]},
    {"name": "rgb", "size": 6, "numElements": 3, "elementSize": 2, "type": "uint16", "min": [0, 0, 0], "max": [65535, 65535, 65535]}
  ]
}`

// createTestDataset writes a two-node dataset: root with two points and
// leaf r0 with one.
func createTestDataset(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	hierarchy := new(bytes.Buffer)
	for _, rec := range []struct {
		typ, mask    uint8
		numPoints    uint32
		offset, size uint64
	}{
		{0, 0b1, 2, 0, 40},
		{1, 0, 1, 40, 20},
	} {
		hierarchy.WriteByte(rec.typ)
		hierarchy.WriteByte(rec.mask)
		binary.Write(hierarchy, binary.LittleEndian, rec.numPoints)
		binary.Write(hierarchy, binary.LittleEndian, rec.offset)
		binary.Write(hierarchy, binary.LittleEndian, rec.size)
	}

	points := new(bytes.Buffer)
	for i := int32(1); i <= 3; i++ {
		binary.Write(points, binary.LittleEndian, [3]int32{i * 1000, i * 1000, i * 1000})
		binary.Write(points, binary.LittleEndian, uint16(i*10))
		binary.Write(points, binary.LittleEndian, [3]uint16{1, 2, 3})
	}

	require.NoError(t, os.WriteFile(filepath.Join(dir, "metadata.json"), []byte(testMetadata), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hierarchy.bin"), hierarchy.Bytes(), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "octree.bin"), points.Bytes(), 0644))
	return dir
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	require.NoError(t, logger.InitWithFileConfig("error", logger.FileConfig{}, false))

	cfg := config.Default()
	cfg.Data.Dir = createTestDataset(t)
	return cfg
}

func TestCmdInfo(t *testing.T) {
	cfg := testConfig(t)

	var out bytes.Buffer
	require.NoError(t, cmdInfo(cfg, nil, &out))

	text := out.String()
	assert.Contains(t, text, "Name:      cli_fixture")
	assert.Contains(t, text, "records      2")
	assert.Contains(t, text, "nodes        2 (2 reachable)")
	assert.NotContains(t, text, "with points")
	assert.Contains(t, text, "Attributes (20 bytes per point):")
}

func TestCmdStats(t *testing.T) {
	cfg := testConfig(t)

	var out bytes.Buffer
	require.NoError(t, cmdStats(cfg, nil, &out))
	assert.Contains(t, out.String(), "Points:    3")

	cfg.Reader.MaxLevel = 0
	out.Reset()
	require.NoError(t, cmdStats(cfg, nil, &out))
	assert.Contains(t, out.String(), "Points:    2")
}

func TestCmdConfigSave(t *testing.T) {
	cfg := testConfig(t)
	cfg.Reader.MaxLevel = 3
	cfg.Export.Color = false
	path := filepath.Join(t.TempDir(), "saved", "potree.yaml")

	var out bytes.Buffer
	require.NoError(t, cmdConfig(cfg, []string{"save", path}, &out))
	assert.Contains(t, out.String(), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	loaded := config.Default()
	require.NoError(t, yaml.Unmarshal(data, loaded))
	assert.Equal(t, *cfg, *loaded)
}

func TestCmdConfigShow(t *testing.T) {
	cfg := testConfig(t)
	cfg.Reader.MaxLevel = 7

	var out bytes.Buffer
	require.NoError(t, cmdConfig(cfg, []string{"show"}, &out))
	assert.Contains(t, out.String(), "max_level: 7")

	assert.Error(t, cmdConfig(cfg, []string{"drop"}, &out))
	assert.Error(t, cmdConfig(cfg, nil, &out))
}
