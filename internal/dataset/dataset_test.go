package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createDataset(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("x"), 0644))
	}
	return dir
}

func TestFind(t *testing.T) {
	dir := createDataset(t, "hierarchy.bin", "octree.bin", "metadata.json", "log.txt", "octree.bin.bak")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "metadata.json.d"), 0755))

	files, err := Find(dir)
	require.NoError(t, err)

	assert.Equal(t, Files{
		Hierarchy: filepath.Join(dir, "hierarchy.bin"),
		Octree:    filepath.Join(dir, "octree.bin"),
		Metadata:  filepath.Join(dir, "metadata.json"),
	}, files)
	assert.NoError(t, files.Validate())
}

func TestFindFromFilePath(t *testing.T) {
	dir := createDataset(t, "hierarchy_v2.bin", "octree_v2.bin", "metadata_v2.json")

	files, err := Find(filepath.Join(dir, "metadata_v2.json"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "octree_v2.bin"), files.Octree)
}

func TestFindPartial(t *testing.T) {
	dir := createDataset(t, "metadata.json")

	files, err := Find(dir)
	require.NoError(t, err)
	assert.Empty(t, files.Hierarchy)
	assert.Empty(t, files.Octree)

	err = files.Validate()
	assert.ErrorIs(t, err, ErrFileNotFound)
	assert.Contains(t, err.Error(), "hierarchy, octree")
}

func TestFindNotADirectory(t *testing.T) {
	_, err := Find("/nonexistent/dataset")
	assert.ErrorIs(t, err, ErrDirectoryRequired)
}

func TestResolveExplicitOverrides(t *testing.T) {
	dir := createDataset(t, "hierarchy.bin", "octree.bin", "metadata.json")

	files, err := Resolve(dir, Files{Octree: "/data/other/octree.bin"})
	require.NoError(t, err)
	assert.Equal(t, "/data/other/octree.bin", files.Octree)
	assert.Equal(t, filepath.Join(dir, "hierarchy.bin"), files.Hierarchy)

	_, err = Resolve("", Files{Metadata: "m.json"})
	assert.ErrorIs(t, err, ErrFileNotFound)

	files, err = Resolve("", Files{Hierarchy: "h.bin", Octree: "o.bin", Metadata: "m.json"})
	require.NoError(t, err)
	assert.Equal(t, "o.bin", files.Octree)
}
