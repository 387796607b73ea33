package probe

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbeExistingPath(t *testing.T) {
	tmpDir := t.TempDir()

	v, err := Probe(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, tmpDir, v.Path)
	assert.Greater(t, v.TotalBytes, int64(0))
	assert.GreaterOrEqual(t, v.FreeBytes, int64(0))
	assert.LessOrEqual(t, v.FreeBytes, v.TotalBytes)
}

func TestProbeResolvesMissingAncestor(t *testing.T) {
	tmpDir := t.TempDir()
	notYetCreated := filepath.Join(tmpDir, "future", "volume", "root")

	v, err := Probe(notYetCreated)
	require.NoError(t, err)
	// The reported Path is the requested volume root, not the ancestor
	// statfs actually ran against.
	assert.Equal(t, notYetCreated, v.Path)
	assert.Greater(t, v.TotalBytes, int64(0))
}

func TestResolveExistingAncestor(t *testing.T) {
	tmpDir := t.TempDir()
	nested := filepath.Join(tmpDir, "a", "b", "c")

	resolved, err := resolveExistingAncestor(nested)
	require.NoError(t, err)
	assert.Equal(t, tmpDir, resolved)

	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "a", "b"), 0755))
	resolved, err = resolveExistingAncestor(nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "a", "b"), resolved)
}

func TestProbeAllCollectsErrorsWithoutAborting(t *testing.T) {
	tmpDir := t.TempDir()

	volumes, errs := ProbeAll([]string{tmpDir, "/dev/null/not/a/real/path"})
	assert.Len(t, volumes, 1, "expected 1 successfully probed volume")
	assert.Len(t, errs, 1, "expected 1 error for the unprobeable path")
}
