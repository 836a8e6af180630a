package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"sdkgen/internal/domain"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}

func TestWalker_Walk(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "gta_sa", "plugin-sdk.out.functions.csv"))
	writeFile(t, filepath.Join(root, "gta_sa", "plugin-sdk.out.variables.csv"))
	writeFile(t, filepath.Join(root, ".sdkgen", "plugin-sdk.out.functions.csv"))

	w := NewWalker([]string{"**/*.functions.csv"}, []string{"**/.sdkgen/**"})
	files, err := w.Walk(root)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(root, "gta_sa", "plugin-sdk.out.functions.csv"), files[0].Path)
	assert.Equal(t, int64(1), files[0].Size)
}

func TestFindTable(t *testing.T) {
	root := t.TempDir()
	pattern := "**/plugin-sdk.out.functions.csv"
	w := NewWalker([]string{pattern}, nil)

	_, err := FindTable(w, root, pattern)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTableNotFound))
	assert.Contains(t, err.Error(), "re-running IDA plugin-sdk exporter")

	_, err = FindTable(w, filepath.Join(root, "missing"), pattern)
	assert.True(t, errors.Is(err, domain.ErrTableNotFound))

	writeFile(t, filepath.Join(root, "b", "plugin-sdk.out.functions.csv"))
	writeFile(t, filepath.Join(root, "a", "plugin-sdk.out.functions.csv"))

	table, err := FindTable(w, root, pattern)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "a", "plugin-sdk.out.functions.csv"), table.Path)
}
