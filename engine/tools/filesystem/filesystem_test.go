package filesystem

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GEOGUANSIN/normCode-sub001/engine/core"
)

func newTestFS(t *testing.T) *FS {
	t.Helper()
	cwd, err := core.CWDFromPath(t.TempDir())
	require.NoError(t, err)
	return NewWithFs(cwd, afero.NewMemMapFs())
}

func TestFS_SaveAndRead(t *testing.T) {
	t.Run("Should round-trip content through save then read", func(t *testing.T) {
		fs := newTestFS(t)
		loc, err := fs.Save("forty-two", "out.txt")
		require.NoError(t, err)
		assert.Equal(t, "out.txt", loc)

		content, err := fs.Read("out.txt")
		require.NoError(t, err)
		assert.Equal(t, "forty-two", content)
	})

	t.Run("Should error clearly for a missing file", func(t *testing.T) {
		fs := newTestFS(t)
		_, err := fs.Read("nope.txt")
		assert.ErrorContains(t, err, "file not found")
	})
}

func TestFS_Exists(t *testing.T) {
	t.Run("Should report false before save and true after", func(t *testing.T) {
		fs := newTestFS(t)
		assert.False(t, fs.Exists("tool.py"))
		_, err := fs.Save("def main(x):\n    return x*2\n", "tool.py")
		require.NoError(t, err)
		assert.True(t, fs.Exists("tool.py"))
	})
}

func TestFS_SaveFromDict(t *testing.T) {
	t.Run("Should write one file per dict entry under the directory", func(t *testing.T) {
		fs := newTestFS(t)
		saved, err := fs.SaveFromDict(map[string]any{"a.txt": "A", "b.txt": "B"}, "out")
		require.NoError(t, err)
		assert.Len(t, saved, 2)
		content, err := fs.Read(saved["a.txt"])
		require.NoError(t, err)
		assert.Equal(t, "A", content)
	})
}

func TestFS_MemorizedValue(t *testing.T) {
	t.Run("Should read back a previously written memorized value", func(t *testing.T) {
		fs := newTestFS(t)
		fs.WriteMemorizedValue("k", "v")
		v, err := fs.ReadMemorizedValue("k")
		require.NoError(t, err)
		assert.Equal(t, "v", v)
	})

	t.Run("Should error for an unknown memorized value", func(t *testing.T) {
		fs := newTestFS(t)
		_, err := fs.ReadMemorizedValue("missing")
		assert.Error(t, err)
	})
}

func TestFS_Invoke(t *testing.T) {
	t.Run("Should dispatch save then read through Invoke", func(t *testing.T) {
		fs := newTestFS(t)
		saveResult, err := fs.Invoke("save", map[string]any{"content": "hi", "location": "x.txt"}, nil)
		require.NoError(t, err)
		assert.Equal(t, "ok", saveResult.(map[string]any)["status"])

		readResult, err := fs.Invoke("read", map[string]any{"path": "x.txt"}, nil)
		require.NoError(t, err)
		assert.Equal(t, "hi", readResult.(map[string]any)["content"])
	})

	t.Run("Should surface a read error as a status:error envelope, not a Go error", func(t *testing.T) {
		fs := newTestFS(t)
		result, err := fs.Invoke("read", map[string]any{"path": "missing.txt"}, nil)
		require.NoError(t, err)
		assert.Equal(t, "error", result.(map[string]any)["status"])
	})

	t.Run("Should error for an unknown method", func(t *testing.T) {
		fs := newTestFS(t)
		_, err := fs.Invoke("nope", nil, nil)
		assert.Error(t, err)
	})
}
