package ff

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireWorkspace(t *testing.T) {
	base := t.TempDir()
	ws, err := acquireWorkspace(base)
	require.NoError(t, err)
	assert.Equal(t, base, filepath.Dir(ws.root))
	assert.True(t, strings.HasPrefix(filepath.Base(ws.root), workspacePrefix))
	assert.Equal(t, filepath.Join(ws.root, "fps_changer"), ws.Dir)
	assert.DirExists(t, ws.Dir)

	other, err := acquireWorkspace(base)
	require.NoError(t, err)
	assert.NotEqual(t, ws.root, other.root)
}

func TestWorkspaceReleaseIdempotent(t *testing.T) {
	ws, err := acquireWorkspace(t.TempDir())
	require.NoError(t, err)
	touch(t, ws.Dir, "1.mp4")
	require.NoError(t, ws.release())
	assert.NoDirExists(t, ws.root)
	require.NoError(t, ws.release())
}

func TestWithWorkspaceNotNeeded(t *testing.T) {
	base := t.TempDir()
	m := &merger{log: zerolog.Nop(), tempDir: base}
	called := false
	err := m.withWorkspace(false, func(ws *workspace) error {
		called = true
		assert.Nil(t, ws)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
	entries, err := os.ReadDir(base)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWithWorkspaceReleasedOnError(t *testing.T) {
	base := t.TempDir()
	m := &merger{log: zerolog.Nop(), tempDir: base}
	boom := errors.New("boom")
	var root string
	err := m.withWorkspace(true, func(ws *workspace) error {
		require.NotNil(t, ws)
		root = ws.root
		assert.DirExists(t, ws.Dir)
		return boom
	})
	assert.True(t, errors.Is(err, boom))
	assert.NoDirExists(t, root)
}

func TestWithWorkspaceReleasedOnPanic(t *testing.T) {
	base := t.TempDir()
	m := &merger{log: zerolog.Nop(), tempDir: base}
	var root string
	assert.Panics(t, func() {
		_ = m.withWorkspace(true, func(ws *workspace) error {
			root = ws.root
			panic("interrupted")
		})
	})
	assert.NoDirExists(t, root)
}
