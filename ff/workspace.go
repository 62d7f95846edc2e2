package ff

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

const workspacePrefix = "vidmerge-"

// workspace is a per-run temp directory holding re-encoded copies.
type workspace struct {
	root string
	Dir  string //fps_changer dir inside root
	once sync.Once
	err  error
}

func acquireWorkspace(base string) (*workspace, error) {
	if base == "" {
		base = os.TempDir()
	}
	root := filepath.Join(base, workspacePrefix+workspaceID())
	dir := filepath.Join(root, "fps_changer")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create workspace")
	}
	return &workspace{root: root, Dir: dir}, nil
}

// release removes the workspace. Only the first call does any work.
func (w *workspace) release() error {
	w.once.Do(func() {
		w.err = os.RemoveAll(w.root)
	})
	return w.err
}

func workspaceID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return id.String()
}

// withWorkspace runs fn inside a fresh workspace when needed, else with nil.
// The workspace is released however fn returns.
func (m *merger) withWorkspace(needed bool, fn func(ws *workspace) error) error {
	if !needed {
		return fn(nil)
	}
	ws, err := acquireWorkspace(m.tempDir)
	if err != nil {
		return err
	}
	m.log.Debug().Str("dir", ws.Dir).Msg("workspace created")
	defer func() {
		if err := ws.release(); err != nil {
			m.log.Warn().Err(err).Str("dir", ws.root).Msg("workspace cleanup failed")
			return
		}
		m.log.Debug().Str("dir", ws.root).Msg("workspace removed")
	}()
	return fn(ws)
}
