package veldt

import (
	"sync"

	"github.com/rotisserie/eris"

	"github.com/veldt-dev/veldt/access"
)

var (
	ErrExclusiveActive = eris.New("exclusive access window is active")
	ErrSharedActive    = eris.New("cannot acquire exclusive access while other windows are active")
	ErrWindowReleased  = eris.New("access window already released")
)

type windowState struct {
	mu        sync.Mutex
	shared    int
	exclusive bool
}

// Window is the capability object for one access window over the world's
// storage. Its mode is checked once, at acquisition: a FullMut window is
// granted only when nothing else is active, and nothing is granted while a
// FullMut window lives. Within the window access is unchecked pointer
// work; staying inside the granted mode and the claim sets verified by the
// scheduler is the caller's contract, not a per-access runtime check.
type Window struct {
	world    *World
	mode     access.Mode
	released bool
}

// Acquire opens an access window at the given mode. ReadOnly and DataMut
// windows may coexist; the scheduler is responsible for only co-scheduling
// systems whose claim sets do not conflict. FullMut demands the storage to
// itself.
func (w *World) Acquire(mode access.Mode) (*Window, error) {
	ws := &w.windows
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if ws.exclusive {
		return nil, eris.Wrap(ErrExclusiveActive, mode.String())
	}
	if mode == access.FullMut {
		if ws.shared > 0 {
			return nil, eris.Wrapf(ErrSharedActive, "%d windows active", ws.shared)
		}
		ws.exclusive = true
	} else {
		ws.shared++
	}
	return &Window{world: w, mode: mode}, nil
}

// Mode returns the access mode this window was granted.
func (win *Window) Mode() access.Mode {
	return win.mode
}

// World returns the storage surface the window grants access to. Callers
// must stay within the window's mode: structural changes (spawn, despawn,
// add or remove component) and type registration require FullMut, value
// mutation requires at least DataMut.
func (win *Window) World() (*World, error) {
	if win.released {
		return nil, eris.Wrap(ErrWindowReleased, win.mode.String())
	}
	return win.world, nil
}

// Release closes the window. Releasing twice is a no-op.
func (win *Window) Release() {
	if win.released {
		return
	}
	win.released = true
	ws := &win.world.windows
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if win.mode == access.FullMut {
		ws.exclusive = false
	} else {
		ws.shared--
	}
}
