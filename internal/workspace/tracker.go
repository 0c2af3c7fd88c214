// Package workspace tracks the browser's main window so that tab activations
// in it can be treated as workspace switches.
package workspace

import "sync"

// WindowTypeNormal is the browser window type eligible as main window.
const WindowTypeNormal = "normal"

// Tracker binds the first normal window as the main window.
// The zero value is ready to use and unbound.
type Tracker struct {
	mu     sync.RWMutex
	bound  bool
	mainID int
}

// ObserveWindowCreated binds windowID as the main window if none is bound yet
// and the window is a normal one. Returns true if this call bound it.
func (t *Tracker) ObserveWindowCreated(windowID int, windowType string) bool {
	if windowType != WindowTypeNormal {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.bound {
		return false
	}
	t.bound = true
	t.mainID = windowID
	return true
}

// MainWindow returns the bound main window id.
func (t *Tracker) MainWindow() (id int, ok bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.mainID, t.bound
}

// IsMainWindow reports whether windowID is the bound main window.
// Always false before a main window is bound.
func (t *Tracker) IsMainWindow(windowID int) bool {
	id, ok := t.MainWindow()
	return ok && id == windowID
}
