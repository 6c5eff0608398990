// Package terminal draws surface pages on a tcell screen and translates
// terminal input into reader actions.
package terminal

import (
	"sync"

	"github.com/gdamore/tcell/v2"
)

// Screen is the part of tcell.Screen the terminal draws through.
type Screen interface {
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
	Size() (width, height int)
	Clear()
	Show()
}

// Terminal owns a tcell screen.
type Terminal struct {
	mu        sync.Mutex
	screen    tcell.Screen
	closeOnce sync.Once
}

// New creates and initializes a terminal screen.
func New() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.EnableMouse()
	screen.HideCursor()
	return &Terminal{screen: screen}, nil
}

// Size returns the screen size in cells.
func (t *Terminal) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.screen.Size()
}

// Draw renders v.
func (t *Terminal) Draw(v View) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v.Draw(t.screen)
}

// PollEvent blocks for the next input and translates it. It returns false
// once the screen has been finalized.
func (t *Terminal) PollEvent() (Input, bool) {
	ev := t.screen.PollEvent()
	if ev == nil {
		return Input{}, false
	}
	return Translate(ev), true
}

// Close restores the terminal. It may be called from a signal handler
// while PollEvent is blocked.
func (t *Terminal) Close() {
	t.closeOnce.Do(func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.screen.Fini()
	})
}
