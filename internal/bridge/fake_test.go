package bridge_test

import (
	"errors"
	"sync"

	"github.com/dshills/folio/internal/bridge"
)

// fakeSurface records calls and replies from a table of scripted answers.
type fakeSurface struct {
	mu       sync.Mutex
	calls    []string
	replies  map[string]string
	loadErr  error
	listener bridge.Listener
	block    chan struct{}
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{replies: map[string]string{}}
}

func (f *fakeSurface) Load(url string) error {
	f.record("load " + url)
	if f.block != nil {
		<-f.block
	}
	return f.loadErr
}

func (f *fakeSurface) Evaluate(source string) (string, error) {
	f.record(source)
	f.mu.Lock()
	reply, ok := f.replies[source]
	f.mu.Unlock()
	if !ok {
		return "", errors.New("unknown script")
	}
	return reply, nil
}

func (f *fakeSurface) SetListener(l bridge.Listener) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listener = l
}

func (f *fakeSurface) currentListener() bridge.Listener {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listener
}

func (f *fakeSurface) record(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, s)
}

func (f *fakeSurface) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type listenerFunc struct {
	mu    sync.Mutex
	urls  []string
	pages [][2]int
	taps  int
}

func (l *listenerFunc) PositionChanged(url string, page, count int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.urls = append(l.urls, url)
	l.pages = append(l.pages, [2]int{page, count})
}

func (l *listenerFunc) CenterTapped() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.taps++
}
