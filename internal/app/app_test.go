package app_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/folio/internal/app"
	"github.com/dshills/folio/internal/bookmark"
	"github.com/dshills/folio/internal/bookmark/store"
	"github.com/dshills/folio/internal/terminal"
	"github.com/dshills/folio/internal/theme"
)

const manifest = `
id: moby
title: Moby Dick
reading_order:
  - href: one.xhtml
    title: Loomings
  - href: two.xhtml
    title: The Carpet-Bag
toc:
  - href: one.xhtml
    title: Loomings
  - href: two.xhtml
    title: The Carpet-Bag
`

func chapter(name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<html><body><h1>%s</h1>", name)
	for i := 1; i <= 10; i++ {
		fmt.Fprintf(&b, "<p>%s paragraph %d about the whale</p>", name, i)
	}
	b.WriteString("</body></html>")
	return b.String()
}

// writeBook creates a book directory and returns it with a database path.
func writeBook(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	book := filepath.Join(dir, "book")
	require.NoError(t, os.Mkdir(book, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(book, "book.yaml"), []byte(manifest), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(book, "one.xhtml"), []byte(chapter("One")), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(book, "two.xhtml"), []byte(chapter("Two")), 0o644))
	return book, filepath.Join(dir, "marks.db")
}

// display is a scripted Display.
type display struct {
	w, h   int
	inputs chan terminal.Input

	mu    sync.Mutex
	views []terminal.View
}

func newDisplay(w, h int) *display {
	return &display{w: w, h: h, inputs: make(chan terminal.Input, 16)}
}

func (d *display) Size() (int, int) { return d.w, d.h }

func (d *display) Draw(v terminal.View) {
	d.mu.Lock()
	d.views = append(d.views, v)
	d.mu.Unlock()
}

func (d *display) PollEvent() (terminal.Input, bool) {
	in, ok := <-d.inputs
	return in, ok
}

func (d *display) last() terminal.View {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.views) == 0 {
		return terminal.View{}
	}
	return d.views[len(d.views)-1]
}

func (d *display) key(r rune) {
	d.inputs <- terminal.Translate(tcellRune(r))
}

func (d *display) send(a terminal.Action) {
	d.inputs <- terminal.Input{Action: a}
}

func waitLastRead(t *testing.T, a *app.Application, path string) {
	t.Helper()
	require.Eventually(t, func() bool {
		lr, ok := bookmark.FindLastRead(a.Session().Bookmarks())
		return ok && lr.Locator.Href.Path() == path
	}, 2*time.Second, 5*time.Millisecond)
}

type running struct {
	app  *app.Application
	disp *display
	done chan error
}

func start(t *testing.T, opts app.Options) *running {
	t.Helper()
	a, err := app.New(opts)
	require.NoError(t, err)

	r := &running{app: a, disp: newDisplay(40, 8), done: make(chan error, 1)}
	go func() { r.done <- a.Run(r.disp) }()
	t.Cleanup(a.Shutdown)

	require.Eventually(t, func() bool {
		return a.Session().Snapshot().PageCount > 1
	}, 2*time.Second, 5*time.Millisecond, "first chapter opens once the display attaches")
	return r
}

func (r *running) quit(t *testing.T) {
	t.Helper()
	r.disp.send(terminal.ActionQuit)
	select {
	case err := <-r.done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after quit")
	}
}

func TestRunNavigatesAndPersistsBookmarks(t *testing.T) {
	book, db := writeBook(t)
	r := start(t, app.Options{BookPath: book, Environ: map[string]string{"FOLIO_STORAGE_PATH": db}})
	sess := r.app.Session()

	r.disp.send(terminal.ActionPageNext)
	require.Eventually(t, func() bool { return sess.Position().CurrentPage == 2 }, 2*time.Second, 5*time.Millisecond)

	r.disp.send(terminal.ActionBookmark)
	require.Eventually(t, func() bool {
		for _, b := range sess.Bookmarks() {
			if b.Kind == bookmark.Explicit {
				return true
			}
		}
		return false
	}, 2*time.Second, 5*time.Millisecond)

	r.disp.send(terminal.ActionChapterNext)
	require.Eventually(t, func() bool { return sess.Position().ChapterIndex == 1 }, 2*time.Second, 5*time.Millisecond)
	waitLastRead(t, r.app, "two.xhtml")

	r.quit(t)
	r.app.Shutdown()

	st, err := store.Open(db, nil)
	require.NoError(t, err)
	defer st.Close()
	marks, err := st.Load(context.Background(), "moby")
	require.NoError(t, err)

	kinds := map[bookmark.Kind]int{}
	for _, b := range marks {
		kinds[b.Kind]++
	}
	assert.Equal(t, 1, kinds[bookmark.Explicit])
	assert.Equal(t, 1, kinds[bookmark.LastRead])

	lr, ok := bookmark.FindLastRead(marks)
	require.True(t, ok)
	assert.Equal(t, "two.xhtml", lr.Locator.Href.Path())
}

func TestReopenResumesAtLastRead(t *testing.T) {
	book, db := writeBook(t)
	env := map[string]string{"FOLIO_STORAGE_PATH": db}

	r := start(t, app.Options{BookPath: book, Environ: env})
	r.disp.send(terminal.ActionChapterNext)
	waitLastRead(t, r.app, "two.xhtml")
	r.quit(t)
	r.app.Shutdown()

	r = start(t, app.Options{BookPath: book, Environ: env})
	assert.Equal(t, 1, r.app.Session().Position().ChapterIndex)
	r.quit(t)
}

func TestSearchPrompt(t *testing.T) {
	book, db := writeBook(t)
	r := start(t, app.Options{BookPath: book, Environ: map[string]string{"FOLIO_STORAGE_PATH": db}})

	r.disp.key('/')
	for _, c := range "whalx" {
		r.disp.key(c)
	}
	r.disp.send(terminal.ActionBackspace)
	r.disp.key('e')
	require.Eventually(t, func() bool {
		v := r.disp.last()
		return v.Status.Prompting && v.Status.Prompt == "whale"
	}, 2*time.Second, 5*time.Millisecond)

	r.disp.send(terminal.ActionSubmit)
	require.Eventually(t, func() bool {
		return strings.Contains(r.disp.last().Status.Message, `matches for "whale"`)
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"whale"}, r.app.Session().Snapshot().Terms)

	r.disp.send(terminal.ActionCancel)
	require.Eventually(t, func() bool { return len(r.app.Session().Snapshot().Terms) == 0 }, 2*time.Second, 5*time.Millisecond)
	r.quit(t)
}

func TestThemeKeys(t *testing.T) {
	book, db := writeBook(t)
	r := start(t, app.Options{BookPath: book, Environ: map[string]string{"FOLIO_STORAGE_PATH": db}})
	sess := r.app.Session()

	r.disp.key('+')
	require.Eventually(t, func() bool { return sess.Theme().TextSize > 1.05 }, 2*time.Second, 5*time.Millisecond)
	assert.InDelta(t, 1.1, sess.Theme().TextSize, 1e-9)

	r.disp.key('t')
	require.Eventually(t, func() bool { return sess.Theme().ColorScheme == theme.ColorSchemeDark }, 2*time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return r.disp.last().Page.ColorScheme == "dark" }, 2*time.Second, 5*time.Millisecond)
	r.quit(t)
}

func TestCenterTapShowsStatusBar(t *testing.T) {
	book, db := writeBook(t)
	r := start(t, app.Options{BookPath: book, Environ: map[string]string{"FOLIO_STORAGE_PATH": db}})

	assert.False(t, r.app.Session().UIVisible())
	r.disp.inputs <- terminal.Input{Action: terminal.ActionTap, X: 20}
	require.Eventually(t, func() bool {
		v := r.disp.last()
		return v.Status.Visible && v.Status.Title == "Loomings"
	}, 2*time.Second, 5*time.Millisecond)
	r.quit(t)
}

func TestConfigReloadAppliesTheme(t *testing.T) {
	book, db := writeBook(t)
	cfgPath := filepath.Join(t.TempDir(), "folio.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[theme]\ncolor_scheme = \"light\"\n"), 0o644))

	r := start(t, app.Options{ConfigPath: cfgPath, BookPath: book, Environ: map[string]string{"FOLIO_STORAGE_PATH": db}})

	require.NoError(t, os.WriteFile(cfgPath, []byte("[theme]\ncolor_scheme = \"sepia\"\n"), 0o644))
	require.Eventually(t, func() bool {
		return r.app.Session().Theme().ColorScheme == theme.ColorSchemeSepia
	}, 3*time.Second, 10*time.Millisecond)
	r.quit(t)
}

func TestRunEndsWhenDisplayCloses(t *testing.T) {
	book, db := writeBook(t)
	r := start(t, app.Options{BookPath: book, Environ: map[string]string{"FOLIO_STORAGE_PATH": db}})

	close(r.disp.inputs)
	select {
	case err := <-r.done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
}

func TestNewReportsInitErrors(t *testing.T) {
	_, err := app.New(app.Options{Environ: map[string]string{}})
	var ierr *app.InitError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, "config", ierr.Component)

	_, err = app.New(app.Options{BookPath: t.TempDir(), Environ: map[string]string{
		"FOLIO_STORAGE_PATH": filepath.Join(t.TempDir(), "x.db"),
	}})
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, "publication", ierr.Component)
}
