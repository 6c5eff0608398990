package app

import (
	"errors"
	"unicode/utf8"

	"github.com/dshills/folio/internal/command"
	"github.com/dshills/folio/internal/terminal"
	"github.com/dshills/folio/internal/theme"
)

// textStep is the text size change per key press.
const textStep = 0.1

// Display is a terminal the application draws on.
type Display interface {
	Size() (width, height int)
	Draw(terminal.View)
	// PollEvent blocks for input and returns false once the display closes.
	PollEvent() (terminal.Input, bool)
}

// uiState is the chrome owned by the application rather than the session.
type uiState struct {
	prompting bool
	prompt    string
	message   string
	width     int
	height    int
	rows      int
}

// Run attaches the surface at the display's size and processes input until
// the reader quits or the display closes.
func (app *Application) Run(d Display) error {
	w, h := d.Size()
	app.fit(w, h)
	app.conn.Attach(app.surface)

	inputs := make(chan terminal.Input)
	done := make(chan struct{})
	defer close(done)
	go func() {
		defer close(inputs)
		for {
			in, ok := d.PollEvent()
			if !ok {
				return
			}
			select {
			case inputs <- in:
			case <-done:
				return
			}
		}
	}()

	app.draw(d)
	for {
		select {
		case in, ok := <-inputs:
			if !ok {
				return nil
			}
			if err := app.handleInput(in); err != nil {
				if errors.Is(err, ErrQuit) {
					return nil
				}
				return err
			}
			app.draw(d)
		case <-app.redraw:
			app.draw(d)
		}
	}
}

func (app *Application) draw(d Display) {
	st := app.session.Snapshot()

	app.mu.Lock()
	ui := app.ui
	app.mu.Unlock()

	view := terminal.View{
		Page: app.surface.Page(),
		Status: terminal.Status{
			Title:        st.ChapterTitle,
			Page:         st.CurrentPage,
			Count:        st.PageCount,
			BookProgress: st.BookProgress,
			Visible:      st.UIVisible,
			Prompting:    ui.prompting,
			Prompt:       ui.prompt,
			Message:      ui.message,
		},
	}
	// The status bar may have appeared or gone since the last frame.
	if rows := view.TextRows(ui.height); rows != ui.rows && ui.width > 0 {
		app.fit(ui.width, ui.height)
	}
	d.Draw(view)
}

// fit sizes the surface to the text area of a width x height display.
func (app *Application) fit(width, height int) {
	st := app.session.Snapshot()

	app.mu.Lock()
	app.ui.width, app.ui.height = width, height
	status := terminal.Status{
		Visible:   st.UIVisible,
		Prompting: app.ui.prompting,
		Message:   app.ui.message,
	}
	rows := terminal.View{Status: status}.TextRows(height)
	changed := rows != app.ui.rows
	app.ui.rows = rows
	app.mu.Unlock()

	if changed && width > 0 && rows > 0 {
		app.surface.Resize(width, rows)
	}
}

func (app *Application) setMessage(msg string) {
	app.mu.Lock()
	app.ui.message = msg
	app.mu.Unlock()
	app.requestRedraw()
}

func (app *Application) handleInput(in terminal.Input) error {
	app.mu.Lock()
	prompting := app.ui.prompting
	app.ui.message = ""
	app.mu.Unlock()

	if prompting {
		return app.handlePrompt(in)
	}

	if in.Action.Repeats() && !app.limiter.Allow() {
		return nil
	}

	switch in.Action {
	case terminal.ActionPageNext:
		app.session.Submit(command.OpenPageNext{})
	case terminal.ActionPagePrevious:
		app.session.Submit(command.OpenPagePrevious{})
	case terminal.ActionChapterNext:
		app.session.Submit(command.OpenChapterNext{})
	case terminal.ActionChapterPrevious:
		app.session.Submit(command.OpenChapterPrevious{})
	case terminal.ActionBookmark:
		app.session.Submit(command.BookmarkCreate{})
	case terminal.ActionTextLarger:
		app.adjustTheme(func(t theme.Theme) (theme.Theme, error) { return t.WithTextSize(t.TextSize + textStep) })
	case terminal.ActionTextSmaller:
		app.adjustTheme(func(t theme.Theme) (theme.Theme, error) { return t.WithTextSize(t.TextSize - textStep) })
	case terminal.ActionCycleColorScheme:
		app.adjustTheme(func(t theme.Theme) (theme.Theme, error) { return t.WithColorScheme(t.ColorScheme.Next()) })
	case terminal.ActionSearch:
		app.mu.Lock()
		app.ui.prompting, app.ui.prompt = true, ""
		app.mu.Unlock()
	case terminal.ActionCancel:
		app.session.Submit(command.CancelSearch{})
	case terminal.ActionTap:
		app.surface.Tap(in.X)
	case terminal.ActionResize:
		app.fit(in.Width, in.Height)
	case terminal.ActionQuit:
		return ErrQuit
	}
	return nil
}

func (app *Application) handlePrompt(in terminal.Input) error {
	app.mu.Lock()
	defer app.mu.Unlock()

	switch {
	case in.Action == terminal.ActionQuit && in.Rune == 0:
		return ErrQuit
	case in.Action == terminal.ActionCancel:
		app.ui.prompting = false
	case in.Action == terminal.ActionSubmit:
		app.ui.prompting = false
		if app.ui.prompt != "" {
			app.session.Submit(command.Search{Query: app.ui.prompt})
		}
	case in.Action == terminal.ActionBackspace:
		if _, size := utf8.DecodeLastRuneInString(app.ui.prompt); size > 0 {
			app.ui.prompt = app.ui.prompt[:len(app.ui.prompt)-size]
		}
	case in.Rune != 0:
		app.ui.prompt += string(in.Rune)
	}
	return nil
}

// adjustTheme submits a theme derived from the current one. Out of range
// values are reported on the status bar.
func (app *Application) adjustTheme(fn func(theme.Theme) (theme.Theme, error)) {
	next, err := fn(app.session.Theme())
	if err != nil {
		app.setMessage(err.Error())
		return
	}
	app.session.Submit(command.ThemeSet{Theme: next})
}
