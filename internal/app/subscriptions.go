package app

import (
	"context"
	"fmt"

	"github.com/dshills/folio/internal/command"
	"github.com/dshills/folio/internal/config"
	"github.com/dshills/folio/internal/event"
	"github.com/dshills/folio/internal/event/events"
)

// subscribe routes session events to the display. Every reader event
// schedules a redraw; a few also set a status message.
func (app *Application) subscribe() error {
	app.sub = event.NewSubscriber(app.bus)

	if _, err := app.sub.Subscribe("reader.**", event.HandlerFunc(func(context.Context, any) error {
		app.requestRedraw()
		return nil
	})); err != nil {
		return err
	}

	if _, err := event.SubscribePayload(app.sub, events.TopicChapterNonexistent,
		func(_ context.Context, p events.ChapterNonexistent) error {
			app.setMessage("chapter unavailable: " + p.Message)
			return nil
		}); err != nil {
		return err
	}
	if _, err := event.SubscribePayload(app.sub, events.TopicWebViewInaccessible,
		func(_ context.Context, p events.WebViewInaccessible) error {
			app.setMessage("display unavailable: " + p.Message)
			return nil
		}); err != nil {
		return err
	}
	if _, err := event.SubscribePayload(app.sub, events.TopicSearchCompleted,
		func(_ context.Context, p events.SearchCompleted) error {
			app.setMessage(fmt.Sprintf("%d matches for %q", p.Matches, p.Query))
			return nil
		}); err != nil {
		return err
	}
	if _, err := event.SubscribePayload(app.sub, events.TopicBookmarkCreated,
		func(context.Context, events.BookmarkCreated) error {
			app.setMessage("bookmark added")
			return nil
		}); err != nil {
		return err
	}
	if _, err := event.SubscribePayload(app.sub, events.TopicExternalLink,
		func(_ context.Context, p events.ExternalLinkRequested) error {
			app.setMessage("external link: " + p.URL)
			return nil
		}); err != nil {
		return err
	}
	if _, err := event.SubscribePayload(app.sub, events.TopicCommandFailed,
		func(_ context.Context, p events.CommandFailed) error {
			app.log.Warn("%s failed: %v", p.Command.Name(), p.Err)
			return nil
		}); err != nil {
		return err
	}
	return nil
}

// configReloaded applies a changed theme from the watched file.
func (app *Application) configReloaded(cfg *config.Config) {
	th, err := cfg.Theme.Theme()
	if err != nil {
		app.log.Warn("reloaded theme rejected: %v", err)
		return
	}
	if th == app.session.Theme() {
		return
	}
	app.session.Submit(command.ThemeSet{Theme: th})
}

func (app *Application) requestRedraw() {
	select {
	case app.redraw <- struct{}{}:
	default:
	}
}
