package reader

import (
	"context"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/folio/internal/bridge"
	"github.com/dshills/folio/internal/command"
	"github.com/dshills/folio/internal/event/events"
	"github.com/dshills/folio/internal/theme"
)

// themeSet records the theme, then pushes it to the surface. ThemeChanged is
// only published once font, color scheme and scale are all applied.
func (s *Session) themeSet(ctx context.Context, cmd command.ThemeSet) error {
	if err := theme.ValidateTextSize(cmd.Theme.TextSize); err != nil {
		return err
	}
	s.update(func(st *State) { st.Theme = cmd.Theme })

	if err := s.awaitSurface(ctx); err != nil {
		return err
	}
	if err := s.applyTheme(ctx, cmd.Theme); err != nil {
		return err
	}
	publish(ctx, s, events.TopicThemeChanged, events.ThemeChanged{Theme: cmd.Theme})
	return nil
}

// applyTheme issues the three theme requests together and waits for all.
func (s *Session) applyTheme(ctx context.Context, t theme.Theme) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, sc := range []bridge.Script{
		bridge.SetFont{Font: t.Font.String()},
		bridge.SetColorScheme{Scheme: t.ColorScheme.String()},
		bridge.SetTextScale{Scale: t.TextSize},
	} {
		g.Go(func() error {
			_, err := s.run(gctx, sc)
			return err
		})
	}
	return g.Wait()
}

// search highlights query in the current chapter.
func (s *Session) search(ctx context.Context, cmd command.Search) error {
	query := strings.TrimSpace(cmd.Query)
	s.update(func(st *State) {
		st.Terms = nil
		if query != "" {
			st.Terms = []string{query}
		}
	})

	if err := s.awaitSurface(ctx); err != nil {
		return err
	}
	res, err := s.run(ctx, bridge.Search{Query: query})
	if err != nil {
		return err
	}
	publish(ctx, s, events.TopicSearchCompleted, events.SearchCompleted{Query: query, Matches: res.Matches})
	return nil
}

func (s *Session) cancelSearch(ctx context.Context, _ command.CancelSearch) error {
	s.update(func(st *State) { st.Terms = nil })

	if err := s.awaitSurface(ctx); err != nil {
		return err
	}
	if _, err := s.run(ctx, bridge.ClearHighlights{}); err != nil {
		return err
	}
	publish(ctx, s, events.TopicSearchCancelled, events.SearchCancelled{})
	return nil
}

// highlightTerms adds terms to the highlighted set, replacing it when Clear
// is set.
func (s *Session) highlightTerms(ctx context.Context, cmd command.HighlightTerms) error {
	st := s.update(func(st *State) {
		var terms []string
		if !cmd.Clear {
			terms = slices.Clone(st.Terms)
		}
		for _, t := range cmd.Terms {
			if t = strings.TrimSpace(t); t != "" && !slices.Contains(terms, t) {
				terms = append(terms, t)
			}
		}
		st.Terms = terms
	})

	if err := s.awaitSurface(ctx); err != nil {
		return err
	}
	if cmd.Clear {
		if _, err := s.run(ctx, bridge.ClearHighlights{}); err != nil {
			return err
		}
	}
	if len(st.Terms) == 0 {
		return nil
	}
	_, err := s.run(ctx, bridge.HighlightTerms{Terms: st.Terms})
	return err
}

func (s *Session) highlightCurrentTerms(ctx context.Context, _ command.HighlightCurrentTerms) error {
	terms := s.state.Load().Terms
	if len(terms) == 0 {
		return nil
	}
	if err := s.awaitSurface(ctx); err != nil {
		return err
	}
	_, err := s.run(ctx, bridge.HighlightTerms{Terms: terms})
	return err
}
