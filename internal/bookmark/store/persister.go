package store

import (
	"context"
	"fmt"

	"github.com/dshills/folio/internal/event"
	"github.com/dshills/folio/internal/event/events"
	"github.com/dshills/folio/internal/logging"
)

// Persister mirrors session bookmark events into a Store. Write failures
// are logged; they never reach the session.
type Persister struct {
	store  *Store
	bookID string
	log    *logging.Logger
	sub    *event.Subscriber
}

// NewPersister subscribes to the bookmark topics of bus. A single
// subscription keeps creations and deletions in emission order.
func NewPersister(store *Store, bus event.Bus, bookID string, logger *logging.Logger) (*Persister, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	p := &Persister{
		store:  store,
		bookID: bookID,
		log:    logger.WithComponent("persister").WithField("book", bookID),
		sub:    event.NewSubscriber(bus),
	}
	if _, err := p.sub.Subscribe("reader.bookmark.*", event.HandlerFunc(p.handle)); err != nil {
		return nil, fmt.Errorf("subscribing persister: %w", err)
	}
	return p, nil
}

// Close stops receiving events.
func (p *Persister) Close() error {
	return p.sub.Close()
}

func (p *Persister) handle(ctx context.Context, evt any) error {
	var err error
	switch e := evt.(type) {
	case event.Event[events.BookmarkCreated]:
		err = p.store.Save(ctx, p.bookID, e.Payload.Bookmark)
	case event.Event[events.BookmarkDeleted]:
		var removed bool
		removed, err = p.store.Delete(ctx, p.bookID, e.Payload.Bookmark)
		if err == nil && !removed {
			p.log.Debug("deleted bookmark was not stored")
		}
	case event.Event[events.LastReadUpdated]:
		err = p.store.ReplaceLastRead(ctx, p.bookID, e.Payload.Bookmark)
	default:
		return nil
	}
	if err != nil {
		p.log.Error("persisting bookmark: %v", err)
	}
	return nil
}
