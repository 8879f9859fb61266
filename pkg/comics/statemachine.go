package comics

import (
	"context"
	"sync"
	"time"

	"github.com/longboxhq/longbox/pkg/models"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

// Event triggers a comic lifecycle transition. Events are inputs only,
// never stored.
type Event string

const (
	EventReadyForProcessing Event = "ready_for_processing"
	EventContentsProcessed  Event = "contents_processed"
	EventRescanComic        Event = "rescan_comic"
	EventUpdateDetails      Event = "update_details"
	EventDetailsUpdated     Event = "details_updated"
	EventMetadataCleared    Event = "metadata_cleared"
	EventDeleteComic        Event = "delete_comic"
	EventUndeleteComic      Event = "undelete_comic"
	EventPrepareToPurge     Event = "prepare_to_purge"
	EventRecreating         Event = "recreating"
)

// transitions is the (current state, event) table. A pair absent from the
// table means the event is ignorable from that state.
var transitions = map[string]map[Event]string{
	models.ComicStateAdded: {
		EventReadyForProcessing: models.ComicStateUnprocessed,
		EventDeleteComic:        models.ComicStateDeleted,
	},
	models.ComicStateUnprocessed: {
		EventContentsProcessed: models.ComicStateStable,
		EventUpdateDetails:     models.ComicStateChanged,
		EventDetailsUpdated:    models.ComicStateChanged,
		EventDeleteComic:       models.ComicStateDeleted,
	},
	models.ComicStateStable: {
		EventRescanComic:     models.ComicStateUnprocessed,
		EventUpdateDetails:   models.ComicStateChanged,
		EventDetailsUpdated:  models.ComicStateChanged,
		EventMetadataCleared: models.ComicStateChanged,
		EventDeleteComic:     models.ComicStateDeleted,
		EventRecreating:      models.ComicStateUnprocessed,
	},
	models.ComicStateChanged: {
		EventContentsProcessed: models.ComicStateStable,
		EventRescanComic:       models.ComicStateUnprocessed,
		EventUpdateDetails:     models.ComicStateChanged,
		EventDetailsUpdated:    models.ComicStateChanged,
		EventMetadataCleared:   models.ComicStateChanged,
		EventDeleteComic:       models.ComicStateDeleted,
		EventRecreating:        models.ComicStateUnprocessed,
	},
	models.ComicStateDeleted: {
		EventUndeleteComic:  models.ComicStateChanged,
		EventPrepareToPurge: models.ComicStateRemoved,
	},
}

// StateChange describes one completed transition, delivered to listeners
// after persistence.
type StateChange struct {
	Comic *models.ComicBook
	From  string
	To    string
	Event Event
}

// Listener observes every completed transition. Registration happens once at
// process start and lasts for the life of the service.
type Listener interface {
	ComicStateChanged(ctx context.Context, change StateChange)
}

// Persister saves a comic book and its detail after a transition.
type Persister interface {
	SaveComic(ctx context.Context, comic *models.ComicBook) (*models.ComicBook, error)
}

// Publisher notifies subscribers about persisted transitions. Failures here
// never unwind a persisted state change; the state machine logs and
// swallows them.
type Publisher interface {
	PublishUpdate(ctx context.Context, comic *models.ComicBook) error
	PublishRemoval(ctx context.Context, comic *models.ComicBook) error
}

// StateMachine drives the lifecycle of every comic in the library. It is a
// single shared service keyed internally by comic id: transitions for
// different comics run in parallel, while at most one transition per comic
// is in flight at a time.
type StateMachine struct {
	log       logger.Logger
	persister Persister
	publisher Publisher

	mu    sync.Mutex
	locks map[int]*sync.Mutex

	listenerMu sync.RWMutex
	listeners  []Listener
}

func NewStateMachine(persister Persister, publisher Publisher) *StateMachine {
	return &StateMachine{
		log:       logger.New(),
		persister: persister,
		publisher: publisher,
		locks:     map[int]*sync.Mutex{},
	}
}

// AddListener registers an observer for every transition.
func (m *StateMachine) AddListener(listener Listener) {
	m.listenerMu.Lock()
	defer m.listenerMu.Unlock()
	m.listeners = append(m.listeners, listener)
}

// FireEvent applies an event to a comic. An event with no transition from
// the comic's current state is a no-op, not an error. On a transition the
// comic's detail gets the new state, the comic is stamped and persisted, and
// the result is published; a publish failure is logged and swallowed. Once a
// transition begins it runs to completion, so no cancellation is consulted
// between persist and publish.
func (m *StateMachine) FireEvent(ctx context.Context, comic *models.ComicBook, event Event) error {
	if comic.Detail == nil {
		return errors.Errorf("comic %d has no detail record", comic.ID)
	}

	lock := m.comicLock(comic.ID)
	lock.Lock()
	defer lock.Unlock()

	from := comic.Detail.State
	to, ok := transitions[from][event]
	if !ok {
		m.log.Debug("ignoring event with no transition", logger.Data{
			"comic_id": comic.ID,
			"state":    from,
			"event":    string(event),
		})
		return nil
	}

	comic.Detail.State = to
	comic.UpdatedAt = time.Now()

	saved, err := m.persister.SaveComic(ctx, comic)
	if err != nil {
		// Leave the in-memory comic consistent with the store.
		comic.Detail.State = from
		return errors.WithStack(err)
	}

	m.publish(ctx, saved, to)
	m.notify(ctx, StateChange{Comic: saved, From: from, To: to, Event: event})

	return nil
}

func (m *StateMachine) publish(ctx context.Context, comic *models.ComicBook, to string) {
	var err error
	if to == models.ComicStateRemoved {
		err = m.publisher.PublishRemoval(ctx, comic)
	} else {
		err = m.publisher.PublishUpdate(ctx, comic)
	}
	if err != nil {
		m.log.Err(err).Error("publish failed after transition", logger.Data{
			"comic_id": comic.ID,
			"state":    to,
		})
	}
}

func (m *StateMachine) notify(ctx context.Context, change StateChange) {
	m.listenerMu.RLock()
	listeners := make([]Listener, len(m.listeners))
	copy(listeners, m.listeners)
	m.listenerMu.RUnlock()

	for _, listener := range listeners {
		listener.ComicStateChanged(ctx, change)
	}
}

// comicLock returns the mutex serializing transitions for one comic id.
func (m *StateMachine) comicLock(id int) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[id] = lock
	}
	return lock
}
