package services

import (
	"log/slog"
	"testing"
	"time"

	"sanctuary/auth"
	"sanctuary/domain"
	"sanctuary/domain/event"
	"sanctuary/observability"
	"sanctuary/repositories"
	"sanctuary/runtime"
	"sanctuary/sink"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

// harness wires the real services on top of a temporary Badger store.
type harness struct {
	log         *slog.Logger
	monitoring  *observability.Monitoring
	registry    *runtime.Registry
	sessions    repositories.HostSessionRepository
	sanctuaries repositories.SanctuaryRepository
	messages    repositories.MessageRepository
	host        *HostService
	submissions *SubmissionService
	chat        *ChatService
	sanctuary   *SanctuaryService
	audio       *AudioService
	moderation  *ModerationRouter
	reconciler  *Reconciler
	dispatcher  *Dispatcher
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	h := &harness{log: slog.New(slog.DiscardHandler)}
	h.monitoring = observability.NewMonitoring(h.log)
	h.registry = runtime.NewRegistry(h.log)
	h.sessions = repositories.NewHostSessionRepository(db, h.log)
	h.sanctuaries = repositories.NewSanctuaryRepository(db, h.log)
	h.messages = repositories.NewMessageRepository(db, h.log, nil)
	h.host = NewHostService(h.log, h.sessions, h.sanctuaries, "https://sanctuary.test/")
	h.submissions = NewSubmissionService(h.log, h.sanctuaries, h.registry, h.monitoring)
	h.chat = NewChatService(h.log, h.registry, h.messages, h.monitoring)
	h.sanctuary = NewSanctuaryService(h.log, h.registry, h.sanctuaries, h.host, h.submissions, h.monitoring)
	h.audio = NewAudioService(h.log, h.registry)
	h.moderation = NewModerationRouter(h.log, h.registry, h.monitoring)
	h.reconciler = NewReconciler(h.log, h.registry)
	h.dispatcher = NewDispatcher(h.log, h.chat, h.sanctuary, h.audio, h.moderation)
	return h
}

type client struct {
	conn *runtime.Connection
	sink *sink.ConnectionSink
}

func (h *harness) connect(identity domain.Identity) client {
	s := sink.NewConnectionSink(128, h.log, h.monitoring)
	c := runtime.NewConnection(identity, domain.Origin{IPAddress: "127.0.0.1", UserAgent: "test"}, s)
	h.registry.Register(c)
	return client{conn: c, sink: s}
}

func (h *harness) owner(userID string) client {
	return h.connect(domain.Authenticated{UserID: userID, Alias: userID})
}

func (h *harness) anonymous() client {
	return h.connect(auth.NewAnonymous())
}

func (h *harness) createSanctuary(t *testing.T, id, ownerID string, expiresAt time.Time) domain.Sanctuary {
	t.Helper()
	s := domain.Sanctuary{
		ID:        id,
		Topic:     "Ask me anything",
		Emoji:     "🕊",
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC().Add(-time.Minute),
		ExpiresAt: expiresAt,
		IsActive:  true,
	}
	require.NoError(t, h.sanctuaries.Create(s))
	return s
}

func (c client) drain() []event.Event {
	var events []event.Event
	for {
		select {
		case e := <-c.sink.Events:
			events = append(events, e)
		default:
			return events
		}
	}
}

func names(events []event.Event) []event.Name {
	return lo.Map(events, func(e event.Event, _ int) event.Name { return e.Name })
}

func only(t *testing.T, c client, name event.Name) event.Event {
	t.Helper()
	events := c.drain()
	require.Equal(t, []event.Name{name}, names(events))
	return events[0]
}
