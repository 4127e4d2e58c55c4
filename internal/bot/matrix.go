// ABOUTME: Matrix connector and handle implementation on top of mautrix
// ABOUTME: Syncs message/member/presence/reaction events and answers commands

package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"

	"github.com/uchsavet/savet-portal/internal/config"
	"github.com/uchsavet/savet-portal/internal/dedupe"
	"github.com/uchsavet/savet-portal/internal/store"
)

// networkTimeout is the timeout for individual Matrix API calls
const networkTimeout = 10 * time.Second

// The homeserver replays recent events after a reconnect; seen event ids
// are remembered long enough to cover the replay window.
const (
	dedupeTTL     = 10 * time.Minute
	dedupeMaxSize = 4096
)

// MatrixConnector establishes connections to a Matrix homeserver.
// The connection subscribes to message, membership, presence, and reaction
// events; the homeserver contract requires announcing this full visibility
// set up front.
type MatrixConnector struct {
	cfg    config.MatrixConfig
	events store.EventStore
	posts  store.PostStore
	logger *slog.Logger
}

// NewMatrixConnector creates a connector. The stores back the chat commands.
func NewMatrixConnector(cfg config.MatrixConfig, events store.EventStore, posts store.PostStore) *MatrixConnector {
	return &MatrixConnector{
		cfg:    cfg,
		events: events,
		posts:  posts,
		logger: slog.Default().With("component", "matrix"),
	}
}

// Connect authenticates against the homeserver and starts the sync loop.
// The returned handle becomes ready after the first successful sync.
func (c *MatrixConnector) Connect(ctx context.Context, hooks Hooks) (Handle, error) {
	client, err := mautrix.NewClient(c.cfg.Homeserver, id.UserID(c.cfg.UserID), c.cfg.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("creating matrix client: %w", err)
	}

	h := &matrixHandle{
		client: client,
		cfg:    c.cfg,
		events: c.events,
		posts:  c.posts,
		logger: c.logger,
		seen:   dedupe.New(dedupeTTL, dedupeMaxSize),
	}

	syncer, ok := client.Syncer.(*mautrix.DefaultSyncer)
	if !ok {
		return nil, fmt.Errorf("unexpected syncer type: %T", client.Syncer)
	}
	syncer.OnEventType(event.EventMessage, h.handleMessageEvent)
	syncer.OnEventType(event.EventReaction, h.handleReactionEvent)
	syncer.OnEventType(event.StateMember, h.handleMemberEvent)
	syncer.OnEventType(event.EphemeralEventPresence, h.handlePresenceEvent)
	syncer.OnSync(func(ctx context.Context, resp *mautrix.RespSync, since string) bool {
		if h.ready.CompareAndSwap(false, true) {
			hooks.OnReady()
		}
		return true
	})

	// A failed sync poll means the client is retrying; the handle is not
	// ready again until the next successful sync fires OnSync above.
	client.Syncer = &retrySyncer{
		DefaultSyncer: syncer,
		onFailed: func(err error) {
			c.logger.Warn("sync failed, retrying", "error", err)
			if h.ready.CompareAndSwap(true, false) {
				hooks.OnReconnecting()
			}
		},
	}

	// Validate the credential before starting the sync loop
	whoami, err := client.Whoami(ctx)
	if err != nil {
		return nil, fmt.Errorf("matrix login: %w", err)
	}
	c.logger.Info("authenticated to matrix", "user_id", whoami.UserID.String())

	syncCtx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel

	go func() {
		err := client.SyncWithContext(syncCtx)
		h.ready.Store(false)
		if err != nil && syncCtx.Err() == nil {
			hooks.OnError(fmt.Errorf("matrix sync: %w", err))
			return
		}
		hooks.OnDisconnect()
	}()

	return h, nil
}

// retrySyncer surfaces failed sync polls, which the default syncer swallows
// behind its retry backoff
type retrySyncer struct {
	*mautrix.DefaultSyncer
	onFailed func(err error)
}

func (s *retrySyncer) OnFailedSync(res *mautrix.RespSync, err error) (time.Duration, error) {
	s.onFailed(err)
	return s.DefaultSyncer.OnFailedSync(res, err)
}

// matrixHandle wraps a live mautrix client
type matrixHandle struct {
	client *mautrix.Client
	cfg    config.MatrixConfig
	events store.EventStore
	posts  store.PostStore
	logger *slog.Logger
	seen   *dedupe.Cache
	cancel context.CancelFunc
	ready  atomic.Bool
}

// Ready reports whether the first sync has completed
func (h *matrixHandle) Ready() bool {
	return h.ready.Load()
}

// Announce sends a text message to the configured announce room
func (h *matrixHandle) Announce(ctx context.Context, text string) error {
	if h.cfg.AnnounceRoom == "" {
		return fmt.Errorf("no announce room configured")
	}

	_, err := h.client.SendText(ctx, id.RoomID(h.cfg.AnnounceRoom), text)
	if err != nil {
		return fmt.Errorf("sending announcement: %w", err)
	}
	return nil
}

// Close stops the sync loop. The access token stays valid for the next
// connection, so there is no logout call here.
func (h *matrixHandle) Close(ctx context.Context) error {
	if h.cancel != nil {
		h.cancel()
	}
	h.seen.Close()
	h.ready.Store(false)
	return nil
}

// handleMessageEvent processes incoming room messages and answers commands
func (h *matrixHandle) handleMessageEvent(ctx context.Context, evt *event.Event) {
	// Ignore our own messages
	if evt.Sender == id.UserID(h.cfg.UserID) {
		return
	}

	// Sync replays the tail of the timeline after a reconnect
	if h.seen.CheckAndMark(evt.ID.String()) {
		return
	}

	content, ok := evt.Content.Parsed.(*event.MessageEventContent)
	if !ok {
		return
	}

	// Only handle text messages
	if content.MsgType != event.MsgText {
		return
	}

	roomID := evt.RoomID.String()
	if !h.isRoomAllowed(roomID) {
		h.logger.Debug("ignoring message from non-allowed room", "room", roomID)
		return
	}

	body := strings.TrimSpace(content.Body)
	if !strings.HasPrefix(body, h.cfg.CommandPrefix) {
		return
	}
	command := strings.TrimSpace(strings.TrimPrefix(body, h.cfg.CommandPrefix))

	h.logger.Info("received command",
		"room", roomID,
		"sender", evt.Sender.String(),
		"command", truncate(command, 50),
	)

	switch command {
	case "events":
		h.replyUpcomingEvents(evt.RoomID)
	case "news":
		h.replyLatestNews(evt.RoomID)
	default:
		// Unknown commands are ignored silently
	}
}

func (h *matrixHandle) handleReactionEvent(ctx context.Context, evt *event.Event) {
	h.logger.Debug("reaction", "room", evt.RoomID.String(), "sender", evt.Sender.String())
}

func (h *matrixHandle) handleMemberEvent(ctx context.Context, evt *event.Event) {
	h.logger.Debug("membership change", "room", evt.RoomID.String(), "sender", evt.Sender.String())
}

func (h *matrixHandle) handlePresenceEvent(ctx context.Context, evt *event.Event) {
	h.logger.Debug("presence update", "sender", evt.Sender.String())
}

// replyUpcomingEvents answers the events command with the next five events
func (h *matrixHandle) replyUpcomingEvents(roomID id.RoomID) {
	ctx, cancel := context.WithTimeout(context.Background(), networkTimeout)
	defer cancel()

	events, err := h.events.ListUpcomingEvents(ctx, time.Now(), 5)
	if err != nil {
		h.logger.Error("listing events for command failed", "error", err)
		return
	}

	if len(events) == 0 {
		h.reply(roomID, "Няма предстоящи събития.")
		return
	}

	var b strings.Builder
	b.WriteString("Предстоящи събития:\n")
	for _, e := range events {
		fmt.Fprintf(&b, "%s — %s", e.StartsAt.Format("02.01.2006 15:04"), e.TitleBG)
		if e.Location != "" {
			fmt.Fprintf(&b, " (%s)", e.Location)
		}
		b.WriteString("\n")
	}
	h.reply(roomID, strings.TrimRight(b.String(), "\n"))
}

// replyLatestNews answers the news command with the latest published posts
func (h *matrixHandle) replyLatestNews(roomID id.RoomID) {
	ctx, cancel := context.WithTimeout(context.Background(), networkTimeout)
	defer cancel()

	posts, err := h.posts.ListPosts(ctx, true, 5)
	if err != nil {
		h.logger.Error("listing posts for command failed", "error", err)
		return
	}

	if len(posts) == 0 {
		h.reply(roomID, "Няма публикувани новини.")
		return
	}

	var b strings.Builder
	b.WriteString("Последни новини:\n")
	for _, p := range posts {
		fmt.Fprintf(&b, "%s\n", p.TitleBG)
	}
	h.reply(roomID, strings.TrimRight(b.String(), "\n"))
}

// reply sends a text message to a room
func (h *matrixHandle) reply(roomID id.RoomID, text string) {
	ctx, cancel := context.WithTimeout(context.Background(), networkTimeout)
	defer cancel()

	if _, err := h.client.SendText(ctx, roomID, text); err != nil {
		h.logger.Error("failed to send message", "room", roomID.String(), "error", err)
	}
}

// isRoomAllowed checks if the room is in the allowed list
func (h *matrixHandle) isRoomAllowed(roomID string) bool {
	if len(h.cfg.AllowedRooms) == 0 {
		return true // Allow all if no filter
	}

	for _, allowed := range h.cfg.AllowedRooms {
		if allowed == roomID {
			return true
		}
	}
	return false
}

// truncate shortens a string to the given max rune count, adding "..." if truncated
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
