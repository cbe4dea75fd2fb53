package app

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/pvolkov/babelroom/internal/core"
	"github.com/pvolkov/babelroom/internal/domain"
	"github.com/pvolkov/babelroom/internal/provider"
)

// ErrNotAuthorized rejects a send from a user who is not a durable member of
// the target room. Nothing is persisted or broadcast.
var ErrNotAuthorized = errors.New("not a member of this room")

// MessageStore persists and lists messages.
type MessageStore interface {
	CreateMessage(ctx context.Context, userID domain.UserID, roomID domain.RoomID, content, originalLanguage string) (*domain.Message, error)
	ListByRoom(ctx context.Context, roomID domain.RoomID, limit int) ([]domain.Message, error)
}

// MembershipStore is the durable, authoritative membership check. The
// registry's presence cache never authorizes anything.
type MembershipStore interface {
	IsMember(ctx context.Context, roomID domain.RoomID, userID domain.UserID) (bool, error)
}

const (
	defaultEnrichTimeout = 90 * time.Second
	defaultEnrichLimit   = 8
)

// Dispatcher turns one inbound message into a persisted record, a broadcast
// of the original, and per-recipient translation/synthesis deliveries. The
// broadcast of the original always completes before any enrichment is
// dispatched; enrichment failures are isolated per recipient.
type Dispatcher struct {
	Registry    *Registry
	Messages    MessageStore
	Members     MembershipStore
	Translator  *provider.Translator
	Transcriber *provider.Transcriber
	Synthesizer *provider.Synthesizer

	SynthesisEnabled bool
	// EnrichTimeout bounds the whole per-message enrichment pass.
	EnrichTimeout time.Duration
	// EnrichLimit caps concurrent provider calls per message.
	EnrichLimit int

	// syncEnrich runs the enrichment pass inline; tests set it to avoid
	// polling for async deliveries.
	syncEnrich bool
}

// SendText authorizes, persists and fans out a text message. The returned
// message is the persisted record already broadcast to the room.
func (d *Dispatcher) SendText(ctx context.Context, connID core.ConnID, userID domain.UserID, roomID domain.RoomID, content, sourceLang string) (*domain.Message, error) {
	return d.send(ctx, connID, userID, roomID, content, sourceLang)
}

// SendAudio transcribes a voice message and fans out the transcript. The
// transcriber degrades to a placeholder, so a provider outage never drops
// the message.
func (d *Dispatcher) SendAudio(ctx context.Context, connID core.ConnID, userID domain.UserID, roomID domain.RoomID, audio []byte, mimeType, languageHint string) (*domain.Message, error) {
	ok, err := d.Members.IsMember(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotAuthorized
	}
	content := d.Transcriber.Transcribe(ctx, audio, languageHint, mimeType)
	return d.send(ctx, connID, userID, roomID, content, languageHint)
}

func (d *Dispatcher) send(ctx context.Context, connID core.ConnID, userID domain.UserID, roomID domain.RoomID, content, sourceLang string) (*domain.Message, error) {
	ok, err := d.Members.IsMember(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotAuthorized
	}

	msg, err := d.Messages.CreateMessage(ctx, userID, roomID, content, sourceLang)
	if err != nil {
		return nil, err
	}

	members := d.Registry.MembersOf(roomID)

	// Original first, to everyone including the sender, so clients can
	// reconcile optimistic UI before any enrichment arrives.
	for _, m := range members {
		d.deliver(m.ConnID, core.MessageNewEvent{Type: core.EvtMessageNew, Message: *msg})
	}

	if d.syncEnrich {
		d.enrich(msg, members)
	} else {
		go d.enrich(msg, members)
	}
	return msg, nil
}

// enrich runs the per-recipient translation/synthesis pass. It derives its
// context from the server lifetime, not the sending connection: a sender
// disconnect must not cancel in-flight provider calls.
func (d *Dispatcher) enrich(msg *domain.Message, members []Member) {
	timeout := d.EnrichTimeout
	if timeout <= 0 {
		timeout = defaultEnrichTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	limit := d.EnrichLimit
	if limit <= 0 {
		limit = defaultEnrichLimit
	}
	var g errgroup.Group
	g.SetLimit(limit)

	for _, m := range members {
		if m.Language == msg.OriginalLanguage {
			continue
		}
		m := m
		g.Go(func() error {
			d.enrichOne(ctx, msg, m)
			return nil
		})
	}
	_ = g.Wait()
}

func (d *Dispatcher) enrichOne(ctx context.Context, msg *domain.Message, m Member) {
	translated := d.Translator.Translate(ctx, msg.Content, msg.OriginalLanguage, m.Language)
	delivered := translated
	if translated != msg.Content {
		d.deliver(m.ConnID, core.MessageTranslatedEvent{
			Type:              core.EvtMessageTranslated,
			MessageID:         msg.ID,
			TranslatedContent: translated,
			TargetLanguage:    m.Language,
		})
	}

	if !d.SynthesisEnabled || d.Synthesizer == nil {
		return
	}
	audio, err := d.Synthesizer.Synthesize(ctx, delivered, m.Language)
	if err != nil {
		// Soft failure: the text delivery above stands.
		if !errors.Is(err, provider.ErrTextUnsuitable) {
			log.Warn().Str("module", "app.dispatcher").Str("msg", string(msg.ID)).
				Str("conn", string(m.ConnID)).Err(err).Msg("synthesis unavailable")
			d.deliver(m.ConnID, core.SynthesisUnavailableEvent{
				Type:      core.EvtSynthesisUnavailable,
				MessageID: msg.ID,
				Reason:    "synthesis unavailable",
			})
		}
		return
	}
	d.deliver(m.ConnID, core.AudioReceivedEvent{
		Type:        core.EvtAudioReceived,
		MessageID:   msg.ID,
		AudioBase64: base64.StdEncoding.EncodeToString(audio.Data),
		MIMEType:    audio.MIMEType,
		Language:    m.Language,
	})
}

// RelayTyping broadcasts a typing indicator to the room, excluding the
// originating connection. No persistence, no translation.
func (d *Dispatcher) RelayTyping(connID core.ConnID, userID domain.UserID, username string, start bool) {
	roomID, ok := d.Registry.RoomOf(connID)
	if !ok {
		return
	}
	evt := core.TypingEvent{Type: core.EvtTypingStop, UserID: userID}
	if start {
		evt = core.TypingEvent{Type: core.EvtTypingStart, UserID: userID, Username: username}
	}
	d.broadcastExcept(roomID, connID, evt)
}

// NotifyJoined announces a new member to the rest of the room.
func (d *Dispatcher) NotifyJoined(connID core.ConnID, roomID domain.RoomID, userID domain.UserID, username string) {
	d.broadcastExcept(roomID, connID, core.PresenceEvent{Type: core.EvtUserJoined, UserID: userID, Username: username})
}

// NotifyLeft announces a departure to the remaining members.
func (d *Dispatcher) NotifyLeft(roomID domain.RoomID, userID domain.UserID, username string) {
	for _, m := range d.Registry.MembersOf(roomID) {
		d.deliver(m.ConnID, core.PresenceEvent{Type: core.EvtUserLeft, UserID: userID, Username: username})
	}
}

func (d *Dispatcher) broadcastExcept(roomID domain.RoomID, except core.ConnID, v any) {
	for _, m := range d.Registry.MembersOf(roomID) {
		if m.ConnID == except {
			continue
		}
		d.deliver(m.ConnID, v)
	}
}

// deliver marshals and pushes one event to one connection. A gone connection
// or backpressure is a no-op, not an error: the target may have disconnected
// while enrichment was in flight.
func (d *Dispatcher) deliver(connID core.ConnID, v any) {
	conn, ok := d.Registry.Conn(connID)
	if !ok {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Str("module", "app.dispatcher").Err(err).Msg("marshal event")
		return
	}
	if err := conn.TrySend(core.Frame(b)); err != nil {
		log.Debug().Str("module", "app.dispatcher").Str("conn", string(connID)).Err(err).Msg("drop frame")
	}
}
