// Package app holds the live presence registry and the fan-out dispatcher.
package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/pvolkov/babelroom/internal/core"
	"github.com/pvolkov/babelroom/internal/domain"
)

// Member is a read-only snapshot of one connection's presence.
type Member struct {
	ConnID   core.ConnID
	UserID   domain.UserID
	Username string
	Language string
}

type regEntry struct {
	roomID   domain.RoomID
	userID   domain.UserID
	username string
	language string
	conn     core.SignalConnection
}

// Registry is the single source of truth for who is in which room, in what
// language, right now. It caches presence; durable room membership in the
// store stays authoritative for authorization. A connection belongs to at
// most one room.
type Registry struct {
	mu     sync.RWMutex
	conns  map[core.ConnID]*regEntry
	byRoom map[domain.RoomID]map[core.ConnID]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		conns:  make(map[core.ConnID]*regEntry),
		byRoom: make(map[domain.RoomID]map[core.ConnID]struct{}),
	}
}

// Join registers the connection under roomID, removing it from any previous
// room first.
func (r *Registry) Join(roomID domain.RoomID, connID core.ConnID, userID domain.UserID, username, language string, conn core.SignalConnection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.conns[connID]; ok && prev.roomID != "" {
		r.dropFromRoom(prev.roomID, connID)
	}
	r.conns[connID] = &regEntry{
		roomID:   roomID,
		userID:   userID,
		username: username,
		language: language,
		conn:     conn,
	}
	set, ok := r.byRoom[roomID]
	if !ok {
		set = make(map[core.ConnID]struct{})
		r.byRoom[roomID] = set
	}
	set[connID] = struct{}{}
	log.Info().Str("module", "app.registry").Str("conn", string(connID)).
		Str("room", string(roomID)).Str("lang", language).Msg("joined room")
}

// UpdateLanguage mutates the cached language; unknown connections are a no-op.
func (r *Registry) UpdateLanguage(connID core.ConnID, language string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.conns[connID]; ok {
		e.language = language
		log.Info().Str("module", "app.registry").Str("conn", string(connID)).Str("lang", language).Msg("language changed")
	}
}

// Leave removes the connection and reports the vacated room and identity for
// presence notification. ok is false when the connection was not registered.
func (r *Registry) Leave(connID core.ConnID) (roomID domain.RoomID, userID domain.UserID, username string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, found := r.conns[connID]
	if !found {
		return "", "", "", false
	}
	if e.roomID != "" {
		r.dropFromRoom(e.roomID, connID)
	}
	delete(r.conns, connID)
	log.Info().Str("module", "app.registry").Str("conn", string(connID)).Str("room", string(e.roomID)).Msg("left room")
	return e.roomID, e.userID, e.username, true
}

// MembersOf returns a consistent snapshot of the room's members. It does not
// update after being read.
func (r *Registry) MembersOf(roomID domain.RoomID) []Member {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.byRoom[roomID]
	out := make([]Member, 0, len(set))
	for connID := range set {
		e := r.conns[connID]
		out = append(out, Member{
			ConnID:   connID,
			UserID:   e.userID,
			Username: e.username,
			Language: e.language,
		})
	}
	return out
}

// Conn resolves a connection for delivery. Callers check liveness here at
// delivery time, not just at dispatch time.
func (r *Registry) Conn(connID core.ConnID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[connID]
	if !ok || e.conn == nil {
		return nil, false
	}
	return e.conn, true
}

// RoomOf reports which room the connection currently occupies.
func (r *Registry) RoomOf(connID core.ConnID) (domain.RoomID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[connID]
	if !ok || e.roomID == "" {
		return "", false
	}
	return e.roomID, true
}

// dropFromRoom must run under the write lock.
func (r *Registry) dropFromRoom(roomID domain.RoomID, connID core.ConnID) {
	if set, ok := r.byRoom[roomID]; ok {
		delete(set, connID)
		if len(set) == 0 {
			delete(r.byRoom, roomID)
		}
	}
}
