package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/pvolkov/babelroom/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return New(db)
}

func TestUserLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "anika", "hashed", "hi")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if u.ID == "" || u.PreferredLanguage != "hi" {
		t.Fatalf("unexpected user %+v", u)
	}

	byName, err := s.UserByName(ctx, "anika")
	if err != nil || byName.ID != u.ID {
		t.Fatalf("by name: %v %v", byName, err)
	}
	if _, err := s.UserByName(ctx, "nobody"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	if err := s.UpdateUserLanguage(ctx, u.ID, "ta"); err != nil {
		t.Fatalf("update language: %v", err)
	}
	byID, err := s.UserByID(ctx, u.ID)
	if err != nil || byID.PreferredLanguage != "ta" {
		t.Fatalf("by id: %v %v", byID, err)
	}
}

func TestCreateUser_DefaultsLanguage(t *testing.T) {
	s := newTestStore(t)
	u, err := s.CreateUser(context.Background(), "ravi", "hashed", "")
	if err != nil || u.PreferredLanguage != "en" {
		t.Fatalf("expected en default, got %v %v", u, err)
	}
}

func TestCreateRoom_CreatorIsMember(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	room, err := s.CreateRoom(ctx, "general", "u1", true)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	if len(room.InviteCode) != 10 {
		t.Fatalf("invite code must be 10 chars, got %q", room.InviteCode)
	}
	member, err := s.IsMember(ctx, room.ID, "u1")
	if err != nil || !member {
		t.Fatalf("creator must be a member: %v %v", member, err)
	}
}

func TestRoomByInvite(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	room, err := s.CreateRoom(ctx, "general", "u1", true)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	found, err := s.RoomByInvite(ctx, room.InviteCode)
	if err != nil || found.ID != room.ID {
		t.Fatalf("by invite: %v %v", found, err)
	}
	if _, err := s.RoomByInvite(ctx, "0000000000"); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestAddMember_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	room, err := s.CreateRoom(ctx, "general", "u1", true)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	if err := s.AddMember(ctx, room.ID, "u2"); err != nil {
		t.Fatalf("first join: %v", err)
	}
	if err := s.AddMember(ctx, room.ID, "u2"); err != nil {
		t.Fatalf("re-join must be a no-op, got %v", err)
	}
	member, err := s.IsMember(ctx, room.ID, "u2")
	if err != nil || !member {
		t.Fatalf("membership missing: %v %v", member, err)
	}
	members, err := s.ListMembers(ctx, room.ID)
	if err != nil || len(members) != 2 {
		t.Fatalf("expected creator plus joiner, got %v %v", members, err)
	}
}

func TestRoomsForUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a, _ := s.CreateRoom(ctx, "alpha", "u1", true)
	time.Sleep(2 * time.Millisecond)
	b, _ := s.CreateRoom(ctx, "beta", "u2", true)
	if err := s.AddMember(ctx, b.ID, "u1"); err != nil {
		t.Fatalf("add member: %v", err)
	}
	if _, err := s.CreateRoom(ctx, "gamma", "u3", true); err != nil {
		t.Fatalf("create room: %v", err)
	}

	rooms, err := s.RoomsForUser(ctx, "u1")
	if err != nil {
		t.Fatalf("rooms for user: %v", err)
	}
	if len(rooms) != 2 || rooms[0].ID != a.ID || rooms[1].ID != b.ID {
		t.Fatalf("unexpected rooms %v", rooms)
	}
}

func TestListByRoom_NewestWindowOldestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	room, err := s.CreateRoom(ctx, "general", "u1", true)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	for i := 0; i < 5; i++ {
		if _, err := s.CreateMessage(ctx, "u1", room.ID, fmt.Sprintf("msg-%d", i), "en"); err != nil {
			t.Fatalf("create message %d: %v", i, err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	got, err := s.ListByRoom(ctx, room.ID, 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(got))
	}
	// The newest window, rendered oldest first.
	want := []string{"msg-2", "msg-3", "msg-4"}
	for i, m := range got {
		if m.Content != want[i] {
			t.Fatalf("position %d: got %q, want %q", i, m.Content, want[i])
		}
	}
	if m := got[0]; m.RoomID != room.ID || m.OriginalLanguage != "en" {
		t.Fatalf("unexpected message %+v", m)
	}
}

func TestListByRoom_Empty(t *testing.T) {
	s := newTestStore(t)
	got, err := s.ListByRoom(context.Background(), domain.RoomID("missing"), 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no messages, got %v", got)
	}
}
