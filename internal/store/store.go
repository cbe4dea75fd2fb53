package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pvolkov/babelroom/internal/domain"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrRoomNotFound = errors.New("room not found")
)

// Store wraps the database handle. All methods are safe for concurrent use;
// gorm owns connection pooling.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store { return &Store{db: db} }

// --- user directory ---

func (s *Store) CreateUser(ctx context.Context, username, passwordHash, preferredLanguage string) (*domain.User, error) {
	if preferredLanguage == "" {
		preferredLanguage = "en"
	}
	u := &domain.User{
		ID:                domain.UserID(uuid.NewString()),
		Username:          username,
		PasswordHash:      passwordHash,
		PreferredLanguage: preferredLanguage,
		CreatedAt:         time.Now().UTC(),
	}
	return u, s.db.WithContext(ctx).Create(u).Error
}

func (s *Store) UserByName(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return &u, err
}

func (s *Store) UserByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	var u domain.User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return &u, err
}

func (s *Store) UpdateUserLanguage(ctx context.Context, id domain.UserID, language string) error {
	return s.db.WithContext(ctx).
		Model(&domain.User{}).Where("id = ?", id).
		Update("preferred_language", language).Error
}

// --- rooms and durable membership ---

func (s *Store) CreateRoom(ctx context.Context, name domain.RoomName, createdBy domain.UserID, private bool) (*domain.Room, error) {
	room := &domain.Room{
		ID:         domain.RoomID(uuid.NewString()),
		Name:       name,
		InviteCode: newInviteCode(),
		CreatedBy:  createdBy,
		IsPrivate:  private,
		CreatedAt:  time.Now().UTC(),
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(room).Error; err != nil {
			return err
		}
		// The creator is always a member.
		return tx.Create(&domain.RoomMember{
			ID:       uuid.NewString(),
			RoomID:   room.ID,
			UserID:   createdBy,
			JoinedAt: time.Now().UTC(),
		}).Error
	})
	return room, err
}

func (s *Store) RoomByID(ctx context.Context, id domain.RoomID) (*domain.Room, error) {
	var r domain.Room
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoomNotFound
	}
	return &r, err
}

func (s *Store) RoomByInvite(ctx context.Context, code string) (*domain.Room, error) {
	var r domain.Room
	err := s.db.WithContext(ctx).Where("invite_code = ?", code).First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoomNotFound
	}
	return &r, err
}

func (s *Store) RoomsForUser(ctx context.Context, userID domain.UserID) ([]domain.Room, error) {
	var out []domain.Room
	err := s.db.WithContext(ctx).
		Joins("JOIN room_members ON room_members.room_id = chat_rooms.id").
		Where("room_members.user_id = ?", userID).
		Order("chat_rooms.created_at ASC").
		Find(&out).Error
	return out, err
}

// AddMember is idempotent: re-joining a room the user already belongs to is
// not an error.
func (s *Store) AddMember(ctx context.Context, roomID domain.RoomID, userID domain.UserID) error {
	member, err := s.IsMember(ctx, roomID, userID)
	if err != nil {
		return err
	}
	if member {
		return nil
	}
	return s.db.WithContext(ctx).Create(&domain.RoomMember{
		ID:       uuid.NewString(),
		RoomID:   roomID,
		UserID:   userID,
		JoinedAt: time.Now().UTC(),
	}).Error
}

func (s *Store) ListMembers(ctx context.Context, roomID domain.RoomID) ([]domain.RoomMember, error) {
	var out []domain.RoomMember
	err := s.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("joined_at ASC").
		Find(&out).Error
	return out, err
}

func (s *Store) IsMember(ctx context.Context, roomID domain.RoomID, userID domain.UserID) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&domain.RoomMember{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Count(&n).Error
	return n > 0, err
}

// --- message log ---

func (s *Store) CreateMessage(ctx context.Context, userID domain.UserID, roomID domain.RoomID, content, originalLanguage string) (*domain.Message, error) {
	m := &domain.Message{
		ID:               domain.MessageID(uuid.NewString()),
		UserID:           userID,
		RoomID:           roomID,
		Content:          content,
		OriginalLanguage: originalLanguage,
		Timestamp:        time.Now().UTC(),
	}
	return m, s.db.WithContext(ctx).Create(m).Error
}

// ListByRoom returns the latest messages ordered oldest-first, so clients can
// render history top-down.
func (s *Store) ListByRoom(ctx context.Context, roomID domain.RoomID, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = 50
	}
	var newest []domain.Message
	err := s.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("timestamp DESC, id DESC").
		Limit(limit).
		Find(&newest).Error
	if err != nil {
		return nil, err
	}
	// Reverse into ascending order.
	out := make([]domain.Message, len(newest))
	for i, m := range newest {
		out[len(newest)-1-i] = m
	}
	return out, nil
}

// newInviteCode yields a short shareable code.
func newInviteCode() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}
