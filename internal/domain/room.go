package domain

import "time"

type (
	RoomID   string
	RoomName string
)

const MaxRoomNameLen = 64

// Room is a durable chat room. InviteCode is how members are added; the
// membership rows below are the authorization source of truth, the live
// presence registry is only a cache.
type Room struct {
	ID         RoomID    `json:"id" gorm:"type:char(36);primaryKey"`
	Name       RoomName  `json:"name" gorm:"type:varchar(64);not null"`
	InviteCode string    `json:"inviteCode" gorm:"type:varchar(12);not null;uniqueIndex"`
	CreatedBy  UserID    `json:"createdBy" gorm:"type:char(36);not null"`
	IsPrivate  bool      `json:"isPrivate" gorm:"not null;default:true"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (Room) TableName() string { return "chat_rooms" }

// RoomMember links a user to a room.
type RoomMember struct {
	ID       string    `json:"id" gorm:"type:char(36);primaryKey"`
	RoomID   RoomID    `json:"roomId" gorm:"type:char(36);not null;index;uniqueIndex:ux_room_user"`
	UserID   UserID    `json:"userId" gorm:"type:char(36);not null;uniqueIndex:ux_room_user"`
	JoinedAt time.Time `json:"joinedAt"`
}

func (RoomMember) TableName() string { return "room_members" }
