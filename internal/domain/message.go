package domain

import "time"

type MessageID string

// Message is the immutable persisted record of one send. TranslatedContent
// and TargetLanguage are the legacy single-translation columns; per-recipient
// translations are computed at delivery time and never stored.
type Message struct {
	ID                MessageID `json:"id" gorm:"type:char(36);primaryKey"`
	UserID            UserID    `json:"userId" gorm:"type:char(36);not null;index"`
	RoomID            RoomID    `json:"roomId" gorm:"type:char(36);not null;index:idx_room_msgs,priority:1"`
	Content           string    `json:"content" gorm:"type:text;not null"`
	OriginalLanguage  string    `json:"originalLanguage" gorm:"type:varchar(8);not null"`
	TranslatedContent *string   `json:"translatedContent,omitempty" gorm:"type:text"`
	TargetLanguage    *string   `json:"targetLanguage,omitempty" gorm:"type:varchar(8)"`
	Timestamp         time.Time `json:"timestamp" gorm:"index:idx_room_msgs,priority:2"`
}

func (Message) TableName() string { return "messages" }
