package core

import "github.com/pvolkov/babelroom/internal/domain"

// Outbound event types. Enrichment events (message:translated,
// audio:received, synthesis:unavailable) are always unicast.
const (
	EvtHistory              = "history"
	EvtMessageNew           = "message:new"
	EvtMessageTranslated    = "message:translated"
	EvtAudioReceived        = "audio:received"
	EvtSynthesisUnavailable = "synthesis:unavailable"
	EvtUserJoined           = "user:joined"
	EvtUserLeft             = "user:left"
	EvtTypingStart          = "typing:start"
	EvtTypingStop           = "typing:stop"
	EvtError                = "error"
	EvtJoined               = "joined"
)

type HistoryEvent struct {
	Type     string           `json:"type"`
	RoomID   domain.RoomID    `json:"roomId"`
	Messages []domain.Message `json:"messages"`
}

type MessageNewEvent struct {
	Type    string         `json:"type"`
	Message domain.Message `json:"message"`
}

type MessageTranslatedEvent struct {
	Type              string           `json:"type"`
	MessageID         domain.MessageID `json:"messageId"`
	TranslatedContent string           `json:"translatedContent"`
	TargetLanguage    string           `json:"targetLanguage"`
}

type AudioReceivedEvent struct {
	Type        string           `json:"type"`
	MessageID   domain.MessageID `json:"messageId"`
	AudioBase64 string           `json:"audioBase64"`
	MIMEType    string           `json:"mimeType"`
	Language    string           `json:"language"`
}

type SynthesisUnavailableEvent struct {
	Type      string           `json:"type"`
	MessageID domain.MessageID `json:"messageId"`
	Reason    string           `json:"reason"`
}

type PresenceEvent struct {
	Type     string        `json:"type"`
	UserID   domain.UserID `json:"userId"`
	Username string        `json:"username"`
}

type TypingEvent struct {
	Type     string        `json:"type"`
	UserID   domain.UserID `json:"userId"`
	Username string        `json:"username,omitempty"`
}

type ErrorEvent struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type JoinedEvent struct {
	Type     string          `json:"type"`
	RoomID   domain.RoomID   `json:"roomId"`
	RoomName domain.RoomName `json:"roomName"`
	Language string          `json:"language"`
}
