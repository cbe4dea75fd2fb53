package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/pvolkov/babelroom/internal/auth"
	"github.com/pvolkov/babelroom/internal/domain"
	"github.com/pvolkov/babelroom/internal/provider"
	"github.com/pvolkov/babelroom/internal/store"
)

// Handlers holds the REST endpoint dependencies.
type Handlers struct {
	Store      *store.Store
	Auth       *auth.Manager
	Translator *provider.Translator

	HistoryLimit int
}

func (h *Handlers) Register(c *gin.Context) {
	var req struct {
		Username          string `json:"username" binding:"required"`
		Password          string `json:"password" binding:"required"`
		PreferredLanguage string `json:"preferredLanguage"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user data"})
		return
	}
	if err := domain.ValidateUsername(req.Username); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}
	user, err := h.Store.CreateUser(c.Request.Context(), req.Username, hash, req.PreferredLanguage)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "username already taken"})
		return
	}
	token, err := h.Auth.Issue(string(user.ID), user.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func (h *Handlers) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid credentials"})
		return
	}
	user, err := h.Store.UserByName(c.Request.Context(), req.Username)
	if err != nil || !auth.CheckPassword(req.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	token, err := h.Auth.Issue(string(user.ID), user.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func (h *Handlers) ListRooms(c *gin.Context) {
	userID := domain.UserID(c.GetString("user_id"))
	rooms, err := h.Store.RoomsForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list rooms"})
		return
	}
	c.JSON(http.StatusOK, rooms)
}

func (h *Handlers) CreateRoom(c *gin.Context) {
	var req struct {
		Name      string `json:"name" binding:"required"`
		IsPrivate *bool  `json:"isPrivate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Name) > domain.MaxRoomNameLen {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room data"})
		return
	}
	private := true
	if req.IsPrivate != nil {
		private = *req.IsPrivate
	}
	userID := domain.UserID(c.GetString("user_id"))
	room, err := h.Store.CreateRoom(c.Request.Context(), domain.RoomName(req.Name), userID, private)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create room"})
		return
	}
	c.JSON(http.StatusOK, room)
}

func (h *Handlers) JoinRoom(c *gin.Context) {
	var req struct {
		InviteCode string `json:"inviteCode" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invite code required"})
		return
	}
	ctx := c.Request.Context()
	room, err := h.Store.RoomByInvite(ctx, req.InviteCode)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "invalid invite code"})
		return
	}
	userID := domain.UserID(c.GetString("user_id"))
	if err := h.Store.AddMember(ctx, room.ID, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to join room"})
		return
	}
	c.JSON(http.StatusOK, room)
}

func (h *Handlers) ListRoomMembers(c *gin.Context) {
	ctx := c.Request.Context()
	roomID := domain.RoomID(c.Param("id"))
	userID := domain.UserID(c.GetString("user_id"))

	member, err := h.Store.IsMember(ctx, roomID, userID)
	if err != nil || !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a member of this room"})
		return
	}
	members, err := h.Store.ListMembers(ctx, roomID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list members"})
		return
	}
	c.JSON(http.StatusOK, members)
}

func (h *Handlers) ListMessages(c *gin.Context) {
	ctx := c.Request.Context()
	roomID := domain.RoomID(c.Param("id"))
	userID := domain.UserID(c.GetString("user_id"))

	member, err := h.Store.IsMember(ctx, roomID, userID)
	if err != nil || !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a member of this room"})
		return
	}
	limit := h.HistoryLimit
	if q := c.Query("limit"); q != "" {
		if n, err := strconv.Atoi(q); err == nil && n > 0 {
			limit = n
		}
	}
	messages, err := h.Store.ListByRoom(ctx, roomID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch messages"})
		return
	}
	c.JSON(http.StatusOK, messages)
}

func (h *Handlers) UpdateLanguage(c *gin.Context) {
	var req struct {
		Language string `json:"language" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !domain.KnownLanguage(req.Language) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported language code"})
		return
	}
	userID := domain.UserID(c.GetString("user_id"))
	if err := h.Store.UpdateUserLanguage(c.Request.Context(), userID, req.Language); err != nil {
		log.Error().Str("module", "adapters.http").Err(err).Msg("update language")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update language"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"language": req.Language})
}

func (h *Handlers) Translate(c *gin.Context) {
	var req struct {
		Text       string `json:"text" binding:"required"`
		SourceLang string `json:"sourceLang" binding:"required"`
		TargetLang string `json:"targetLang" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text, sourceLang and targetLang required"})
		return
	}
	translated := h.Translator.Translate(c.Request.Context(), req.Text, req.SourceLang, req.TargetLang)
	c.JSON(http.StatusOK, gin.H{"translated": translated})
}

func (h *Handlers) DetectLanguage(c *gin.Context) {
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"language": h.Translator.DetectLanguage(c.Request.Context(), req.Text)})
}
