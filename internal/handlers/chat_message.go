package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/AnonimusZ6/crmx-backend/internal/database"
	"github.com/AnonimusZ6/crmx-backend/internal/models"
	"github.com/AnonimusZ6/crmx-backend/pkg/logger"
)

// editWindow bounds how long a sender may edit their own message.
const editWindow = 15 * time.Minute

// maxMessageLength caps content in runes, not bytes.
const maxMessageLength = 8000

func validMessageContent(c *gin.Context, content string) bool {
	if strings.TrimSpace(content) == "" {
		chatError(c, http.StatusBadRequest, "validation", "Message content cannot be empty")
		return false
	}
	if utf8.RuneCountInString(content) > maxMessageLength {
		chatError(c, http.StatusBadRequest, "validation", "Message exceeds maximum length")
		return false
	}
	return true
}

type SendMessageInput struct {
	Content string             `json:"content" binding:"required"`
	Type    models.MessageType `json:"type"`
}

// SendMessage appends a message and bumps the room's last-activity
// timestamp used for list ordering. The socket broadcast is a
// best-effort mirror, not part of the persistence contract.
func SendMessage(c *gin.Context) {
	userId := c.MustGet("userId").(string)
	roomId := c.Param("roomId")

	if _, ok := activeParticipant(roomId, userId); !ok {
		chatError(c, http.StatusForbidden, "not_participant", "You are not a participant of this room")
		return
	}

	var input SendMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		chatError(c, http.StatusBadRequest, "validation", err.Error())
		return
	}

	if !validMessageContent(c, input.Content) {
		return
	}

	msgType := input.Type
	if msgType == "" {
		msgType = models.MessageText
	}
	if msgType != models.MessageText && msgType != models.MessageFile && msgType != models.MessageImage {
		chatError(c, http.StatusBadRequest, "validation", "Type must be 'text', 'file' or 'image'")
		return
	}

	msg := models.ChatMessage{
		RoomID:   roomId,
		SenderID: userId,
		Content:  input.Content,
		Type:     msgType,
	}

	if err := database.DB.Create(&msg).Error; err != nil {
		logger.Error().Err(err).Msg("Failed to send message")
		chatError(c, http.StatusInternalServerError, "internal", "Failed to send message")
		return
	}

	database.DB.Model(&models.ChatRoom{}).Where("id = ?", roomId).
		Update("last_message_at", msg.CreatedAt)

	database.DB.Preload("Sender").First(&msg, "id = ?", msg.ID)

	EmitToRoom(roomId, "receive_message", gin.H{"message": msg})

	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

// ListMessages pages through a room's history. Rows are fetched newest
// first for efficient limit/offset, then reversed so the response reads
// chronologically. before/after narrow the window by creation time and
// hasMore counts within that same window.
func ListMessages(c *gin.Context) {
	userId := c.MustGet("userId").(string)
	roomId := c.Param("roomId")

	if _, ok := activeParticipant(roomId, userId); !ok {
		chatError(c, http.StatusForbidden, "not_participant", "You are not a participant of this room")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := database.DB.Model(&models.ChatMessage{}).Where("room_id = ?", roomId)
	if before := c.Query("before"); before != "" {
		ts, err := time.Parse(time.RFC3339, before)
		if err != nil {
			chatError(c, http.StatusBadRequest, "validation", "before must be an RFC3339 timestamp")
			return
		}
		query = query.Where("created_at < ?", ts)
	}
	if after := c.Query("after"); after != "" {
		ts, err := time.Parse(time.RFC3339, after)
		if err != nil {
			chatError(c, http.StatusBadRequest, "validation", "after must be an RFC3339 timestamp")
			return
		}
		query = query.Where("created_at > ?", ts)
	}

	var total int64
	query.Count(&total)

	var messages []models.ChatMessage
	err := query.Order("created_at DESC").
		Limit(limit).Offset(offset).
		Preload("Sender").
		Find(&messages).Error
	if err != nil {
		chatError(c, http.StatusInternalServerError, "internal", "Failed to fetch messages")
		return
	}

	// Reverse to chronological ascending
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": messages,
		"total":    total,
		"hasMore":  int64(offset+len(messages)) < total,
	})
}

type EditMessageInput struct {
	Content string `json:"content" binding:"required"`
}

// EditMessage replaces the content in place; prior content is not
// retained. Sender only, and only within the edit window.
func EditMessage(c *gin.Context) {
	userId := c.MustGet("userId").(string)
	roomId := c.Param("roomId")

	var msg models.ChatMessage
	if err := database.DB.Where("id = ? AND room_id = ?", c.Param("messageId"), roomId).First(&msg).Error; err != nil {
		chatError(c, http.StatusNotFound, "not_found", "Message not found")
		return
	}

	if msg.SenderID != userId {
		chatError(c, http.StatusForbidden, "not_sender", "Only the sender can edit a message")
		return
	}

	if time.Since(msg.CreatedAt) > editWindow {
		chatError(c, http.StatusForbidden, "edit_window_expired", "Messages can only be edited within 15 minutes of sending")
		return
	}

	var input EditMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		chatError(c, http.StatusBadRequest, "validation", err.Error())
		return
	}
	if !validMessageContent(c, input.Content) {
		return
	}

	updates := map[string]interface{}{
		"content":   input.Content,
		"is_edited": true,
	}
	if err := database.DB.Model(&msg).Updates(updates).Error; err != nil {
		chatError(c, http.StatusInternalServerError, "internal", "Failed to edit message")
		return
	}

	EmitToRoom(roomId, "receive_message", gin.H{"message": msg, "edited": true})

	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// DeleteMessage hard-deletes, no tombstone. Sender only.
func DeleteMessage(c *gin.Context) {
	userId := c.MustGet("userId").(string)
	roomId := c.Param("roomId")

	var msg models.ChatMessage
	if err := database.DB.Where("id = ? AND room_id = ?", c.Param("messageId"), roomId).First(&msg).Error; err != nil {
		chatError(c, http.StatusNotFound, "not_found", "Message not found")
		return
	}

	if msg.SenderID != userId {
		chatError(c, http.StatusForbidden, "not_sender", "Only the sender can delete a message")
		return
	}

	if err := database.DB.Delete(&msg).Error; err != nil {
		chatError(c, http.StatusInternalServerError, "internal", "Failed to delete message")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Message deleted"})
}

// SearchMessages does a substring match on content across the rooms
// where the caller is an active participant. Case sensitivity follows
// the store's collation. There is no relevance ranking.
func SearchMessages(c *gin.Context) {
	userId := c.MustGet("userId").(string)

	q := c.Query("q")
	if q == "" {
		chatError(c, http.StatusBadRequest, "validation", "Search query 'q' is required")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := database.DB.Model(&models.ChatMessage{}).
		Joins("JOIN chat_participants ON chat_participants.room_id = chat_messages.room_id").
		Where("chat_participants.user_id = ? AND chat_participants.is_active = ?", userId, true).
		Where("chat_messages.content LIKE ?", "%"+q+"%")

	if roomId := c.Query("roomId"); roomId != "" {
		query = query.Where("chat_messages.room_id = ?", roomId)
	}

	var total int64
	query.Count(&total)

	var messages []models.ChatMessage
	err := query.Order("chat_messages.created_at DESC").
		Limit(limit).Offset(offset).
		Preload("Sender").
		Find(&messages).Error
	if err != nil {
		chatError(c, http.StatusInternalServerError, "internal", "Failed to search messages")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": messages,
		"total":    total,
		"hasMore":  int64(offset+len(messages)) < total,
	})
}

// TypingIndicator broadcasts a typing event. Nothing is persisted and
// the event may be lost on disconnect; there is no replay.
func TypingIndicator(c *gin.Context) {
	userId := c.MustGet("userId").(string)
	roomId := c.Param("roomId")

	if _, ok := activeParticipant(roomId, userId); !ok {
		chatError(c, http.StatusForbidden, "not_participant", "You are not a participant of this room")
		return
	}

	var input struct {
		Stopped bool `json:"stopped"`
	}
	_ = c.ShouldBindJSON(&input)

	event := "user_typing"
	if input.Stopped {
		event = "user_stop_typing"
	}
	EmitToRoom(roomId, event, gin.H{"roomId": roomId, "userId": userId})

	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

// MarkRead acknowledges a read position. Read state is not persisted;
// the endpoint exists for interface compatibility and only broadcasts.
func MarkRead(c *gin.Context) {
	userId := c.MustGet("userId").(string)
	roomId := c.Param("roomId")

	if _, ok := activeParticipant(roomId, userId); !ok {
		chatError(c, http.StatusForbidden, "not_participant", "You are not a participant of this room")
		return
	}

	EmitToRoom(roomId, "messages_read", gin.H{"roomId": roomId, "userId": userId})

	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}
