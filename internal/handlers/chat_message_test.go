package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/AnonimusZ6/crmx-backend/internal/database"
	"github.com/AnonimusZ6/crmx-backend/internal/models"
)

func TestSendMessage_BumpsRoomActivity(t *testing.T) {
	SetupTestDB()

	alice := testUser("Alice")
	company := testCompany(alice.ID)
	room := testRoom(alice.ID, company.ID)

	before := room.LastMessageAt

	time.Sleep(10 * time.Millisecond)
	c, w := testContext("POST", "/api/chat/rooms/"+room.ID+"/messages",
		`{"content": "hello"}`, alice.ID,
		map[string]string{"roomId": room.ID})
	SendMessage(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Message models.ChatMessage `json:"message"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, "hello", resp.Message.Content)
	assert.Equal(t, models.MessageText, resp.Message.Type)

	var updated models.ChatRoom
	database.DB.First(&updated, "id = ?", room.ID)
	assert.True(t, updated.LastMessageAt.After(before))
}

func TestSendMessage_EmptyContent(t *testing.T) {
	SetupTestDB()

	alice := testUser("Alice")
	company := testCompany(alice.ID)
	room := testRoom(alice.ID, company.ID)

	c, w := testContext("POST", "/api/chat/rooms/"+room.ID+"/messages",
		`{"content": "   "}`, alice.ID,
		map[string]string{"roomId": room.ID})
	SendMessage(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSendMessage_TooLong(t *testing.T) {
	SetupTestDB()

	alice := testUser("Alice")
	company := testCompany(alice.ID)
	room := testRoom(alice.ID, company.ID)

	body := fmt.Sprintf(`{"content": %q}`, strings.Repeat("a", 8001))
	c, w := testContext("POST", "/api/chat/rooms/"+room.ID+"/messages",
		body, alice.ID,
		map[string]string{"roomId": room.ID})
	SendMessage(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var count int64
	database.DB.Model(&models.ChatMessage{}).Where("room_id = ?", room.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestListMessages_NonParticipant(t *testing.T) {
	SetupTestDB()

	alice := testUser("Alice")
	carol := testUser("Carol")
	company := testCompany(alice.ID, carol.ID)
	room := testRoom(alice.ID, company.ID)

	seedMessage(room.ID, alice.ID, "hello", time.Now())

	c, w := testContext("GET", "/api/chat/rooms/"+room.ID+"/messages", "", carol.ID,
		map[string]string{"roomId": room.ID})
	ListMessages(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestListMessages_ChronologicalOrder(t *testing.T) {
	SetupTestDB()

	alice := testUser("Alice")
	company := testCompany(alice.ID)
	room := testRoom(alice.ID, company.ID)

	now := time.Now()
	seedMessage(room.ID, alice.ID, "first", now.Add(-3*time.Minute))
	seedMessage(room.ID, alice.ID, "second", now.Add(-2*time.Minute))
	seedMessage(room.ID, alice.ID, "third", now.Add(-1*time.Minute))

	c, w := testContext("GET", "/api/chat/rooms/"+room.ID+"/messages?limit=2", "", alice.ID,
		map[string]string{"roomId": room.ID})
	ListMessages(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Messages []models.ChatMessage `json:"messages"`
		HasMore  bool                 `json:"hasMore"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)

	// Latest two, in ascending order
	assert.Len(t, resp.Messages, 2)
	assert.Equal(t, "second", resp.Messages[0].Content)
	assert.Equal(t, "third", resp.Messages[1].Content)
	assert.True(t, resp.HasMore)
}

func TestListMessages_BeforeCursor(t *testing.T) {
	SetupTestDB()

	alice := testUser("Alice")
	company := testCompany(alice.ID)
	room := testRoom(alice.ID, company.ID)

	now := time.Now()
	seedMessage(room.ID, alice.ID, "old", now.Add(-2*time.Hour))
	seedMessage(room.ID, alice.ID, "new", now)

	cursor := now.Add(-1 * time.Hour).UTC().Format(time.RFC3339)
	c, w := testContext("GET", "/api/chat/rooms/"+room.ID+"/messages?before="+cursor, "", alice.ID,
		map[string]string{"roomId": room.ID})
	ListMessages(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Messages []models.ChatMessage `json:"messages"`
		HasMore  bool                 `json:"hasMore"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)

	assert.Len(t, resp.Messages, 1)
	assert.Equal(t, "old", resp.Messages[0].Content)
	assert.False(t, resp.HasMore)
}

func TestEditMessage_SenderOnly(t *testing.T) {
	SetupTestDB()

	alice := testUser("Alice")
	bob := testUser("Bob")
	company := testCompany(alice.ID, bob.ID)
	room := testRoom(alice.ID, company.ID, bob.ID)

	msg := seedMessage(room.ID, alice.ID, "original", time.Now())

	c, w := testContext("PUT", "/api/chat/rooms/"+room.ID+"/messages/"+msg.ID,
		`{"content": "hacked"}`, bob.ID,
		map[string]string{"roomId": room.ID, "messageId": msg.ID})
	EditMessage(c)

	assert.Equal(t, http.StatusForbidden, w.Code)

	// Row unmodified
	var unchanged models.ChatMessage
	database.DB.First(&unchanged, "id = ?", msg.ID)
	assert.Equal(t, "original", unchanged.Content)
	assert.False(t, unchanged.IsEdited)

	c2, w2 := testContext("PUT", "/api/chat/rooms/"+room.ID+"/messages/"+msg.ID,
		`{"content": "fixed typo"}`, alice.ID,
		map[string]string{"roomId": room.ID, "messageId": msg.ID})
	EditMessage(c2)

	assert.Equal(t, http.StatusOK, w2.Code)

	var edited models.ChatMessage
	database.DB.First(&edited, "id = ?", msg.ID)
	assert.Equal(t, "fixed typo", edited.Content)
	assert.True(t, edited.IsEdited)
}

func TestEditMessage_WindowExpired(t *testing.T) {
	SetupTestDB()

	alice := testUser("Alice")
	company := testCompany(alice.ID)
	room := testRoom(alice.ID, company.ID)

	msg := seedMessage(room.ID, alice.ID, "old message", time.Now().Add(-16*time.Minute))

	c, w := testContext("PUT", "/api/chat/rooms/"+room.ID+"/messages/"+msg.ID,
		`{"content": "too late"}`, alice.ID,
		map[string]string{"roomId": room.ID, "messageId": msg.ID})
	EditMessage(c)

	assert.Equal(t, http.StatusForbidden, w.Code)

	var unchanged models.ChatMessage
	database.DB.First(&unchanged, "id = ?", msg.ID)
	assert.Equal(t, "old message", unchanged.Content)
}

func TestDeleteMessage_SenderOnly(t *testing.T) {
	SetupTestDB()

	alice := testUser("Alice")
	bob := testUser("Bob")
	company := testCompany(alice.ID, bob.ID)
	room := testRoom(alice.ID, company.ID, bob.ID)

	msg := seedMessage(room.ID, alice.ID, "to delete", time.Now())

	c, w := testContext("DELETE", "/api/chat/rooms/"+room.ID+"/messages/"+msg.ID, "", bob.ID,
		map[string]string{"roomId": room.ID, "messageId": msg.ID})
	DeleteMessage(c)

	assert.Equal(t, http.StatusForbidden, w.Code)

	c2, w2 := testContext("DELETE", "/api/chat/rooms/"+room.ID+"/messages/"+msg.ID, "", alice.ID,
		map[string]string{"roomId": room.ID, "messageId": msg.ID})
	DeleteMessage(c2)

	assert.Equal(t, http.StatusOK, w2.Code)

	// Hard delete, no tombstone
	var count int64
	database.DB.Model(&models.ChatMessage{}).Where("id = ?", msg.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestSearchMessages_ScopedToParticipantRooms(t *testing.T) {
	SetupTestDB()

	alice := testUser("Alice")
	bob := testUser("Bob")
	company := testCompany(alice.ID, bob.ID)
	aliceRoom := testRoom(alice.ID, company.ID)
	bobRoom := testRoom(bob.ID, company.ID)

	seedMessage(aliceRoom.ID, alice.ID, "quarterly report ready", time.Now())
	seedMessage(bobRoom.ID, bob.ID, "quarterly numbers are secret", time.Now())

	c, w := testContext("GET", "/api/chat/search?q=quarterly", "", alice.ID, nil)
	SearchMessages(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Messages []models.ChatMessage `json:"messages"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)

	// Only the room alice participates in
	assert.Len(t, resp.Messages, 1)
	assert.Equal(t, aliceRoom.ID, resp.Messages[0].RoomID)
}

func seedMessage(roomId, senderId, content string, createdAt time.Time) models.ChatMessage {
	msg := models.ChatMessage{
		RoomID:   roomId,
		SenderID: senderId,
		Content:  content,
		Type:     models.MessageText,
	}
	database.DB.Create(&msg)
	// Backdate explicitly: gorm overwrites CreatedAt on insert
	database.DB.Model(&msg).Update("created_at", createdAt)
	msg.CreatedAt = createdAt
	return msg
}
