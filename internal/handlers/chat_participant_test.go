package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AnonimusZ6/crmx-backend/internal/database"
	"github.com/AnonimusZ6/crmx-backend/internal/models"
)

func participantRowCount(roomId, userId string) int64 {
	var count int64
	database.DB.Model(&models.ChatParticipant{}).
		Where("room_id = ? AND user_id = ?", roomId, userId).
		Count(&count)
	return count
}

func TestLeaveAndRejoin_ReusesRow(t *testing.T) {
	SetupTestDB()

	alice := testUser("Alice")
	bob := testUser("Bob")
	company := testCompany(alice.ID, bob.ID)
	room := testRoom(alice.ID, company.ID, bob.ID)

	assert.Equal(t, int64(1), participantRowCount(room.ID, bob.ID))

	c, w := testContext("POST", "/api/chat/rooms/"+room.ID+"/leave", "", bob.ID,
		map[string]string{"roomId": room.ID})
	LeaveRoom(c)
	assert.Equal(t, http.StatusOK, w.Code)

	var row models.ChatParticipant
	database.DB.Where("room_id = ? AND user_id = ?", room.ID, bob.ID).First(&row)
	assert.False(t, row.IsActive)

	c2, w2 := testContext("POST", "/api/chat/rooms/"+room.ID+"/join", "", bob.ID,
		map[string]string{"roomId": room.ID})
	JoinRoom(c2)
	assert.Equal(t, http.StatusOK, w2.Code)

	database.DB.Where("room_id = ? AND user_id = ?", room.ID, bob.ID).First(&row)
	assert.True(t, row.IsActive)

	// Still exactly one row after the full cycle
	assert.Equal(t, int64(1), participantRowCount(room.ID, bob.ID))
}

func TestJoinRoom_AlreadyActive(t *testing.T) {
	SetupTestDB()

	alice := testUser("Alice")
	bob := testUser("Bob")
	company := testCompany(alice.ID, bob.ID)
	room := testRoom(alice.ID, company.ID, bob.ID)

	c, w := testContext("POST", "/api/chat/rooms/"+room.ID+"/join", "", bob.ID,
		map[string]string{"roomId": room.ID})
	JoinRoom(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, int64(1), participantRowCount(room.ID, bob.ID))
}

func TestJoinRoom_NonCompanyMember(t *testing.T) {
	SetupTestDB()

	alice := testUser("Alice")
	outsider := testUser("Outsider")
	company := testCompany(alice.ID)
	room := testRoom(alice.ID, company.ID)

	c, w := testContext("POST", "/api/chat/rooms/"+room.ID+"/join", "", outsider.ID,
		map[string]string{"roomId": room.ID})
	JoinRoom(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAddParticipants_PartialSuccess(t *testing.T) {
	SetupTestDB()

	alice := testUser("Alice")
	bob := testUser("Bob")
	carol := testUser("Carol")
	outsider := testUser("Outsider")
	company := testCompany(alice.ID, bob.ID, carol.ID)
	room := testRoom(alice.ID, company.ID, bob.ID)

	// carol: added; bob: already a participant; outsider: not a member
	body := fmt.Sprintf(`{"userIds": [%q, %q, %q]}`, carol.ID, bob.ID, outsider.ID)
	c, w := testContext("POST", "/api/chat/rooms/"+room.ID+"/participants", body, alice.ID,
		map[string]string{"roomId": room.ID})
	AddParticipants(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Added   []string             `json:"added"`
		Skipped []skippedParticipant `json:"skipped"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)

	assert.Len(t, resp.Added, 1)
	assert.Len(t, resp.Skipped, 2)
	// Every input id is accounted for exactly once
	assert.Equal(t, 3, len(resp.Added)+len(resp.Skipped))
	assert.Equal(t, carol.ID, resp.Added[0])
}

func TestAddParticipants_ReactivatesInactive(t *testing.T) {
	SetupTestDB()

	alice := testUser("Alice")
	bob := testUser("Bob")
	company := testCompany(alice.ID, bob.ID)
	room := testRoom(alice.ID, company.ID)

	// Bob left earlier: inactive row exists. The column defaults to
	// true, so flip it with an explicit update after the insert.
	left := models.ChatParticipant{RoomID: room.ID, UserID: bob.ID}
	database.DB.Create(&left)
	database.DB.Model(&left).Update("is_active", false)

	body := fmt.Sprintf(`{"userIds": [%q]}`, bob.ID)
	c, w := testContext("POST", "/api/chat/rooms/"+room.ID+"/participants", body, alice.ID,
		map[string]string{"roomId": room.ID})
	AddParticipants(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Added []string `json:"added"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Len(t, resp.Added, 1)

	assert.Equal(t, int64(1), participantRowCount(room.ID, bob.ID))

	var row models.ChatParticipant
	database.DB.Where("room_id = ? AND user_id = ?", room.ID, bob.ID).First(&row)
	assert.True(t, row.IsActive)
}

func TestAddParticipants_CallerMustBeParticipant(t *testing.T) {
	SetupTestDB()

	alice := testUser("Alice")
	bob := testUser("Bob")
	carol := testUser("Carol")
	company := testCompany(alice.ID, bob.ID, carol.ID)
	room := testRoom(alice.ID, company.ID)

	body := fmt.Sprintf(`{"userIds": [%q]}`, carol.ID)
	c, w := testContext("POST", "/api/chat/rooms/"+room.ID+"/participants", body, bob.ID,
		map[string]string{"roomId": room.ID})
	AddParticipants(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRemoveParticipant_CreatorOnly(t *testing.T) {
	SetupTestDB()

	alice := testUser("Alice")
	bob := testUser("Bob")
	carol := testUser("Carol")
	company := testCompany(alice.ID, bob.ID, carol.ID)
	room := testRoom(alice.ID, company.ID, bob.ID, carol.ID)

	c, w := testContext("DELETE", "/api/chat/rooms/"+room.ID+"/participants/"+carol.ID, "", bob.ID,
		map[string]string{"roomId": room.ID, "userId": carol.ID})
	RemoveParticipant(c)

	assert.Equal(t, http.StatusForbidden, w.Code)

	c2, w2 := testContext("DELETE", "/api/chat/rooms/"+room.ID+"/participants/"+carol.ID, "", alice.ID,
		map[string]string{"roomId": room.ID, "userId": carol.ID})
	RemoveParticipant(c2)

	assert.Equal(t, http.StatusOK, w2.Code)

	var row models.ChatParticipant
	database.DB.Where("room_id = ? AND user_id = ?", room.ID, carol.ID).First(&row)
	assert.False(t, row.IsActive)
}

func TestUpdateParticipantRole_Persisted(t *testing.T) {
	SetupTestDB()

	alice := testUser("Alice")
	bob := testUser("Bob")
	company := testCompany(alice.ID, bob.ID)
	room := testRoom(alice.ID, company.ID, bob.ID)

	c, w := testContext("PUT", "/api/chat/rooms/"+room.ID+"/participants/"+bob.ID,
		`{"role": "admin"}`, alice.ID,
		map[string]string{"roomId": room.ID, "userId": bob.ID})
	UpdateParticipantRole(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var row models.ChatParticipant
	database.DB.Where("room_id = ? AND user_id = ?", room.ID, bob.ID).First(&row)
	assert.Equal(t, models.ParticipantAdmin, row.Role)

	// Non-creator cannot change roles
	c2, w2 := testContext("PUT", "/api/chat/rooms/"+room.ID+"/participants/"+alice.ID,
		`{"role": "member"}`, bob.ID,
		map[string]string{"roomId": room.ID, "userId": alice.ID})
	UpdateParticipantRole(c2)

	assert.Equal(t, http.StatusForbidden, w2.Code)
}

func TestLastParticipantMayLeave(t *testing.T) {
	SetupTestDB()

	alice := testUser("Alice")
	company := testCompany(alice.ID)
	room := testRoom(alice.ID, company.ID)

	c, w := testContext("POST", "/api/chat/rooms/"+room.ID+"/leave", "", alice.ID,
		map[string]string{"roomId": room.ID})
	LeaveRoom(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	database.DB.Model(&models.ChatParticipant{}).
		Where("room_id = ? AND is_active = ?", room.ID, true).
		Count(&count)
	assert.Equal(t, int64(0), count)
}
