package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AnonimusZ6/crmx-backend/internal/database"
	"github.com/AnonimusZ6/crmx-backend/internal/models"
)

// Participant rows cycle absent -> active -> inactive -> active. The
// only creation transition is absent -> active; everything after that
// toggles is_active on the existing row so (room, user) never has more
// than one row.

// JoinRoom lets an active company member add themselves to a room.
func JoinRoom(c *gin.Context) {
	userId := c.MustGet("userId").(string)
	roomId := c.Param("roomId")

	var room models.ChatRoom
	if err := database.DB.First(&room, "id = ?", roomId).Error; err != nil {
		chatError(c, http.StatusNotFound, "not_found", "Room not found")
		return
	}

	if _, ok := activeMember(room.CompanyID, userId); !ok {
		chatError(c, http.StatusForbidden, "not_company_member", "You are not a member of this company")
		return
	}

	var existing models.ChatParticipant
	err := database.DB.Where("room_id = ? AND user_id = ?", roomId, userId).First(&existing).Error
	if err == nil {
		if existing.IsActive {
			chatError(c, http.StatusConflict, "already_participant", "You are already a participant of this room")
			return
		}
		if err := database.DB.Model(&existing).Update("is_active", true).Error; err != nil {
			chatError(c, http.StatusInternalServerError, "internal", "Failed to join room")
			return
		}
		EmitToRoom(roomId, "user_joined", gin.H{"roomId": roomId, "userId": userId})
		c.JSON(http.StatusOK, gin.H{"participant": existing})
		return
	}

	participant := models.ChatParticipant{RoomID: roomId, UserID: userId}
	if err := database.DB.Create(&participant).Error; err != nil {
		chatError(c, http.StatusInternalServerError, "internal", "Failed to join room")
		return
	}

	EmitToRoom(roomId, "user_joined", gin.H{"roomId": roomId, "userId": userId})
	c.JSON(http.StatusCreated, gin.H{"participant": participant})
}

// LeaveRoom deactivates the caller's participant row. The last active
// participant is allowed to leave; the room then has zero active
// participants and stays reachable through creator-level operations.
func LeaveRoom(c *gin.Context) {
	userId := c.MustGet("userId").(string)
	roomId := c.Param("roomId")

	participant, ok := activeParticipant(roomId, userId)
	if !ok {
		chatError(c, http.StatusForbidden, "not_participant", "You are not a participant of this room")
		return
	}

	if err := database.DB.Model(participant).Update("is_active", false).Error; err != nil {
		chatError(c, http.StatusInternalServerError, "internal", "Failed to leave room")
		return
	}

	EmitToRoom(roomId, "user_left", gin.H{"roomId": roomId, "userId": userId})
	c.JSON(http.StatusOK, gin.H{"message": "Left room"})
}

type AddParticipantsInput struct {
	UserIDs []string `json:"userIds" binding:"required"`
}

type skippedParticipant struct {
	UserID string `json:"userId"`
	Reason string `json:"reason"`
}

// AddParticipants bulk-adds users to a room. Each target is reported
// either in "added" or in "skipped" with a reason; partial success is
// the normal outcome, never an overall failure.
func AddParticipants(c *gin.Context) {
	userId := c.MustGet("userId").(string)
	roomId := c.Param("roomId")

	var room models.ChatRoom
	if err := database.DB.First(&room, "id = ?", roomId).Error; err != nil {
		chatError(c, http.StatusNotFound, "not_found", "Room not found")
		return
	}

	if _, ok := activeParticipant(roomId, userId); !ok {
		chatError(c, http.StatusForbidden, "not_participant", "You are not a participant of this room")
		return
	}

	var input AddParticipantsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		chatError(c, http.StatusBadRequest, "validation", err.Error())
		return
	}
	if len(input.UserIDs) == 0 {
		chatError(c, http.StatusBadRequest, "validation", "userIds cannot be empty")
		return
	}

	added := make([]string, 0, len(input.UserIDs))
	skipped := make([]skippedParticipant, 0)

	for _, targetId := range input.UserIDs {
		if _, ok := activeMember(room.CompanyID, targetId); !ok {
			skipped = append(skipped, skippedParticipant{UserID: targetId, Reason: "not a member of this company"})
			continue
		}

		var existing models.ChatParticipant
		err := database.DB.Where("room_id = ? AND user_id = ?", roomId, targetId).First(&existing).Error
		if err == nil {
			if existing.IsActive {
				skipped = append(skipped, skippedParticipant{UserID: targetId, Reason: "already a participant"})
				continue
			}
			if err := database.DB.Model(&existing).Update("is_active", true).Error; err != nil {
				skipped = append(skipped, skippedParticipant{UserID: targetId, Reason: "failed to reactivate"})
				continue
			}
			added = append(added, targetId)
			EmitToRoom(roomId, "user_joined", gin.H{"roomId": roomId, "userId": targetId})
			continue
		}

		p := models.ChatParticipant{RoomID: roomId, UserID: targetId}
		if err := database.DB.Create(&p).Error; err != nil {
			skipped = append(skipped, skippedParticipant{UserID: targetId, Reason: "failed to add"})
			continue
		}
		added = append(added, targetId)
		EmitToRoom(roomId, "user_joined", gin.H{"roomId": roomId, "userId": targetId})
	}

	c.JSON(http.StatusOK, gin.H{
		"added":   added,
		"skipped": skipped,
	})
}

func ListParticipants(c *gin.Context) {
	userId := c.MustGet("userId").(string)
	roomId := c.Param("roomId")

	if _, ok := activeParticipant(roomId, userId); !ok {
		chatError(c, http.StatusForbidden, "not_participant", "You are not a participant of this room")
		return
	}

	var participants []models.ChatParticipant
	err := database.DB.Where("room_id = ? AND is_active = ?", roomId, true).
		Preload("User").
		Find(&participants).Error
	if err != nil {
		chatError(c, http.StatusInternalServerError, "internal", "Failed to fetch participants")
		return
	}

	// No presence tracking exists, so status is always "unknown"
	out := make([]gin.H, 0, len(participants))
	for _, p := range participants {
		out = append(out, gin.H{
			"id":       p.ID,
			"userId":   p.UserID,
			"role":     p.Role,
			"user":     p.User,
			"joinedAt": p.CreatedAt,
			"status":   "unknown",
		})
	}

	c.JSON(http.StatusOK, gin.H{"participants": out})
}

// RemoveParticipant deactivates another user's row. Room creator only.
func RemoveParticipant(c *gin.Context) {
	userId := c.MustGet("userId").(string)
	roomId := c.Param("roomId")
	targetId := c.Param("userId")

	var room models.ChatRoom
	if err := database.DB.First(&room, "id = ?", roomId).Error; err != nil {
		chatError(c, http.StatusNotFound, "not_found", "Room not found")
		return
	}

	if room.CreatedBy != userId {
		chatError(c, http.StatusForbidden, "not_creator", "Only the room creator can remove participants")
		return
	}

	participant, ok := activeParticipant(roomId, targetId)
	if !ok {
		chatError(c, http.StatusNotFound, "not_found", "Participant not found")
		return
	}

	if err := database.DB.Model(participant).Update("is_active", false).Error; err != nil {
		chatError(c, http.StatusInternalServerError, "internal", "Failed to remove participant")
		return
	}

	EmitToRoom(roomId, "user_left", gin.H{"roomId": roomId, "userId": targetId})
	c.JSON(http.StatusOK, gin.H{"message": "Participant removed"})
}

type UpdateRoleInput struct {
	Role models.ParticipantRole `json:"role" binding:"required"`
}

// UpdateParticipantRole persists the member/admin role on the
// participant row. Room creator only.
func UpdateParticipantRole(c *gin.Context) {
	userId := c.MustGet("userId").(string)
	roomId := c.Param("roomId")
	targetId := c.Param("userId")

	var room models.ChatRoom
	if err := database.DB.First(&room, "id = ?", roomId).Error; err != nil {
		chatError(c, http.StatusNotFound, "not_found", "Room not found")
		return
	}

	if room.CreatedBy != userId {
		chatError(c, http.StatusForbidden, "not_creator", "Only the room creator can change roles")
		return
	}

	var input UpdateRoleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		chatError(c, http.StatusBadRequest, "validation", err.Error())
		return
	}
	if input.Role != models.ParticipantMember && input.Role != models.ParticipantAdmin {
		chatError(c, http.StatusBadRequest, "validation", "Role must be 'member' or 'admin'")
		return
	}

	participant, ok := activeParticipant(roomId, targetId)
	if !ok {
		chatError(c, http.StatusNotFound, "not_found", "Participant not found")
		return
	}

	if err := database.DB.Model(participant).Update("role", input.Role).Error; err != nil {
		chatError(c, http.StatusInternalServerError, "internal", "Failed to update role")
		return
	}

	c.JSON(http.StatusOK, gin.H{"participant": participant})
}
