package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/AnonimusZ6/crmx-backend/internal/database"
	"github.com/AnonimusZ6/crmx-backend/internal/models"
	"github.com/AnonimusZ6/crmx-backend/pkg/logger"
	"github.com/AnonimusZ6/crmx-backend/pkg/utils"
)

// chatError responds with the chat error shape: a human-readable message
// plus a short machine-readable code.
func chatError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, gin.H{"error": msg, "code": code})
}

// activeParticipant returns the caller's active participant row for a
// room, if any.
func activeParticipant(roomId, userId string) (*models.ChatParticipant, bool) {
	var p models.ChatParticipant
	err := database.DB.Where("room_id = ? AND user_id = ? AND is_active = ?", roomId, userId, true).
		First(&p).Error
	if err != nil {
		return nil, false
	}
	return &p, true
}

type CreateRoomInput struct {
	Name           string   `json:"name" binding:"required"`
	Description    string   `json:"description"`
	CompanyID      string   `json:"companyId" binding:"required"`
	IsPrivate      bool     `json:"isPrivate"`
	ParticipantIDs []string `json:"participantIds"`
}

// CreateRoom creates a group room. The creator is always added as a
// participant with the admin role. Listed participants are added only
// if they are active members of the same company; anyone else is
// silently skipped.
func CreateRoom(c *gin.Context) {
	userId := c.MustGet("userId").(string)

	var input CreateRoomInput
	if err := c.ShouldBindJSON(&input); err != nil {
		chatError(c, http.StatusBadRequest, "validation", err.Error())
		return
	}

	if _, ok := activeMember(input.CompanyID, userId); !ok {
		chatError(c, http.StatusForbidden, "not_company_member", "You are not a member of this company")
		return
	}

	room := models.ChatRoom{
		Name:        input.Name,
		Description: input.Description,
		CompanyID:   input.CompanyID,
		CreatedBy:   userId,
		IsPrivate:   input.IsPrivate,
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&room).Error; err != nil {
			return err
		}

		creator := models.ChatParticipant{
			RoomID: room.ID,
			UserID: userId,
			Role:   models.ParticipantAdmin,
		}
		if err := tx.Create(&creator).Error; err != nil {
			return err
		}

		seen := map[string]struct{}{userId: {}}
		for _, pid := range input.ParticipantIDs {
			// Repeated ids would trip the (room_id, user_id) unique index
			if _, dup := seen[pid]; dup {
				continue
			}
			seen[pid] = struct{}{}
			// Non-members are skipped without error at creation time
			if _, ok := activeMember(input.CompanyID, pid); !ok {
				continue
			}
			p := models.ChatParticipant{RoomID: room.ID, UserID: pid}
			if err := tx.Create(&p).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create chat room")
		chatError(c, http.StatusInternalServerError, "internal", "Failed to create room")
		return
	}

	database.DB.Preload("Participants", "is_active = ?", true).
		Preload("Participants.User").
		First(&room, "id = ?", room.ID)

	EmitToRoom(room.ID, "room_updated", gin.H{"room": room})

	c.JSON(http.StatusCreated, gin.H{"room": room})
}

type CreatePrivateRoomInput struct {
	ParticipantID string `json:"participantId" binding:"required"`
	CompanyID     string `json:"companyId" binding:"required"`
}

// CreatePrivateRoom is the idempotent get-or-create path for two-party
// rooms. A unique index on (company_id, pair_key) closes the concurrent
// duplicate race: when the insert hits the constraint, the existing row
// is fetched and returned instead.
func CreatePrivateRoom(c *gin.Context) {
	userId := c.MustGet("userId").(string)

	var input CreatePrivateRoomInput
	if err := c.ShouldBindJSON(&input); err != nil {
		chatError(c, http.StatusBadRequest, "validation", err.Error())
		return
	}

	if !utils.IsUUID(input.ParticipantID) {
		chatError(c, http.StatusBadRequest, "validation", "participantId must be a valid user id")
		return
	}
	if input.ParticipantID == userId {
		chatError(c, http.StatusBadRequest, "self_chat", "Cannot create a private chat with yourself")
		return
	}

	if _, ok := activeMember(input.CompanyID, userId); !ok {
		chatError(c, http.StatusForbidden, "not_company_member", "You are not a member of this company")
		return
	}
	if _, ok := activeMember(input.CompanyID, input.ParticipantID); !ok {
		chatError(c, http.StatusForbidden, "not_company_member", "Participant is not a member of this company")
		return
	}

	pairKey := utils.PairKey(userId, input.ParticipantID)

	var existing models.ChatRoom
	err := database.DB.Where("company_id = ? AND pair_key = ?", input.CompanyID, pairKey).
		Preload("Participants", "is_active = ?", true).
		Preload("Participants.User").
		First(&existing).Error
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"room": existing})
		return
	}

	var me, other models.User
	if err := database.DB.First(&me, "id = ?", userId).Error; err != nil {
		chatError(c, http.StatusInternalServerError, "internal", "Failed to create room")
		return
	}
	if err := database.DB.First(&other, "id = ?", input.ParticipantID).Error; err != nil {
		chatError(c, http.StatusNotFound, "not_found", "Participant not found")
		return
	}

	room := models.ChatRoom{
		Name:      me.DisplayName() + " & " + other.DisplayName(),
		CompanyID: input.CompanyID,
		CreatedBy: userId,
		IsPrivate: true,
		PairKey:   &pairKey,
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&room).Error; err != nil {
			return err
		}
		for _, uid := range []string{userId, input.ParticipantID} {
			p := models.ChatParticipant{RoomID: room.ID, UserID: uid}
			if err := tx.Create(&p).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		// A concurrent request won the insert; return its room.
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(strings.ToLower(err.Error()), "unique") {
			if ferr := database.DB.Where("company_id = ? AND pair_key = ?", input.CompanyID, pairKey).
				Preload("Participants", "is_active = ?", true).
				Preload("Participants.User").
				First(&existing).Error; ferr == nil {
				c.JSON(http.StatusOK, gin.H{"room": existing})
				return
			}
		}
		logger.Error().Err(err).Msg("Failed to create private room")
		chatError(c, http.StatusInternalServerError, "internal", "Failed to create room")
		return
	}

	database.DB.Preload("Participants", "is_active = ?", true).
		Preload("Participants.User").
		First(&room, "id = ?", room.ID)

	c.JSON(http.StatusCreated, gin.H{"room": room})
}

// ListRooms returns the rooms where the caller holds an active
// participant row, most recently active first.
func ListRooms(c *gin.Context) {
	userId := c.MustGet("userId").(string)

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := database.DB.Model(&models.ChatRoom{}).
		Joins("JOIN chat_participants ON chat_participants.room_id = chat_rooms.id").
		Where("chat_participants.user_id = ? AND chat_participants.is_active = ?", userId, true).
		Where("chat_rooms.is_active = ?", true)

	if companyId := c.Query("companyId"); companyId != "" {
		query = query.Where("chat_rooms.company_id = ?", companyId)
	}
	if c.DefaultQuery("includePrivate", "true") == "false" {
		query = query.Where("chat_rooms.is_private = ?", false)
	}

	var total int64
	query.Count(&total)

	var rooms []models.ChatRoom
	err := query.Order("chat_rooms.last_message_at DESC").
		Limit(limit).Offset(offset).
		Preload("Participants", "is_active = ?", true).
		Preload("Participants.User").
		Find(&rooms).Error
	if err != nil {
		chatError(c, http.StatusInternalServerError, "internal", "Failed to fetch rooms")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rooms":   rooms,
		"total":   total,
		"hasMore": int64(offset+len(rooms)) < total,
	})
}

func GetRoom(c *gin.Context) {
	userId := c.MustGet("userId").(string)
	roomId := c.Param("roomId")

	var room models.ChatRoom
	err := database.DB.Preload("Participants", "is_active = ?", true).
		Preload("Participants.User").
		First(&room, "id = ?", roomId).Error
	if err != nil {
		chatError(c, http.StatusNotFound, "not_found", "Room not found")
		return
	}

	if _, ok := activeParticipant(roomId, userId); !ok {
		chatError(c, http.StatusForbidden, "not_participant", "You are not a participant of this room")
		return
	}

	c.JSON(http.StatusOK, gin.H{"room": room})
}

type UpdateRoomInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

// UpdateRoom changes name/description/isActive. Creator only.
func UpdateRoom(c *gin.Context) {
	userId := c.MustGet("userId").(string)
	roomId := c.Param("roomId")

	var room models.ChatRoom
	if err := database.DB.First(&room, "id = ?", roomId).Error; err != nil {
		chatError(c, http.StatusNotFound, "not_found", "Room not found")
		return
	}

	if room.CreatedBy != userId {
		chatError(c, http.StatusForbidden, "not_creator", "Only the room creator can update the room")
		return
	}

	var input UpdateRoomInput
	if err := c.ShouldBindJSON(&input); err != nil {
		chatError(c, http.StatusBadRequest, "validation", err.Error())
		return
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		if *input.Name == "" {
			chatError(c, http.StatusBadRequest, "validation", "Room name cannot be empty")
			return
		}
		updates["name"] = *input.Name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&room).Updates(updates).Error; err != nil {
			chatError(c, http.StatusInternalServerError, "internal", "Failed to update room")
			return
		}
	}

	EmitToRoom(room.ID, "room_updated", gin.H{"room": room})

	c.JSON(http.StatusOK, gin.H{"room": room})
}

// DeleteRoom soft-deletes: the row stays and remains fetchable by id,
// but drops out of room listings. Creator only.
func DeleteRoom(c *gin.Context) {
	userId := c.MustGet("userId").(string)
	roomId := c.Param("roomId")

	var room models.ChatRoom
	if err := database.DB.First(&room, "id = ?", roomId).Error; err != nil {
		chatError(c, http.StatusNotFound, "not_found", "Room not found")
		return
	}

	if room.CreatedBy != userId {
		chatError(c, http.StatusForbidden, "not_creator", "Only the room creator can delete the room")
		return
	}

	if err := database.DB.Model(&room).Update("is_active", false).Error; err != nil {
		chatError(c, http.StatusInternalServerError, "internal", "Failed to delete room")
		return
	}

	EmitToRoom(room.ID, "room_updated", gin.H{"roomId": room.ID, "isActive": false})

	c.JSON(http.StatusOK, gin.H{"message": "Room deleted"})
}
