package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ParticipantRole string

const (
	ParticipantMember ParticipantRole = "member"
	ParticipantAdmin  ParticipantRole = "admin"
)

type MessageType string

const (
	MessageText  MessageType = "text"
	MessageFile  MessageType = "file"
	MessageImage MessageType = "image"
)

// ChatRoom is a named scope for messages and participants, owned by a
// company. Rooms are soft-deleted via IsActive, never hard-deleted.
type ChatRoom struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	CompanyID   string `gorm:"index;type:text;not null;uniqueIndex:idx_private_pair" json:"companyId"`
	CreatedBy   string `gorm:"index;type:text;not null" json:"createdBy"`
	IsActive    bool   `gorm:"default:true" json:"isActive"`
	IsPrivate   bool   `gorm:"default:false" json:"isPrivate"`

	// PairKey is set only for private two-party rooms: the sorted pair
	// of user ids joined with "_". The unique index on (company_id,
	// pair_key) makes get-or-create race-proof; NULL for group rooms so
	// any number of those can coexist.
	PairKey *string `gorm:"type:text;uniqueIndex:idx_private_pair" json:"-"`

	// LastMessageAt drives room-list ordering; bumped on every send.
	LastMessageAt time.Time `gorm:"index" json:"lastMessageAt"`

	// Relations
	Participants []ChatParticipant `gorm:"foreignKey:RoomID" json:"participants,omitempty"`
	Messages     []ChatMessage     `gorm:"foreignKey:RoomID" json:"messages,omitempty"`
}

func (r *ChatRoom) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.LastMessageAt.IsZero() {
		r.LastMessageAt = time.Now()
	}
	return
}

// ChatParticipant links one user to one room. At most one row exists
// per (room, user); leaving deactivates the row and rejoining
// reactivates it, preserving history.
type ChatParticipant struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	RoomID   string          `gorm:"index;type:text;not null;uniqueIndex:idx_room_user" json:"roomId"`
	UserID   string          `gorm:"index;type:text;not null;uniqueIndex:idx_room_user" json:"userId"`
	Role     ParticipantRole `gorm:"type:text;default:'member'" json:"role"`
	IsActive bool            `gorm:"default:true" json:"isActive"`

	// Relations
	Room ChatRoom `gorm:"foreignKey:RoomID" json:"-"`
	User User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (p *ChatParticipant) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return
}

type ChatMessage struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	RoomID   string      `gorm:"index;type:text;not null" json:"roomId"`
	SenderID string      `gorm:"index;type:text;not null" json:"senderId"`
	Content  string      `gorm:"type:text;not null" json:"content"`
	Type     MessageType `gorm:"type:text;default:'text'" json:"type"`
	IsEdited bool        `gorm:"default:false" json:"isEdited"`

	// Relations
	Room   ChatRoom `gorm:"foreignKey:RoomID" json:"-"`
	Sender User     `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}

func (m *ChatMessage) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return
}
