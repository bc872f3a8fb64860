package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
)

// Board is a Kanban board scoped to a company.
type Board struct {
	ID        string         `gorm:"primaryKey;type:text" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CompanyID   string `gorm:"index;type:text;not null" json:"companyId"`
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	CreatedBy   string `gorm:"type:text" json:"createdBy"`

	Tasks []Task `gorm:"foreignKey:BoardID" json:"tasks,omitempty"`
}

func (b *Board) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return
}

type Task struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	BoardID     string     `gorm:"index;type:text;not null" json:"boardId"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Status      TaskStatus `gorm:"type:text;default:'todo'" json:"status"`
	Position    int        `gorm:"default:0" json:"position"`
	AssigneeID  *string    `gorm:"index;type:text" json:"assigneeId"`
	DueDate     *time.Time `json:"dueDate"`
	CreatedBy   string     `gorm:"type:text" json:"createdBy"`

	Board    Board `gorm:"foreignKey:BoardID" json:"-"`
	Assignee *User `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return
}
