package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionCancelled TransactionStatus = "cancelled"
)

type Transaction struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	CompanyID   string            `gorm:"index;type:text;not null" json:"companyId"`
	ClientID    *string           `gorm:"index;type:text" json:"clientId"`
	ProductID   *string           `gorm:"index;type:text" json:"productId"`
	Quantity    int               `gorm:"default:1" json:"quantity"`
	Amount      float64           `gorm:"not null" json:"amount"`
	Type        TransactionType   `gorm:"type:text;not null" json:"type"`
	Status      TransactionStatus `gorm:"type:text;default:'pending'" json:"status"`
	Description string            `gorm:"type:text" json:"description"`
	CreatedBy   string            `gorm:"type:text" json:"createdBy"`

	Company Company  `gorm:"foreignKey:CompanyID" json:"-"`
	Client  *Client  `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return
}
