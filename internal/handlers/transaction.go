package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/AnonimusZ6/crmx-backend/internal/database"
	"github.com/AnonimusZ6/crmx-backend/internal/models"
	"github.com/AnonimusZ6/crmx-backend/pkg/logger"
)

type CreateTransactionInput struct {
	ClientID    *string                `json:"clientId"`
	ProductID   *string                `json:"productId"`
	Quantity    int                    `json:"quantity"`
	Amount      float64                `json:"amount" binding:"required"`
	Type        models.TransactionType `json:"type" binding:"required"`
	Description string                 `json:"description"`
	Complete    bool                   `json:"complete"`
}

// applyStock adjusts product stock for a completed transaction.
// A sale (income) consumes stock, a purchase (expense) replenishes it.
// Pass -1 as direction to revert a previously applied adjustment.
func applyStock(tx *gorm.DB, t *models.Transaction, direction int) error {
	if t.ProductID == nil {
		return nil
	}
	qty := t.Quantity
	if qty <= 0 {
		qty = 1
	}
	delta := -qty * direction
	if t.Type == models.TransactionExpense {
		delta = qty * direction
	}

	var product models.Product
	if err := tx.Where("id = ? AND company_id = ?", *t.ProductID, t.CompanyID).First(&product).Error; err != nil {
		return err
	}
	if product.Stock+delta < 0 {
		return fmt.Errorf("insufficient stock for product %s", product.Name)
	}
	return tx.Model(&product).Update("stock", gorm.Expr("stock + ?", delta)).Error
}

func invalidateDashboard(companyId string) {
	if database.Redis == nil {
		return
	}
	if err := database.CacheInvalidate("dashboard:" + companyId); err != nil {
		logger.Warn().Err(err).Str("company_id", companyId).Msg("Failed to invalidate dashboard cache")
	}
}

func CreateTransaction(c *gin.Context) {
	userId := c.MustGet("userId").(string)
	companyId := c.Param("companyId")

	if _, ok := activeMember(companyId, userId); !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not a member of this company"})
		return
	}

	var input CreateTransactionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Type != models.TransactionIncome && input.Type != models.TransactionExpense {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Type must be 'income' or 'expense'"})
		return
	}
	if input.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Amount must be positive"})
		return
	}

	transaction := models.Transaction{
		CompanyID:   companyId,
		ClientID:    input.ClientID,
		ProductID:   input.ProductID,
		Quantity:    input.Quantity,
		Amount:      input.Amount,
		Type:        input.Type,
		Description: input.Description,
		CreatedBy:   userId,
	}
	if transaction.Quantity <= 0 {
		transaction.Quantity = 1
	}
	if input.Complete {
		transaction.Status = models.TransactionCompleted
	}

	// Money-moving writes always run inside a transaction so the row and
	// its stock adjustment commit or roll back together.
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&transaction).Error; err != nil {
			return err
		}
		if transaction.Status == models.TransactionCompleted {
			return applyStock(tx, &transaction, 1)
		}
		return nil
	})
	if err != nil {
		logger.Warn().Err(err).Str("company_id", companyId).Msg("Failed to create transaction")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	invalidateDashboard(companyId)
	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

func ListTransactions(c *gin.Context) {
	userId := c.MustGet("userId").(string)
	companyId := c.Param("companyId")

	if _, ok := activeMember(companyId, userId); !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not a member of this company"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := database.DB.Model(&models.Transaction{}).Where("company_id = ?", companyId)
	if t := c.Query("type"); t != "" {
		query = query.Where("type = ?", t)
	}
	if s := c.Query("status"); s != "" {
		query = query.Where("status = ?", s)
	}

	var total int64
	query.Count(&total)

	var transactions []models.Transaction
	err := query.Order("created_at DESC").
		Limit(limit).Offset(offset).
		Preload("Client").Preload("Product").
		Find(&transactions).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch transactions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transactions": transactions,
		"total":        total,
		"hasMore":      int64(offset+len(transactions)) < total,
	})
}

func GetTransaction(c *gin.Context) {
	userId := c.MustGet("userId").(string)
	companyId := c.Param("companyId")

	if _, ok := activeMember(companyId, userId); !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not a member of this company"})
		return
	}

	var transaction models.Transaction
	err := database.DB.Where("id = ? AND company_id = ?", c.Param("transactionId"), companyId).
		Preload("Client").Preload("Product").
		First(&transaction).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

type UpdateTransactionStatusInput struct {
	Status models.TransactionStatus `json:"status" binding:"required"`
}

func UpdateTransactionStatus(c *gin.Context) {
	userId := c.MustGet("userId").(string)
	companyId := c.Param("companyId")

	if _, ok := activeMember(companyId, userId); !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not a member of this company"})
		return
	}

	var input UpdateTransactionStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Status != models.TransactionCompleted && input.Status != models.TransactionCancelled {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status must be 'completed' or 'cancelled'"})
		return
	}

	var transaction models.Transaction
	err := database.DB.Where("id = ? AND company_id = ?", c.Param("transactionId"), companyId).
		First(&transaction).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		return
	}

	if transaction.Status == input.Status {
		c.JSON(http.StatusOK, gin.H{"transaction": transaction})
		return
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		// Stock moves with the status: applying on completion,
		// reverting when a completed transaction is cancelled. The
		// same-status early return above means the prior status here is
		// never completed, so re-completing a cancelled transaction
		// re-applies stock.
		if input.Status == models.TransactionCompleted {
			if err := applyStock(tx, &transaction, 1); err != nil {
				return err
			}
		}
		if input.Status == models.TransactionCancelled && transaction.Status == models.TransactionCompleted {
			if err := applyStock(tx, &transaction, -1); err != nil {
				return err
			}
		}
		return tx.Model(&transaction).Update("status", input.Status).Error
	})
	if err != nil {
		logger.Warn().Err(err).Str("transaction_id", transaction.ID).Msg("Failed to update transaction status")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	invalidateDashboard(companyId)
	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// DeleteTransaction removes a pending or cancelled transaction.
// Completed transactions must be cancelled first so stock stays consistent.
func DeleteTransaction(c *gin.Context) {
	userId := c.MustGet("userId").(string)
	companyId := c.Param("companyId")

	if !canManageCompany(companyId, userId) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only company owners and admins can delete transactions"})
		return
	}

	var transaction models.Transaction
	err := database.DB.Where("id = ? AND company_id = ?", c.Param("transactionId"), companyId).
		First(&transaction).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		return
	}

	if transaction.Status == models.TransactionCompleted {
		c.JSON(http.StatusConflict, gin.H{"error": "Completed transactions must be cancelled before deletion"})
		return
	}

	if err := database.DB.Delete(&transaction).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete transaction"})
		return
	}

	invalidateDashboard(companyId)
	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted"})
}
