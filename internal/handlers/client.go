package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/AnonimusZ6/crmx-backend/internal/database"
	"github.com/AnonimusZ6/crmx-backend/internal/models"
)

type CreateClientInput struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

func CreateClient(c *gin.Context) {
	userId := c.MustGet("userId").(string)
	companyId := c.Param("companyId")

	if _, ok := activeMember(companyId, userId); !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not a member of this company"})
		return
	}

	var input CreateClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	client := models.Client{
		CompanyID: companyId,
		Name:      input.Name,
		Email:     input.Email,
		Phone:     input.Phone,
		Address:   input.Address,
		Notes:     input.Notes,
		CreatedBy: userId,
	}

	if err := database.DB.Create(&client).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create client"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"client": client})
}

func ListClients(c *gin.Context) {
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

	query := database.DB.Model(&models.Client{}).Where("company_id = ?", companyId)
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR email LIKE ?", like, like)
	}

	var total int64
	query.Count(&total)

	var clients []models.Client
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&clients).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch clients"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"clients": clients,
		"total":   total,
		"hasMore": int64(offset+len(clients)) < total,
	})
}

func GetClient(c *gin.Context) {
	userId := c.MustGet("userId").(string)
	companyId := c.Param("companyId")

	if _, ok := activeMember(companyId, userId); !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not a member of this company"})
		return
	}

	var client models.Client
	if err := database.DB.Where("id = ? AND company_id = ?", c.Param("clientId"), companyId).First(&client).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"client": client})
}

func UpdateClient(c *gin.Context) {
	userId := c.MustGet("userId").(string)
	companyId := c.Param("companyId")

	if _, ok := activeMember(companyId, userId); !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not a member of this company"})
		return
	}

	var client models.Client
	if err := database.DB.Where("id = ? AND company_id = ?", c.Param("clientId"), companyId).First(&client).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
		return
	}

	var input CreateClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{
		"name":    input.Name,
		"email":   input.Email,
		"phone":   input.Phone,
		"address": input.Address,
		"notes":   input.Notes,
	}
	if err := database.DB.Model(&client).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update client"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"client": client})
}

func DeleteClient(c *gin.Context) {
	userId := c.MustGet("userId").(string)
	companyId := c.Param("companyId")

	if _, ok := activeMember(companyId, userId); !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not a member of this company"})
		return
	}

	result := database.DB.Where("id = ? AND company_id = ?", c.Param("clientId"), companyId).
		Delete(&models.Client{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete client"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Client deleted"})
}
