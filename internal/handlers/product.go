package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/AnonimusZ6/crmx-backend/internal/database"
	"github.com/AnonimusZ6/crmx-backend/internal/models"
)

type ProductInput struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	SKU         string  `json:"sku"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
}

func CreateProduct(c *gin.Context) {
	userId := c.MustGet("userId").(string)
	companyId := c.Param("companyId")

	if _, ok := activeMember(companyId, userId); !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not a member of this company"})
		return
	}

	var input ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Price < 0 || input.Stock < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Price and stock must be non-negative"})
		return
	}

	product := models.Product{
		CompanyID:   companyId,
		Name:        input.Name,
		Description: input.Description,
		SKU:         input.SKU,
		Price:       input.Price,
		Stock:       input.Stock,
	}

	if err := database.DB.Create(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"product": product})
}

func ListProducts(c *gin.Context) {
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

	query := database.DB.Model(&models.Product{}).Where("company_id = ?", companyId)
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR sku LIKE ?", like, like)
	}

	var total int64
	query.Count(&total)

	var products []models.Product
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"total":    total,
		"hasMore":  int64(offset+len(products)) < total,
	})
}

func GetProduct(c *gin.Context) {
	userId := c.MustGet("userId").(string)
	companyId := c.Param("companyId")

	if _, ok := activeMember(companyId, userId); !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not a member of this company"})
		return
	}

	var product models.Product
	if err := database.DB.Where("id = ? AND company_id = ?", c.Param("productId"), companyId).First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

func UpdateProduct(c *gin.Context) {
	userId := c.MustGet("userId").(string)
	companyId := c.Param("companyId")

	if _, ok := activeMember(companyId, userId); !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not a member of this company"})
		return
	}

	var product models.Product
	if err := database.DB.Where("id = ? AND company_id = ?", c.Param("productId"), companyId).First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	var input ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Price < 0 || input.Stock < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Price and stock must be non-negative"})
		return
	}

	updates := map[string]interface{}{
		"name":        input.Name,
		"description": input.Description,
		"sku":         input.SKU,
		"price":       input.Price,
		"stock":       input.Stock,
	}
	if err := database.DB.Model(&product).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

func DeleteProduct(c *gin.Context) {
	userId := c.MustGet("userId").(string)
	companyId := c.Param("companyId")

	if _, ok := activeMember(companyId, userId); !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not a member of this company"})
		return
	}

	result := database.DB.Where("id = ? AND company_id = ?", c.Param("productId"), companyId).
		Delete(&models.Product{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}
