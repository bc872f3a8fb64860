package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/AnonimusZ6/crmx-backend/internal/database"
	"github.com/AnonimusZ6/crmx-backend/internal/models"
	"github.com/AnonimusZ6/crmx-backend/pkg/logger"
)

// activeMember returns the caller's active membership row for a company, if any.
func activeMember(companyId, userId string) (*models.CompanyMember, bool) {
	var member models.CompanyMember
	err := database.DB.Where("company_id = ? AND user_id = ? AND is_active = ?", companyId, userId, true).
		First(&member).Error
	if err != nil {
		return nil, false
	}
	return &member, true
}

func canManageCompany(companyId, userId string) bool {
	member, ok := activeMember(companyId, userId)
	if !ok {
		return false
	}
	return member.Role == models.MemberRoleOwner || member.Role == models.MemberRoleAdmin
}

type CreateCompanyInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Address     string `json:"address"`
}

func CreateCompany(c *gin.Context) {
	userId := c.MustGet("userId").(string)

	var input CreateCompanyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	company := models.Company{
		Name:        input.Name,
		Description: input.Description,
		Address:     input.Address,
		CreatedBy:   userId,
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&company).Error; err != nil {
			return err
		}
		owner := models.CompanyMember{
			CompanyID: company.ID,
			UserID:    userId,
			Role:      models.MemberRoleOwner,
		}
		return tx.Create(&owner).Error
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create company")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create company"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"company": company})
}

func ListCompanies(c *gin.Context) {
	userId := c.MustGet("userId").(string)

	var companies []models.Company
	err := database.DB.
		Joins("JOIN company_members ON company_members.company_id = companies.id").
		Where("company_members.user_id = ? AND company_members.is_active = ?", userId, true).
		Where("companies.is_active = ?", true).
		Find(&companies).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch companies"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"companies": companies})
}

func GetCompany(c *gin.Context) {
	userId := c.MustGet("userId").(string)
	companyId := c.Param("companyId")

	var company models.Company
	if err := database.DB.First(&company, "id = ?", companyId).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Company not found"})
		return
	}

	if _, ok := activeMember(companyId, userId); !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not a member of this company"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"company": company})
}

type UpdateCompanyInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Address     *string `json:"address"`
}

func UpdateCompany(c *gin.Context) {
	userId := c.MustGet("userId").(string)
	companyId := c.Param("companyId")

	var company models.Company
	if err := database.DB.First(&company, "id = ?", companyId).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Company not found"})
		return
	}

	if !canManageCompany(companyId, userId) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only company owners and admins can update the company"})
		return
	}

	var input UpdateCompanyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Address != nil {
		updates["address"] = *input.Address
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&company).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update company"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"company": company})
}

// DeleteCompany soft-deletes a company (owner only)
func DeleteCompany(c *gin.Context) {
	userId := c.MustGet("userId").(string)
	companyId := c.Param("companyId")

	var company models.Company
	if err := database.DB.First(&company, "id = ?", companyId).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Company not found"})
		return
	}

	member, ok := activeMember(companyId, userId)
	if !ok || member.Role != models.MemberRoleOwner {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the company owner can delete the company"})
		return
	}

	if err := database.DB.Model(&company).Update("is_active", false).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete company"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Company deleted"})
}

type AddMemberInput struct {
	Email string            `json:"email" binding:"required,email"`
	Role  models.MemberRole `json:"role"`
}

func AddMember(c *gin.Context) {
	userId := c.MustGet("userId").(string)
	companyId := c.Param("companyId")

	if !canManageCompany(companyId, userId) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only company owners and admins can add members"})
		return
	}

	var input AddMemberInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role := input.Role
	if role == "" {
		role = models.MemberRoleMember
	}
	if role != models.MemberRoleAdmin && role != models.MemberRoleMember {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Role must be 'admin' or 'member'"})
		return
	}

	var user models.User
	if err := database.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No user found with that email"})
		return
	}

	// A previous membership row is reactivated instead of duplicated
	var existing models.CompanyMember
	err := database.DB.Where("company_id = ? AND user_id = ?", companyId, user.ID).First(&existing).Error
	if err == nil {
		if existing.IsActive {
			c.JSON(http.StatusConflict, gin.H{"error": "User is already a member of this company"})
			return
		}
		existing.IsActive = true
		existing.Role = role
		if err := database.DB.Save(&existing).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add member"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"member": existing})
		return
	}

	member := models.CompanyMember{
		CompanyID: companyId,
		UserID:    user.ID,
		Role:      role,
	}
	if err := database.DB.Create(&member).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add member"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"member": member})
}

func ListMembers(c *gin.Context) {
	userId := c.MustGet("userId").(string)
	companyId := c.Param("companyId")

	if _, ok := activeMember(companyId, userId); !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not a member of this company"})
		return
	}

	var members []models.CompanyMember
	err := database.DB.Where("company_id = ? AND is_active = ?", companyId, true).
		Preload("User").
		Find(&members).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch members"})
		return
	}

	// Presence is not tracked, so every member reports "unknown"
	out := make([]gin.H, 0, len(members))
	for _, m := range members {
		out = append(out, gin.H{
			"id":       m.ID,
			"userId":   m.UserID,
			"role":     m.Role,
			"user":     m.User,
			"joinedAt": m.CreatedAt,
			"status":   "unknown",
		})
	}

	c.JSON(http.StatusOK, gin.H{"members": out})
}

// RemoveMember deactivates a membership row (owner/admin only). The
// owner's own row cannot be removed.
func RemoveMember(c *gin.Context) {
	userId := c.MustGet("userId").(string)
	companyId := c.Param("companyId")
	targetId := c.Param("userId")

	if !canManageCompany(companyId, userId) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only company owners and admins can remove members"})
		return
	}

	var member models.CompanyMember
	err := database.DB.Where("company_id = ? AND user_id = ? AND is_active = ?", companyId, targetId, true).
		First(&member).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
		return
	}

	if member.Role == models.MemberRoleOwner {
		c.JSON(http.StatusForbidden, gin.H{"error": "The company owner cannot be removed"})
		return
	}

	if err := database.DB.Model(&member).Update("is_active", false).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove member"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member removed"})
}
