package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AnonimusZ6/crmx-backend/internal/database"
	"github.com/AnonimusZ6/crmx-backend/internal/models"
	"github.com/AnonimusZ6/crmx-backend/pkg/logger"
)

type DashboardSummary struct {
	Clients      int64   `json:"clients"`
	Products     int64   `json:"products"`
	Members      int64   `json:"members"`
	OpenTasks    int64   `json:"openTasks"`
	TotalIncome  float64 `json:"totalIncome"`
	TotalExpense float64 `json:"totalExpense"`
	NetBalance   float64 `json:"netBalance"`
}

// GetDashboard aggregates company-wide counts and completed-transaction
// sums. Results are cached in Redis for 60s and invalidated on
// transaction writes.
func GetDashboard(c *gin.Context) {
	userId := c.MustGet("userId").(string)
	companyId := c.Param("companyId")

	if _, ok := activeMember(companyId, userId); !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not a member of this company"})
		return
	}

	cacheKey := "dashboard:" + companyId
	if database.Redis != nil {
		var cached DashboardSummary
		if err := database.CacheGet(cacheKey, &cached); err == nil {
			c.JSON(http.StatusOK, gin.H{"dashboard": cached, "cached": true})
			return
		}
	}

	var summary DashboardSummary
	database.DB.Model(&models.Client{}).Where("company_id = ?", companyId).Count(&summary.Clients)
	database.DB.Model(&models.Product{}).Where("company_id = ?", companyId).Count(&summary.Products)
	database.DB.Model(&models.CompanyMember{}).Where("company_id = ? AND is_active = ?", companyId, true).Count(&summary.Members)
	database.DB.Model(&models.Task{}).
		Joins("JOIN boards ON boards.id = tasks.board_id").
		Where("boards.company_id = ? AND tasks.status <> ?", companyId, models.TaskDone).
		Count(&summary.OpenTasks)

	row := database.DB.Model(&models.Transaction{}).
		Select("COALESCE(SUM(CASE WHEN type = 'income' THEN amount ELSE 0 END), 0), COALESCE(SUM(CASE WHEN type = 'expense' THEN amount ELSE 0 END), 0)").
		Where("company_id = ? AND status = ?", companyId, models.TransactionCompleted).
		Row()
	if err := row.Scan(&summary.TotalIncome, &summary.TotalExpense); err != nil {
		logger.Warn().Err(err).Str("company_id", companyId).Msg("Failed to aggregate transactions")
	}
	summary.NetBalance = summary.TotalIncome - summary.TotalExpense

	if database.Redis != nil {
		if err := database.CacheSet(cacheKey, summary, 60*time.Second); err != nil {
			logger.Warn().Err(err).Msg("Failed to cache dashboard summary")
		}
	}

	c.JSON(http.StatusOK, gin.H{"dashboard": summary})
}
