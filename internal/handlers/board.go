package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/AnonimusZ6/crmx-backend/internal/database"
	"github.com/AnonimusZ6/crmx-backend/internal/models"
)

type BoardInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func CreateBoard(c *gin.Context) {
	userId := c.MustGet("userId").(string)
	companyId := c.Param("companyId")

	if _, ok := activeMember(companyId, userId); !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not a member of this company"})
		return
	}

	var input BoardInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	board := models.Board{
		CompanyID:   companyId,
		Name:        input.Name,
		Description: input.Description,
		CreatedBy:   userId,
	}

	if err := database.DB.Create(&board).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create board"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"board": board})
}

func ListBoards(c *gin.Context) {
	userId := c.MustGet("userId").(string)
	companyId := c.Param("companyId")

	if _, ok := activeMember(companyId, userId); !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not a member of this company"})
		return
	}

	var boards []models.Board
	if err := database.DB.Where("company_id = ?", companyId).Order("created_at ASC").Find(&boards).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch boards"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"boards": boards})
}

// boardInCompany loads a board scoped to the company or returns nil.
func boardInCompany(boardId, companyId string) *models.Board {
	var board models.Board
	if err := database.DB.Where("id = ? AND company_id = ?", boardId, companyId).First(&board).Error; err != nil {
		return nil
	}
	return &board
}

func GetBoard(c *gin.Context) {
	userId := c.MustGet("userId").(string)
	companyId := c.Param("companyId")

	if _, ok := activeMember(companyId, userId); !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not a member of this company"})
		return
	}

	var board models.Board
	err := database.DB.Where("id = ? AND company_id = ?", c.Param("boardId"), companyId).
		Preload("Tasks", func(db *gorm.DB) *gorm.DB {
			return db.Order("tasks.position ASC, tasks.created_at ASC")
		}).
		Preload("Tasks.Assignee").
		First(&board).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"board": board})
}

func DeleteBoard(c *gin.Context) {
	userId := c.MustGet("userId").(string)
	companyId := c.Param("companyId")

	board := boardInCompany(c.Param("boardId"), companyId)
	if board == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
		return
	}

	if board.CreatedBy != userId && !canManageCompany(companyId, userId) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the board creator or a company admin can delete a board"})
		return
	}

	if err := database.DB.Delete(board).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete board"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Board deleted"})
}

type TaskInput struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	AssigneeID  *string    `json:"assigneeId"`
	DueDate     *time.Time `json:"dueDate"`
}

func CreateTask(c *gin.Context) {
	userId := c.MustGet("userId").(string)
	companyId := c.Param("companyId")

	if _, ok := activeMember(companyId, userId); !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not a member of this company"})
		return
	}

	if boardInCompany(c.Param("boardId"), companyId) == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
		return
	}

	var input TaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Assignees must belong to the same company
	if input.AssigneeID != nil {
		if _, ok := activeMember(companyId, *input.AssigneeID); !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Assignee is not a member of this company"})
			return
		}
	}

	var maxPos int64
	database.DB.Model(&models.Task{}).
		Where("board_id = ? AND status = ?", c.Param("boardId"), models.TaskTodo).
		Count(&maxPos)

	task := models.Task{
		BoardID:     c.Param("boardId"),
		Title:       input.Title,
		Description: input.Description,
		AssigneeID:  input.AssigneeID,
		DueDate:     input.DueDate,
		Position:    int(maxPos),
		CreatedBy:   userId,
	}

	if err := database.DB.Create(&task).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"task": task})
}

type UpdateTaskInput struct {
	Title       *string            `json:"title"`
	Description *string            `json:"description"`
	Status      *models.TaskStatus `json:"status"`
	Position    *int               `json:"position"`
	AssigneeID  *string            `json:"assigneeId"`
	DueDate     *time.Time         `json:"dueDate"`
}

func UpdateTask(c *gin.Context) {
	userId := c.MustGet("userId").(string)
	companyId := c.Param("companyId")

	if _, ok := activeMember(companyId, userId); !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not a member of this company"})
		return
	}

	if boardInCompany(c.Param("boardId"), companyId) == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
		return
	}

	var task models.Task
	if err := database.DB.Where("id = ? AND board_id = ?", c.Param("taskId"), c.Param("boardId")).First(&task).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	var input UpdateTaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if input.Title != nil {
		updates["title"] = *input.Title
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Status != nil {
		if *input.Status != models.TaskTodo && *input.Status != models.TaskInProgress && *input.Status != models.TaskDone {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Status must be 'todo', 'in_progress' or 'done'"})
			return
		}
		updates["status"] = *input.Status
	}
	if input.Position != nil {
		updates["position"] = *input.Position
	}
	if input.AssigneeID != nil {
		if _, ok := activeMember(companyId, *input.AssigneeID); !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Assignee is not a member of this company"})
			return
		}
		updates["assignee_id"] = *input.AssigneeID
	}
	if input.DueDate != nil {
		updates["due_date"] = *input.DueDate
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&task).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"task": task})
}

func DeleteTask(c *gin.Context) {
	userId := c.MustGet("userId").(string)
	companyId := c.Param("companyId")

	if _, ok := activeMember(companyId, userId); !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not a member of this company"})
		return
	}

	if boardInCompany(c.Param("boardId"), companyId) == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
		return
	}

	result := database.DB.Where("id = ? AND board_id = ?", c.Param("taskId"), c.Param("boardId")).
		Delete(&models.Task{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete task"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted"})
}
