package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AnonimusZ6/crmx-backend/internal/database"
	"github.com/AnonimusZ6/crmx-backend/internal/models"
)

func TestCreateTask_AssigneeMustBeMember(t *testing.T) {
	SetupTestDB()

	owner := testUser("Owner")
	outsider := testUser("Outsider")
	company := testCompany(owner.ID)

	board := models.Board{CompanyID: company.ID, Name: "Sprint", CreatedBy: owner.ID}
	database.DB.Create(&board)

	params := map[string]string{"companyId": company.ID, "boardId": board.ID}

	body := fmt.Sprintf(`{"title": "Call back", "assigneeId": %q}`, outsider.ID)
	c, w := testContext("POST", "/tasks", body, owner.ID, params)
	CreateTask(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body = fmt.Sprintf(`{"title": "Call back", "assigneeId": %q}`, owner.ID)
	c2, w2 := testContext("POST", "/tasks", body, owner.ID, params)
	CreateTask(c2)
	assert.Equal(t, http.StatusCreated, w2.Code)
}

func TestUpdateTask_StatusValidation(t *testing.T) {
	SetupTestDB()

	owner := testUser("Owner")
	company := testCompany(owner.ID)

	board := models.Board{CompanyID: company.ID, Name: "Sprint", CreatedBy: owner.ID}
	database.DB.Create(&board)
	task := models.Task{BoardID: board.ID, Title: "Prepare quote", CreatedBy: owner.ID}
	database.DB.Create(&task)

	params := map[string]string{"companyId": company.ID, "boardId": board.ID, "taskId": task.ID}

	c, w := testContext("PUT", "/tasks", `{"status": "archived"}`, owner.ID, params)
	UpdateTask(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c2, w2 := testContext("PUT", "/tasks", `{"status": "done"}`, owner.ID, params)
	UpdateTask(c2)
	assert.Equal(t, http.StatusOK, w2.Code)

	var got models.Task
	database.DB.First(&got, "id = ?", task.ID)
	assert.Equal(t, models.TaskDone, got.Status)
}

func TestGetBoard_ScopedToCompany(t *testing.T) {
	SetupTestDB()

	owner := testUser("Owner")
	other := testUser("Other")
	company := testCompany(owner.ID)
	otherCompany := testCompany(other.ID)

	board := models.Board{CompanyID: company.ID, Name: "Pipeline", CreatedBy: owner.ID}
	database.DB.Create(&board)

	// A board id from another company is not visible
	c, w := testContext("GET", "/boards", "", other.ID,
		map[string]string{"companyId": otherCompany.ID, "boardId": board.ID})
	GetBoard(c)
	assert.Equal(t, http.StatusNotFound, w.Code)

	c2, w2 := testContext("GET", "/boards", "", owner.ID,
		map[string]string{"companyId": company.ID, "boardId": board.ID})
	GetBoard(c2)
	assert.Equal(t, http.StatusOK, w2.Code)

	var resp struct {
		Board models.Board `json:"board"`
	}
	json.Unmarshal(w2.Body.Bytes(), &resp)
	assert.Equal(t, "Pipeline", resp.Board.Name)
}

func TestDeleteBoard_CreatorOrAdminOnly(t *testing.T) {
	SetupTestDB()

	owner := testUser("Owner")
	member := testUser("Member")
	company := testCompany(owner.ID, member.ID)

	board := models.Board{CompanyID: company.ID, Name: "Backlog", CreatedBy: owner.ID}
	database.DB.Create(&board)

	params := map[string]string{"companyId": company.ID, "boardId": board.ID}

	c, w := testContext("DELETE", "/boards", "", member.ID, params)
	DeleteBoard(c)
	assert.Equal(t, http.StatusForbidden, w.Code)

	c2, w2 := testContext("DELETE", "/boards", "", owner.ID, params)
	DeleteBoard(c2)
	assert.Equal(t, http.StatusOK, w2.Code)
}
