package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AnonimusZ6/crmx-backend/internal/database"
	"github.com/AnonimusZ6/crmx-backend/internal/models"
)

func TestGetProfile_StatusUnknown(t *testing.T) {
	SetupTestDB()

	alice := testUser("Alice")

	c, w := testContext("GET", "/api/users/me", "", alice.ID, nil)
	GetProfile(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &resp)
	// Presence is never fabricated
	assert.Equal(t, "unknown", resp["status"])
}

func TestUpdateProfile(t *testing.T) {
	SetupTestDB()

	alice := testUser("Alice")

	c, w := testContext("PUT", "/api/users/me", `{"name": "", "position": "Sales"}`, alice.ID, nil)
	UpdateProfile(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c2, w2 := testContext("PUT", "/api/users/me", `{"name": "Alicia", "position": "Sales"}`, alice.ID, nil)
	UpdateProfile(c2)
	assert.Equal(t, http.StatusOK, w2.Code)

	var row models.User
	database.DB.First(&row, "id = ?", alice.ID)
	assert.Equal(t, "Alicia", row.Name)
	assert.Equal(t, "Sales", row.Position)
}
