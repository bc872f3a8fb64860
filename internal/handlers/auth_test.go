package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AnonimusZ6/crmx-backend/pkg/utils"
)

func TestRegisterAndLogin(t *testing.T) {
	SetupTestDB()

	email := "dana@example.com"
	body := fmt.Sprintf(`{"name": "Dana", "email": %q, "password": "Sup3rSecret"}`, email)
	c, w := testContext("POST", "/api/auth/register", body, "", nil)
	Register(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Token string `json:"token"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NotEmpty(t, resp.Token)

	claims, err := utils.ValidateToken(resp.Token)
	assert.NoError(t, err)
	assert.NotEmpty(t, claims.UserID)

	// Duplicate email conflicts
	c2, w2 := testContext("POST", "/api/auth/register", body, "", nil)
	Register(c2)
	assert.Equal(t, http.StatusConflict, w2.Code)

	// Login with correct password
	login := fmt.Sprintf(`{"email": %q, "password": "Sup3rSecret"}`, email)
	c3, w3 := testContext("POST", "/api/auth/login", login, "", nil)
	Login(c3)
	assert.Equal(t, http.StatusOK, w3.Code)

	// Wrong password rejected
	bad := fmt.Sprintf(`{"email": %q, "password": "WrongPass1"}`, email)
	c4, w4 := testContext("POST", "/api/auth/login", bad, "", nil)
	Login(c4)
	assert.Equal(t, http.StatusUnauthorized, w4.Code)
}

func TestRegister_WeakPassword(t *testing.T) {
	SetupTestDB()

	body := `{"name": "Eve", "email": "eve@example.com", "password": "short"}`
	c, w := testContext("POST", "/api/auth/register", body, "", nil)
	Register(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
