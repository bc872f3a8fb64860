package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/AnonimusZ6/crmx-backend/internal/config"
	"github.com/AnonimusZ6/crmx-backend/internal/database"
	"github.com/AnonimusZ6/crmx-backend/internal/models"
)

// SetupTestDB initializes an in-memory SQLite DB for testing
func SetupTestDB() {
	config.AppConfig = &config.Config{JWTSecret: "test_secret_key_12345"}

	db, _ := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	database.DB = db
	database.DB.AutoMigrate(
		&models.User{},
		&models.Company{},
		&models.CompanyMember{},
		&models.Client{},
		&models.Product{},
		&models.Transaction{},
		&models.Board{},
		&models.Task{},
		&models.ChatRoom{},
		&models.ChatParticipant{},
		&models.ChatMessage{},
	)
}

func testUser(name string) models.User {
	u := models.User{
		ID:    uuid.New().String(),
		Name:  name,
		Email: uuid.New().String() + "@example.com",
	}
	database.DB.Create(&u)
	return u
}

func testCompany(ownerId string, memberIds ...string) models.Company {
	company := models.Company{
		ID:        uuid.New().String(),
		Name:      "Test Co " + uuid.New().String()[:8],
		CreatedBy: ownerId,
		IsActive:  true,
	}
	database.DB.Create(&company)
	database.DB.Create(&models.CompanyMember{
		CompanyID: company.ID, UserID: ownerId, Role: models.MemberRoleOwner, IsActive: true,
	})
	for _, id := range memberIds {
		database.DB.Create(&models.CompanyMember{
			CompanyID: company.ID, UserID: id, Role: models.MemberRoleMember, IsActive: true,
		})
	}
	return company
}

// testContext builds a gin test context with an authenticated caller,
// optional JSON body and path params.
func testContext(method, path, body, userId string, params map[string]string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var buf *bytes.Buffer
	if body != "" {
		buf = bytes.NewBufferString(body)
	} else {
		buf = bytes.NewBufferString("")
	}
	c.Request, _ = http.NewRequest(method, path, buf)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("userId", userId)

	for k, v := range params {
		c.Params = append(c.Params, gin.Param{Key: k, Value: v})
	}
	return c, w
}
