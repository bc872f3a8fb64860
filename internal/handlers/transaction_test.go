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

func seedProduct(companyId string, stock int) models.Product {
	p := models.Product{
		CompanyID: companyId,
		Name:      "Widget",
		Price:     10,
		Stock:     stock,
	}
	database.DB.Create(&p)
	return p
}

func TestCreateTransaction_CompletedSaleAdjustsStock(t *testing.T) {
	SetupTestDB()

	alice := testUser("Alice")
	company := testCompany(alice.ID)
	product := seedProduct(company.ID, 10)

	body := fmt.Sprintf(`{"productId": %q, "quantity": 3, "amount": 30, "type": "income", "complete": true}`, product.ID)
	c, w := testContext("POST", "/api/companies/"+company.ID+"/transactions", body, alice.ID,
		map[string]string{"companyId": company.ID})
	CreateTransaction(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var updated models.Product
	database.DB.First(&updated, "id = ?", product.ID)
	assert.Equal(t, 7, updated.Stock)
}

func TestCreateTransaction_InsufficientStock(t *testing.T) {
	SetupTestDB()

	alice := testUser("Alice")
	company := testCompany(alice.ID)
	product := seedProduct(company.ID, 2)

	body := fmt.Sprintf(`{"productId": %q, "quantity": 5, "amount": 50, "type": "income", "complete": true}`, product.ID)
	c, w := testContext("POST", "/api/companies/"+company.ID+"/transactions", body, alice.ID,
		map[string]string{"companyId": company.ID})
	CreateTransaction(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Whole transaction rolled back: no row, stock untouched
	var count int64
	database.DB.Model(&models.Transaction{}).Where("company_id = ?", company.ID).Count(&count)
	assert.Equal(t, int64(0), count)

	var unchanged models.Product
	database.DB.First(&unchanged, "id = ?", product.ID)
	assert.Equal(t, 2, unchanged.Stock)
}

func TestUpdateTransactionStatus_CancelRevertsStock(t *testing.T) {
	SetupTestDB()

	alice := testUser("Alice")
	company := testCompany(alice.ID)
	product := seedProduct(company.ID, 10)

	body := fmt.Sprintf(`{"productId": %q, "quantity": 4, "amount": 40, "type": "income", "complete": true}`, product.ID)
	c, w := testContext("POST", "/api/companies/"+company.ID+"/transactions", body, alice.ID,
		map[string]string{"companyId": company.ID})
	CreateTransaction(c)
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Transaction models.Transaction `json:"transaction"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)

	var mid models.Product
	database.DB.First(&mid, "id = ?", product.ID)
	assert.Equal(t, 6, mid.Stock)

	c2, w2 := testContext("PUT", "/api/companies/"+company.ID+"/transactions/"+resp.Transaction.ID,
		`{"status": "cancelled"}`, alice.ID,
		map[string]string{"companyId": company.ID, "transactionId": resp.Transaction.ID})
	UpdateTransactionStatus(c2)
	assert.Equal(t, http.StatusOK, w2.Code)

	var reverted models.Product
	database.DB.First(&reverted, "id = ?", product.ID)
	assert.Equal(t, 10, reverted.Stock)
}

func TestUpdateTransactionStatus_RecompleteReappliesStock(t *testing.T) {
	SetupTestDB()

	alice := testUser("Alice")
	company := testCompany(alice.ID)
	product := seedProduct(company.ID, 10)

	body := fmt.Sprintf(`{"productId": %q, "quantity": 3, "amount": 30, "type": "income", "complete": true}`, product.ID)
	c, w := testContext("POST", "/api/companies/"+company.ID+"/transactions", body, alice.ID,
		map[string]string{"companyId": company.ID})
	CreateTransaction(c)
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Transaction models.Transaction `json:"transaction"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	params := map[string]string{"companyId": company.ID, "transactionId": resp.Transaction.ID}

	c2, w2 := testContext("PUT", "/transactions", `{"status": "cancelled"}`, alice.ID, params)
	UpdateTransactionStatus(c2)
	assert.Equal(t, http.StatusOK, w2.Code)

	// Full cycle back to completed re-applies the stock adjustment
	c3, w3 := testContext("PUT", "/transactions", `{"status": "completed"}`, alice.ID, params)
	UpdateTransactionStatus(c3)
	assert.Equal(t, http.StatusOK, w3.Code)

	var final models.Product
	database.DB.First(&final, "id = ?", product.ID)
	assert.Equal(t, 7, final.Stock)

	var row models.Transaction
	database.DB.First(&row, "id = ?", resp.Transaction.ID)
	assert.Equal(t, models.TransactionCompleted, row.Status)
}

func TestCreateTransaction_NonMember(t *testing.T) {
	SetupTestDB()

	alice := testUser("Alice")
	outsider := testUser("Outsider")
	company := testCompany(alice.ID)

	c, w := testContext("POST", "/api/companies/"+company.ID+"/transactions",
		`{"amount": 10, "type": "income"}`, outsider.ID,
		map[string]string{"companyId": company.ID})
	CreateTransaction(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDeleteTransaction_CompletedBlocked(t *testing.T) {
	SetupTestDB()

	alice := testUser("Alice")
	company := testCompany(alice.ID)

	tx := models.Transaction{
		CompanyID: company.ID,
		Amount:    100,
		Type:      models.TransactionIncome,
		Status:    models.TransactionCompleted,
	}
	database.DB.Create(&tx)

	c, w := testContext("DELETE", "/api/companies/"+company.ID+"/transactions/"+tx.ID, "", alice.ID,
		map[string]string{"companyId": company.ID, "transactionId": tx.ID})
	DeleteTransaction(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}
