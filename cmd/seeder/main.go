package main

import (
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/AnonimusZ6/crmx-backend/internal/config"
	"github.com/AnonimusZ6/crmx-backend/internal/database"
	"github.com/AnonimusZ6/crmx-backend/internal/models"
)

func main() {
	config.LoadConfig()
	database.Connect()

	log.Println("Running migrations (just in case)...")
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

	hash, _ := bcrypt.GenerateFromPassword([]byte("Password123"), bcrypt.DefaultCost)

	log.Println("Seeding demo users...")
	owner := models.User{Name: "Alice Demo", Email: "alice@crmx.dev", Position: "CEO", Password: string(hash)}
	member := models.User{Name: "Bob Demo", Email: "bob@crmx.dev", Position: "Sales", Password: string(hash)}
	database.DB.FirstOrCreate(&owner, models.User{Email: owner.Email})
	database.DB.FirstOrCreate(&member, models.User{Email: member.Email})

	log.Println("Seeding demo company...")
	company := models.Company{Name: "Acme Trading", Description: "Demo company", CreatedBy: owner.ID}
	database.DB.FirstOrCreate(&company, models.Company{Name: company.Name, CreatedBy: owner.ID})

	database.DB.FirstOrCreate(&models.CompanyMember{},
		models.CompanyMember{CompanyID: company.ID, UserID: owner.ID, Role: models.MemberRoleOwner, IsActive: true})
	database.DB.FirstOrCreate(&models.CompanyMember{},
		models.CompanyMember{CompanyID: company.ID, UserID: member.ID, Role: models.MemberRoleMember, IsActive: true})

	log.Println("Seeding clients and products...")
	client := models.Client{CompanyID: company.ID, Name: "Globex Corp", Email: "contact@globex.com", CreatedBy: owner.ID}
	database.DB.FirstOrCreate(&client, models.Client{CompanyID: company.ID, Name: client.Name})

	product := models.Product{CompanyID: company.ID, Name: "Widget Pro", SKU: "WGT-001", Price: 49.90, Stock: 100}
	database.DB.FirstOrCreate(&product, models.Product{CompanyID: company.ID, SKU: product.SKU})

	log.Println("Seeding a demo board...")
	board := models.Board{CompanyID: company.ID, Name: "Pipeline", CreatedBy: owner.ID}
	database.DB.FirstOrCreate(&board, models.Board{CompanyID: company.ID, Name: board.Name})

	due := time.Now().Add(72 * time.Hour)
	task := models.Task{BoardID: board.ID, Title: "Call Globex about renewal", Status: models.TaskTodo, DueDate: &due, CreatedBy: owner.ID}
	database.DB.FirstOrCreate(&task, models.Task{BoardID: board.ID, Title: task.Title})

	log.Println("Seeding a demo chat room...")
	room := models.ChatRoom{Name: "General", CompanyID: company.ID, CreatedBy: owner.ID}
	database.DB.FirstOrCreate(&room, models.ChatRoom{CompanyID: company.ID, Name: room.Name})

	database.DB.FirstOrCreate(&models.ChatParticipant{},
		models.ChatParticipant{RoomID: room.ID, UserID: owner.ID, Role: models.ParticipantAdmin, IsActive: true})
	database.DB.FirstOrCreate(&models.ChatParticipant{},
		models.ChatParticipant{RoomID: room.ID, UserID: member.ID, Role: models.ParticipantMember, IsActive: true})

	log.Println("Seeding complete.")
	log.Printf("Login with alice@crmx.dev / Password123 (company %s)", company.ID)
}
