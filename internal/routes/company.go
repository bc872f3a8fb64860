package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/AnonimusZ6/crmx-backend/internal/handlers"
	"github.com/AnonimusZ6/crmx-backend/internal/middleware"
)

func RegisterCompanyRoutes(r gin.IRouter) {
	companies := r.Group("/companies")
	companies.Use(middleware.AuthMiddleware())
	{
		companies.POST("", handlers.CreateCompany)
		companies.GET("", handlers.ListCompanies)
		companies.GET("/:companyId", handlers.GetCompany)
		companies.PUT("/:companyId", handlers.UpdateCompany)
		companies.DELETE("/:companyId", handlers.DeleteCompany)

		companies.POST("/:companyId/members", handlers.AddMember)
		companies.GET("/:companyId/members", handlers.ListMembers)
		companies.DELETE("/:companyId/members/:userId", handlers.RemoveMember)

		companies.GET("/:companyId/dashboard", handlers.GetDashboard)

		// Clients
		companies.POST("/:companyId/clients", handlers.CreateClient)
		companies.GET("/:companyId/clients", handlers.ListClients)
		companies.GET("/:companyId/clients/:clientId", handlers.GetClient)
		companies.PUT("/:companyId/clients/:clientId", handlers.UpdateClient)
		companies.DELETE("/:companyId/clients/:clientId", handlers.DeleteClient)

		// Products
		companies.POST("/:companyId/products", handlers.CreateProduct)
		companies.GET("/:companyId/products", handlers.ListProducts)
		companies.GET("/:companyId/products/:productId", handlers.GetProduct)
		companies.PUT("/:companyId/products/:productId", handlers.UpdateProduct)
		companies.DELETE("/:companyId/products/:productId", handlers.DeleteProduct)

		// Transactions
		companies.POST("/:companyId/transactions", handlers.CreateTransaction)
		companies.GET("/:companyId/transactions", handlers.ListTransactions)
		companies.GET("/:companyId/transactions/:transactionId", handlers.GetTransaction)
		companies.PUT("/:companyId/transactions/:transactionId", handlers.UpdateTransactionStatus)
		companies.DELETE("/:companyId/transactions/:transactionId", handlers.DeleteTransaction)

		// Kanban boards
		companies.POST("/:companyId/boards", handlers.CreateBoard)
		companies.GET("/:companyId/boards", handlers.ListBoards)
		companies.GET("/:companyId/boards/:boardId", handlers.GetBoard)
		companies.DELETE("/:companyId/boards/:boardId", handlers.DeleteBoard)
		companies.POST("/:companyId/boards/:boardId/tasks", handlers.CreateTask)
		companies.PUT("/:companyId/boards/:boardId/tasks/:taskId", handlers.UpdateTask)
		companies.DELETE("/:companyId/boards/:boardId/tasks/:taskId", handlers.DeleteTask)
	}
}
