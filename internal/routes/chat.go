package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/AnonimusZ6/crmx-backend/internal/handlers"
	"github.com/AnonimusZ6/crmx-backend/internal/middleware"
)

func RegisterChatRoutes(r gin.IRouter) {
	chat := r.Group("/chat")
	chat.Use(middleware.AuthMiddleware())
	{
		chat.POST("/rooms", handlers.CreateRoom)
		chat.POST("/private", handlers.CreatePrivateRoom)
		chat.GET("/rooms", handlers.ListRooms)
		chat.GET("/rooms/:roomId", handlers.GetRoom)
		chat.PUT("/rooms/:roomId", handlers.UpdateRoom)
		chat.DELETE("/rooms/:roomId", handlers.DeleteRoom)

		chat.POST("/rooms/:roomId/messages", middleware.ChatRateLimit(), handlers.SendMessage)
		chat.GET("/rooms/:roomId/messages", handlers.ListMessages)
		chat.PUT("/rooms/:roomId/messages/:messageId", handlers.EditMessage)
		chat.DELETE("/rooms/:roomId/messages/:messageId", handlers.DeleteMessage)

		chat.POST("/rooms/:roomId/participants", handlers.AddParticipants)
		chat.GET("/rooms/:roomId/participants", handlers.ListParticipants)
		chat.PUT("/rooms/:roomId/participants/:userId", handlers.UpdateParticipantRole)
		chat.DELETE("/rooms/:roomId/participants/:userId", handlers.RemoveParticipant)

		chat.POST("/rooms/:roomId/join", handlers.JoinRoom)
		chat.POST("/rooms/:roomId/leave", handlers.LeaveRoom)
		chat.POST("/rooms/:roomId/typing", handlers.TypingIndicator)
		chat.POST("/rooms/:roomId/read", handlers.MarkRead)

		chat.GET("/search", handlers.SearchMessages)
	}
}
