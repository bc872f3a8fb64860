package handlers

import (
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	socketio "github.com/googollee/go-socket.io"
	"github.com/googollee/go-socket.io/engineio"
	"github.com/googollee/go-socket.io/engineio/transport"
	"github.com/googollee/go-socket.io/engineio/transport/polling"
	"github.com/googollee/go-socket.io/engineio/transport/websocket"

	"github.com/AnonimusZ6/crmx-backend/pkg/utils"
)

var SocketServer *socketio.Server

// Typing throttle: track last typing emit per user to prevent spam
var (
	lastTypingEmit         = make(map[string]time.Time) // userId -> last emit time
	lastTypingMu           sync.RWMutex
	typingThrottleDuration = 3 * time.Second
)

// roomGroup is the broadcast group name for a room. Socket events are
// scoped only by this string; there is no per-event authorization.
func roomGroup(roomId string) string {
	return "room_" + roomId
}

// EmitToRoom mirrors a REST-persisted fact onto the socket channel.
// The broadcast is fire-and-forget: events are never persisted, never
// deduplicated against stored rows, and lost on disconnect.
func EmitToRoom(roomId string, event string, data interface{}) {
	if SocketServer != nil {
		SocketServer.BroadcastToRoom("/", roomGroup(roomId), event, data)
	}
}

func InitSocketServer() *socketio.Server {
	server := socketio.NewServer(&engineio.Options{
		Transports: []transport.Transport{
			&websocket.Transport{
				CheckOrigin: func(r *http.Request) bool { return true },
			},
			&polling.Transport{
				CheckOrigin: func(r *http.Request) bool { return true },
			},
		},
	})

	server.OnConnect("/", func(s socketio.Conn) error {
		s.SetContext("")
		url := s.URL()

		// Token comes as a query param, the most reliable spot for a
		// websocket handshake
		token := url.Query().Get("token")
		if token == "" {
			token = url.Query().Get("auth_token") // Fallback
		}

		if token == "" {
			log.Println("Socket Connection Rejected: No token provided", s.ID())
			return fmt.Errorf("authentication required")
		}

		claims, err := utils.ValidateToken(token)
		if err != nil {
			log.Println("Socket Connection Rejected: Invalid token", s.ID())
			return fmt.Errorf("invalid token")
		}

		userId := claims.UserID
		log.Println("Socket authenticated:", s.ID(), "User:", userId)

		// Store userId in socket context for O(1) lookup
		s.SetContext(userId)

		// Personal group for direct notifications
		s.Join(userId)

		return nil
	})

	server.OnEvent("/", "join_room", func(s socketio.Conn, roomId string) {
		s.Join(roomGroup(roomId))
	})

	server.OnEvent("/", "leave_room", func(s socketio.Conn, roomId string) {
		s.Leave(roomGroup(roomId))
	})

	// send_message mirrors a REST-created row for connected clients.
	// The payload is relayed as-is; the REST handler remains the only
	// write path to storage.
	server.OnEvent("/", "send_message", func(s socketio.Conn, data map[string]interface{}) {
		roomId, _ := data["roomId"].(string)
		if roomId == "" {
			return
		}
		senderId, _ := s.Context().(string)
		if senderId == "" {
			return
		}
		data["senderId"] = senderId
		server.BroadcastToRoom("/", roomGroup(roomId), "receive_message", data)
	})

	server.OnEvent("/", "typing", func(s socketio.Conn, data map[string]interface{}) {
		roomId, _ := data["roomId"].(string)
		if roomId == "" {
			return
		}
		senderId, _ := s.Context().(string)
		if senderId == "" {
			return
		}

		// THROTTLE: only emit if 3s since last emit for this sender
		lastTypingMu.RLock()
		lastTime, exists := lastTypingEmit[senderId]
		lastTypingMu.RUnlock()

		if exists && time.Since(lastTime) < typingThrottleDuration {
			return
		}

		lastTypingMu.Lock()
		lastTypingEmit[senderId] = time.Now()
		lastTypingMu.Unlock()

		server.BroadcastToRoom("/", roomGroup(roomId), "user_typing", map[string]interface{}{
			"roomId":    roomId,
			"userId":    senderId,
			"expiresAt": time.Now().Add(4 * time.Second).Unix(), // Auto-expire on client
		})
	})

	server.OnEvent("/", "stop_typing", func(s socketio.Conn, data map[string]interface{}) {
		roomId, _ := data["roomId"].(string)
		if roomId == "" {
			return
		}
		senderId, _ := s.Context().(string)
		if senderId == "" {
			return
		}
		server.BroadcastToRoom("/", roomGroup(roomId), "user_stop_typing", map[string]interface{}{
			"roomId": roomId,
			"userId": senderId,
		})
	})

	server.OnEvent("/", "user_joined_room", func(s socketio.Conn, data map[string]interface{}) {
		roomId, _ := data["roomId"].(string)
		if roomId == "" {
			return
		}
		server.BroadcastToRoom("/", roomGroup(roomId), "user_joined", data)
	})

	server.OnEvent("/", "user_left_room", func(s socketio.Conn, data map[string]interface{}) {
		roomId, _ := data["roomId"].(string)
		if roomId == "" {
			return
		}
		server.BroadcastToRoom("/", roomGroup(roomId), "user_left", data)
	})

	server.OnEvent("/", "room_updated", func(s socketio.Conn, data map[string]interface{}) {
		roomId, _ := data["roomId"].(string)
		if roomId == "" {
			return
		}
		server.BroadcastToRoom("/", roomGroup(roomId), "room_updated", data)
	})

	server.OnDisconnect("/", func(s socketio.Conn, reason string) {
		log.Println("closed", reason)
	})

	server.OnError("/", func(s socketio.Conn, e error) {
		log.Println("meet error:", e)
	})

	go server.Serve()
	SocketServer = server
	return server
}

// SocketHandler wraps the Socket.io server for gin
func SocketHandler(server *socketio.Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		server.ServeHTTP(c.Writer, c.Request)
	}
}
