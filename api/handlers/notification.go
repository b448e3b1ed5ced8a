package handlers

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WebSocket upgrader
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// NotificationHub stores connected users (userId -> *websocket.Conn)
type NotificationHub struct {
	clients map[string]*websocket.Conn
	mutex   sync.Mutex
}

var hub = &NotificationHub{
	clients: make(map[string]*websocket.Conn),
	mutex:   sync.Mutex{},
}

// HandleNotificationsWebSocket WebSocket handler for notifications
func HandleNotificationsWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Warnw("websocket upgrade error", "error", err)
		return
	}

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		conn.Close()
		return
	}

	hub.mutex.Lock()
	hub.clients[userID] = conn
	hub.mutex.Unlock()
	zap.S().Debugf("user %s connected to /ws/notifications", userID)

	conn.SetCloseHandler(func(code int, text string) error {
		hub.mutex.Lock()
		delete(hub.clients, userID)
		hub.mutex.Unlock()
		zap.S().Debugf("user %s disconnected from /ws/notifications", userID)
		return nil
	})

	// keep connection alive
	for {
		if _, _, err := conn.NextReader(); err != nil {
			conn.Close()
			break
		}
	}
}

// sendNotificationToUser pushes one notification to a connected user, if any
func sendNotificationToUser(userID string, notification interface{}) {
	hub.mutex.Lock()
	conn, exists := hub.clients[userID]
	hub.mutex.Unlock()

	if exists {
		err := conn.WriteJSON(map[string]interface{}{
			"event": "new_notification",
			"data":  notification,
		})
		if err != nil {
			zap.S().Warnw("error sending notification", "userID", userID, "error", err)
			hub.mutex.Lock()
			delete(hub.clients, userID)
			hub.mutex.Unlock()
			conn.Close()
		}
	}
}

// notifyStatusChange pushes a declaration status event to its owner
func notifyStatusChange(ownerID, trackingNumber, newStatus, actor string) {
	if ownerID == "" {
		return
	}
	sendNotificationToUser(ownerID, map[string]interface{}{
		"type":           "status_change",
		"trackingNumber": trackingNumber,
		"status":         newStatus,
		"actor":          actor,
	})
}
