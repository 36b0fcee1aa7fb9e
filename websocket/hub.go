package websocket

import (
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

type Client struct {
	UserID uuid.UUID
	Conn   *websocket.Conn
}

// Notification is pushed to one student's open dashboard connections.
type Notification struct {
	UserID  uuid.UUID              `json:"-"`
	Type    string                 `json:"type"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

var clients = make(map[uuid.UUID]*websocket.Conn)
var clientsMu sync.RWMutex
var Register = make(chan *Client)
var Unregister = make(chan *Client)
var Notify = make(chan *Notification, 32)

func RunHub() {
	for {
		select {
		case client := <-Register:
			log.Printf("Client registered: %s", client.UserID)
			clientsMu.Lock()
			clients[client.UserID] = client.Conn
			clientsMu.Unlock()
		case client := <-Unregister:
			log.Printf("Client unregistered: %s", client.UserID)
			clientsMu.Lock()
			if conn, ok := clients[client.UserID]; ok && conn == client.Conn {
				delete(clients, client.UserID)
			}
			clientsMu.Unlock()
		case n := <-Notify:
			clientsMu.RLock()
			conn, ok := clients[n.UserID]
			clientsMu.RUnlock()
			if !ok {
				continue
			}
			if err := conn.WriteJSON(n); err != nil {
				log.Printf("Error pushing notification to %s: %v", n.UserID, err)
				conn.Close()
				clientsMu.Lock()
				delete(clients, n.UserID)
				clientsMu.Unlock()
			}
		}
	}
}

// Push queues a notification without blocking the caller. Pushes are best
// effort; a full queue drops the event.
func Push(userID uuid.UUID, eventType, message string, data map[string]interface{}) {
	select {
	case Notify <- &Notification{UserID: userID, Type: eventType, Message: message, Data: data}:
	default:
		log.Printf("Notification queue full, dropping %s event for %s", eventType, userID)
	}
}
