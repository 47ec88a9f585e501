package websocket

import (
	"log"
	"sync"

	"github.com/expertlink/expert_marketplace/models"
	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

type Client struct {
	UserID uuid.UUID
	Conn   *websocket.Conn
}

var clients = make(map[uuid.UUID]*websocket.Conn)
var clientsMu sync.RWMutex
var Register = make(chan *Client)
var Unregister = make(chan *Client)
var Broadcast = make(chan *models.Message)

// RunHub delivers new messages to their recipient's live connection. Messages
// are already persisted before they reach the hub; delivery here is best
// effort for online users only.
func RunHub() {
	for {
		select {
		case client := <-Register:
			clientsMu.Lock()
			clients[client.UserID] = client.Conn
			clientsMu.Unlock()
		case client := <-Unregister:
			clientsMu.Lock()
			if conn, ok := clients[client.UserID]; ok && conn == client.Conn {
				delete(clients, client.UserID)
			}
			clientsMu.Unlock()
		case message := <-Broadcast:
			clientsMu.RLock()
			conn, ok := clients[message.RecipientID]
			clientsMu.RUnlock()
			if !ok {
				continue
			}
			if err := conn.WriteJSON(message); err != nil {
				log.Printf("Error delivering message to client %s: %v", message.RecipientID, err)
				conn.Close()
				clientsMu.Lock()
				delete(clients, message.RecipientID)
				clientsMu.Unlock()
			}
		}
	}
}
