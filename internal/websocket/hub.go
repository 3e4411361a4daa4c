package websocket

import (
	"encoding/json"
	"net/http"

	"lockerroom-talk/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// Hub fans freshly sent chat messages out to connected room members. All
// state is owned by the Run loop; clients and subscriptions only change
// through channels, so no locking is needed.
type Hub struct {
	clients    map[*Client]bool
	rooms      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	subscribe  chan subscription
	roomCast   chan roomMessage
	log        *logrus.Logger
}

type subscription struct {
	client *Client
	roomID string
	join   bool
}

type roomMessage struct {
	roomID  string
	payload []byte
}

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID string
}

type Event struct {
	Type        string `json:"type"`
	RoomID      string `json:"room_id"`
	SenderID    string `json:"sender_id,omitempty"`
	Content     string `json:"content,omitempty"`
	MessageType string `json:"message_type,omitempty"`
	MessageID   string `json:"message_id,omitempty"`
	Timestamp   string `json:"timestamp,omitempty"`
	IsTyping    bool   `json:"is_typing,omitempty"`
	UserID      string `json:"user_id,omitempty"`
}

func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		subscribe:  make(chan subscription),
		roomCast:   make(chan roomMessage, 64),
		log:        log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.log.WithField("uid", client.userID).Debug("websocket client connected")

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.dropClient(client)
				h.log.WithField("uid", client.userID).Debug("websocket client disconnected")
			}

		case sub := <-h.subscribe:
			if sub.join {
				if h.rooms[sub.roomID] == nil {
					h.rooms[sub.roomID] = make(map[*Client]bool)
				}
				h.rooms[sub.roomID][sub.client] = true
			} else if members := h.rooms[sub.roomID]; members != nil {
				delete(members, sub.client)
				if len(members) == 0 {
					delete(h.rooms, sub.roomID)
				}
			}

		case msg := <-h.roomCast:
			for client := range h.rooms[msg.roomID] {
				select {
				case client.send <- msg.payload:
				default:
					h.dropClient(client)
				}
			}
		}
	}
}

func (h *Hub) dropClient(client *Client) {
	delete(h.clients, client)
	for roomID, members := range h.rooms {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, roomID)
		}
	}
	close(client.send)
}

// BroadcastToRoom queues an event for every client subscribed to the room.
// Delivery is best-effort; the stored message is the source of truth.
func (h *Hub) BroadcastToRoom(roomID string, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.log.WithError(err).Warn("failed to encode websocket event")
		return
	}
	h.roomCast <- roomMessage{roomID: roomID, payload: payload}
}

func HandleWebSocket(hub *Hub, c *gin.Context) {
	uid := c.GetString(middleware.ContextUID)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		hub.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 256),
		userID: uid,
	}

	hub.register <- client

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.WithError(err).Debug("websocket read error")
			}
			break
		}

		var event Event
		if err := json.Unmarshal(raw, &event); err != nil {
			continue
		}
		if event.RoomID == "" {
			continue
		}

		switch event.Type {
		case "join_room":
			c.hub.subscribe <- subscription{client: c, roomID: event.RoomID, join: true}
		case "leave_room":
			c.hub.subscribe <- subscription{client: c, roomID: event.RoomID, join: false}
		case "typing", "stop_typing":
			c.hub.BroadcastToRoom(event.RoomID, Event{
				Type:     "typing",
				RoomID:   event.RoomID,
				UserID:   c.userID,
				IsTyping: event.Type == "typing",
			})
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
