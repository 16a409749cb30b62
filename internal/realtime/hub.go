package realtime

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/websocket/v2"
)

// Event types yang dikirim ke client (best-effort, at-most-once).
const (
	EventQueueEntryCreated    = "queue-entry-created"
	EventQueueEntryRemoved    = "queue-entry-removed"
	EventStudentStatusChanged = "student-status-changed"
	EventTransferCommitted    = "transfer-committed"
	EventOverrideRequested    = "override-requested"
	EventOverrideProcessed    = "override-processed"
	EventNotificationCreated  = "notification-created"
)

type Event struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
}

type EventsHub struct {
	Register   chan *websocket.Conn
	Unregister chan *websocket.Conn
	Broadcast  chan []byte
	Clients    map[*websocket.Conn]bool
}

var Events = EventsHub{
	Register:   make(chan *websocket.Conn),
	Unregister: make(chan *websocket.Conn),
	Broadcast:  make(chan []byte, 256),
	Clients:    make(map[*websocket.Conn]bool),
}

// RunEventsBroadcaster adalah satu-satunya writer ke semua koneksi —
// register/unregister/broadcast/ping lewat goroutine ini, jadi tidak ada
// write concurrent ke conn yang sama.
func RunEventsBroadcaster() {
	ping := time.NewTicker(20 * time.Second)
	defer ping.Stop()

	for {
		select {
		case c := <-Events.Register:
			Events.Clients[c] = true
		case c := <-Events.Unregister:
			delete(Events.Clients, c)
			c.Close()
		case msg := <-Events.Broadcast:
			for c := range Events.Clients {
				c.SetWriteDeadline(time.Now().Add(3 * time.Second))
				if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
					delete(Events.Clients, c)
					c.Close()
				}
			}
		case <-ping.C:
			for c := range Events.Clients {
				c.SetWriteDeadline(time.Now().Add(3 * time.Second))
				if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
					delete(Events.Clients, c)
					c.Close()
				}
			}
		}
	}
}

// Emit kirim event fire-and-forget. Buffer penuh = event di-drop, request
// yang commit tidak boleh ke-block gara-gara client lambat.
func Emit(eventType string, data interface{}) {
	msg, err := json.Marshal(Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().Format(time.RFC3339),
	})
	if err != nil {
		log.Printf("[realtime] marshal %s: %v", eventType, err)
		return
	}

	select {
	case Events.Broadcast <- msg:
	default:
		log.Printf("[realtime] buffer penuh, drop event %s", eventType)
	}
}
