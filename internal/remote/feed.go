// Package remote exposes normalized events over websocket and accepts
// scripts over SSH.
package remote

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/bnema/inputkit/internal/events"
	"github.com/bnema/inputkit/internal/logger"
)

// Message types sent to feed clients
const (
	TypeHello = "hello"
	TypeEvent = "event"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The feed listens on loopback by default and carries no secrets
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is one JSON frame of the feed
type Message struct {
	Type    string    `json:"type"`
	Client  string    `json:"client,omitempty"`
	Channel string    `json:"channel,omitempty"`
	Time    time.Time `json:"time"`
	Payload any       `json:"payload,omitempty"`
}

// Feed broadcasts generic channel events to websocket clients
type Feed struct {
	clients   map[*feedClient]bool
	clientsMu sync.RWMutex

	source *events.Emitter[events.Event]
	sub    events.Subscription
}

type feedClient struct {
	feed *Feed
	conn *websocket.Conn
	send chan []byte
	id   string
	ip   string
	once sync.Once
}

// NewFeed creates a feed that is not yet attached to any source
func NewFeed() *Feed {
	return &Feed{clients: make(map[*feedClient]bool)}
}

// Attach subscribes the feed to every event published on source
func (f *Feed) Attach(source *events.Emitter[events.Event]) error {
	sub, err := source.Subscribe(events.AllTag, f.Publish)
	if err != nil {
		return err
	}
	f.source, f.sub = source, sub
	return nil
}

// ClientCount returns the number of connected clients
func (f *Feed) ClientCount() int {
	f.clientsMu.RLock()
	defer f.clientsMu.RUnlock()
	return len(f.clients)
}

// Publish sends ev to every client. Clients whose buffer is full are dropped.
func (f *Feed) Publish(ev events.Event) {
	f.broadcast(Message{Type: TypeEvent, Channel: ev.Channel(), Time: time.Now(), Payload: ev.Payload()})
}

func (f *Feed) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Warnf("WS: Failed to marshal %s message: %v", msg.Type, err)
		return
	}

	f.clientsMu.Lock()
	defer f.clientsMu.Unlock()

	for client := range f.clients {
		select {
		case client.send <- data:
		default:
			delete(f.clients, client)
			client.close()
			logger.Debugf("WS: Dropped slow client %s", client.ip)
		}
	}
}

// ServeHTTP upgrades the request and streams events until the client leaves
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Debugf("WS: Failed to upgrade connection: %v", err)
		return
	}

	client := &feedClient{
		feed: f,
		conn: conn,
		send: make(chan []byte, 256),
		id:   uuid.NewString(),
		ip:   r.RemoteAddr,
	}

	hello, _ := json.Marshal(Message{Type: TypeHello, Client: client.id, Time: time.Now()})
	client.send <- hello

	f.clientsMu.Lock()
	f.clients[client] = true
	total := len(f.clients)
	f.clientsMu.Unlock()
	logger.Infof("WS: Client %s connected from %s. Total clients: %d", client.id, client.ip, total)

	go client.writePump()
	go client.readPump()
}

// Close detaches from the source and disconnects every client
func (f *Feed) Close() error {
	var err error
	if f.source != nil {
		err = f.source.Unsubscribe(f.sub)
	}

	f.clientsMu.Lock()
	for client := range f.clients {
		delete(f.clients, client)
		client.close()
	}
	f.clientsMu.Unlock()
	return err
}

func (f *Feed) remove(c *feedClient) {
	f.clientsMu.Lock()
	if _, ok := f.clients[c]; ok {
		delete(f.clients, c)
		c.close()
		logger.Infof("WS: Client %s disconnected. Total clients: %d", c.id, len(f.clients))
	}
	f.clientsMu.Unlock()
}

func (c *feedClient) close() {
	c.once.Do(func() { close(c.send) })
}

// readPump only watches for the client going away; the feed is one way.
func (c *feedClient) readPump() {
	defer func() {
		c.feed.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(60 * time.Second)); return nil })

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Debugf("WS: Read error: %v", err)
			}
			return
		}
	}
}

func (c *feedClient) writePump() {
	ticker := time.NewTicker(50 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
