package quizclient

import (
	"encoding/json"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	"flashfrenzy/backend/internal/models"

	"github.com/gorilla/websocket"
)

const (
	handshakeTimeout = 20 * time.Second
	dialAttempts     = 5
	dialBackoff      = 1 * time.Second
)

// wsTransport is the preferred transport: one persistent full-duplex
// websocket. Connect retries the handshake a fixed number of times with a
// fixed backoff before giving up so the caller can fall back to polling.
type wsTransport struct {
	baseURL  string
	token    string
	identity string

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool

	events chan models.Event
}

func newWSTransport(baseURL, token, identity string) *wsTransport {
	return &wsTransport{
		baseURL:  baseURL,
		token:    token,
		identity: identity,
		events:   make(chan models.Event, 64),
	}
}

func (t *wsTransport) Connect() error {
	wsURL, err := t.dialURL()
	if err != nil {
		return err
	}

	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}

	var conn *websocket.Conn
	var lastErr error
	for attempt := 1; attempt <= dialAttempts; attempt++ {
		conn, _, lastErr = dialer.Dial(wsURL, nil)
		if lastErr == nil {
			break
		}
		log.Printf("websocket dial attempt %d/%d failed: %v", attempt, dialAttempts, lastErr)
		time.Sleep(dialBackoff)
	}
	if lastErr != nil {
		return lastErr
	}

	t.mu.Lock()
	t.conn = conn
	t.connected = true
	t.mu.Unlock()

	// Announce the identity immediately so the relay can address us.
	if err := t.Emit(models.NewEvent(models.EventJoinUserRoom, models.JoinUserRoomPayload{
		UserID: t.identity,
	})); err != nil {
		t.Close()
		return err
	}

	go t.readLoop()
	return nil
}

func (t *wsTransport) dialURL() (string, error) {
	u, err := url.Parse(t.baseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	q := u.Query()
	q.Set("token", t.token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (t *wsTransport) readLoop() {
	defer func() {
		t.mu.Lock()
		t.connected = false
		t.mu.Unlock()
		close(t.events)
	}()

	for {
		_, message, err := t.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("websocket read error: %v", err)
			}
			return
		}

		var ev models.Event
		if err := json.Unmarshal(message, &ev); err != nil {
			log.Printf("dropping undecodable frame: %v", err)
			continue
		}
		t.events <- ev
	}
}

func (t *wsTransport) Emit(ev models.Event) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.connected || t.conn == nil {
		return ErrNotConnected
	}
	t.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return t.conn.WriteJSON(ev)
}

func (t *wsTransport) Events() <-chan models.Event { return t.events }

func (t *wsTransport) Connected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected
}

func (t *wsTransport) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn != nil {
		t.conn.Close()
	}
	t.connected = false
}
