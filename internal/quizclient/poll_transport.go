package quizclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"flashfrenzy/backend/internal/models"
)

const pollInterval = 2 * time.Second

// Submit endpoints, by the event they carry. join-user-room has no endpoint:
// every poll request names the identity anyway.
var pollEndpoints = map[string]string{
	models.EventChallengePlayer:   "/api/polling/challenge",
	models.EventChallengeResponse: "/api/polling/challenge-response",
	models.EventAnswer:            "/api/polling/answer",
	models.EventJoinMatch:         "/api/polling/join-match",
	models.EventLeaveMatch:        "/api/polling/leave-match",
}

// pollTransport emulates the event surface over request/response: a fixed
// 2-second poll carrying a last-observed watermark, returning at most one
// pending challenge per round. Coarser and reorder-prone relative to a
// websocket peer, by design.
type pollTransport struct {
	baseURL  string
	identity string
	httpc    *http.Client

	mu        sync.Mutex
	connected bool
	lastPoll  int64

	events chan models.Event
	stop   chan struct{}
}

func newPollTransport(baseURL, identity string) *pollTransport {
	return &pollTransport{
		baseURL:  baseURL,
		identity: identity,
		httpc:    &http.Client{Timeout: 10 * time.Second},
		events:   make(chan models.Event, 64),
		stop:     make(chan struct{}),
	}
}

// Connect starts the poll loop. It never fails: the polling leg is the last
// resort, and a server that stays unreachable just leaves Connected false.
func (t *pollTransport) Connect() error {
	go t.loop()
	return nil
}

func (t *pollTransport) loop() {
	defer close(t.events)

	t.poll()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			t.poll()
		}
	}
}

type pollResponse struct {
	Challenge *models.ChallengeReceivedPayload `json:"challenge"`
	Timestamp int64                            `json:"timestamp"`
}

func (t *pollTransport) poll() {
	t.mu.Lock()
	watermark := t.lastPoll
	t.mu.Unlock()

	body, _ := json.Marshal(map[string]interface{}{
		"userId":   t.identity,
		"lastPoll": watermark,
	})

	resp, err := t.httpc.Post(t.baseURL+"/api/polling/updates", "application/json", bytes.NewReader(body))
	if err != nil {
		t.setConnected(false)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.setConnected(false)
		return
	}

	var pr pollResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		t.setConnected(false)
		return
	}

	t.mu.Lock()
	t.connected = true
	t.lastPoll = pr.Timestamp
	t.mu.Unlock()

	if pr.Challenge != nil {
		select {
		case t.events <- models.NewEvent(models.EventChallengeReceived, pr.Challenge):
		default:
			log.Printf("dropping polled challenge, event buffer full")
		}
	}
}

func (t *pollTransport) setConnected(v bool) {
	t.mu.Lock()
	t.connected = v
	t.mu.Unlock()
}

func (t *pollTransport) Emit(ev models.Event) error {
	if ev.Name == models.EventJoinUserRoom {
		return nil
	}

	path, ok := pollEndpoints[ev.Name]
	if !ok {
		return fmt.Errorf("quizclient: no polling endpoint for event %q", ev.Name)
	}

	resp, err := t.httpc.Post(t.baseURL+path, "application/json", bytes.NewReader(ev.Data))
	if err != nil {
		t.setConnected(false)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("quizclient: %s returned %d", path, resp.StatusCode)
	}
	return nil
}

func (t *pollTransport) Events() <-chan models.Event { return t.events }

func (t *pollTransport) Connected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected
}

func (t *pollTransport) Close() {
	select {
	case <-t.stop:
	default:
		close(t.stop)
	}
}
