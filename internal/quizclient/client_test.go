package quizclient

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"flashfrenzy/backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTransport records emitted events and lets tests feed the inbound
// stream by hand.
type stubTransport struct {
	mu      sync.Mutex
	emitted []models.Event
	events  chan models.Event
	closed  bool
}

func newStubTransport() *stubTransport {
	return &stubTransport{events: make(chan models.Event, 16)}
}

func (s *stubTransport) Connect() error { return nil }

func (s *stubTransport) Emit(ev models.Event) error {
	s.mu.Lock()
	s.emitted = append(s.emitted, ev)
	s.mu.Unlock()
	return nil
}

func (s *stubTransport) Events() <-chan models.Event { return s.events }
func (s *stubTransport) Connected() bool             { return true }

func (s *stubTransport) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.events)
	}
}

func (s *stubTransport) emittedByName(name string) []models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Event
	for _, ev := range s.emitted {
		if ev.Name == name {
			out = append(out, ev)
		}
	}
	return out
}

// newStubbedClient wires a client straight onto a stub transport with a
// short auto-decline window, bypassing Connect.
func newStubbedClient(st *stubTransport, declineAfter time.Duration) *Client {
	c := New("http://unused", "tok", "b@x.com", "Bob")
	c.declineAfter = declineAfter
	c.setTransport(st, TransportWebSocket)
	go c.dispatchLoop()
	return c
}

func challengeEvent() models.Event {
	return models.NewEvent(models.EventChallengeReceived, models.ChallengeReceivedPayload{
		ChallengerID:   "a@x.com",
		ChallengerName: "Alice",
		MatchID:        "M1",
		Timestamp:      time.Now().UnixMilli(),
	})
}

func TestClient_AutoDeclinesUnansweredChallenge(t *testing.T) {
	st := newStubTransport()
	c := newStubbedClient(st, 100*time.Millisecond)
	defer c.Close()

	st.events <- challengeEvent()

	assert.Eventually(t, func() bool {
		return len(st.emittedByName(models.EventChallengeResponse)) == 1
	}, time.Second, 10*time.Millisecond, "the timer must decline on the user's behalf")

	responses := st.emittedByName(models.EventChallengeResponse)
	var p models.ChallengeResponsePayload
	require.NoError(t, responses[0].Decode(&p))
	assert.False(t, p.Accepted)
	assert.Equal(t, "a@x.com", p.ChallengerID)
	assert.Equal(t, "M1", p.MatchID)
	assert.Nil(t, c.PendingChallenge())
}

func TestClient_UserResponseDisarmsAutoDecline(t *testing.T) {
	st := newStubTransport()
	c := newStubbedClient(st, 150*time.Millisecond)
	defer c.Close()

	st.events <- challengeEvent()
	assert.Eventually(t, func() bool {
		return c.PendingChallenge() != nil
	}, time.Second, 5*time.Millisecond)

	c.RespondToChallenge(true)

	// Outlive the timer: the accept must stand alone, never joined by a
	// late decline.
	time.Sleep(400 * time.Millisecond)

	responses := st.emittedByName(models.EventChallengeResponse)
	require.Len(t, responses, 1)
	var p models.ChallengeResponsePayload
	require.NoError(t, responses[0].Decode(&p))
	assert.True(t, p.Accepted)
}

func TestClient_ConnectFallsBackToPollingWhenDialFails(t *testing.T) {
	// No websocket endpoint at all; the polling surface is healthy.
	srv := newPollServer()
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	c := New(ts.URL, "tok", "a@x.com", "Alice")
	c.Connect()
	defer c.Close()

	assert.Equal(t, TransportPolling, c.ConnectionType())
	assert.Eventually(t, func() bool { return c.Connected() },
		3*time.Second, 50*time.Millisecond)
}

func TestClient_FallsBackToPollingWhenWebSocketDies(t *testing.T) {
	srv := newPollServer()
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	dropWS := make(chan struct{})

	mux := http.NewServeMux()
	mux.Handle("/api/polling/", srv.handler())
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn.ReadMessage() // the identity announcement
		<-dropWS
		conn.Close()
	})

	ts := httptest.NewServer(mux)
	defer ts.Close()

	c := New(ts.URL, "tok", "a@x.com", "Alice")
	c.Connect()
	defer c.Close()
	assert.Equal(t, TransportWebSocket, c.ConnectionType())
	assert.True(t, c.Connected())

	// The session dies mid-game while the polling surface stays up. The
	// client must not go silent for good.
	close(dropWS)

	assert.Eventually(t, func() bool {
		return c.ConnectionType() == TransportPolling && c.Connected()
	}, 5*time.Second, 50*time.Millisecond,
		"transport still %q after websocket loss", c.ConnectionType())
}
