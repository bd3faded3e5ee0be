package quizclient

import (
	"log"
	"sync"
	"time"

	"flashfrenzy/backend/internal/models"
)

// challengeTimeout is how long a received challenge sits unanswered before
// this client auto-declines it. Enforced per receiver; the relay never times
// a challenge out, so a challenger whose peer vanished waits until its own
// user gives up.
const challengeTimeout = 30 * time.Second

// Handler receives one inbound event. Handlers run on the client's dispatch
// goroutine; don't block in them.
type Handler func(ev models.Event)

// Client is the game-facing realtime client. It probes the websocket
// transport once and falls back to the polling emulation on sustained
// failure; above that line the two are indistinguishable.
type Client struct {
	BaseURL     string
	Token       string
	UserID      string
	DisplayName string

	mu           sync.Mutex
	transport    Transport
	kind         string
	handlers     map[string][]Handler
	declineAfter time.Duration

	pendingChallenge *models.ChallengeReceivedPayload
	declineTimer     *time.Timer

	done chan struct{}
}

func New(baseURL, token, userID, displayName string) *Client {
	return &Client{
		BaseURL:      baseURL,
		Token:        token,
		UserID:       userID,
		DisplayName:  displayName,
		kind:         TransportNone,
		handlers:     make(map[string][]Handler),
		declineAfter: challengeTimeout,
		done:         make(chan struct{}),
	}
}

// Connect brings up a transport. It does not return an error on total
// failure: the polling transport always "connects" and simply reports
// Connected false until the server answers, which callers must tolerate.
func (c *Client) Connect() {
	ws := newWSTransport(c.BaseURL, c.Token, c.UserID)
	if err := ws.Connect(); err == nil {
		c.setTransport(ws, TransportWebSocket)
		log.Printf("quizclient: connected over websocket")
	} else {
		log.Printf("quizclient: websocket unavailable (%v), falling back to polling", err)
		p := newPollTransport(c.BaseURL, c.UserID)
		p.Connect()
		c.setTransport(p, TransportPolling)
	}

	go c.dispatchLoop()
}

func (c *Client) setTransport(t Transport, kind string) {
	c.mu.Lock()
	c.transport = t
	c.kind = kind
	c.mu.Unlock()
}

// Connected reports the transport's current view. False is not an error
// state; it can last forever.
func (c *Client) Connected() bool {
	c.mu.Lock()
	t := c.transport
	c.mu.Unlock()
	return t != nil && t.Connected()
}

// ConnectionType returns "websocket", "polling" or "none".
func (c *Client) ConnectionType() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kind
}

// On registers a handler for an inbound event name.
func (c *Client) On(name string, fn Handler) {
	c.mu.Lock()
	c.handlers[name] = append(c.handlers[name], fn)
	c.mu.Unlock()
}

// dispatchLoop drains the active transport's event stream. A websocket
// session that dies mid-game closes its stream; instead of going silent the
// client swaps in the polling transport and keeps dispatching. The polling
// leg needs no separate identity announcement: every poll request carries
// the user ID.
func (c *Client) dispatchLoop() {
	for {
		c.mu.Lock()
		t := c.transport
		c.mu.Unlock()
		if t == nil {
			return
		}

		for ev := range t.Events() {
			if ev.Name == models.EventChallengeReceived {
				c.trackChallenge(ev)
			}

			c.mu.Lock()
			hs := append([]Handler(nil), c.handlers[ev.Name]...)
			c.mu.Unlock()
			for _, h := range hs {
				h(ev)
			}
		}

		select {
		case <-c.done:
			return
		default:
		}

		c.mu.Lock()
		replaced := c.transport != t
		c.mu.Unlock()
		if replaced {
			continue
		}

		log.Printf("quizclient: websocket transport lost, falling back to polling")
		p := newPollTransport(c.BaseURL, c.UserID)
		c.mu.Lock()
		select {
		case <-c.done:
			c.mu.Unlock()
			return
		default:
		}
		c.transport = p
		c.kind = TransportPolling
		c.mu.Unlock()
		p.Connect()
	}
}

// trackChallenge remembers the latest received challenge and arms the
// auto-decline timer. A newer challenge replaces the old one and re-arms.
func (c *Client) trackChallenge(ev models.Event) {
	var p models.ChallengeReceivedPayload
	if err := ev.Decode(&p); err != nil {
		log.Printf("quizclient: bad challenge payload: %v", err)
		return
	}

	c.mu.Lock()
	c.pendingChallenge = &p
	if c.declineTimer != nil {
		c.declineTimer.Stop()
	}
	c.declineTimer = time.AfterFunc(c.declineAfter, func() {
		log.Printf("quizclient: challenge from %s timed out, auto-declining", p.ChallengerID)
		c.RespondToChallenge(false)
	})
	c.mu.Unlock()
}

// emit sends fire-and-forget. A down transport drops the event, per the
// protocol; only genuinely malformed sends surface as errors in the log.
func (c *Client) emit(name string, payload interface{}) {
	c.mu.Lock()
	t := c.transport
	c.mu.Unlock()
	if t == nil {
		return
	}

	if err := t.Emit(models.NewEvent(name, payload)); err != nil {
		if err == ErrNotConnected {
			log.Printf("quizclient: dropped %s event, transport down", name)
			return
		}
		log.Printf("quizclient: emit %s failed: %v", name, err)
	}
}

// SendChallenge challenges another player to the given match.
func (c *Client) SendChallenge(targetID, matchID string) {
	c.emit(models.EventChallengePlayer, models.ChallengePlayerPayload{
		ChallengerID:   c.UserID,
		ChallengerName: c.DisplayName,
		TargetID:       targetID,
		MatchID:        matchID,
	})
}

// RespondToChallenge answers the pending challenge, if any. Accepting also
// joins the match room server-side; the challenger is told separately.
func (c *Client) RespondToChallenge(accepted bool) {
	c.mu.Lock()
	pending := c.pendingChallenge
	c.pendingChallenge = nil
	if c.declineTimer != nil {
		c.declineTimer.Stop()
		c.declineTimer = nil
	}
	c.mu.Unlock()

	if pending == nil {
		return
	}

	c.emit(models.EventChallengeResponse, models.ChallengeResponsePayload{
		ChallengerID: pending.ChallengerID,
		TargetID:     c.UserID,
		Accepted:     accepted,
		MatchID:      pending.MatchID,
	})
}

// PendingChallenge returns the challenge awaiting a response, if any.
func (c *Client) PendingChallenge() *models.ChallengeReceivedPayload {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingChallenge
}

func (c *Client) JoinMatch(matchID string) {
	c.emit(models.EventJoinMatch, models.JoinMatchPayload{
		MatchID: matchID,
		UserID:  c.UserID,
	})
}

// SendAnswer submits an answer for a question. An empty answer reports
// "time up" and burns the question without scoring.
func (c *Client) SendAnswer(matchID, answer, questionID string) {
	c.emit(models.EventAnswer, models.AnswerPayload{
		MatchID:    matchID,
		UserID:     c.UserID,
		Answer:     answer,
		QuestionID: questionID,
	})
}

func (c *Client) LeaveMatch(matchID string) {
	c.emit(models.EventLeaveMatch, models.LeaveMatchPayload{
		MatchID: matchID,
		UserID:  c.UserID,
	})
}

// Close stops the client for good: the dispatch loop must not mistake this
// teardown for a transport failure and spin up a polling fallback.
func (c *Client) Close() {
	c.mu.Lock()
	select {
	case <-c.done:
	default:
		close(c.done)
	}
	t := c.transport
	c.transport = nil
	c.kind = TransportNone
	if c.declineTimer != nil {
		c.declineTimer.Stop()
		c.declineTimer = nil
	}
	c.mu.Unlock()

	if t != nil {
		t.Close()
	}
}
