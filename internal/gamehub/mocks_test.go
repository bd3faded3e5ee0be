package gamehub_test

import (
	"flashfrenzy/backend/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockStorage is a testify mock of the storage.Storage interface.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) SyncUser(email, displayName string) (*models.User, error) {
	args := m.Called(email, displayName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) GetUserByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) SaveUser(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockStorage) SaveMatch(match *models.Match) error {
	args := m.Called(match)
	return args.Error(0)
}

func (m *MockStorage) GetMatchByID(matchID string) (*models.Match, error) {
	args := m.Called(matchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Match), args.Error(1)
}

func (m *MockStorage) CloseMatch(matchID string) error {
	args := m.Called(matchID)
	return args.Error(0)
}

func (m *MockStorage) GetActiveMatchIDs() ([]string, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStorage) DeleteMatchesForPlayer(playerID string) error {
	args := m.Called(playerID)
	return args.Error(0)
}

func (m *MockStorage) SaveMatchHistory(entry *models.MatchHistory) error {
	args := m.Called(entry)
	return args.Error(0)
}

func (m *MockStorage) GetMatchHistoryForUser(userID string) ([]models.MatchHistory, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MatchHistory), args.Error(1)
}

func (m *MockStorage) StorePendingChallenge(targetID string, ch models.ChallengeReceivedPayload) error {
	args := m.Called(targetID, ch)
	return args.Error(0)
}

func (m *MockStorage) TakePendingChallenge(targetID string, lastPoll int64) (*models.ChallengeReceivedPayload, error) {
	args := m.Called(targetID, lastPoll)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChallengeReceivedPayload), args.Error(1)
}

func (m *MockStorage) TouchPresence(userID string) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockStorage) RemovePresence(userID string) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockStorage) GetOnlinePlayers() ([]string, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// mockClient is a plain test double for the gamehub.Client interface with a
// buffered send channel so broadcasts never block in tests.
type mockClient struct {
	id     string
	userID string
	send   chan models.Event
	closed bool
}

func newMockClient(connID string) *mockClient {
	return &mockClient{
		id:   connID,
		send: make(chan models.Event, 16),
	}
}

func (c *mockClient) ConnID() string                   { return c.id }
func (c *mockClient) UserID() string                   { return c.userID }
func (c *mockClient) SetUserID(id string)              { c.userID = id }
func (c *mockClient) SendChannel() chan<- models.Event { return c.send }
func (c *mockClient) Run()                             {}

func (c *mockClient) Close() {
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// drain empties the send channel and returns everything that was queued.
func (c *mockClient) drain() []models.Event {
	var events []models.Event
	for {
		select {
		case ev := <-c.send:
			events = append(events, ev)
		default:
			return events
		}
	}
}

// drainByName indexes drained events by event name.
func (c *mockClient) drainByName() map[string][]models.Event {
	out := make(map[string][]models.Event)
	for _, ev := range c.drain() {
		out[ev.Name] = append(out[ev.Name], ev)
	}
	return out
}
