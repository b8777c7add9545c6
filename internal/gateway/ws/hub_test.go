package ws

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"

	"github.com/tugochat/tugochat/internal/dependencies/mocks"
	"github.com/tugochat/tugochat/internal/engine"
	"github.com/tugochat/tugochat/internal/matchmaking"
	"github.com/tugochat/tugochat/internal/model"
	"github.com/tugochat/tugochat/internal/registry"
	"github.com/tugochat/tugochat/internal/twitch"
)

type HubSuite struct {
	suite.Suite
	clock    *mocks.MockClock
	queue    *matchmaking.Queue
	registry *registry.Registry
	hub      *Hub
	server   *httptest.Server
}

func TestHubSuite(t *testing.T) {
	suite.Run(t, new(HubSuite))
}

func (s *HubSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	s.queue = matchmaking.NewQueue(s.clock, logger)
	s.registry = registry.New(engine.DefaultRuleset(), s.clock, logger)
	service := engine.NewService(s.registry, s.queue, logger)
	monitors := twitch.NewMonitorManager(service.SubmitPull, 500*time.Millisecond, s.clock, logger)
	s.hub = NewHub(s.queue, service, s.registry, monitors, logger)

	router := mux.NewRouter()
	router.Handle("/ws/{session_id}", s.hub)
	s.server = httptest.NewServer(router)
}

func (s *HubSuite) TearDownTest() {
	s.hub.Close()
	s.server.Close()
}

func (s *HubSuite) dial(sessionID string) *websocket.Conn {
	wsURL := "ws" + strings.TrimPrefix(s.server.URL, "http") + "/ws/" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	s.Require().NoError(err)
	return conn
}

func (s *HubSuite) send(conn *websocket.Conn, payload string) {
	s.Require().NoError(conn.WriteMessage(websocket.TextMessage, []byte(payload)))
}

func (s *HubSuite) read(conn *websocket.Conn) model.Message {
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(2 * time.Second)))
	var msg model.Message
	s.Require().NoError(conn.ReadJSON(&msg))
	return msg
}

const joinQueuePayload = `{
	"type": "join_queue",
	"player": {
		"id": "42",
		"username": "TestStreamer",
		"channel_name": "teststreamer",
		"access_token": "token-123",
		"viewer_count": 10
	}
}`

func (s *HubSuite) TestJoinQueue() {
	conn := s.dial("sess-1")
	defer conn.Close()

	s.send(conn, joinQueuePayload)

	msg := s.read(conn)
	s.Equal(model.MessageQueueJoined, msg.Type)
	s.Equal(1, s.queue.Len())

	entries := s.queue.Entries()
	s.Require().Len(entries, 1)
	s.Equal(model.SessionID("sess-1"), entries[0].SessionID)
	s.Equal("TestStreamer", entries[0].Player.Username)
}

func (s *HubSuite) TestLeaveQueue() {
	conn := s.dial("sess-1")
	defer conn.Close()

	s.send(conn, joinQueuePayload)
	s.Equal(model.MessageQueueJoined, s.read(conn).Type)

	s.send(conn, `{"type": "leave_queue"}`)
	s.Equal(model.MessageQueueLeft, s.read(conn).Type)
	s.Equal(0, s.queue.Len())
}

func (s *HubSuite) TestInvalidMessagesAreIgnored() {
	conn := s.dial("sess-1")
	defer conn.Close()

	s.send(conn, `not json at all`)
	s.send(conn, `{"type": "shout"}`)
	s.send(conn, `{"type": "join_queue"}`)
	s.send(conn, joinQueuePayload)

	// Only the valid join produces a response
	msg := s.read(conn)
	s.Equal(model.MessageQueueJoined, msg.Type)
	s.Equal(1, s.queue.Len())
}

func (s *HubSuite) TestSendToSession() {
	conn := s.dial("sess-1")
	defer conn.Close()

	s.Require().Eventually(func() bool {
		return s.hub.ClientCount() == 1
	}, time.Second, 5*time.Millisecond)

	err := s.hub.SendToSession(context.Background(), "sess-1", model.NewGameStarted())
	s.Require().NoError(err)

	msg := s.read(conn)
	s.Equal(model.MessageGameStarted, msg.Type)
	s.NotEmpty(msg.Message)
}

func (s *HubSuite) TestSendToDisconnectedSessionIsDropped() {
	err := s.hub.SendToSession(context.Background(), "sess-missing", model.NewGameStarted())
	s.NoError(err)
}

func (s *HubSuite) TestBroadcastToRoom() {
	conn1 := s.dial("sess-1")
	defer conn1.Close()
	conn2 := s.dial("sess-2")
	defer conn2.Close()

	s.Require().Eventually(func() bool {
		return s.hub.ClientCount() == 2
	}, time.Second, 5*time.Millisecond)

	err := s.hub.BroadcastToRoom(context.Background(),
		[]model.SessionID{"sess-1", "sess-2"}, model.NewQueueLeft())
	s.Require().NoError(err)

	s.Equal(model.MessageQueueLeft, s.read(conn1).Type)
	s.Equal(model.MessageQueueLeft, s.read(conn2).Type)
}

func (s *HubSuite) TestDisconnectLeavesQueue() {
	conn := s.dial("sess-1")

	s.send(conn, joinQueuePayload)
	s.Equal(model.MessageQueueJoined, s.read(conn).Type)
	s.Equal(1, s.queue.Len())

	conn.Close()

	s.Require().Eventually(func() bool {
		return s.queue.Len() == 0 && s.hub.ClientCount() == 0
	}, time.Second, 5*time.Millisecond)
}

func (s *HubSuite) TestDisconnectForfeitsActiveMatch() {
	conn1 := s.dial("sess-1")
	defer conn1.Close()
	conn2 := s.dial("sess-2")
	defer conn2.Close()

	room := s.registry.Create(
		model.Player{ID: "p1", Username: "One", SessionID: "sess-1"},
		model.Player{ID: "p2", Username: "Two", SessionID: "sess-2"},
	)
	room.Start()

	conn1.Close()

	s.Require().Eventually(func() bool {
		return room.Status() == model.StatusAbandoned
	}, time.Second, 5*time.Millisecond)
	s.Equal(model.PlayerID("p2"), room.Winner())
}

func (s *HubSuite) TestReconnectReplacesSession() {
	conn1 := s.dial("sess-1")
	conn2 := s.dial("sess-1")
	defer conn2.Close()

	s.Require().Eventually(func() bool {
		// The replaced connection gets closed server-side
		_, _, err := conn1.ReadMessage()
		return err != nil
	}, 2*time.Second, 10*time.Millisecond)
	s.Equal(1, s.hub.ClientCount())
}
