package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jfmyers/gamelobby-go/internal/broadcast"
	"github.com/jfmyers/gamelobby-go/internal/model"
	"github.com/jfmyers/gamelobby-go/internal/services/registry"
	"github.com/jfmyers/gamelobby-go/internal/testutil"
)

type testEnv struct {
	server   *httptest.Server
	registry *registry.Registry
	hubs     *broadcast.HubManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	reg := registry.New()
	hubs := broadcast.NewHubManager(testutil.NopLogger())
	handler := NewHandler(reg, hubs, testutil.NopLogger())

	router := mux.NewRouter()
	router.Handle("/ws/game/{gameId}", handler)

	server := httptest.NewServer(router)
	t.Cleanup(func() {
		server.Close()
		hubs.Shutdown()
	})

	return &testEnv{server: server, registry: reg, hubs: hubs}
}

// dial opens a websocket connection to the given room
func (e *testEnv) dial(t *testing.T, gameID string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(e.server.URL, "http") + "/ws/game/" + gameID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msg any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(msg))
}

// readMessage reads the next frame with a deadline
func readMessage(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg map[string]any
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func bindSession(t *testing.T, conn *websocket.Conn, sessionID, userID string) {
	t.Helper()
	send(t, conn, map[string]string{
		"type":      TypeSessionUser,
		"sessionId": sessionID,
		"userId":    userID,
	})
	ack := readMessage(t, conn)
	require.Equal(t, TypeSessionUser, ack["type"])
}

func TestBindSessionAcksAndRecordsUser(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t, "G1")

	send(t, conn, map[string]string{
		"type":      TypeSessionUser,
		"sessionId": "sess-1",
		"userId":    "user-1",
	})

	ack := readMessage(t, conn)
	assert.Equal(t, TypeSessionUser, ack["type"])
	assert.Equal(t, "sess-1", ack["sessionId"])
	assert.Equal(t, "user-1", ack["userId"])

	userID, ok := env.registry.UserOf("sess-1")
	require.True(t, ok)
	assert.Equal(t, model.UserID("user-1"), userID)
}

func TestBindPlayerRecordsClaim(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t, "G1")
	bindSession(t, conn, "sess-1", "user-1")

	send(t, conn, map[string]string{
		"type":     TypeSessionPlayer,
		"playerId": "p1",
	})

	ack := readMessage(t, conn)
	assert.Equal(t, TypeSessionPlayer, ack["type"])
	assert.Equal(t, "p1", ack["playerId"])

	claims := env.registry.ClaimsInRoom("G1")
	assert.Equal(t, model.SessionID("sess-1"), claims["p1"])
}

func TestBindPlayerWithoutSessionIsIgnored(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t, "G1")

	send(t, conn, map[string]string{
		"type":     TypeSessionPlayer,
		"playerId": "p1",
	})

	// The sessionless bind produces no ack; the next valid bind does
	bindSession(t, conn, "sess-1", "user-1")
	assert.Empty(t, env.registry.ClaimsInRoom("G1"))
}

func TestChatIsRelayedToRoom(t *testing.T) {
	env := newTestEnv(t)
	sender := env.dial(t, "G1")
	receiver := env.dial(t, "G1")

	// Give the hub time to register both connections
	time.Sleep(20 * time.Millisecond)

	send(t, sender, map[string]string{
		"type":    TypeClientMessage,
		"message": "hello room",
	})

	event := readMessage(t, receiver)
	assert.Equal(t, string(model.EventChat), event["type"])
	assert.Equal(t, "hello room", event["message"])
}

func TestChatIsRoomScoped(t *testing.T) {
	env := newTestEnv(t)
	sender := env.dial(t, "G1")
	otherRoom := env.dial(t, "G2")

	time.Sleep(20 * time.Millisecond)

	send(t, sender, map[string]string{
		"type":    TypeClientMessage,
		"message": "only G1",
	})

	require.NoError(t, otherRoom.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := otherRoom.ReadMessage()
	assert.Error(t, err, "connection in another room should not receive the message")
}

func TestCloseCleansUpAndAnnouncesDisconnect(t *testing.T) {
	env := newTestEnv(t)
	leaver := env.dial(t, "G1")
	watcher := env.dial(t, "G1")

	time.Sleep(20 * time.Millisecond)

	bindSession(t, leaver, "sess-1", "user-1")
	send(t, leaver, map[string]string{
		"type":     TypeSessionPlayer,
		"playerId": "p1",
	})
	_ = readMessage(t, leaver) // player ack

	require.NoError(t, leaver.Close())

	// The watcher sees the disconnect announcement for the claimed player
	event := readMessage(t, watcher)
	assert.Equal(t, string(model.EventPlayerDisconnected), event["type"])
	assert.Equal(t, "p1", event["playerId"])
	assert.Equal(t, "G1", event["roomId"])

	// Registry mappings are gone
	assert.Eventually(t, func() bool {
		_, ok := env.registry.UserOf("sess-1")
		return !ok && len(env.registry.ClaimsInRoom("G1")) == 0
	}, time.Second, 10*time.Millisecond)
}

func TestCloseWithoutClaimIsSilent(t *testing.T) {
	env := newTestEnv(t)
	leaver := env.dial(t, "G1")
	watcher := env.dial(t, "G1")

	time.Sleep(20 * time.Millisecond)

	bindSession(t, leaver, "sess-1", "user-1")
	require.NoError(t, leaver.Close())

	// No claim, so no announcement reaches the watcher
	require.NoError(t, watcher.SetReadDeadline(time.Now().Add(150*time.Millisecond)))
	_, _, err := watcher.ReadMessage()
	assert.Error(t, err)

	assert.Eventually(t, func() bool {
		_, ok := env.registry.UserOf("sess-1")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestMalformedMessageIsIgnored(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t, "G1")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("this is not json")))

	// Connection survives and keeps handling messages
	bindSession(t, conn, "sess-1", "user-1")
}

func TestUnknownMessageTypeIsIgnored(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t, "G1")

	send(t, conn, map[string]string{"type": "teleport"})

	bindSession(t, conn, "sess-1", "user-1")
}

func TestReconnectWithNewSessionSameUser(t *testing.T) {
	env := newTestEnv(t)

	first := env.dial(t, "G1")
	bindSession(t, first, "sess-1", "user-1")
	send(t, first, map[string]string{
		"type":     TypeSessionPlayer,
		"playerId": "p1",
	})
	_ = readMessage(t, first)
	require.NoError(t, first.Close())

	assert.Eventually(t, func() bool {
		return len(env.registry.ClaimsInRoom("G1")) == 0
	}, time.Second, 10*time.Millisecond)

	// A fresh session binds and claims the freed seat
	second := env.dial(t, "G1")
	bindSession(t, second, "sess-2", "user-1")
	send(t, second, map[string]string{
		"type":     TypeSessionPlayer,
		"playerId": "p1",
	})
	_ = readMessage(t, second)

	claims := env.registry.ClaimsInRoom("G1")
	assert.Equal(t, model.SessionID("sess-2"), claims["p1"])
}
