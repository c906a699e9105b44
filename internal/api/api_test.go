package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jfmyers/gamelobby-go/internal/api"
	"github.com/jfmyers/gamelobby-go/internal/api/response"
	"github.com/jfmyers/gamelobby-go/internal/factory"
	"github.com/jfmyers/gamelobby-go/internal/model"
	"github.com/jfmyers/gamelobby-go/internal/testutil"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	app := factory.NewTestApp()

	router := api.NewRouter(api.RouterConfig{
		Logger:      testutil.NopLogger(),
		GameService: app.GameService,
		Resolver:    app.Resolver,
		HubManager:  app.HubManager,
		WSHandler:   app.WSHandler,
	})

	t.Cleanup(app.HubManager.Shutdown)

	return &testServer{handler: router, app: app}
}

func (ts *testServer) request(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v))
	return v
}

// createUser makes a user through the API and returns its id
func (ts *testServer) createUser(t *testing.T, displayName string) string {
	t.Helper()
	rr := ts.request(t, http.MethodPost, "/api/user/new", map[string]string{"displayName": displayName})
	require.Equal(t, http.StatusCreated, rr.Code)
	return decode[response.User](t, rr).ID
}

// createGame makes a game with a known code
func (ts *testServer) createGame(t *testing.T, code string) string {
	t.Helper()
	ts.app.MockRandom.QueueString(code)
	rr := ts.request(t, http.MethodPost, "/api/game/new", nil)
	require.Equal(t, http.StatusCreated, rr.Code)
	return decode[response.Game](t, rr).ID
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(t, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestCreateUser(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(t, http.MethodPost, "/api/user/new", map[string]string{"displayName": "Alice"})
	require.Equal(t, http.StatusCreated, rr.Code)

	user := decode[response.User](t, rr)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "Alice", user.DisplayName)
}

func TestCreateUserRequiresDisplayName(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(t, http.MethodPost, "/api/user/new", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateGame(t *testing.T) {
	ts := newTestServer(t)
	ts.app.MockRandom.QueueString("ABC123")

	rr := ts.request(t, http.MethodPost, "/api/game/new", nil)
	require.Equal(t, http.StatusCreated, rr.Code)

	game := decode[response.Game](t, rr)
	assert.Equal(t, "ABC123", game.ID)
	assert.Equal(t, string(model.GameStatusWaiting), game.Status)
}

func TestGameInfo(t *testing.T) {
	ts := newTestServer(t)
	gameID := ts.createGame(t, "ABC123")
	userID := ts.createUser(t, "Alice")

	rr := ts.request(t, http.MethodPost, "/api/game/"+gameID+"/add?userId="+userID, nil)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = ts.request(t, http.MethodGet, "/api/game/"+gameID+"/info", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	info := decode[response.GameInfo](t, rr)
	assert.Equal(t, gameID, info.Game.ID)
	require.Len(t, info.Players, 1)
	assert.Equal(t, "Alice", info.Players[0].Name)
}

func TestGameInfoNotFound(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(t, http.MethodGet, "/api/game/NOPE12/info", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "GAME_NOT_FOUND")
}

func TestAddPlayerWithExplicitName(t *testing.T) {
	ts := newTestServer(t)
	gameID := ts.createGame(t, "ABC123")
	userID := ts.createUser(t, "Alice")

	rr := ts.request(t, http.MethodPost, "/api/game/"+gameID+"/add?userId="+userID,
		map[string]string{"name": "Her Player"})
	require.Equal(t, http.StatusCreated, rr.Code)

	player := decode[response.Player](t, rr)
	assert.Equal(t, "Her Player", player.Name)
	assert.Equal(t, userID, player.UserID)
	assert.Equal(t, gameID, player.GameID)
}

func TestAddPlayerRequiresUserID(t *testing.T) {
	ts := newTestServer(t)
	gameID := ts.createGame(t, "ABC123")

	rr := ts.request(t, http.MethodPost, "/api/game/"+gameID+"/add", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAddPlayerUnknownUser(t *testing.T) {
	ts := newTestServer(t)
	gameID := ts.createGame(t, "ABC123")

	rr := ts.request(t, http.MethodPost, "/api/game/"+gameID+"/add?userId=ghost", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "USER_NOT_FOUND")
}

func TestClaimRequiresSessionID(t *testing.T) {
	ts := newTestServer(t)
	gameID := ts.createGame(t, "ABC123")

	rr := ts.request(t, http.MethodPost, "/api/game/"+gameID+"/claim", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestClaimUnboundSession(t *testing.T) {
	ts := newTestServer(t)
	gameID := ts.createGame(t, "ABC123")

	rr := ts.request(t, http.MethodPost, "/api/game/"+gameID+"/claim",
		map[string]string{"sessionId": "sess-1"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "SESSION_NOT_BOUND")
}

func TestNamePlayer(t *testing.T) {
	ts := newTestServer(t)
	gameID := ts.createGame(t, "ABC123")
	userID := ts.createUser(t, "Alice")

	rr := ts.request(t, http.MethodPost, "/api/game/"+gameID+"/add?userId="+userID, nil)
	require.Equal(t, http.StatusCreated, rr.Code)
	playerID := decode[response.Player](t, rr).ID

	rr = ts.request(t, http.MethodPost, "/api/game/"+gameID+"/name",
		map[string]string{"playerId": playerID, "name": "Renamed"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Renamed", decode[response.Player](t, rr).Name)
}

func TestNamePlayerWrongGame(t *testing.T) {
	ts := newTestServer(t)
	game1 := ts.createGame(t, "ABC123")
	game2 := ts.createGame(t, "XYZ789")
	userID := ts.createUser(t, "Alice")

	rr := ts.request(t, http.MethodPost, "/api/game/"+game1+"/add?userId="+userID, nil)
	require.Equal(t, http.StatusCreated, rr.Code)
	playerID := decode[response.Player](t, rr).ID

	rr = ts.request(t, http.MethodPost, "/api/game/"+game2+"/name",
		map[string]string{"playerId": playerID, "name": "Renamed"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "PLAYER_NOT_FOUND")
}

// liveServer runs the router on a real listener so websocket clients can
// dial it alongside plain HTTP requests
type liveServer struct {
	*testServer
	server *httptest.Server
}

func newLiveServer(t *testing.T) *liveServer {
	t.Helper()
	ts := newTestServer(t)
	server := httptest.NewServer(ts.handler)
	t.Cleanup(server.Close)
	return &liveServer{testServer: ts, server: server}
}

func (ls *liveServer) post(t *testing.T, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	resp, err := http.Post(ls.server.URL+path, "application/json", reqBody)
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, buf.Bytes()
}

func (ls *liveServer) dialWS(t *testing.T, gameID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ls.server.URL, "http") + "/ws/game/" + gameID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readWS(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg map[string]any
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestAddPlayerIsAnnouncedToRoom(t *testing.T) {
	ls := newLiveServer(t)
	gameID := ls.createGame(t, "ABC123")
	userID := ls.createUser(t, "Alice")

	conn := ls.dialWS(t, gameID)
	time.Sleep(20 * time.Millisecond)

	resp, body := ls.post(t, "/api/game/"+gameID+"/add?userId="+userID, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var player response.Player
	require.NoError(t, json.Unmarshal(body, &player))

	event := readWS(t, conn)
	assert.Equal(t, string(model.EventAddPlayer), event["type"])
	assert.Equal(t, player.ID, event["playerId"])
	assert.Equal(t, "Alice", event["name"])
}

func TestNamePlayerIsAnnouncedToRoom(t *testing.T) {
	ls := newLiveServer(t)
	gameID := ls.createGame(t, "ABC123")
	userID := ls.createUser(t, "Alice")

	resp, body := ls.post(t, "/api/game/"+gameID+"/add?userId="+userID, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var player response.Player
	require.NoError(t, json.Unmarshal(body, &player))

	conn := ls.dialWS(t, gameID)
	time.Sleep(20 * time.Millisecond)

	resp, _ = ls.post(t, "/api/game/"+gameID+"/name",
		map[string]string{"playerId": player.ID, "name": "Renamed"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	event := readWS(t, conn)
	assert.Equal(t, string(model.EventNamePlayer), event["type"])
	assert.Equal(t, player.ID, event["playerId"])
	assert.Equal(t, "Renamed", event["name"])
}

// TestClaimFlow walks the whole reconnect path: bind a session over the
// websocket, claim over HTTP, drop, rebind with a fresh session and claim
// the same seat back.
func TestClaimFlow(t *testing.T) {
	ls := newLiveServer(t)
	gameID := ls.createGame(t, "ABC123")
	userID := ls.createUser(t, "Alice")

	resp, body := ls.post(t, "/api/game/"+gameID+"/add?userId="+userID, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var player response.Player
	require.NoError(t, json.Unmarshal(body, &player))

	conn := ls.dialWS(t, gameID)
	require.NoError(t, conn.WriteJSON(map[string]string{
		"type":      "sessionUser",
		"sessionId": "sess-1",
		"userId":    userID,
	}))
	readWS(t, conn) // session ack

	resp, body = ls.post(t, "/api/game/"+gameID+"/claim", map[string]string{"sessionId": "sess-1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var claimed response.ClaimResponse
	require.NoError(t, json.Unmarshal(body, &claimed))
	assert.Equal(t, player.ID, claimed.Player.ID)

	// Bind the resolved player, then drop the connection
	require.NoError(t, conn.WriteJSON(map[string]string{
		"type":     "sessionPlayer",
		"playerId": claimed.Player.ID,
	}))
	readWS(t, conn) // player ack
	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool {
		return len(ls.app.Registry.ClaimsInRoom(model.GameID(gameID))) == 0
	}, time.Second, 10*time.Millisecond)

	// Reconnect with a fresh session and recover the same seat
	conn2 := ls.dialWS(t, gameID)
	require.NoError(t, conn2.WriteJSON(map[string]string{
		"type":      "sessionUser",
		"sessionId": "sess-2",
		"userId":    userID,
	}))
	readWS(t, conn2)

	resp, body = ls.post(t, "/api/game/"+gameID+"/claim", map[string]string{"sessionId": "sess-2"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &claimed))
	assert.Equal(t, player.ID, claimed.Player.ID)
}
