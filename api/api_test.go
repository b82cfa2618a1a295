package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mqy/minichat/room"
	"github.com/mqy/minichat/store"
	store_mock "github.com/mqy/minichat/store/mock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	t       *testing.T
	handler http.Handler
	store   store.IRoomStore
}

func newTestServer(t *testing.T) *testServer {
	s, err := store.OpenBolt(filepath.Join(t.TempDir(), "room.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	srv := NewServer(room.NewService(s, nil), nil, &Config{Addr: "127.0.0.1:0", CORSOrigin: "*"})
	return &testServer{t: t, handler: srv.Handler(), store: s}
}

func (ts *testServer) do(method, path, user, body string) *httptest.ResponseRecorder {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		r.Header.Set("user", user)
	}
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, r)
	return w
}

func (ts *testServer) messages(user, limit string) []store.Message {
	w := ts.do("GET", "/messages?limit="+limit, user, "")
	require.Equal(ts.t, http.StatusOK, w.Code)
	var out []store.Message
	require.NoError(ts.t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestRegisterParticipant(t *testing.T) {
	ts := newTestServer(t)

	assert.Equal(t, http.StatusCreated, ts.do("POST", "/participants", "", `{"name":"Alice"}`).Code)
	assert.Equal(t, http.StatusConflict, ts.do("POST", "/participants", "", `{"name":"Alice"}`).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, ts.do("POST", "/participants", "", `{"name":""}`).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, ts.do("POST", "/participants", "", `{}`).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, ts.do("POST", "/participants", "", `{"name":5}`).Code)

	w := ts.do("GET", "/participants", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var participants []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &participants))
	require.Len(t, participants, 1)
	assert.Equal(t, "Alice", participants[0]["name"])
	assert.Contains(t, participants[0], "lastStatus")
	assert.Contains(t, participants[0], "id")

	msgs := ts.messages("Alice", "10")
	require.Len(t, msgs, 1)
	assert.Equal(t, store.KindStatus, msgs[0].Kind)
	assert.Equal(t, store.RoomBroadcast, msgs[0].To)
}

func TestEmptyParticipantsIsArray(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do("GET", "/participants", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestSendMessage(t *testing.T) {
	ts := newTestServer(t)
	require.Equal(t, http.StatusCreated, ts.do("POST", "/participants", "", `{"name":"Alice"}`).Code)

	body := `{"to":"Todos","text":"hello","type":"message"}`
	assert.Equal(t, http.StatusConflict, ts.do("POST", "/messages", "Mallory", body).Code)
	assert.Equal(t, http.StatusConflict, ts.do("POST", "/messages", "", body).Code)
	// unknown sender wins over a bad body.
	assert.Equal(t, http.StatusConflict, ts.do("POST", "/messages", "Mallory", `{"to":""}`).Code)

	assert.Equal(t, http.StatusUnprocessableEntity, ts.do("POST", "/messages", "Alice", `{"to":"Todos","text":"hello","type":"status"}`).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, ts.do("POST", "/messages", "Alice", `{"to":"","text":"hello","type":"message"}`).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, ts.do("POST", "/messages", "Alice", `{"to":"Todos","text":"","type":"message"}`).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, ts.do("POST", "/messages", "Alice", `not json`).Code)

	w := ts.do("POST", "/messages", "Alice", body)
	require.Equal(t, http.StatusCreated, w.Code)

	msgs := ts.messages("Bob", "10")
	require.Len(t, msgs, 2)
	assert.Equal(t, "hello", msgs[1].Text)
	assert.Equal(t, "Alice", msgs[1].From)
}

func TestGetMessagesVisibilityAndLimit(t *testing.T) {
	ts := newTestServer(t)
	for _, name := range []string{"Alice", "Bob", "Carol"} {
		require.Equal(t, http.StatusCreated, ts.do("POST", "/participants", "", `{"name":"`+name+`"}`).Code)
	}
	require.Equal(t, http.StatusCreated, ts.do("POST", "/messages", "Bob", `{"to":"Carol","text":"secret","type":"private_message"}`).Code)
	require.Equal(t, http.StatusCreated, ts.do("POST", "/messages", "Bob", `{"to":"Carol","text":"public","type":"message"}`).Code)

	alice := ts.messages("Alice", "100")
	require.Len(t, alice, 4)
	for _, m := range alice {
		assert.NotEqual(t, "secret", m.Text)
	}

	carol := ts.messages("Carol", "2")
	require.Len(t, carol, 2)
	assert.Equal(t, "secret", carol[0].Text)
	assert.Equal(t, "public", carol[1].Text)

	assert.Empty(t, ts.messages("Alice", ""))
	assert.Empty(t, ts.messages("Alice", "many"))
	assert.Empty(t, ts.messages("Alice", "-1"))

	w := ts.do("GET", "/messages", "Alice", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestStatus(t *testing.T) {
	ts := newTestServer(t)
	require.Equal(t, http.StatusCreated, ts.do("POST", "/participants", "", `{"name":"Alice"}`).Code)

	assert.Equal(t, http.StatusOK, ts.do("POST", "/status", "Alice", "").Code)
	assert.Equal(t, http.StatusNotFound, ts.do("POST", "/status", "Bob", "").Code)
	assert.Equal(t, http.StatusNotFound, ts.do("POST", "/status", "", "").Code)
}

func TestDelete(t *testing.T) {
	ts := newTestServer(t)
	require.Equal(t, http.StatusCreated, ts.do("POST", "/participants", "", `{"name":"Alice"}`).Code)

	msgs := ts.messages("Alice", "1")
	require.Len(t, msgs, 1)

	w := ts.do("DELETE", "/mensagens/"+msgs[0].ID, "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "message deleted", w.Body.String())
	assert.Empty(t, ts.messages("Alice", "1"))

	assert.Equal(t, http.StatusOK, ts.do("DELETE", "/mensagens/unknown", "", "").Code)

	participants, err := ts.store.FindParticipants(context.Background(), store.ParticipantFilter{})
	require.NoError(t, err)
	require.Len(t, participants, 1)

	w = ts.do("DELETE", "/participantes/"+participants[0].ID, "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "participant deleted", w.Body.String())
	assert.Equal(t, http.StatusOK, ts.do("DELETE", "/participantes/unknown", "", "").Code)

	w = ts.do("GET", "/participants", "", "")
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestStoreFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	boom := errors.New("mysql: server has gone away")
	storeMock := store_mock.NewMockIRoomStore(ctrl)
	storeMock.EXPECT().FindParticipants(gomock.Any(), gomock.Any()).Return(nil, boom).AnyTimes()
	storeMock.EXPECT().FindMessages(gomock.Any()).Return(nil, boom).AnyTimes()
	storeMock.EXPECT().DeleteMessage(gomock.Any(), gomock.Any()).Return(boom).AnyTimes()
	storeMock.EXPECT().DeleteParticipant(gomock.Any(), gomock.Any()).Return(boom).AnyTimes()

	ts := &testServer{t: t, handler: NewServer(room.NewService(storeMock, nil), nil, &Config{}).Handler()}

	w := ts.do("POST", "/participants", "", `{"name":"Alice"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "gone away")

	assert.Equal(t, http.StatusInternalServerError, ts.do("GET", "/participants", "", "").Code)
	assert.Equal(t, http.StatusInternalServerError, ts.do("POST", "/messages", "Alice", `{"to":"Todos","text":"x","type":"message"}`).Code)
	assert.Equal(t, http.StatusInternalServerError, ts.do("GET", "/messages?limit=3", "Alice", "").Code)
	// the heartbeat path reports store failures as not found.
	assert.Equal(t, http.StatusNotFound, ts.do("POST", "/status", "Alice", "").Code)
	assert.Equal(t, http.StatusInternalServerError, ts.do("DELETE", "/mensagens/x", "", "").Code)
	assert.Equal(t, http.StatusInternalServerError, ts.do("DELETE", "/participantes/x", "", "").Code)
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do("OPTIONS", "/participants", "", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.do("GET", "/participants", "", "")
	w := ts.do("GET", "/metrics", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "minichat_http_requests_total")
}

func TestRunAndShutdown(t *testing.T) {
	s, err := store.OpenBolt(filepath.Join(t.TempDir(), "room.db"))
	require.NoError(t, err)
	defer s.Close()

	srv := NewServer(room.NewService(s, nil), nil, &Config{Addr: "127.0.0.1:0"})
	require.NoError(t, srv.Listen())

	ctx, cancel := context.WithCancel(context.Background())
	stopC := make(chan struct{}, 1)
	go srv.Run(ctx, stopC)

	resp, err := http.Get("http://" + srv.Addr() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	<-stopC
}
