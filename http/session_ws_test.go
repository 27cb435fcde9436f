package http

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heartrisk/session"
)

func dialSession(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/session"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readOutbound(t *testing.T, conn *websocket.Conn) session.Outbound {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var out session.Outbound
	require.NoError(t, conn.ReadJSON(&out))
	return out
}

func TestSessionWebSocketFlow(t *testing.T) {
	model := &fakeModel{probability: 0.82}
	server := NewServer(DefaultServerConfig(), Dependencies{Predictor: model})
	srv := httptest.NewServer(server.Handler())
	defer srv.Close()
	defer server.sessions.Close()

	conn := dialSession(t, srv)

	initial := readOutbound(t, conn)
	assert.Equal(t, session.TypeState, initial.Type)
	assert.Equal(t, session.AwaitingInput, initial.State)

	values := make(map[string]interface{}, len(endToEndForm))
	for name := range endToEndForm {
		values[name] = endToEndForm.Get(name)
	}
	require.NoError(t, conn.WriteJSON(session.Inbound{Type: session.TypePredict, Values: values}))

	result := readOutbound(t, conn)
	require.Equal(t, session.TypeResult, result.Type, result.Error)
	assert.Equal(t, session.ShowingResult, result.State)
	require.NotNil(t, result.Record)
	assert.Equal(t, endToEndRecord, *result.Record)
	assert.Equal(t, "Predicted probability of heart disease: 0.820", result.ProbabilityText)

	require.NoError(t, conn.WriteJSON(session.Inbound{Type: session.TypeFieldChanged, Field: "age", Value: 61}))
	changed := readOutbound(t, conn)
	assert.Equal(t, session.TypeState, changed.Type)
	assert.Equal(t, session.AwaitingInput, changed.State)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	bad := readOutbound(t, conn)
	assert.Equal(t, session.TypeError, bad.Type)
	assert.Contains(t, bad.Error, "invalid message")

	assert.Equal(t, 1, server.sessions.Sessions())
}

func TestSessionWebSocketUnavailableWhenHalted(t *testing.T) {
	server := NewServer(DefaultServerConfig(), Dependencies{HaltErr: assert.AnError})
	srv := httptest.NewServer(server.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/session"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 503, resp.StatusCode)
}
