package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AsterZephyr/screego-client/notify"
	"github.com/AsterZephyr/screego-client/ws/outgoing"
	"github.com/gorilla/websocket"
	"github.com/rs/xid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// coordinator 是测试用的协调服务器，handle 处理每一条连接
func coordinator(t *testing.T, handle func(conn *websocket.Conn)) string {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		handle(conn)
	}))
	t.Cleanup(server.Close)
	return "ws" + strings.TrimPrefix(server.URL, "http") + "/stream"
}

func readTyped(t *testing.T, conn *websocket.Conn) Typed {
	typed := Typed{}
	assert.NoError(t, conn.ReadJSON(&typed))
	return typed
}

func writeTyped(t *testing.T, conn *websocket.Conn, typ string, payload interface{}) {
	b, err := json.Marshal(payload)
	assert.NoError(t, err)
	assert.NoError(t, conn.WriteJSON(Typed{Type: typ, Payload: b}))
}

func closeWith(conn *websocket.Conn, reason string) {
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(4000, reason), time.Now().Add(time.Second))
}

func testOptions(url string, n *notices, ids *memRoomIDs) Options {
	return Options{
		URL:          url,
		NewTransport: (&fakeFactory{}).New,
		Notifier:     n,
		RoomIDs:      ids,
		PingPeriod:   50 * time.Millisecond,
		PongWait:     time.Second,
	}
}

func TestConnect_RoomThenDissolved(t *testing.T) {
	local := xid.New()
	intents := make(chan Typed, 1)
	url := coordinator(t, func(conn *websocket.Conn) {
		intents <- readTyped(t, conn)
		writeTyped(t, conn, "room", RoomInfo{ID: "R1", Users: []User{{ID: local, Name: "me", You: true, Owner: true}}})
		writeTyped(t, conn, "bogus", struct{}{})
		writeTyped(t, conn, "room", RoomInfo{ID: "R1", Users: []User{{ID: local, Name: "renamed", You: true, Owner: true}}})
		time.Sleep(100 * time.Millisecond)
		closeWith(conn, CloseRoomDissolved)
		time.Sleep(100 * time.Millisecond)
	})

	n, ids := &notices{}, &memRoomIDs{}
	room, err := Connect(context.Background(), testOptions(url, n, ids), outgoing.Create{Mode: outgoing.RoomModeSTUN, ID: "R1"})
	require.NoError(t, err)

	intent := <-intents
	assert.Equal(t, "create", intent.Type)
	assert.JSONEq(t, `{"mode":"stun","id":"R1","joinIfExist":false,"closeOnOwnerLeave":false}`, string(intent.Payload))
	assert.Equal(t, "R1", ids.Get())

	select {
	case <-room.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("room not closed")
	}
	outcome, ok := room.Outcome()
	require.True(t, ok)
	assert.Equal(t, Informational, outcome.Severity)
	assert.Equal(t, []string{notify.UnknownEvent, notify.RoomDissolvedByOwner}, n.Keys())
	assert.Equal(t, State{}, room.Snapshot())
	assert.Equal(t, "R1", ids.Get())
}

func TestConnect_FirstMessageNotRoom(t *testing.T) {
	reasons := make(chan string, 1)
	url := coordinator(t, func(conn *websocket.Conn) {
		readTyped(t, conn)
		writeTyped(t, conn, "hostice", struct{}{})
		_, _, err := conn.ReadMessage()
		if closeErr, ok := err.(*websocket.CloseError); ok {
			reasons <- closeErr.Text
		}
	})

	n := &notices{}
	_, err := Connect(context.Background(), testOptions(url, n, &memRoomIDs{}), outgoing.Join{ID: "R1"})
	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.ErrorIs(t, err, ErrNotRoom)
	assert.Equal(t, []string{notify.UnknownEvent}, n.Keys())

	select {
	case reason := <-reasons:
		assert.Equal(t, closeUnknownEvent, reason)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed with a reason")
	}
}

func TestConnect_RoomDoesNotExist(t *testing.T) {
	url := coordinator(t, func(conn *websocket.Conn) {
		readTyped(t, conn)
		closeWith(conn, "room with id R1 does not exist")
		time.Sleep(100 * time.Millisecond)
	})

	n, ids := &notices{}, &memRoomIDs{id: "R1"}
	_, err := Connect(context.Background(), testOptions(url, n, ids), outgoing.Join{ID: "R1"})
	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, Failure, connErr.Outcome.Severity)
	assert.Equal(t, "", ids.Get())
	assert.Equal(t, []string{notify.RoomNotExist}, n.Keys())
}

func TestConnect_ErrorAsFirstMessage(t *testing.T) {
	url := coordinator(t, func(conn *websocket.Conn) {
		readTyped(t, conn)
		writeTyped(t, conn, "Error", Error{Message: "room with id R1 does already exist"})
		time.Sleep(100 * time.Millisecond)
	})

	n, ids := &notices{}, &memRoomIDs{id: "R1"}
	_, err := Connect(context.Background(), testOptions(url, n, ids), outgoing.Create{ID: "R1"})
	require.Error(t, err)
	assert.Equal(t, "", ids.Get())
	assert.Equal(t, []string{notify.RoomAlreadyExists}, n.Keys())
}

func TestConnect_DialFails(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	n := &notices{}
	_, err := Connect(context.Background(), testOptions("ws"+strings.TrimPrefix(server.URL, "http")+"/stream", n, &memRoomIDs{}), outgoing.Join{ID: "R1"})
	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, []string{notify.ConnectionFailed}, n.Keys())
}

func TestClient_SendAfterCloseIsDropped(t *testing.T) {
	url := coordinator(t, func(conn *websocket.Conn) {
		_, _, _ = conn.ReadMessage()
	})
	client, err := dial(context.Background(), url, nil, nil)
	require.NoError(t, err)
	go client.startWriteHandler(time.Second)

	client.Close(websocket.CloseNormalClosure, "")
	client.Close(websocket.CloseNormalClosure, "")

	done := make(chan struct{})
	go func() {
		client.Send(outgoing.StartShare{})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("send blocked on a closed channel")
	}
}

func TestDisconnectedFrom(t *testing.T) {
	assert.Equal(t, &Disconnected{Code: 4000, Reason: "x"}, disconnectedFrom(&websocket.CloseError{Code: 4000, Text: "x"}))
	assert.Equal(t, websocket.CloseAbnormalClosure, disconnectedFrom(assert.AnError).Code)
}
