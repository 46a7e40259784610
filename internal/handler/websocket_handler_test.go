package handler

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"digitizer-service/internal/model"
)

func dialEvents(t *testing.T, env *testEnv, query string) (*WebSocketHandler, *websocket.Conn) {
	t.Helper()
	ws := NewWebSocketHandler(env.svc, env.bus, []string{"*"}, zap.NewNop())
	router := gin.New()
	ws.RegisterRoutes(router.Group("/ws"))

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/events" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	waitFor(t, func() bool { return ws.GetConnectionStats().TotalConnections == 1 })
	return ws, conn
}

func readMessage(t *testing.T, conn *websocket.Conn) WebSocketMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg WebSocketMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestWebSocketForwardsSubscribedEvents(t *testing.T) {
	env := newTestEnv(t, "")
	_, conn := dialEvents(t, env, "?topic=CAPTURE_COMPLETED")

	env.bus.PublishEvent(model.NewEvent(model.EventDigitizerOpened, "test", nil))
	env.bus.PublishEvent(model.NewEvent(model.EventCaptureCompleted, "test", model.JSONObject{"bytes": 10}))

	msg := readMessage(t, conn)
	if msg.Type != "digitizer_event" {
		t.Fatalf("unexpected message type %q", msg.Type)
	}
	data := msg.Data.(map[string]interface{})
	if data["event_type"] != string(model.EventCaptureCompleted) {
		t.Fatalf("filtered event leaked through: %v", data["event_type"])
	}
}

func TestWebSocketPingAndCommand(t *testing.T) {
	env := newTestEnv(t, "")
	_, conn := dialEvents(t, env, "?topic=NONE")

	if err := conn.WriteJSON(WebSocketMessage{Type: "ping", RequestID: "p1"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if msg := readMessage(t, conn); msg.Type != "pong" || msg.RequestID != "p1" {
		t.Fatalf("unexpected reply %+v", msg)
	}

	err := conn.WriteJSON(WebSocketMessage{
		Type:      "digitizer_command",
		Data:      map[string]interface{}{"command": "status"},
		RequestID: "s1",
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	msg := readMessage(t, conn)
	if msg.Type != "command_response" || msg.RequestID != "s1" {
		t.Fatalf("unexpected reply %+v", msg)
	}
	if ok := msg.Data.(map[string]interface{})["success"]; ok != true {
		t.Fatalf("status command failed: %v", msg.Data)
	}

	if err := conn.WriteJSON(WebSocketMessage{Type: "reboot"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if msg := readMessage(t, conn); msg.Type != "error" {
		t.Fatalf("expected error reply, got %+v", msg)
	}
}
