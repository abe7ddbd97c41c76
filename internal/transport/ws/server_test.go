package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/BenjaminAmos/GooeysQuests/internal/persistence/clipboard"
	"github.com/BenjaminAmos/GooeysQuests/internal/protocol"
	"github.com/BenjaminAmos/GooeysQuests/internal/sim/catalogs"
	"github.com/BenjaminAmos/GooeysQuests/internal/sim/tuning"
	"github.com/BenjaminAmos/GooeysQuests/internal/sim/world/logic/blueprint"
)

func newTestServer(t *testing.T) (*httptest.Server, *clipboard.Memory) {
	t.Helper()
	return newTestServerWith(t, tuning.Defaults())
}

func newTestServerWith(t *testing.T, tune tuning.Tuning) (*httptest.Server, *clipboard.Memory) {
	t.Helper()
	cats, err := catalogs.Load("../../../configs")
	if err != nil {
		t.Fatalf("catalogs: %v", err)
	}
	mem := clipboard.NewMemory(8)
	s := NewServer(Config{Catalogs: cats, Tuning: tune, Clipboard: mem})
	ts := httptest.NewServer(s.Routes())
	t.Cleanup(ts.Close)
	return ts, mem
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readJSON(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, b, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		t.Fatalf("decode %s: %v", b, err)
	}
}

func hello(t *testing.T, conn *websocket.Conn) protocol.WelcomeMsg {
	t.Helper()
	if err := conn.WriteJSON(protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: protocol.Version, ClientName: "test"}); err != nil {
		t.Fatalf("hello: %v", err)
	}
	var w protocol.WelcomeMsg
	readJSON(t, conn, &w)
	if w.Type != protocol.TypeWelcome || w.SessionID == "" || w.ActorID == "" {
		t.Fatalf("welcome=%+v", w)
	}
	return w
}

func roundTrip(t *testing.T, conn *websocket.Conn, cmd protocol.CmdMsg) (protocol.AckMsg, protocol.OutlineMsg) {
	t.Helper()
	cmd.Type = protocol.TypeCmd
	cmd.ProtocolVersion = protocol.Version
	if err := conn.WriteJSON(cmd); err != nil {
		t.Fatalf("write %s: %v", cmd.Cmd, err)
	}
	var ack protocol.AckMsg
	readJSON(t, conn, &ack)
	if ack.Type != protocol.TypeAck || ack.AckFor != cmd.ID {
		t.Fatalf("ack=%+v for %s", ack, cmd.ID)
	}
	var o protocol.OutlineMsg
	readJSON(t, conn, &o)
	if o.Type != protocol.TypeOutline {
		t.Fatalf("expected OUTLINE, got %+v", o)
	}
	return ack, o
}

func TestServer_OutlineScenario(t *testing.T) {
	ts, mem := newTestServer(t)
	conn := dial(t, ts)
	w := hello(t, conn)
	if w.InventorySlots != tuning.Defaults().InventorySlots {
		t.Fatalf("slots=%d", w.InventorySlots)
	}

	ack, o := roundTrip(t, conn, protocol.CmdMsg{ID: "c1", Cmd: protocol.CmdGiveItem, ItemID: "COPY_REGION_TOOL"})
	if !ack.Accepted || ack.Slot == nil || o.Visible {
		t.Fatalf("give ack=%+v outline=%+v", ack, o)
	}
	slot := *ack.Slot

	ack, o = roundTrip(t, conn, protocol.CmdMsg{ID: "c2", Cmd: protocol.CmdSelectSlot, Slot: slot})
	if !ack.Accepted || o.Visible {
		t.Fatalf("select ack=%+v outline=%+v", ack, o)
	}

	c1, c2, origin := [3]int{0, 0, 0}, [3]int{1, 1, 1}, [3]int{5, 5, 5}
	ack, o = roundTrip(t, conn, protocol.CmdMsg{ID: "c3", Cmd: protocol.CmdSetTool, Corner1: &c1, Corner2: &c2, Origin: &origin})
	if !ack.Accepted || !o.Visible || *o.Min != [3]int{5, 5, 5} || *o.Max != [3]int{6, 6, 6} {
		t.Fatalf("arm ack=%+v outline=%+v", ack, o)
	}

	_, o = roundTrip(t, conn, protocol.CmdMsg{ID: "c4", Cmd: protocol.CmdSetBlock, Pos: &origin, Block: "STONE"})
	if !o.Visible {
		t.Fatalf("unrelated command must keep the outline")
	}

	ack, _ = roundTrip(t, conn, protocol.CmdMsg{ID: "c5", Cmd: protocol.CmdCopy})
	if !ack.Accepted || ack.Payload == "" {
		t.Fatalf("copy ack=%+v", ack)
	}
	if _, err := blueprint.ParseCopy(ack.Payload); err != nil {
		t.Fatalf("copy payload: %v", err)
	}
	if e, ok := mem.Latest(); !ok || e.Payload != ack.Payload || e.Session != w.SessionID {
		t.Fatalf("clipboard entry=%+v", e)
	}

	ack, o = roundTrip(t, conn, protocol.CmdMsg{ID: "c6", Cmd: protocol.CmdSelectSlot, Slot: slot + 1})
	if !ack.Accepted || o.Visible || o.Min != nil {
		t.Fatalf("empty slot ack=%+v outline=%+v", ack, o)
	}
}

func TestServer_RejectsBadCommands(t *testing.T) {
	ts, _ := newTestServer(t)
	conn := dial(t, ts)
	hello(t, conn)

	cases := []struct {
		cmd  protocol.CmdMsg
		code string
	}{
		{protocol.CmdMsg{ID: "b1", Cmd: "TELEPORT"}, protocol.ErrBadRequest},
		{protocol.CmdMsg{ID: "b2", Cmd: protocol.CmdGiveItem, ItemID: "NOPE"}, protocol.ErrBadRequest},
		{protocol.CmdMsg{ID: "b3", Cmd: protocol.CmdSetTool}, protocol.ErrBadRequest},
		{protocol.CmdMsg{ID: "b4", Cmd: protocol.CmdCopy}, protocol.ErrInvalidTarget},
		{protocol.CmdMsg{ID: "b5", Cmd: protocol.CmdAction, Action: json.RawMessage(`{"type":"Nope"}`)}, protocol.ErrBadRequest},
	}
	for _, tc := range cases {
		ack, _ := roundTrip(t, conn, tc.cmd)
		if ack.Accepted || ack.Code != tc.code {
			t.Fatalf("%s: ack=%+v want code %s", tc.cmd.ID, ack, tc.code)
		}
	}

	ack, _ := roundTrip(t, conn, protocol.CmdMsg{ID: "a1", Cmd: protocol.CmdAction, Action: json.RawMessage(`{"type":"FollowAction","x":1}`)})
	if !ack.Accepted || string(ack.Action) != `{"type":"FollowAction"}` {
		t.Fatalf("follow ack=%+v", ack)
	}

	anchor := [3]int{20, 0, 20}
	ack, _ = roundTrip(t, conn, protocol.CmdMsg{ID: "p1", Cmd: protocol.CmdPaste, Pos: &anchor, BlueprintID: "chest_nook", Rotation: 90})
	if !ack.Accepted || ack.Placed == nil || !*ack.Placed {
		t.Fatalf("paste ack=%+v", ack)
	}
}

func TestServer_HandshakeRequiresHello(t *testing.T) {
	ts, _ := newTestServer(t)
	conn := dial(t, ts)
	if err := conn.WriteJSON(protocol.CmdMsg{Type: protocol.TypeCmd, ProtocolVersion: protocol.Version, ID: "x"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("expected the server to close the connection")
	}
}

func TestServer_RateLimit(t *testing.T) {
	tune := tuning.Defaults()
	tune.WS.CmdWindowMS = 60_000
	tune.WS.CmdMax = 2
	ts, _ := newTestServerWith(t, tune)
	conn := dial(t, ts)
	hello(t, conn)

	for _, id := range []string{"r1", "r2"} {
		if ack, _ := roundTrip(t, conn, protocol.CmdMsg{ID: id, Cmd: protocol.CmdClearTool}); ack.Code == protocol.ErrRateLimit {
			t.Fatalf("%s limited too early", id)
		}
	}
	cmd := protocol.CmdMsg{Type: protocol.TypeCmd, ProtocolVersion: protocol.Version, ID: "r3", Cmd: protocol.CmdClearTool}
	if err := conn.WriteJSON(cmd); err != nil {
		t.Fatalf("write: %v", err)
	}
	var ack protocol.AckMsg
	readJSON(t, conn, &ack)
	if ack.Accepted || ack.Code != protocol.ErrRateLimit || ack.AckFor != "r3" {
		t.Fatalf("ack=%+v", ack)
	}
}

func TestServer_Healthz(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var body struct {
		OK              bool   `json:"ok"`
		ProtocolVersion string `json:"protocol_version"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.OK || body.ProtocolVersion != protocol.Version {
		t.Fatalf("healthz=%+v", body)
	}
}
