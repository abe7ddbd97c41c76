package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/BenjaminAmos/GooeysQuests/internal/protocol"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var (
		url     string
		name    string
		verbose bool
	)
	cmd := &cobra.Command{
		Use:          "bot",
		Short:        "Drive one copy-region session and print each outline",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := log.InfoLevel
			if verbose {
				level = log.DebugLevel
			}
			logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Level: level, Prefix: "bot"})
			return run(cmd.Context(), url, name, logger)
		},
	}
	cmd.Flags().StringVar(&url, "url", "ws://localhost:8080/v1/ws", "ws url")
	cmd.Flags().StringVar(&name, "name", "bot", "client name")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log every message")

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type bot struct {
	conn   *websocket.Conn
	logger *log.Logger
}

func run(ctx context.Context, url, name string, logger *log.Logger) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	b := &bot{conn: conn, logger: logger}
	if err := conn.WriteJSON(protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: protocol.Version, ClientName: name}); err != nil {
		return fmt.Errorf("send HELLO: %w", err)
	}
	var w protocol.WelcomeMsg
	if err := b.read(&w); err != nil {
		return err
	}
	logger.Info("WELCOME", "session", w.SessionID, "actor", w.ActorID, "slots", w.InventorySlots, "palette", w.Catalogs.BlockPalette.Digest)

	ack, err := b.do(protocol.CmdMsg{Cmd: protocol.CmdGiveItem, ItemID: "COPY_REGION_TOOL"})
	if err != nil {
		return err
	}
	if !ack.Accepted || ack.Slot == nil {
		return fmt.Errorf("GIVE_ITEM rejected: %s %s", ack.Code, ack.Message)
	}
	slot := *ack.Slot

	c1, c2, origin := [3]int{0, 0, 0}, [3]int{2, 1, 2}, [3]int{4, 0, 4}
	stone, plank := [3]int{4, 0, 4}, [3]int{5, 1, 5}
	script := []protocol.CmdMsg{
		{Cmd: protocol.CmdSetBlock, Pos: &stone, Block: "STONE"},
		{Cmd: protocol.CmdSetBlock, Pos: &plank, Block: "PLANK"},
		{Cmd: protocol.CmdSelectSlot, Slot: slot},
		{Cmd: protocol.CmdSetTool, Corner1: &c1, Corner2: &c2, Origin: &origin},
		{Cmd: protocol.CmdCopy, Rotation: 90},
		{Cmd: protocol.CmdAction, Action: json.RawMessage(`{"type":"FollowAction"}`)},
		{Cmd: protocol.CmdClearTool},
	}
	for _, cmd := range script {
		if _, err := b.do(cmd); err != nil {
			return err
		}
	}
	return nil
}

// do sends one CMD and reads its ACK and OUTLINE.
func (b *bot) do(cmd protocol.CmdMsg) (protocol.AckMsg, error) {
	cmd.Type = protocol.TypeCmd
	cmd.ProtocolVersion = protocol.Version
	cmd.ID = "C_" + uuid.NewString()[:8]
	if err := b.conn.WriteJSON(cmd); err != nil {
		return protocol.AckMsg{}, fmt.Errorf("send %s: %w", cmd.Cmd, err)
	}
	var ack protocol.AckMsg
	if err := b.read(&ack); err != nil {
		return ack, err
	}
	if ack.Accepted {
		b.logger.Info("ACK", "cmd", cmd.Cmd, "payload_bytes", len(ack.Payload))
	} else {
		b.logger.Warn("ACK", "cmd", cmd.Cmd, "code", ack.Code, "msg", ack.Message)
	}
	var o protocol.OutlineMsg
	if err := b.read(&o); err != nil {
		return ack, err
	}
	if o.Visible {
		b.logger.Info("OUTLINE", "seq", o.Seq, "min", *o.Min, "max", *o.Max)
	} else {
		b.logger.Info("OUTLINE", "seq", o.Seq, "visible", false)
	}
	return ack, nil
}

func (b *bot) read(v any) error {
	_ = b.conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	_, msg, err := b.conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	b.logger.Debug("recv", "msg", string(msg))
	return json.Unmarshal(msg, v)
}
