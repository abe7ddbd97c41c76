package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/BenjaminAmos/GooeysQuests/internal/persistence/clipboard"
	"github.com/BenjaminAmos/GooeysQuests/internal/protocol"
	"github.com/BenjaminAmos/GooeysQuests/internal/sim/catalogs"
	"github.com/BenjaminAmos/GooeysQuests/internal/sim/client"
	"github.com/BenjaminAmos/GooeysQuests/internal/sim/tuning"
	"github.com/BenjaminAmos/GooeysQuests/internal/sim/world/logic/rates"
)

type Config struct {
	Catalogs  *catalogs.Catalogs
	Tuning    tuning.Tuning
	Clipboard clipboard.Store
	Logger    *log.Logger
}

type Server struct {
	cfg Config
	log *log.Logger

	upgrader websocket.Upgrader
	sessions atomic.Int64
}

func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{
		cfg: cfg,
		log: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
	return s
}

// Routes serves the control socket and a health probe.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", s.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":               true,
			"protocol_version": protocol.Version,
			"sessions":         s.sessions.Load(),
		})
	})
	return mux
}

func (s *Server) Sessions() int64 { return s.sessions.Load() }

func (s *Server) readTimeout() time.Duration {
	return time.Duration(s.cfg.Tuning.WS.ReadTimeoutSec) * time.Second
}

func (s *Server) writeTimeout() time.Duration {
	return time.Duration(s.cfg.Tuning.WS.WriteTimeoutSec) * time.Second
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sess := s.handshake(conn)
		if sess == nil {
			return
		}
		s.sessions.Add(1)
		defer s.sessions.Add(-1)
		logger := s.log.With("session", sess.id)
		logger.Info("session started", "client", sess.client)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		g, ctx := errgroup.WithContext(ctx)

		g.Go(func() error { return sess.rt.Run(ctx) })

		// Writer goroutine.
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case b := <-sess.out:
					_ = conn.SetWriteDeadline(time.Now().Add(s.writeTimeout()))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return nil
					}
				}
			}
		})

		// Unblocks the reader once anything else stops.
		g.Go(func() error {
			<-ctx.Done()
			_ = conn.Close()
			return nil
		})

		// Reader loop.
		g.Go(func() error {
			defer cancel()
			for {
				_ = conn.SetReadDeadline(time.Now().Add(s.readTimeout()))
				_, msg, err := conn.ReadMessage()
				if err != nil {
					return nil
				}
				if err := s.handleMessage(ctx, sess, msg); err != nil {
					return nil
				}
			}
		})

		_ = g.Wait()
		logger.Info("session ended")
	}
}

func (s *Server) handleMessage(ctx context.Context, sess *session, msg []byte) error {
	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeCmd {
		return sess.send(ctx, reject("", protocol.ErrProtoBadRequest, "expected CMD"))
	}
	var cmd protocol.CmdMsg
	if err := json.Unmarshal(msg, &cmd); err != nil {
		return sess.send(ctx, reject("", protocol.ErrProtoBadRequest, "bad CMD"))
	}
	if cmd.ProtocolVersion != protocol.Version {
		return sess.send(ctx, reject(cmd.ID, protocol.ErrProtoBadRequest, "bad protocol_version"))
	}
	if ok, retry := sess.limit.Allow(time.Now()); !ok {
		return sess.send(ctx, reject(cmd.ID, protocol.ErrRateLimit, fmt.Sprintf("too many commands, retry in %s", retry.Round(time.Millisecond))))
	}

	var (
		ack     protocol.AckMsg
		outline protocol.OutlineMsg
	)
	err = sess.rt.Do(ctx, func(rt *client.Runtime) error {
		ack = execute(rt, cmd)
		outline = sess.outline(rt)
		return nil
	})
	if err != nil {
		return err
	}
	if !ack.Accepted {
		s.log.Debug("command rejected", "session", sess.id, "cmd", cmd.Cmd, "code", ack.Code, "msg", ack.Message)
	}
	if err := sess.send(ctx, ack); err != nil {
		return err
	}
	return sess.send(ctx, outline)
}

func (s *Server) handshake(conn *websocket.Conn) *session {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return nil
	}

	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return nil
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"), time.Now().Add(time.Second))
		return nil
	}
	if hello.ClientName == "" {
		hello.ClientName = "client"
	}

	maxQ := s.cfg.Tuning.WS.MaxQueue
	if maxQ <= 0 {
		maxQ = 8
	}
	id := uuid.NewString()
	var clip clipboard.Session
	if s.cfg.Clipboard != nil {
		clip = clipboard.Session{ID: id, Store: s.cfg.Clipboard, Logger: s.log}
	}
	rt, err := client.New(client.Config{
		Catalogs:       s.cfg.Catalogs,
		InventorySlots: s.cfg.Tuning.InventorySlots,
		OutlineEnabled: s.cfg.Tuning.Outline(),
		Clipboard:      clip,
		Logger:         s.log.With("session", id),
	})
	if err != nil {
		s.log.Error("create runtime", "err", err)
		return nil
	}

	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       id,
		ActorID:         string(rt.Actor()),
		InventorySlots:  rt.Slots(),
		Catalogs: protocol.CatalogDigests{
			BlockPalette:     protocol.DigestRef{Digest: s.cfg.Catalogs.Blocks.PaletteDigest, Count: len(s.cfg.Catalogs.Blocks.Palette)},
			ItemPalette:      protocol.DigestRef{Digest: s.cfg.Catalogs.Items.PaletteDigest, Count: len(s.cfg.Catalogs.Items.Palette)},
			BlueprintsDigest: s.cfg.Catalogs.Blueprints.Digest,
			TuningDigest:     s.cfg.Tuning.Digest,
		},
	}
	if err := writeJSON(conn, welcome); err != nil {
		return nil
	}
	return &session{
		id:     id,
		client: hello.ClientName,
		rt:     rt,
		out:    make(chan []byte, maxQ),
		limit: rates.Window{
			Size: time.Duration(s.cfg.Tuning.WS.CmdWindowMS) * time.Millisecond,
			Max:  s.cfg.Tuning.WS.CmdMax,
		},
	}
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
