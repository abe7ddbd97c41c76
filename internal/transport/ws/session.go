package ws

import (
	"context"
	"encoding/json"

	"github.com/BenjaminAmos/GooeysQuests/internal/protocol"
	"github.com/BenjaminAmos/GooeysQuests/internal/sim/client"
	"github.com/BenjaminAmos/GooeysQuests/internal/sim/world/logic/rates"
)

type session struct {
	id     string
	client string
	rt     *client.Runtime
	out    chan []byte
	limit  rates.Window // reader goroutine only

	seq uint64 // runtime goroutine only
}

// send queues v for the writer, waiting while the queue is full.
func (s *session) send(ctx context.Context, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	select {
	case s.out <- b:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *session) outline(rt *client.Runtime) protocol.OutlineMsg {
	s.seq++
	msg := protocol.OutlineMsg{Type: protocol.TypeOutline, ProtocolVersion: protocol.Version, Seq: s.seq}
	if r, ok := rt.Outline(); ok {
		lo, hi := r.Min.ToArray(), r.Max.ToArray()
		msg.Visible, msg.Min, msg.Max = true, &lo, &hi
	}
	return msg
}

func reject(ref, code, message string) protocol.AckMsg {
	return protocol.AckMsg{
		Type:            protocol.TypeAck,
		ProtocolVersion: protocol.Version,
		AckFor:          ref,
		Accepted:        false,
		Code:            code,
		Message:         message,
	}
}
