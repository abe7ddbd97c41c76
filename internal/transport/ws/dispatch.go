package ws

import (
	"errors"

	"github.com/BenjaminAmos/GooeysQuests/internal/protocol"
	"github.com/BenjaminAmos/GooeysQuests/internal/sim/client"
	"github.com/BenjaminAmos/GooeysQuests/internal/sim/world/kernel/model"
)

func vecPtr(a *[3]int) *model.Vec3i {
	if a == nil {
		return nil
	}
	v := model.Vec3iFromArray(*a)
	return &v
}

func missing(fields ...*[3]int) bool {
	for _, f := range fields {
		if f == nil {
			return true
		}
	}
	return false
}

// execute runs one command on the runtime goroutine.
func execute(rt *client.Runtime, cmd protocol.CmdMsg) protocol.AckMsg {
	ack := protocol.AckMsg{Type: protocol.TypeAck, ProtocolVersion: protocol.Version, AckFor: cmd.ID, Accepted: true}
	var err error

	switch cmd.Cmd {
	case protocol.CmdSelectSlot:
		err = rt.SelectSlot(cmd.Slot)
	case protocol.CmdGiveItem:
		var (
			id   model.EntityID
			slot int
		)
		id, slot, err = rt.GiveItem(cmd.ItemID)
		if err == nil {
			ack.ItemEntity, ack.Slot = string(id), &slot
		}
	case protocol.CmdSetTool:
		if missing(cmd.Corner1, cmd.Corner2) {
			return reject(cmd.ID, protocol.ErrBadRequest, "SET_TOOL needs corner1 and corner2")
		}
		err = rt.SetTool(*vecPtr(cmd.Corner1), *vecPtr(cmd.Corner2), vecPtr(cmd.Origin))
	case protocol.CmdClearTool:
		err = rt.ClearTool()
	case protocol.CmdSetBlock:
		if missing(cmd.Pos) {
			return reject(cmd.ID, protocol.ErrBadRequest, "SET_BLOCK needs pos")
		}
		err = rt.SetBlock(*vecPtr(cmd.Pos), cmd.Block)
	case protocol.CmdFill:
		if missing(cmd.Min, cmd.Max) {
			return reject(cmd.ID, protocol.ErrBadRequest, "FILL needs min and max")
		}
		_, err = rt.Fill(*vecPtr(cmd.Min), *vecPtr(cmd.Max), cmd.Block)
	case protocol.CmdCopy:
		ack.Payload, err = rt.Copy(cmd.Rotation, cmd.Mirror)
	case protocol.CmdPaste:
		if missing(cmd.Pos) {
			return reject(cmd.ID, protocol.ErrBadRequest, "PASTE needs pos")
		}
		var res client.PasteResult
		res, err = rt.Paste(*vecPtr(cmd.Pos), cmd.Rotation, cmd.BlueprintID, cmd.Document)
		if err == nil {
			ack.Placed = &res.Placed
			if len(res.Materials) > 0 {
				ack.Materials = make(map[string]int, len(res.Materials))
				for _, m := range res.Materials {
					ack.Materials[m.Item] = m.Count
				}
			}
		}
	case protocol.CmdAction:
		var a protocol.Action
		a, err = rt.Follow(cmd.Action)
		if err == nil {
			ack.Action, err = protocol.EncodeAction(a)
		}
	default:
		return reject(cmd.ID, protocol.ErrBadRequest, "unknown cmd "+cmd.Cmd)
	}

	if err != nil {
		var ce *protocol.CodeError
		if errors.As(err, &ce) {
			return reject(cmd.ID, ce.Code, ce.Message)
		}
		return reject(cmd.ID, protocol.ErrInternal, err.Error())
	}
	return ack
}
