package http

import (
	"encoding/json"

	"github.com/sochat/sochat-server/internal/core"
	"github.com/sochat/sochat-server/internal/proto"
)

func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error, error) {
	switch inbound.Type {
	case proto.InboundTypeJoinRoom:
		var join proto.RoomData
		if err := json.Unmarshal(inbound.Data, &join); err != nil {
			return nil, nil, err
		}
		if join.Room == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "room is required"}, nil
		}
		return &core.Command{
			Kind: core.CommandJoinRoom,
			Room: join.Room,
		}, nil, nil
	case proto.InboundTypeLeaveRoom:
		var leave proto.RoomData
		if err := json.Unmarshal(inbound.Data, &leave); err != nil {
			return nil, nil, err
		}
		if leave.Room == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "room is required"}, nil
		}
		return &core.Command{
			Kind: core.CommandLeaveRoom,
			Room: leave.Room,
		}, nil, nil
	case proto.InboundTypeMessage:
		var msg proto.MessageData
		if err := json.Unmarshal(inbound.Data, &msg); err != nil {
			return nil, nil, err
		}
		// Exactly one destination: a message is either a room message or a
		// private message, decided here at the boundary.
		switch {
		case msg.Room == "" && msg.Recipient == 0:
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "message needs a room or a recipient"}, nil
		case msg.Room != "" && msg.Recipient != 0:
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "message cannot have both a room and a recipient"}, nil
		case msg.Room != "":
			return &core.Command{
				Kind:    core.CommandSendRoomMessage,
				Room:    msg.Room,
				Content: msg.Content,
			}, nil, nil
		default:
			return &core.Command{
				Kind:        core.CommandSendPrivateMessage,
				RecipientID: msg.Recipient,
				Content:     msg.Content,
			}, nil, nil
		}
	case proto.InboundTypeTyping:
		var typing proto.RoomData
		if err := json.Unmarshal(inbound.Data, &typing); err != nil {
			return nil, nil, err
		}
		if typing.Room == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "room is required"}, nil
		}
		return &core.Command{
			Kind: core.CommandTyping,
			Room: typing.Room,
		}, nil, nil
	case proto.InboundTypeRead:
		var read proto.ReadData
		if err := json.Unmarshal(inbound.Data, &read); err != nil {
			return nil, nil, err
		}
		if read.MsgID == 0 {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "msg_id is required"}, nil
		}
		return &core.Command{
			Kind:      core.CommandMarkRead,
			MessageID: read.MsgID,
		}, nil, nil
	default:
		return nil, &proto.Error{Code: "invalid_message", Msg: "unknown message type"}, nil
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventRoomMessage:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventNameMessage,
			Data: proto.EventMessage{
				ID:      event.Message.ID,
				Sender:  event.Message.Sender,
				Content: event.Message.Content,
				Room:    event.Message.Room,
				TS:      event.Message.CreatedAt.Unix(),
			},
		}
	case core.EventPrivateMessage:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventNamePrivateMessage,
			Data: proto.EventPrivateMessage{
				ID:      event.Message.ID,
				Sender:  event.Message.Sender,
				Content: event.Message.Content,
				TS:      event.Message.CreatedAt.Unix(),
			},
		}
	case core.EventTyping:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventNameTyping,
			Data: proto.EventTyping{
				Username: event.Username,
			},
		}
	case core.EventReadReceipt:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventNameReadReceipt,
			Data: proto.EventReadReceipt{
				MsgID: event.MessageID,
			},
		}
	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: event.Error.Code, Msg: event.Error.Message},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}
