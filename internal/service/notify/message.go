// Package notify queues per-recipient notifications and routes them to a live connection when one exists.
package notify

import (
	"encoding/json"
	"fmt"

	"usermanagement_server/pkg/enum/message/message_type_enum"
)

// Payload is one of the notification bodies below.
type Payload interface {
	Type() string
}

type UsernameChanged struct {
	PrevName string `json:"prev_name"`
	NewName  string `json:"new_name"`
}

type StatusChanged struct {
	UserId int64  `json:"user_id"`
	Name   string `json:"name"`
	Status int8   `json:"status"`
}

type FriendRemoved struct {
	Name string `json:"name"`
}

type RequestReceived struct {
	From string `json:"from"`
}

type RequestAccepted struct {
	Name string `json:"name"`
}

type RequestRefused struct {
	Name string `json:"name"`
}

type RequestCanceled struct {
	Name string `json:"name"`
}

func (UsernameChanged) Type() string { return message_type_enum.USERNAME_CHANGED }
func (StatusChanged) Type() string   { return message_type_enum.STATUS_CHANGED }
func (FriendRemoved) Type() string   { return message_type_enum.FRIEND_REMOVED }
func (RequestReceived) Type() string { return message_type_enum.REQUEST_RECEIVED }
func (RequestAccepted) Type() string { return message_type_enum.REQUEST_ACCEPTED }
func (RequestRefused) Type() string  { return message_type_enum.REQUEST_REFUSED }
func (RequestCanceled) Type() string { return message_type_enum.REQUEST_CANCELED }

// Message is the unit stored in a queue and sent over the wire as {"type": ..., "data": ...}.
type Message struct {
	Payload Payload
}

// NewMessage wraps p.
func NewMessage(p Payload) Message {
	return Message{Payload: p}
}

// Type returns the payload's type tag.
func (m Message) Type() string {
	if m.Payload == nil {
		return ""
	}
	return m.Payload.Type()
}

type wireMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func (m Message) MarshalJSON() ([]byte, error) {
	if m.Payload == nil {
		return nil, fmt.Errorf("notify: message without payload")
	}
	data, err := json.Marshal(m.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireMessage{Type: m.Payload.Type(), Data: data})
}

func (m *Message) UnmarshalJSON(b []byte) error {
	var w wireMessage
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	p, err := decodePayload(w.Type, w.Data)
	if err != nil {
		return err
	}
	m.Payload = p
	return nil
}

func decodePayload(kind string, data json.RawMessage) (Payload, error) {
	switch kind {
	case message_type_enum.USERNAME_CHANGED:
		return decodeAs[UsernameChanged](data)
	case message_type_enum.STATUS_CHANGED:
		return decodeAs[StatusChanged](data)
	case message_type_enum.FRIEND_REMOVED:
		return decodeAs[FriendRemoved](data)
	case message_type_enum.REQUEST_RECEIVED:
		return decodeAs[RequestReceived](data)
	case message_type_enum.REQUEST_ACCEPTED:
		return decodeAs[RequestAccepted](data)
	case message_type_enum.REQUEST_REFUSED:
		return decodeAs[RequestRefused](data)
	case message_type_enum.REQUEST_CANCELED:
		return decodeAs[RequestCanceled](data)
	default:
		return nil, fmt.Errorf("notify: unknown message type %q", kind)
	}
}

func decodeAs[T Payload](data json.RawMessage) (Payload, error) {
	var p T
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return p, nil
}
