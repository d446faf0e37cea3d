package notify

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageWireFormat(t *testing.T) {
	b, err := json.Marshal(NewMessage(UsernameChanged{PrevName: "bob", NewName: "bob2"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"USERNAME_CHANGED","data":{"prev_name":"bob","new_name":"bob2"}}`, string(b))

	b, err = json.Marshal(NewMessage(StatusChanged{UserId: 3, Name: "cat", Status: 1}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"STATUS_CHANGED","data":{"user_id":3,"name":"cat","status":1}}`, string(b))
}

func TestMessageDecodeEveryKind(t *testing.T) {
	for _, p := range []Payload{
		UsernameChanged{PrevName: "a", NewName: "b"},
		StatusChanged{UserId: 1, Name: "a", Status: 0},
		FriendRemoved{Name: "a"},
		RequestReceived{From: "a"},
		RequestAccepted{Name: "a"},
		RequestRefused{Name: "a"},
		RequestCanceled{Name: "a"},
	} {
		b, err := json.Marshal(NewMessage(p))
		require.NoError(t, err)
		var got Message
		require.NoError(t, json.Unmarshal(b, &got), p.Type())
		assert.Equal(t, p, got.Payload)
	}
}

func TestMessageDecodeRejectsUnknownType(t *testing.T) {
	var m Message
	assert.Error(t, json.Unmarshal([]byte(`{"type":"NOPE","data":{}}`), &m))
	_, err := json.Marshal(Message{})
	assert.Error(t, err)
}
