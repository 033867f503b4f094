package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ent0n29/teamsguide/internal/teams"
)

func TestParseClientMessageActivity(t *testing.T) {
	raw := []byte(`{"type":"activity","session_id":"s1","activity":{"type":"message","text":"hello"}}`)
	msg, err := ParseClientMessage(raw)
	require.NoError(t, err)

	frame, ok := msg.(ClientActivity)
	require.True(t, ok, "message type = %T", msg)
	assert.Equal(t, "s1", frame.SessionID)
	assert.Equal(t, teams.TypeMessage, frame.Activity.Type)
	assert.Equal(t, "hello", frame.Activity.Text)
}

func TestParseClientMessageRejects(t *testing.T) {
	cases := map[string]string{
		"no session":     `{"type":"activity","activity":{"type":"message"}}`,
		"no activity":    `{"type":"activity","session_id":"s1"}`,
		"untyped":        `{"type":"activity","session_id":"s1","activity":{"text":"x"}}`,
		"unknown action": `{"type":"client_control","session_id":"s1","action":"reboot"}`,
		"not json":       `{`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseClientMessage([]byte(raw))
			assert.Error(t, err)
		})
	}
}

func TestParseClientMessageRejectsUnknownType(t *testing.T) {
	_, err := ParseClientMessage([]byte(`{"type":"wat"}`))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestParseClientMessageControl(t *testing.T) {
	msg, err := ParseClientMessage([]byte(`{"type":"client_control","session_id":"s1","action":"end"}`))
	require.NoError(t, err)
	control, ok := msg.(ClientControl)
	require.True(t, ok)
	assert.Equal(t, ActionEnd, control.Action)
}

func TestTypeOf(t *testing.T) {
	typ, ok := TypeOf(InvokeResponse{Type: TypeInvokeResponse})
	assert.True(t, ok)
	assert.Equal(t, TypeInvokeResponse, typ)

	_, ok = TypeOf("plain string")
	assert.False(t, ok)
}
