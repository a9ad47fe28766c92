package console

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommand_RefFields(t *testing.T) {
	var cmd Command
	require.NoError(t, json.Unmarshal([]byte(`{"type":"toggle_camera","room_id":" abc ","camera_id":2}`), &cmd))
	assert.Equal(t, CmdToggleCamera, cmd.Type)
	assert.Equal(t, "abc", cmd.RoomID.String())
	assert.Equal(t, "2", cmd.CameraID.String())

	cmd = Command{}
	require.NoError(t, json.Unmarshal([]byte(`{"type":"select_device","device_id":null}`), &cmd))
	assert.Empty(t, cmd.DeviceID.String())

	assert.Error(t, json.Unmarshal([]byte(`{"room_id":{"x":1}}`), &cmd))
	assert.Error(t, json.Unmarshal([]byte(`{"camera_id":true}`), &cmd))
	assert.Error(t, json.Unmarshal([]byte(`{"room_id":"`+strings.Repeat("a", maxRefLen+1)+`"}`), &cmd))
}

func TestMessage_OmitsEmptyFields(t *testing.T) {
	data, err := json.Marshal(Message{Type: MsgQR})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"qr"}`, string(data))
}

func TestParseMode(t *testing.T) {
	for _, m := range []PageMode{ModeRooms, ModeReport, ModeCreate} {
		got, err := ParseMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := ParseMode("admin")
	assert.Error(t, err)
	assert.True(t, ModeRooms.Live())
	assert.False(t, ModeReport.Live())
}
