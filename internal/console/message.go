package console

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/zaqqye/room_console/internal/capture"
)

// Server -> browser message types.
const (
	MsgRooms     = "rooms"
	MsgListError = "list_error"
	MsgCamera    = "camera"
	MsgAlert     = "alert"
	MsgSaving    = "saving"
	MsgQR        = "qr"
	MsgDevices   = "devices"
	MsgModal     = "modal"
	MsgOpenURL   = "open_url"
	MsgBanner    = "banner"
)

// Browser -> server command types.
const (
	CmdToggleCamera = "toggle_camera"
	CmdDeleteRoom   = "delete_room"
	CmdSubmitRoom   = "submit_room"
	CmdCloseQR      = "close_qr"
	CmdOpenPreview  = "open_preview"
	CmdSelectDevice = "select_device"
	CmdClosePreview = "close_preview"
	CmdListDevices  = "list_devices"
)

type AlertLevel string

const (
	AlertSuccess AlertLevel = "success"
	AlertWarning AlertLevel = "warning"
	AlertError   AlertLevel = "error"
)

type Message struct {
	Type        string               `json:"type"`
	HTML        string               `json:"html,omitempty"`
	RoomID      string               `json:"room_id,omitempty"`
	Active      bool                 `json:"active,omitempty"`
	Label       string               `json:"label,omitempty"`
	StreamURL   string               `json:"stream_url,omitempty"`
	Level       AlertLevel           `json:"level,omitempty"`
	Title       string               `json:"title,omitempty"`
	Text        string               `json:"text,omitempty"`
	Visible     bool                 `json:"visible,omitempty"`
	SecondsLeft int                  `json:"seconds_left,omitempty"`
	Image       string               `json:"image,omitempty"`
	Devices     []capture.DeviceInfo `json:"devices,omitempty"`
	URL         string               `json:"url,omitempty"`
}

func alert(level AlertLevel, title, text string) Message {
	return Message{Type: MsgAlert, Level: level, Title: title, Text: text}
}

// Sink delivers messages to the page's browser.
type Sink interface {
	Send(Message)
}

// SinkFunc adapts a func to Sink.
type SinkFunc func(Message)

func (f SinkFunc) Send(m Message) { f(m) }

// Executor runs fn on the page's event loop.
type Executor func(fn func())

func direct(fn func()) { fn() }

type Command struct {
	Type      string `json:"type"`
	RoomID    Ref    `json:"room_id"`
	Name      string `json:"name"`
	CameraID  Ref    `json:"camera_id"`
	DeviceID  Ref    `json:"device_id"`
	CameraRef string `json:"camera_ref"`
	Room      string `json:"room"`
	Admin     string `json:"admin"`
	Expire    Ref    `json:"expire"`
}

const maxRefLen = 256

var errBadRef = errors.New("ref must be a string or number")

// Ref is a room id, camera id or device index read from a data attribute.
// Browsers send those as strings or numbers depending on how the attribute
// was parsed; null and blank both mean "not set".
type Ref string

func (r *Ref) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	var v string
	switch t := tok.(type) {
	case nil:
		*r = ""
		return nil
	case string:
		v = strings.TrimSpace(t)
	case json.Number:
		v = t.String()
	default:
		return fmt.Errorf("%w: got %s", errBadRef, bytes.TrimSpace(data))
	}
	if len(v) > maxRefLen {
		return fmt.Errorf("ref longer than %d bytes", maxRefLen)
	}
	*r = Ref(v)
	return nil
}

func (r Ref) String() string { return string(r) }
