package console

import "fmt"

// PageMode selects the page-specific component. It is resolved once per
// route and handed to the page constructor.
type PageMode int

const (
	ModeRooms PageMode = iota + 1
	ModeReport
	ModeCreate
)

func (m PageMode) String() string {
	switch m {
	case ModeRooms:
		return "rooms"
	case ModeReport:
		return "report"
	case ModeCreate:
		return "create"
	}
	return "unknown"
}

func ParseMode(s string) (PageMode, error) {
	switch s {
	case "rooms":
		return ModeRooms, nil
	case "report":
		return ModeReport, nil
	case "create":
		return ModeCreate, nil
	}
	return 0, fmt.Errorf("unknown page mode %q", s)
}

// Live reports whether the mode runs over a page websocket.
func (m PageMode) Live() bool {
	return m == ModeRooms || m == ModeCreate
}
