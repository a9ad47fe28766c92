package console

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"time"

	"github.com/zaqqye/room_console/internal/capture"
	"github.com/zaqqye/room_console/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// ReportTimeLayout is day/month/year, 24h.
const ReportTimeLayout = "02/01/2006 15:04:05"

var funcs = template.FuncMap{
	"orDefault": func(def, v string) string {
		if v == "" {
			return def
		}
		return v
	},
	"deviceLabel": func(d capture.DeviceInfo) string { return DeviceLabel(d) },
}

var fragments = template.Must(Templates())

// Templates parses every page and fragment template.
func Templates() (*template.Template, error) {
	return template.New("console").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
}

// Static serves console.js and the stylesheet.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// PageData is handed to the full-page templates.
type PageData struct {
	Title     string
	Mode      string
	Admin     models.AdminSession
	Banner    string
	Error     string
	QRSeconds int
}

type ReportRow struct {
	Room    string
	Admin   string
	Started string
	Expire  string
}

func execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := fragments.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderRoomCards renders one card per room, or the single no-rooms
// placeholder when rooms is empty.
func RenderRoomCards(rooms []models.Room) (string, error) {
	return execute("room_cards", rooms)
}

func RenderListError(text string) (string, error) {
	return execute("list_error", text)
}

type reportRowsData struct {
	Rows  []ReportRow
	Error string
}

func RenderReportRows(rows []ReportRow) (string, error) {
	return execute("report_rows", reportRowsData{Rows: rows})
}

func RenderReportError(text string) (string, error) {
	return execute("report_rows", reportRowsData{Error: text})
}

// FormatTime renders t in loc; the zero time renders as "-".
func FormatTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return "-"
	}
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(ReportTimeLayout)
}
