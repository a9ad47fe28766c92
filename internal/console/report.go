package console

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/zaqqye/room_console/internal/store"
)

const reportErrorText = "Failed to load the report."

// ReportView is the one-shot, ordered read behind the report table.
type ReportView struct {
	store  store.RoomStore
	loc    *time.Location
	logger *zap.Logger
}

func NewReportView(st store.RoomStore, loc *time.Location, logger *zap.Logger) *ReportView {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportView{store: st, loc: loc, logger: logger}
}

func (v *ReportView) Rows(ctx context.Context) ([]ReportRow, error) {
	rooms, err := v.store.List(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]ReportRow, 0, len(rooms))
	for _, r := range rooms {
		rows = append(rows, ReportRow{
			Room:    r.Room,
			Admin:   r.Admin,
			Started: FormatTime(r.CreatedAt, v.loc),
			Expire:  r.Expire,
		})
	}
	return rows, nil
}

// RenderRows returns the table body: the rows, the empty placeholder, or a
// single error row when the read fails.
func (v *ReportView) RenderRows(ctx context.Context) string {
	rows, err := v.Rows(ctx)
	if err != nil {
		v.logger.Warn("load report failed", zap.Error(err))
		return v.errorRow()
	}
	html, err := RenderReportRows(rows)
	if err != nil {
		v.logger.Error("render report", zap.Error(err))
		return v.errorRow()
	}
	return html
}

func (v *ReportView) errorRow() string {
	html, err := RenderReportError(reportErrorText)
	if err != nil {
		return ""
	}
	return html
}
