package console

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zaqqye/room_console/internal/models"
	"github.com/zaqqye/room_console/internal/store"
)

type failingStore struct {
	store.RoomStore
	err error
}

func (s failingStore) List(ctx context.Context) ([]models.Room, error) { return nil, s.err }

func bangkok(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Bangkok")
	require.NoError(t, err)
	return loc
}

func TestFormatTime(t *testing.T) {
	loc := bangkok(t)
	ts := time.Date(2026, 10, 18, 2, 30, 5, 0, time.UTC)

	assert.Equal(t, "18/10/2026 09:30:05", FormatTime(ts, loc))
	assert.Equal(t, "-", FormatTime(time.Time{}, loc))
	assert.Equal(t, "18/10/2026 02:30:05", FormatTime(ts, nil))
}

func TestReportView_Rows(t *testing.T) {
	st := store.NewMemoryRoomStore()
	ctx := context.Background()
	_, err := st.Add(ctx, models.NewRoom{Room: "A101", Admin: "Somchai", Expire: "17:00"})
	require.NoError(t, err)
	_, err = st.Add(ctx, models.NewRoom{Room: "<b>B202</b>", Admin: "Malee", Expire: ""})
	require.NoError(t, err)

	v := NewReportView(st, bangkok(t), nil)
	rows, err := v.Rows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "<b>B202</b>", rows[0].Room)
	assert.NotEqual(t, "-", rows[0].Started)

	html := v.RenderRows(ctx)
	assert.Equal(t, 2, strings.Count(html, "<tr>"))
	assert.Contains(t, html, "&lt;b&gt;B202&lt;/b&gt;")
	assert.Less(t, strings.Index(html, "B202"), strings.Index(html, "A101"))
}

func TestReportView_EmptyPlaceholder(t *testing.T) {
	v := NewReportView(store.NewMemoryRoomStore(), nil, nil)

	html := v.RenderRows(context.Background())
	assert.Equal(t, 1, strings.Count(html, "<tr>"))
	assert.Contains(t, html, "No room usage yet.")
}

func TestReportView_ErrorRow(t *testing.T) {
	v := NewReportView(failingStore{err: errors.New("unavailable")}, nil, nil)

	html := v.RenderRows(context.Background())
	assert.Equal(t, 1, strings.Count(html, "<tr>"))
	assert.Contains(t, html, reportErrorText)
	assert.NotContains(t, html, "unavailable")
}
