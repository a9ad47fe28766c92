package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestConsole_Gauges(t *testing.T) {
	m := NewConsole(prometheus.NewRegistry())

	m.StreamOpened()
	m.StreamOpened()
	m.StreamStopped()
	m.SubscriptionStarted()
	m.SnapshotRendered()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Streams))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Subscriptions))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Snapshots))
}

func TestConsole_NilIsNoop(t *testing.T) {
	var m *Console
	assert.NotPanics(t, func() {
		m.PageOpened()
		m.StreamOpened()
		m.CountdownCleared()
	})
}
