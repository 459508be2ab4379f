package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotTracksCounters(t *testing.T) {
	s := NewService()

	s.ClientConnected()
	s.ClientConnected()
	s.EnrollCommitted()
	s.EnrollCommitted()
	s.EnrollCommitted()
	s.DropCommitted()

	stats := s.Snapshot()
	assert.Equal(t, 2, stats.Clients)
	assert.Equal(t, 2, stats.Sessions)
	assert.Equal(t, 3, stats.Adds)
	assert.Equal(t, 1, stats.Drops)
}

func TestHandlerServesPrometheusText(t *testing.T) {
	s := NewService()
	s.ClientConnected()
	s.EnrollCommitted()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "zotreg_clients_total 1")
	assert.Contains(t, body, "zotreg_enrolls_total 1")
	assert.Contains(t, body, "zotreg_active_sessions 1")
}
