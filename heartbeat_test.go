package dailydiesel

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testHeartbeat returns a store with a fixed clock.
func testHeartbeat(t *testing.T, now time.Time) *HeartbeatStore {
	t.Helper()
	s := NewHeartbeatStore(filepath.Join(t.TempDir(), "runtime", "heartbeat.json"))
	s.now = func() time.Time { return now }
	return s
}

func TestHeartbeatUnknownWhenNeverRun(t *testing.T) {
	s := testHeartbeat(t, time.Now())
	rec := s.Read()
	assert.Equal(t, StatusUnknown, rec.Status())
	assert.True(t, rec.LastRun.IsZero())
}

func TestHeartbeatSuccess(t *testing.T) {
	now := time.Date(2024, 1, 5, 9, 30, 0, 0, time.UTC)
	s := testHeartbeat(t, now)

	require.NoError(t, s.RecordSuccess())

	rec := s.Read()
	assert.Equal(t, StatusOperational, rec.Status())
	assert.Equal(t, d("2024-01-05"), rec.LastSuccess)
	assert.True(t, rec.LastError.IsZero())
	assert.Empty(t, rec.LastErrorMessage)
	assert.True(t, rec.LastRun.Equal(now))
}

func TestHeartbeatFailurePreservesLastSuccess(t *testing.T) {
	s := testHeartbeat(t, time.Date(2024, 1, 4, 9, 30, 0, 0, time.UTC))
	require.NoError(t, s.RecordSuccess())

	s.now = func() time.Time { return time.Date(2024, 1, 5, 9, 30, 0, 0, time.UTC) }
	require.NoError(t, s.RecordFailure("fred series DCOILBRENTEU: 503"))

	rec := s.Read()
	assert.Equal(t, StatusDegraded, rec.Status())
	assert.Equal(t, d("2024-01-04"), rec.LastSuccess, "a failure does not erase prior proof of operation")
	assert.Equal(t, d("2024-01-05"), rec.LastError)
	assert.Equal(t, "fred series DCOILBRENTEU: 503", rec.LastErrorMessage)
}

func TestHeartbeatSuccessClearsError(t *testing.T) {
	s := testHeartbeat(t, time.Date(2024, 1, 4, 9, 30, 0, 0, time.UTC))
	require.NoError(t, s.RecordFailure("boom"))
	require.Equal(t, StatusDegraded, s.Read().Status())

	s.now = func() time.Time { return time.Date(2024, 1, 5, 9, 30, 0, 0, time.UTC) }
	require.NoError(t, s.RecordSuccess())

	rec := s.Read()
	assert.Equal(t, StatusOperational, rec.Status())
	assert.True(t, rec.LastError.IsZero())
	assert.Empty(t, rec.LastErrorMessage)
}

func TestHeartbeatSameDayFailureAfterSuccessIsDegraded(t *testing.T) {
	now := time.Date(2024, 1, 5, 9, 30, 0, 0, time.UTC)
	s := testHeartbeat(t, now)
	require.NoError(t, s.RecordSuccess())
	require.NoError(t, s.RecordFailure("later that day"))

	// Equal dates resolve to degraded: the failure is the newer outcome.
	assert.Equal(t, StatusDegraded, s.Read().Status())
}

func TestHeartbeatFailureDefaultMessage(t *testing.T) {
	s := testHeartbeat(t, time.Now())
	require.NoError(t, s.RecordFailure(""))
	assert.Equal(t, "unspecified error", s.Read().LastErrorMessage)
}

func TestHeartbeatCorruptFileReadsAsZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heartbeat.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	rec := NewHeartbeatStore(path).Read()
	assert.Equal(t, StatusUnknown, rec.Status())
}

func TestHeartbeatWireFormat(t *testing.T) {
	now := time.Date(2024, 1, 5, 9, 30, 0, 0, time.UTC)
	s := testHeartbeat(t, now)
	require.NoError(t, s.RecordSuccess())

	content, err := os.ReadFile(s.path)
	require.NoError(t, err)

	var doc map[string]string
	require.NoError(t, json.Unmarshal(content, &doc))
	assert.Equal(t, "2024-01-05T09:30:00Z", doc["last_run"])
	assert.Equal(t, "2024-01-05", doc["last_success"])
	assert.Equal(t, "", doc["last_error"])
	assert.Equal(t, "", doc["last_error_message"])
}
