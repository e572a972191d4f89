package dailydiesel

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Thiagoscocco/DAILY-DIESEL/date"
)

// HeartbeatStatus is the observable run status, computed from the record's
// timestamps rather than stored.
type HeartbeatStatus int

const (
	// StatusUnknown means no run has ever concluded.
	StatusUnknown HeartbeatStatus = iota
	// StatusOperational means the most recent conclusive outcome is a success.
	StatusOperational
	// StatusDegraded means the most recent conclusive outcome is a failure.
	StatusDegraded
)

func (s HeartbeatStatus) String() string {
	switch s {
	case StatusOperational:
		return "operational"
	case StatusDegraded:
		return "degraded"
	default:
		return "unknown"
	}
}

// HeartbeatRecord is the persisted run-status record. Zero dates mean the
// corresponding outcome never occurred.
type HeartbeatRecord struct {
	LastRun          time.Time // timestamp of the most recent completed attempt
	LastSuccess      date.Date // date of the most recent successful run
	LastError        date.Date // date of the most recent failed run
	LastErrorMessage string    // detail of the most recent error, cleared on success
}

// Status derives the three-state run status from the record.
func (r HeartbeatRecord) Status() HeartbeatStatus {
	switch {
	case r.LastSuccess.IsZero() && r.LastError.IsZero():
		return StatusUnknown
	case !r.LastError.IsZero() && (r.LastSuccess.IsZero() || !r.LastError.Before(r.LastSuccess)):
		return StatusDegraded
	default:
		return StatusOperational
	}
}

// jsonHeartbeat is the wire form: every key is a string, absent dates are
// empty strings, so the file stays trivially readable by any monitor.
type jsonHeartbeat struct {
	LastRun          string `json:"last_run"`
	LastSuccess      string `json:"last_success"`
	LastError        string `json:"last_error"`
	LastErrorMessage string `json:"last_error_message"`
}

// HeartbeatStore persists a single HeartbeatRecord, overwritten in place on
// every run-cycle outcome. No history is retained.
type HeartbeatStore struct {
	path string
	now  func() time.Time // injectable clock
}

// NewHeartbeatStore returns a store persisting at the given path.
func NewHeartbeatStore(path string) *HeartbeatStore {
	return &HeartbeatStore{path: path, now: time.Now}
}

// Read returns the current record. A missing or unreadable file yields the
// zero record: the heartbeat is a best-effort signal, never a reason to
// refuse a run.
func (s *HeartbeatStore) Read() HeartbeatRecord {
	content, err := os.ReadFile(s.path)
	if err != nil {
		return HeartbeatRecord{}
	}
	var j jsonHeartbeat
	if err := json.Unmarshal(content, &j); err != nil {
		return HeartbeatRecord{}
	}

	var rec HeartbeatRecord
	if t, err := time.Parse(time.RFC3339, j.LastRun); err == nil {
		rec.LastRun = t
	}
	if d, err := date.Parse(j.LastSuccess); err == nil {
		rec.LastSuccess = d
	}
	if d, err := date.Parse(j.LastError); err == nil {
		rec.LastError = d
	}
	rec.LastErrorMessage = j.LastErrorMessage
	return rec
}

// RecordSuccess marks a successfully concluded run-cycle: last_run is set to
// now, last_success to today, and the error fields are cleared.
func (s *HeartbeatStore) RecordSuccess() error {
	rec := s.Read()
	now := s.now()
	rec.LastRun = now
	rec.LastSuccess = date.FromTime(now)
	rec.LastError = date.Date{}
	rec.LastErrorMessage = ""
	return s.write(rec)
}

// RecordFailure marks a failed run-cycle: last_run is set to now, last_error
// to today with the given message. last_success is left untouched — a
// failure does not erase prior proof of operation.
func (s *HeartbeatStore) RecordFailure(message string) error {
	rec := s.Read()
	now := s.now()
	rec.LastRun = now
	rec.LastError = date.FromTime(now)
	if message == "" {
		message = "unspecified error"
	}
	rec.LastErrorMessage = message
	return s.write(rec)
}

// write replaces the whole document atomically (temp file + rename).
func (s *HeartbeatStore) write(rec HeartbeatRecord) error {
	j := jsonHeartbeat{LastErrorMessage: rec.LastErrorMessage}
	if !rec.LastRun.IsZero() {
		j.LastRun = rec.LastRun.Format(time.RFC3339)
	}
	if !rec.LastSuccess.IsZero() {
		j.LastSuccess = rec.LastSuccess.String()
	}
	if !rec.LastError.IsZero() {
		j.LastError = rec.LastError.String()
	}

	content, err := json.MarshalIndent(j, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode heartbeat: %v", ErrPersistence, err)
	}

	if err := ensureParentDir(s.path); err != nil {
		return fmt.Errorf("%w: create heartbeat dir for %q: %v", ErrPersistence, s.path, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: write heartbeat %q: %v", ErrPersistence, s.path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write heartbeat %q: %v", ErrPersistence, s.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: write heartbeat %q: %v", ErrPersistence, s.path, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("%w: replace heartbeat %q: %v", ErrPersistence, s.path, err)
	}
	return nil
}
