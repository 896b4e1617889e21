// Package upload drives a single document submission: file selection with an
// extension allow-list, a simulated progress signal while the request is in
// flight, and reconciliation with the real completion from the server.
package upload

import (
	"errors"
	"path/filepath"
	"strings"

	"docchat/internal/api"
)

// Status is the upload lifecycle.
type Status int

const (
	StatusIdle Status = iota
	StatusUploading
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusUploading:
		return "uploading"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Simulated progress: the ticker climbs in fixed steps but never past the
// ceiling; only the real completion forces 100.
const (
	tickStep        = 7
	progressCeiling = 90
)

var (
	// ErrUploadInFlight rejects selecting a new file while a request is
	// outstanding.
	ErrUploadInFlight = errors.New("an upload is already in flight")
	// ErrNoFileSelected rejects starting an upload without a selection.
	ErrNoFileSelected = errors.New("no file selected")
)

// Manager is the state machine for one upload operation. It never performs
// network I/O itself; the caller runs the request and feeds Complete or Fail
// back, while a ticker feeds Tick at a fixed cadence.
type Manager struct {
	allowed map[string]bool

	path     string
	progress int
	status   Status
	err      error
	docID    int64
}

// NewManager builds a manager accepting the given file extensions
// (e.g. ".pdf", ".docx"); matching is case-insensitive.
func NewManager(allowedExts []string) *Manager {
	allowed := make(map[string]bool, len(allowedExts))
	for _, ext := range allowedExts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		allowed[ext] = true
	}
	return &Manager{allowed: allowed}
}

func (m *Manager) Status() Status    { return m.status }
func (m *Manager) Progress() int     { return m.progress }
func (m *Manager) Err() error        { return m.err }
func (m *Manager) Path() string      { return m.path }
func (m *Manager) DocumentID() int64 { return m.docID }

// SelectFile replaces the current selection, clearing any previous error and
// resetting progress. The file type is validated here, not at upload time.
// Selecting while a request is in flight is rejected.
func (m *Manager) SelectFile(path string) error {
	if m.status == StatusUploading {
		return ErrUploadInFlight
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !m.allowed[ext] {
		return &api.ValidationError{Reason: "unsupported file type " + ext}
	}
	m.path = path
	m.progress = 0
	m.err = nil
	m.docID = 0
	m.status = StatusIdle
	return nil
}

// Start transitions to Uploading. The caller must then issue the request and
// report its outcome via Complete or Fail.
func (m *Manager) Start() error {
	if m.status == StatusUploading {
		return ErrUploadInFlight
	}
	if m.path == "" {
		return ErrNoFileSelected
	}
	m.progress = 0
	m.err = nil
	m.status = StatusUploading
	return nil
}

// Tick advances the simulated progress and reports whether the ticker should
// keep running. Once the operation has concluded a stale tick is a no-op, so
// it can never overwrite the final state.
func (m *Manager) Tick() bool {
	if m.status != StatusUploading {
		return false
	}
	if m.progress+tickStep <= progressCeiling {
		m.progress += tickStep
	} else {
		m.progress = progressCeiling
	}
	return true
}

// Complete records the server-assigned document id. Completion always wins
// the race with the ticker: progress is forced to 100 regardless of the last
// emitted tick.
func (m *Manager) Complete(docID int64) {
	if m.status != StatusUploading {
		return
	}
	m.docID = docID
	m.progress = 100
	m.status = StatusSucceeded
}

// Fail resets progress and surfaces the error. There is no automatic retry;
// recovery is a new Start with the same or a newly selected file.
func (m *Manager) Fail(err error) {
	if m.status != StatusUploading {
		return
	}
	m.progress = 0
	m.err = err
	m.status = StatusFailed
}
