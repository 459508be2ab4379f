// Package audit implements the append-only action log shared by all
// sessions. One lock serializes writes so line order matches commit
// order; file-backed logs are synced after every line. The line formats
// are a fixed external contract consumed by downstream tooling.
package audit

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Event tags recorded per command outcome.
const (
	TagLogout    = "LOGOUT"
	TagCourses   = "CLIST"
	TagSchedule  = "SCHED"
	TagNoSched   = "NOSCHED"
	TagEnroll    = "ENROLL"
	TagNoEnroll  = "NOENROLL"
	TagNotFoundE = "NOTFOUND_E"
	TagWait      = "WAIT"
	TagNoWait    = "NOWAIT"
	TagNotFoundW = "NOTFOUND_W"
	TagDrop      = "DROP"
	TagNoDrop    = "NODROP"
	TagNotFoundD = "NOTFOUND_D"
	TagWaitAdd   = "WAITADD"
)

// Log is the shared audit sink. A write failure is swallowed: audit
// trouble never changes a client-visible outcome.
type Log struct {
	mu sync.Mutex
	w  io.Writer
	f  *os.File
}

// New wraps an arbitrary writer, mostly for tests.
func New(w io.Writer) *Log {
	return &Log{w: w}
}

// Open creates or truncates the audit file at path.
func Open(path string) (*Log, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	return &Log{w: f, f: f}, nil
}

func (l *Log) line(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintf(l.w, format+"\n", args...)
	if l.f != nil {
		_ = l.f.Sync()
	}
}

// Connected records a first-time login.
func (l *Log) Connected(username string) {
	l.line("CONNECTED %s", username)
}

// Reconnected records a returning username's login.
func (l *Log) Reconnected(username string) {
	l.line("RECONNECTED %s", username)
}

// Action records an event with no slot argument (LOGOUT, CLIST, SCHED,
// NOSCHED).
func (l *Log) Action(username, tag string) {
	l.line("%s %s", username, tag)
}

// SlotAction records a denial or not-found outcome for a course slot.
func (l *Log) SlotAction(username, tag string, slot int) {
	l.line("%s %s %d", username, tag, slot)
}

// MaskAction records a committed transition together with the user's
// post-mutation bitmask (ENROLL, WAIT, DROP, WAITADD).
func (l *Log) MaskAction(username, tag string, slot int, mask uint32) {
	l.line("%s %s %d %d", username, tag, slot, mask)
}

// Close closes a file-backed log.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.f != nil {
		return l.f.Close()
	}
	return nil
}
