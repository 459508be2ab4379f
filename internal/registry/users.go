package registry

import (
	"net"
	"strings"
	"sync"

	"github.com/noah-isme/zotreg/internal/models"
	"github.com/noah-isme/zotreg/pkg/orderedlist"
)

// UserDirectory is the shared directory of every username the process
// has seen, kept in sorted username order. An RWMutex guards the list
// and every record's mutable fields.
type UserDirectory struct {
	mu    sync.RWMutex
	users *orderedlist.List[*models.User]
}

// NewUserDirectory returns an empty directory.
func NewUserDirectory() *UserDirectory {
	return &UserDirectory{
		users: orderedlist.New[*models.User](func(a, b *models.User) int {
			return strings.Compare(a.Username, b.Username)
		}),
	}
}

func (d *UserDirectory) find(username string) (*models.User, bool) {
	u, _, ok := d.users.Find(func(u *models.User) bool {
		return u.Username == username
	})
	return u, ok
}

// Admit registers a login under the write lock. A new username gets a
// zero-mask record inserted in sorted order; an existing one has its
// connection handle replaced, enrollment state surviving the reconnect.
func (d *UserDirectory) Admit(username string, conn net.Conn, sessionID string) (u *models.User, reconnect bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if existing, ok := d.find(username); ok {
		existing.Conn = conn
		existing.SessionID = sessionID
		return existing, true
	}

	u = &models.User{Username: username, Conn: conn, SessionID: sessionID}
	d.users.InsertOrdered(u)
	return u, false
}

// Masks returns the current bitmasks for a username.
func (d *UserDirectory) Masks(username string) (enrolled, waiting uint32, ok bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	u, ok := d.find(username)
	if !ok {
		return 0, 0, false
	}
	return u.Enrolled, u.Waiting, true
}

// SetEnrolled sets the enrolled bit for slot and returns the new mask.
func (d *UserDirectory) SetEnrolled(username string, slot int) (uint32, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	u, ok := d.find(username)
	if !ok {
		return 0, false
	}
	u.Enrolled |= models.SlotBit(slot)
	return u.Enrolled, true
}

// ClearEnrolled clears the enrolled bit for slot and returns the new mask.
func (d *UserDirectory) ClearEnrolled(username string, slot int) (uint32, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	u, ok := d.find(username)
	if !ok {
		return 0, false
	}
	u.Enrolled &^= models.SlotBit(slot)
	return u.Enrolled, true
}

// SetWaiting sets the waiting bit for slot and returns the new mask.
func (d *UserDirectory) SetWaiting(username string, slot int) (uint32, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	u, ok := d.find(username)
	if !ok {
		return 0, false
	}
	u.Waiting |= models.SlotBit(slot)
	return u.Waiting, true
}

// Promote flips a waiter into an enrollee for slot: enrolled bit set,
// waiting bit cleared, in one critical section. Returns the new
// enrolled mask.
func (d *UserDirectory) Promote(username string, slot int) (uint32, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	u, ok := d.find(username)
	if !ok {
		return 0, false
	}
	u.Enrolled |= models.SlotBit(slot)
	u.Waiting &^= models.SlotBit(slot)
	return u.Enrolled, true
}

// ClearConn drops the connection handle on logout. The record itself is
// never removed.
func (d *UserDirectory) ClearConn(username string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if u, ok := d.find(username); ok {
		u.Conn = nil
		u.SessionID = ""
	}
}

// CloseAll closes every live connection handle, unblocking any session
// read pending on it. Called once by the shutdown coordinator.
func (d *UserDirectory) CloseAll() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.users.Each(func(u *models.User) bool {
		if u.Conn != nil {
			_ = u.Conn.Close()
		}
		return true
	})
}

// Reports snapshots every record for the shutdown diagnostic report, in
// sorted username order.
func (d *UserDirectory) Reports() []models.UserReport {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]models.UserReport, 0, d.users.Len())
	d.users.Each(func(u *models.User) bool {
		out = append(out, models.UserReport{
			Username: u.Username,
			Enrolled: u.Enrolled,
			Waiting:  u.Waiting,
		})
		return true
	})
	return out
}
