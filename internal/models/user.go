package models

import "net"

// User is the canonical record for a username. Records are created on
// first login and live for the process lifetime; logout only clears the
// connection handle. All fields except Username are guarded by the user
// directory lock.
type User struct {
	Username string

	// Enrolled and Waiting hold one bit per course slot. A user never
	// has both bits set for the same slot.
	Enrolled uint32
	Waiting  uint32

	// Conn is the live connection handle, nil between sessions.
	Conn      net.Conn
	SessionID string
}

// SlotBit returns the bitmask bit for a course slot.
func SlotBit(slot int) uint32 {
	return 1 << uint(slot)
}

// IsEnrolled reports whether the enrolled bit is set for slot.
func (u *User) IsEnrolled(slot int) bool {
	return u.Enrolled&SlotBit(slot) != 0
}

// IsWaiting reports whether the waiting bit is set for slot.
func (u *User) IsWaiting(slot int) bool {
	return u.Waiting&SlotBit(slot) != 0
}

// UserReport is one row of the shutdown diagnostic report.
type UserReport struct {
	Username string
	Enrolled uint32
	Waiting  uint32
}
