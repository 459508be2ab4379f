// Package protocol implements the zotreg wire format: a 5-byte header
// (kind byte + body length, little-endian uint32) followed by exactly
// that many body bytes. Course slots travel as decimal text in the body.
package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Kind identifies a message on the wire.
type Kind uint8

// Request kinds.
const (
	Login Kind = 0x10 + iota
	Logout
	ListCourses
	Schedule
	Enroll
	Wait
	Drop
)

// Response kinds.
const (
	OK Kind = 0x20 + iota
	RespCourseList
	RespSchedule
	NoCourses
	CourseNotFound
	CourseDenied
)

// HeaderSize is the fixed size of the wire header.
const HeaderSize = 5

// DefaultMaxBodySize bounds a declared body length when the caller does
// not configure its own limit.
const DefaultMaxBodySize = 1024

func (k Kind) String() string {
	switch k {
	case Login:
		return "LOGIN"
	case Logout:
		return "LOGOUT"
	case ListCourses:
		return "CLIST"
	case Schedule:
		return "SCHED"
	case Enroll:
		return "ENROLL"
	case Wait:
		return "WAIT"
	case Drop:
		return "DROP"
	case OK:
		return "OK"
	case RespCourseList:
		return "CLIST_RESP"
	case RespSchedule:
		return "SCHED_RESP"
	case NoCourses:
		return "ENOCOURSES"
	case CourseNotFound:
		return "ECNOTFOUND"
	case CourseDenied:
		return "ECDENIED"
	}
	return fmt.Sprintf("UNKNOWN(0x%x)", uint8(k))
}

// Message is one framed unit on the wire.
type Message struct {
	Kind Kind
	Body []byte
}

// Bytes returns the wire encoding: kind[1] length[4] body[length].
func (m *Message) Bytes() []byte {
	buf := make([]byte, HeaderSize+len(m.Body))
	buf[0] = byte(m.Kind)
	binary.LittleEndian.PutUint32(buf[1:HeaderSize], uint32(len(m.Body)))
	copy(buf[HeaderSize:], m.Body)
	return buf
}

// Codec reads and writes framed messages over a byte stream.
type Codec struct {
	rw          io.ReadWriter
	maxBodySize uint32
}

// NewCodec wraps rw. maxBodySize <= 0 selects DefaultMaxBodySize.
func NewCodec(rw io.ReadWriter, maxBodySize int) *Codec {
	if maxBodySize <= 0 {
		maxBodySize = DefaultMaxBodySize
	}
	return &Codec{rw: rw, maxBodySize: uint32(maxBodySize)}
}

// Read blocks for the fixed header, then for the declared body. Any
// failure is fatal to the connection; io errors pass through unwrapped
// so callers can treat a closed peer as a normal termination.
func (c *Codec) Read() (*Message, error) {
	var hdr [HeaderSize]byte
	if _, err := io.ReadFull(c.rw, hdr[:]); err != nil {
		return nil, err
	}

	length := binary.LittleEndian.Uint32(hdr[1:])
	if length > c.maxBodySize {
		return nil, fmt.Errorf("declared body length %d exceeds limit %d", length, c.maxBodySize)
	}

	m := &Message{Kind: Kind(hdr[0])}
	if length > 0 {
		m.Body = make([]byte, length)
		if _, err := io.ReadFull(c.rw, m.Body); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Write emits header and body as one buffer. No partial-write recovery
// is attempted; a failed write terminates the connection.
func (c *Codec) Write(kind Kind, body []byte) error {
	m := &Message{Kind: kind, Body: body}
	if _, err := c.rw.Write(m.Bytes()); err != nil {
		return fmt.Errorf("write %s: %w", kind, err)
	}
	return nil
}

// WriteString is a convenience for text bodies.
func (c *Codec) WriteString(kind Kind, body string) error {
	return c.Write(kind, []byte(body))
}
