package protocol

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadWriteRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	c := NewCodec(&buf, 0)

	require.NoError(t, c.WriteString(Enroll, "3"))

	m, err := c.Read()
	require.NoError(t, err)
	assert.Equal(t, Enroll, m.Kind)
	assert.Equal(t, "3", string(m.Body))
}

func TestReadEmptyBody(t *testing.T) {
	var buf bytes.Buffer
	c := NewCodec(&buf, 0)

	require.NoError(t, c.Write(OK, nil))

	m, err := c.Read()
	require.NoError(t, err)
	assert.Equal(t, OK, m.Kind)
	assert.Empty(t, m.Body)
}

func TestReadShortHeaderFails(t *testing.T) {
	buf := bytes.NewBuffer([]byte{byte(Login), 0x05})
	c := NewCodec(buf, 0)

	_, err := c.Read()
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestReadTruncatedBodyFails(t *testing.T) {
	var buf bytes.Buffer
	full := (&Message{Kind: Login, Body: []byte("walter")}).Bytes()
	buf.Write(full[:len(full)-2])

	c := NewCodec(&buf, 0)
	_, err := c.Read()
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestReadRejectsOversizedBody(t *testing.T) {
	var buf bytes.Buffer
	body := bytes.Repeat([]byte("x"), 64)
	buf.Write((&Message{Kind: Login, Body: body}).Bytes())

	c := NewCodec(&buf, 16)
	_, err := c.Read()
	assert.ErrorContains(t, err, "exceeds limit")
}

func TestHeaderLayout(t *testing.T) {
	m := &Message{Kind: Drop, Body: []byte("12")}
	b := m.Bytes()

	require.Len(t, b, HeaderSize+2)
	assert.Equal(t, byte(Drop), b[0])
	// little-endian length
	assert.Equal(t, []byte{0x02, 0x00, 0x00, 0x00}, b[1:HeaderSize])
	assert.Equal(t, "12", string(b[HeaderSize:]))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "LOGIN", Login.String())
	assert.Equal(t, "ECDENIED", CourseDenied.String())
	assert.Contains(t, Kind(0xEE).String(), "UNKNOWN")
}
