package server

import (
	"errors"
	"net"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/zotreg/internal/audit"
	"github.com/noah-isme/zotreg/internal/protocol"
	"github.com/noah-isme/zotreg/internal/registry"
	"github.com/noah-isme/zotreg/internal/service"
	appErrors "github.com/noah-isme/zotreg/pkg/errors"
)

// session is the per-connection command loop bound to one username.
type session struct {
	username  string
	conn      net.Conn
	codec     *protocol.Codec
	registrar *service.Registrar
	users     *registry.UserDirectory
	auditLog  *audit.Log
	logger    *zap.Logger
	quit      <-chan struct{}
}

// run iterates the command loop until logout, a read/write failure, or
// shutdown. A failed read is the normal termination path for a peer that
// went away; it mutates nothing.
func (s *session) run() {
	for {
		select {
		case <-s.quit:
			return
		default:
		}

		msg, err := s.codec.Read()
		if err != nil {
			return
		}

		if s.dispatch(msg) {
			return
		}
	}
}

// dispatch handles one command. It returns true when the session must
// end (logout or a failed response write).
func (s *session) dispatch(msg *protocol.Message) bool {
	switch msg.Kind {
	case protocol.Logout:
		s.users.ClearConn(s.username)
		_ = s.codec.Write(protocol.OK, nil)
		s.auditLog.Action(s.username, audit.TagLogout)
		s.conn.Close()
		return true

	case protocol.ListCourses:
		body := s.registrar.CourseList(s.username)
		return s.send(protocol.RespCourseList, body)

	case protocol.Schedule:
		body, err := s.registrar.Schedule(s.username)
		if err != nil {
			return s.fail(err)
		}
		return s.send(protocol.RespSchedule, body)

	case protocol.Enroll:
		_, err := s.registrar.Enroll(s.username, parseSlot(msg.Body))
		return s.reply(err)

	case protocol.Wait:
		_, err := s.registrar.Wait(s.username, parseSlot(msg.Body))
		return s.reply(err)

	case protocol.Drop:
		_, err := s.registrar.Drop(s.username, parseSlot(msg.Body))
		return s.reply(err)
	}

	// Unrecognized kinds are ignored and the loop continues.
	s.logger.Debug("ignoring unknown message kind", zap.Uint8("kind", uint8(msg.Kind)))
	return false
}

// send writes a text response; a write failure ends the session.
func (s *session) send(kind protocol.Kind, body string) bool {
	if err := s.codec.WriteString(kind, body); err != nil {
		s.logger.Warn("response write failed", zap.Error(err))
		return true
	}
	return false
}

// reply maps a registrar outcome onto OK or a typed error response.
func (s *session) reply(err error) bool {
	if err == nil {
		if werr := s.codec.Write(protocol.OK, nil); werr != nil {
			s.logger.Warn("response write failed", zap.Error(werr))
			return true
		}
		return false
	}
	return s.fail(err)
}

// fail writes the response kind for a domain error. Domain errors are
// never fatal to the session.
func (s *session) fail(err error) bool {
	var kind protocol.Kind
	switch {
	case errors.Is(err, appErrors.ErrNoCourses):
		kind = protocol.NoCourses
	case errors.Is(err, appErrors.ErrCourseNotFound):
		kind = protocol.CourseNotFound
	case errors.Is(err, appErrors.ErrActionDenied):
		kind = protocol.CourseDenied
	default:
		s.logger.Error("unexpected registrar error", zap.Error(err))
		kind = protocol.CourseDenied
	}

	if werr := s.codec.Write(kind, nil); werr != nil {
		s.logger.Warn("response write failed", zap.Error(werr))
		return true
	}
	return false
}

// parseSlot decodes the decimal-text course slot carried in a message
// body. Anything malformed maps to an always-invalid slot so the
// registrar reports it as not found.
func parseSlot(body []byte) int {
	slot, err := strconv.Atoi(strings.TrimSpace(string(body)))
	if err != nil {
		return -1
	}
	return slot
}
