// Package server runs the TCP front end: the accept loop, the login
// admission handshake, one session goroutine per connection, and the
// shutdown coordinator that quiesces every session before emitting the
// final consistency report.
package server

import (
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/zotreg/internal/audit"
	"github.com/noah-isme/zotreg/internal/metrics"
	"github.com/noah-isme/zotreg/internal/protocol"
	"github.com/noah-isme/zotreg/internal/registry"
	"github.com/noah-isme/zotreg/internal/service"
	"github.com/noah-isme/zotreg/pkg/config"
)

// Server owns the listener and the shared collaborators every session
// uses.
type Server struct {
	cfg       *config.Config
	registrar *service.Registrar
	users     *registry.UserDirectory
	courses   *registry.CourseTable
	stats     *metrics.Service
	auditLog  *audit.Log
	logger    *zap.Logger

	mu       sync.Mutex
	listener net.Listener

	quit     chan struct{}
	quitOnce sync.Once
	sessions sync.WaitGroup
}

// New constructs a Server around already-built registries.
func New(cfg *config.Config, registrar *service.Registrar, users *registry.UserDirectory, courses *registry.CourseTable, stats *metrics.Service, auditLog *audit.Log, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		cfg:       cfg,
		registrar: registrar,
		users:     users,
		courses:   courses,
		stats:     stats,
		auditLog:  auditLog,
		logger:    logger,
		quit:      make(chan struct{}),
	}
}

// ListenAndServe binds the configured port and accepts connections until
// shutdown. Each accepted connection is handled in its own goroutine, so
// concurrent logins are admitted.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	s.logger.Info("server listening",
		zap.String("addr", listener.Addr().String()),
		zap.Int("courses", s.courses.Defined()))

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-s.quit:
				return nil
			default:
			}
			s.logger.Error("accept failed", zap.Error(err))
			continue
		}

		s.sessions.Add(1)
		go func() {
			defer s.sessions.Done()
			s.handleConnection(conn)
		}()
	}
}

// Addr returns the bound listener address, or nil before ListenAndServe.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// handleConnection performs the login handshake and, on success, runs
// the session loop. Any protocol violation during login closes the
// connection without a response.
func (s *Server) handleConnection(conn net.Conn) {
	remote := conn.RemoteAddr().String()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("session panic", zap.String("remote", remote), zap.Any("panic", r))
		}
		conn.Close()
	}()

	codec := protocol.NewCodec(conn, s.cfg.Protocol.MaxMessageSize)

	msg, err := codec.Read()
	if err != nil {
		return
	}
	if msg.Kind != protocol.Login || len(msg.Body) == 0 {
		return
	}
	username := string(msg.Body)

	sessionID := uuid.NewString()
	_, reconnect := s.users.Admit(username, conn, sessionID)
	if reconnect {
		s.auditLog.Reconnected(username)
	} else {
		s.auditLog.Connected(username)
	}

	if err := codec.Write(protocol.OK, nil); err != nil {
		return
	}
	s.stats.ClientConnected()
	defer s.stats.SessionEnded()

	logger := s.logger.With(
		zap.String("session_id", sessionID),
		zap.String("username", username),
		zap.String("remote", remote))
	logger.Info("session started", zap.Bool("reconnect", reconnect))

	sess := &session{
		username:  username,
		conn:      conn,
		codec:     codec,
		registrar: s.registrar,
		users:     s.users,
		auditLog:  s.auditLog,
		logger:    logger,
		quit:      s.quit,
	}
	sess.run()

	logger.Info("session ended")
}

// Shutdown runs the coordinated stop sequence exactly once: gate new
// work, stop the listener, unblock every pending session read, join all
// sessions, then write the final reports. A repeated trigger is a no-op.
func (s *Server) Shutdown(out, diag io.Writer) {
	s.quitOnce.Do(func() {
		s.logger.Info("shutdown started")
		close(s.quit)

		s.mu.Lock()
		if s.listener != nil {
			_ = s.listener.Close()
		}
		s.mu.Unlock()

		s.users.CloseAll()

		done := make(chan struct{})
		go func() {
			s.sessions.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(s.cfg.Shutdown.Timeout):
			s.logger.Warn("session drain timed out", zap.Duration("timeout", s.cfg.Shutdown.Timeout))
		}

		WriteCourseReport(out, s.courses)
		WriteUserReport(diag, s.users.Reports())
		WriteStatsLine(diag, s.stats.Snapshot())

		s.logger.Info("shutdown complete")
	})
}
