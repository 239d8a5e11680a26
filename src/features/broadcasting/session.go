package broadcasting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"time"
)

const (
	readBufferSize   = 512
	maxHandshakeSize = 8 << 10
	// peekWindow bounds the fallback read used to detect a peer that hung up.
	peekWindow = time.Millisecond
)

var (
	responseMethodNotAllowed = []byte("HTTP/1.1 405 Method Not Allowed\r\n\r\n")
	responseNotFound         = []byte("HTTP/1.1 404 Not Found\r\n\r\n")
	responsePreamble         = []byte("HTTP/1.1 200 OK\r\n" +
		"Access-Control-Allow-Origin: *\r\n" +
		"Cache-Control: no-cache\r\n" +
		"Connection: keep-alive\r\n" +
		"Content-Type: text/event-stream\r\n" +
		"\r\n")
)

type sessionState int

const (
	stateHandshake sessionState = iota
	stateStreaming
	stateClosed
)

func (s sessionState) String() string {
	switch s {
	case stateHandshake:
		return "handshake"
	case stateStreaming:
		return "streaming"
	case stateClosed:
		return "closed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// eventFrame renders the server-sent event written for each notification.
func eventFrame(name string) []byte {
	return fmt.Appendf(nil, "event: %s\r\ndata\r\n\r\n", name)
}

// session serves one subscriber connection.
type session struct {
	conn      net.Conn
	sub       *Subscriber
	eventPath string
	frame     []byte
	buf       []byte
	logger    *slog.Logger
}

func newSession(conn net.Conn, sub *Subscriber, eventPath, eventName string) *session {
	return &session{
		conn:      conn,
		sub:       sub,
		eventPath: eventPath,
		frame:     eventFrame(eventName),
		buf:       make([]byte, readBufferSize),
		logger:    slog.With("subscriber", sub.ID, "remote", conn.RemoteAddr().String()),
	}
}

// run drives the session until the connection is found closed or ctx is done.
func (s *session) run(ctx context.Context) {
	// Unblocks any pending read or write on shutdown.
	stop := context.AfterFunc(ctx, func() { s.conn.Close() })
	defer stop()

	state := stateHandshake
	for state != stateClosed {
		next := stateClosed
		switch state {
		case stateHandshake:
			next = s.handshake()
		case stateStreaming:
			next = s.stream(ctx)
		}
		s.logger.Debug("Subscriber session transition", "from", state, "to", next)
		state = next
	}

	s.sub.close()
	s.conn.Close()
}

// handshake reads just enough of the request to route it.
func (s *session) handshake() sessionState {
	var request []byte
	var method, target string
	for {
		n, readErr := s.conn.Read(s.buf)
		if n == 0 {
			return stateClosed
		}
		request = append(request, s.buf[:n]...)

		var ok bool
		var err error
		method, target, ok, err = parseRequestLine(request)
		if err != nil {
			s.logger.Debug("Rejecting subscriber request", "error", err)
			return stateClosed
		}
		if ok {
			break
		}
		if readErr != nil || len(request) > maxHandshakeSize {
			return stateClosed
		}
	}

	if method != "GET" {
		s.conn.Write(responseMethodNotAllowed)
		return stateClosed
	}
	if target != s.eventPath {
		s.conn.Write(responseNotFound)
		return stateClosed
	}
	if _, err := s.conn.Write(responsePreamble); err != nil {
		return stateClosed
	}
	return stateStreaming
}

// stream relays one frame per notification. Clients often hang up right
// after the first event, so each frame is preceded by a check for EOF.
func (s *session) stream(ctx context.Context) sessionState {
	for s.sub.next(ctx) {
		if s.peerClosed() {
			return stateClosed
		}
		// A failed write shows up as EOF or an error at the next check.
		s.conn.Write(s.frame)
	}
	return stateClosed
}

// peerClosed reports whether the peer hung up, without blocking. Incoming
// bytes mean the peer is still there and are discarded.
func (s *session) peerClosed() bool {
	if closed, ok := peekSocket(s.conn, s.buf); ok {
		return closed
	}
	return peekWithDeadline(s.conn, s.buf)
}

// peekWithDeadline approximates a non-blocking read with a short read
// deadline. A read that never reaches the socket before the deadline counts
// as open, so a hang-up may only be seen at the following check.
func peekWithDeadline(conn net.Conn, buf []byte) bool {
	if err := conn.SetReadDeadline(time.Now().Add(peekWindow)); err != nil {
		return true
	}
	n, err := conn.Read(buf)
	if n > 0 {
		return false
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return false
	}
	return true
}
