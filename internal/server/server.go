// Package server implements the connection handler state machine and
// the TCP listener that spawns one handler goroutine per accepted
// connection. Grounded on the teacher's server/net/{net_server,
// session}.go shape (accept-loop backoff, Once-guarded stop, WaitGroup
// draining), re-expressed directly atop net.Listener instead of the
// teacher's getty reactor framework, since spec.md §5 calls for a
// blocking one-thread-per-connection model that a reactor does not
// naturally express.
package server

import (
	"net"
	"sync"
	"time"

	"github.com/juju/errors"

	"github.com/nnewton/sqlited/internal/engine"
	"github.com/nnewton/sqlited/internal/logging"
	"github.com/nnewton/sqlited/internal/procs"
)

// Server accepts connections against a single SQLite file and serves
// the protocol over each one.
type Server struct {
	dbPath   string
	listener net.Listener
	procs    *procs.Table

	wg       sync.WaitGroup
	stopOnce sync.Once
	done     chan struct{}
}

// New creates a Server bound to dbPath. It does not listen yet.
func New(dbPath string) *Server {
	return &Server{
		dbPath: dbPath,
		procs:  procs.NewTable(),
		done:   make(chan struct{}),
	}
}

// ListenAndServe binds address and serves connections until Stop is
// called or a fatal listener error occurs.
func (s *Server) ListenAndServe(address string) error {
	ln, err := net.Listen("tcp", address)
	if err != nil {
		return errors.Annotatef(err, "server: listen %s", address)
	}
	s.listener = ln
	logging.Log.Infof("server: listening on %s", address)

	var delay time.Duration
	for {
		select {
		case <-s.done:
			return nil
		default:
		}

		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-s.done:
				return nil
			default:
			}
			if ne, ok := err.(net.Error); ok && ne.Temporary() {
				if delay == 0 {
					delay = 5 * time.Millisecond
				} else {
					delay *= 2
				}
				if max := time.Second; delay > max {
					delay = max
				}
				time.Sleep(delay)
				continue
			}
			return errors.Annotate(err, "server: accept")
		}
		delay = 0

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handle(conn)
		}()
	}
}

func (s *Server) handle(netConn net.Conn) {
	eng, err := engine.Open(s.dbPath)
	if err != nil {
		logging.Log.WithError(err).Error("server: per-connection engine open failed")
		netConn.Close()
		return
	}

	procID := s.procs.Insert(netConn.RemoteAddr().String())
	c := &conn{
		netConn: netConn,
		eng:     eng,
		procs:   s.procs,
		procID:  procID,
	}
	c.serve()
}

// Stop closes the listener and waits for every in-flight handler to
// return. Open client connections are not closed, so Stop returns only
// once each connected client has disconnected.
func (s *Server) Stop() error {
	var err error
	s.stopOnce.Do(func() {
		close(s.done)
		if s.listener != nil {
			err = s.listener.Close()
		}
	})
	s.wg.Wait()
	return err
}
