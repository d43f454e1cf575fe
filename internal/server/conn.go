package server

import (
	"io"
	"net"

	"github.com/juju/errors"

	"github.com/nnewton/sqlited/internal/codec"
	"github.com/nnewton/sqlited/internal/engine"
	"github.com/nnewton/sqlited/internal/logging"
	"github.com/nnewton/sqlited/internal/procs"
	"github.com/nnewton/sqlited/internal/wire"
)

// conn holds the per-connection state the handler state machine
// mutates. It is exclusively owned by its handler goroutine — never
// shared — matching the ConnectionState ownership rule in spec.md §3.
type conn struct {
	netConn  net.Conn
	eng      *engine.Engine
	procs    *procs.Table
	procID   uint32
	username string
	schema   string
	seq      byte
}

// serve drives one connection through INIT -> HANDSHAKE_SENT ->
// AUTHENTICATED -> COMMAND_LOOP -> CLOSED.
func (c *conn) serve() {
	defer c.eng.Close()
	defer c.procs.Delete(c.procID)
	defer c.netConn.Close()

	if err := c.sendHandshake(); err != nil {
		logging.Log.WithError(err).Debug("server: handshake write failed")
		return
	}

	if err := c.authenticate(); err != nil {
		logging.Log.WithError(err).Debug("server: authentication failed")
		return
	}

	for {
		payload, err := c.readPacket()
		if err != nil {
			if err != io.EOF {
				logging.Log.WithError(err).Debug("server: command read failed")
			}
			return
		}
		quit, err := c.handleCommand(payload)
		if err != nil {
			logging.Log.WithError(err).Debug("server: command handling failed")
			return
		}
		if quit {
			return
		}
	}
}

// sendHandshake sends the initial server handshake at seq 0.
func (c *conn) sendHandshake() error {
	c.seq = 0
	payload := wire.BuildHandshake(c.procID, c.eng.Version())
	return c.writePacket(payload)
}

// authenticate reads the client's handshake response, consumes its
// auth data without verifying it (the gateway accepts any
// credentials), applies an initial schema if requested, and sends the
// terminating OK/ERR that moves the connection into COMMAND_LOOP.
func (c *conn) authenticate() error {
	payload, err := c.readPacket()
	if err != nil {
		return errors.Annotate(err, "server: read client handshake")
	}
	ch, err := parseClientHandshake(payload)
	if err != nil {
		return errors.Annotate(err, "server: parse client handshake")
	}
	c.username = ch.Username
	c.procs.SetAuth(c.procID, ch.Username, "")

	if ch.Database != "" {
		if ch.Database != "main" {
			return c.writeErr(1044, "42000", accessDeniedMessage(c.username, ch.Database))
		}
		c.schema = ch.Database
		c.procs.SetSchema(c.procID, ch.Database)
	}
	if err := c.writeOK(); err != nil {
		return err
	}
	c.procs.Update(c.procID, "Sleep")
	return nil
}

// nextSeq assigns the next outbound sequence number: the first packet
// of a response burst uses the last inbound seq + 1; see §4.5.
func (c *conn) nextSeq() byte {
	return c.seq
}

func (c *conn) writePacket(payload []byte) error {
	seq := c.nextSeq()
	if _, err := c.netConn.Write(codec.WrapPacket(payload, seq)); err != nil {
		return err
	}
	c.seq = codec.NextSeq(seq)
	return nil
}

func (c *conn) writeOK() error {
	return c.writePacket(wire.BuildOK(wire.StatusAutocommit))
}

func (c *conn) writeErr(code uint16, sqlState, message string) error {
	return c.writePacket(wire.BuildErr(code, sqlState, message, true))
}

// readPacket reads one full packet's payload and sets the handler's
// seq counter to one past the sequence number it arrived with, so the
// next response burst starts at seq+1.
func (c *conn) readPacket() ([]byte, error) {
	header := make([]byte, 4)
	if _, err := io.ReadFull(c.netConn, header); err != nil {
		return nil, err
	}
	hdr, _, err := codec.ReadPacketHeader(header)
	if err != nil {
		return nil, err
	}
	payload := make([]byte, hdr.Length)
	if hdr.Length > 0 {
		if _, err := io.ReadFull(c.netConn, payload); err != nil {
			return nil, err
		}
	}
	c.seq = codec.NextSeq(hdr.Seq)
	return payload, nil
}
