package server

import (
	"fmt"

	"github.com/juju/errors"

	"github.com/nnewton/sqlited/internal/codec"
	"github.com/nnewton/sqlited/internal/wire"
)

// clientHandshake is the parsed client handshake-response packet.
type clientHandshake struct {
	Capabilities uint32
	MaxPacket    uint32
	Charset      byte
	Username     string
	Database     string
}

// parseClientHandshake decodes the client's response to the server
// handshake. Per the recorded decision on the SECURE_CONNECTION auth
// form: the primary path is a 1-byte length prefix (this is also what
// a real go-sql-driver/mysql client sends); a payload with exactly 20
// bytes remaining after the username, and nothing left over for a
// trailing database name, is treated as the fixed 20-byte scramble
// form instead.
func parseClientHandshake(payload []byte) (clientHandshake, error) {
	var ch clientHandshake
	caps, rest, err := codec.ReadU32(payload)
	if err != nil {
		return ch, errors.Annotate(err, "server: read client capabilities")
	}
	ch.Capabilities = caps

	maxPacket, rest, err := codec.ReadU32(rest)
	if err != nil {
		return ch, errors.Annotate(err, "server: read max packet")
	}
	ch.MaxPacket = maxPacket

	charset, rest, err := codec.ReadU8(rest)
	if err != nil {
		return ch, errors.Annotate(err, "server: read charset")
	}
	ch.Charset = charset

	if len(rest) < 23 {
		return ch, fmt.Errorf("server: short client handshake reserved bytes")
	}
	rest = rest[23:]

	username, rest, err := codec.ReadNullTerminatedString(rest)
	if err != nil {
		return ch, errors.Annotate(err, "server: read username")
	}
	ch.Username = username

	if caps&wire.ClientSecureConnection != 0 {
		if len(rest) == 20 {
			_, rest, err = codec.ReadFixedString(rest, 20)
			if err != nil {
				return ch, errors.Annotate(err, "server: read fixed auth response")
			}
		} else {
			n, authRest, err := codec.ReadU8(rest)
			if err != nil {
				return ch, errors.Annotate(err, "server: read auth response length")
			}
			_, authRest, err = codec.ReadFixedString(authRest, int(n))
			if err != nil {
				return ch, errors.Annotate(err, "server: read auth response bytes")
			}
			rest = authRest
		}
	} else {
		_, rest, err = codec.ReadNullTerminatedString(rest)
		if err != nil {
			return ch, errors.Annotate(err, "server: read null-terminated auth response")
		}
	}

	if caps&wire.ClientConnectWithDB != 0 && len(rest) > 0 {
		database, _, err := codec.ReadNullTerminatedString(rest)
		if err == nil {
			ch.Database = database
		}
	}

	return ch, nil
}
