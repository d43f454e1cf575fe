// Package wire builds the protocol-level packets the connection handler
// writes to the client: the server handshake, OK/EOF/ERR, and the
// column-definition/row-packet burst that streams a result set.
// Grounded on the teacher's server/protocol/{mysql_codec,handshark,ok,
// eof,error,field,result_set}.go.
package wire

// Capability flags, narrowed to the fixed set this gateway advertises
// (real clients negotiate a much larger set; this server only ever
// offers this one).
const (
	ClientLongPassword     uint32 = 0x00000001
	ClientFoundRows        uint32 = 0x00000002
	ClientLongFlag         uint32 = 0x00000004
	ClientConnectWithDB    uint32 = 0x00000008
	ClientNoSchema         uint32 = 0x00000010
	ClientProtocol41       uint32 = 0x00000200
	ClientSecureConnection uint32 = 0x00008000
)

// ServerCapabilities is the fixed capability mask advertised in the
// handshake packet.
const ServerCapabilities = ClientLongPassword | ClientFoundRows | ClientLongFlag |
	ClientConnectWithDB | ClientNoSchema | ClientProtocol41 | ClientSecureConnection

// ServerCharset is the fixed charset id (utf8_general_ci) advertised in
// the handshake.
const ServerCharset = 33

// StatusAutocommit is the only server-status bit this gateway ever sets.
const StatusAutocommit uint16 = 0x0002
