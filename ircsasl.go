// Package ircsasl implements the client side of SASL authentication over
// IRC.
//
// The AUTHENTICATE command and its fragmentation rules are defined in the
// IRCv3 SASL 3.1 extension:
// https://ircv3.net/specs/extensions/sasl-3.1
package ircsasl

import (
	"time"

	"github.com/emersion/go-sasl"
)

// A Mechanism is a SASL mechanism name.
type Mechanism string

const (
	// MechanismPlain authenticates with a username and a password, as
	// described in RFC 4616.
	MechanismPlain Mechanism = sasl.Plain

	// MechanismExternal authenticates with credentials established outside
	// of the IRC protocol, usually a TLS client certificate. See RFC 4422
	// appendix A.
	MechanismExternal Mechanism = sasl.External
)

const (
	// ChunkSize is the maximum length of a single AUTHENTICATE parameter.
	// Longer payloads are split across several commands to stay below the
	// 512-byte IRC line limit.
	ChunkSize = 400

	// MaxEncodedLen is the maximum size the reassembly buffer may grow to
	// before the next fragment comes in. Note that due to the way
	// fragmentation works, the largest message actually accepted is
	// MaxEncodedLen rounded down to a multiple of ChunkSize, plus
	// ChunkSize - 1.
	MaxEncodedLen = 8192
)

// DefaultTimeout bounds how long the negotiator waits for the server to
// answer each AUTHENTICATE command it has sent.
const DefaultTimeout = 20 * time.Second
