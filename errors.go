package ircsasl

import "errors"

var (
	// ErrPayloadTooLarge is reported when the server sends more than
	// MaxEncodedLen bytes of AUTHENTICATE data for a single message. The
	// negotiation cannot recover from it.
	ErrPayloadTooLarge = errors.New("ircsasl: server payload exceeds the maximum size")

	// ErrMalformedPayload is reported when a complete message is not valid
	// base64. It is treated exactly like an oversized payload.
	ErrMalformedPayload = errors.New("ircsasl: server sent a malformed payload")

	// ErrTimeout is reported when the server fails to answer an
	// AUTHENTICATE command within the configured timeout.
	ErrTimeout = errors.New("ircsasl: the authentication timed out")
)

// A ServerError is an authentication failure reported by the server through
// one of the SASL failure numerics.
type ServerError struct {
	// Code is the numeric reply that carried the failure, e.g. "904".
	Code string

	// Text is the server-provided reason.
	Text string
}

func (err *ServerError) Error() string {
	return "ircsasl: " + err.Text
}
