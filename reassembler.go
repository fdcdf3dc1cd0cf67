package ircsasl

import (
	"encoding/base64"
	"fmt"
)

// A Reassembler accumulates incoming AUTHENTICATE fragments until a complete
// SASL message can be decoded.
//
// Fragments must be fed in the order they were received. A fragment of
// exactly ChunkSize bytes is a continuation; anything shorter (including the
// bare terminator "+") completes the message.
//
// The zero value is ready to use.
type Reassembler struct {
	// Pending encoded data, nil except between a full-size fragment and the
	// next one.
	buf []byte
}

// Feed consumes one AUTHENTICATE parameter. Once the final fragment arrives
// it returns the decoded message with done set; until then it returns done
// unset and keeps the encoded data buffered.
//
// Feed fails with ErrPayloadTooLarge when the accumulated encoded data grows
// beyond MaxEncodedLen, and with an error wrapping ErrMalformedPayload when
// a complete message is not valid base64. Both errors are unrecoverable:
// partial state is discarded and the negotiation must be aborted.
func (r *Reassembler) Feed(fragment string) (payload []byte, done bool, err error) {
	enc := r.buf
	r.buf = nil

	switch {
	case enc == nil:
		enc = []byte(fragment)
	case fragment == "+":
		// Bare terminator: the buffered data is already complete.
	default:
		enc = append(enc, fragment...)
	}

	if len(enc) > MaxEncodedLen {
		return nil, false, ErrPayloadTooLarge
	}

	// A full-size fragment is never the last one.
	if len(fragment) == ChunkSize {
		r.buf = enc
		return nil, false, nil
	}

	if len(enc) == 1 && enc[0] == '+' {
		return []byte{}, true, nil
	}

	payload, err = base64.StdEncoding.DecodeString(string(enc))
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return payload, true, nil
}

// Reset discards any partially received message.
func (r *Reassembler) Reset() {
	r.buf = nil
}
