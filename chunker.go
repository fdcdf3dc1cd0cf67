package ircsasl

import "encoding/base64"

// EncodeResponse encodes a raw SASL response as parameters to successive
// AUTHENTICATE commands.
//
// The response is base64-encoded and split into ChunkSize-byte fragments,
// one per command. An empty response encodes as the single parameter "+".
// If the encoded response is an exact multiple of ChunkSize, a trailing "+"
// marks its end: a full-size fragment is always read by the receiver as
// "more data follows".
func EncodeResponse(raw []byte) []string {
	if len(raw) == 0 {
		return []string{"+"}
	}

	enc := base64.StdEncoding.EncodeToString(raw)

	var fragments []string
	for len(enc) > ChunkSize {
		fragments = append(fragments, enc[:ChunkSize])
		enc = enc[ChunkSize:]
	}
	fragments = append(fragments, enc)

	if len(enc) == ChunkSize {
		fragments = append(fragments, "+")
	}
	return fragments
}
