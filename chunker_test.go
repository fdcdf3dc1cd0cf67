package ircsasl_test

import (
	"bytes"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lemonirc/go-ircsasl"
)

func TestEncodeResponse(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		want []string
	}{
		{name: "nil", raw: nil, want: []string{"+"}},
		{name: "empty", raw: []byte{}, want: []string{"+"}},
		{name: "short", raw: []byte("foo"), want: []string{"Zm9v"}},
		{
			name: "exact_chunk",
			raw:  bytes.Repeat([]byte{'x'}, 300), // encodes to exactly 400 bytes
			want: []string{strings.Repeat("eHh4", 100), "+"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, ircsasl.EncodeResponse(test.raw))
		})
	}
}

func TestEncodeResponseSplitting(t *testing.T) {
	tests := []struct {
		name          string
		rawLen        int
		wantFragments int
		wantTrailer   bool
	}{
		{name: "one_fragment", rawLen: 299, wantFragments: 1},
		{name: "one_chunk_exactly", rawLen: 300, wantFragments: 2, wantTrailer: true},
		{name: "two_fragments", rawLen: 301, wantFragments: 2},
		{name: "two_chunks_exactly", rawLen: 600, wantFragments: 3, wantTrailer: true},
		{name: "three_fragments", rawLen: 601, wantFragments: 3},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			raw := testPayload(test.rawLen)
			fragments := ircsasl.EncodeResponse(raw)
			require.Len(t, fragments, test.wantFragments)

			var enc strings.Builder
			for i, fragment := range fragments {
				last := i == len(fragments)-1
				if test.wantTrailer && last {
					assert.Equal(t, "+", fragment)
					continue
				}
				if !last {
					assert.Len(t, fragment, ircsasl.ChunkSize)
				} else {
					assert.Less(t, len(fragment), ircsasl.ChunkSize)
				}
				enc.WriteString(fragment)
			}

			decoded, err := base64.StdEncoding.DecodeString(enc.String())
			require.NoError(t, err)
			assert.Equal(t, raw, decoded)
		})
	}
}

// testPayload produces a deterministic byte string of the given length.
func testPayload(n int) []byte {
	raw := make([]byte, n)
	for i := range raw {
		raw[i] = byte(i*7 + 13)
	}
	return raw
}
