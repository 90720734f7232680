package kasa

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecRoundTrip(t *testing.T) {
	t.Parallel()

	cases := []string{
		"",
		"a",
		`{"system":{"get_sysinfo":null}}`,
		`{"system":{"set_relay_state":{"state":1}}}`,
		strings.Repeat("relay", 400),
		"\x00\xff\xab binary-ish",
	}
	for _, plain := range cases {
		frame := Encrypt(plain)
		require.True(t, len(frame) >= prefixLength)
		assert.Equal(t, uint32(len(plain)), binary.BigEndian.Uint32(frame))
		assert.Equal(t, plain, Decrypt(frame[prefixLength:]))
	}
}

func TestEncryptKnownVector(t *testing.T) {
	t.Parallel()

	// seed 171: 0xab^'a'=0xca, then 0xca^'b'=0xa8
	assert.Equal(t, []byte{0, 0, 0, 2, 0xca, 0xa8}, Encrypt("ab"))
	assert.Equal(t, "ab", Decrypt([]byte{0xca, 0xa8}))
}

func TestEncryptEmpty(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []byte{0, 0, 0, 0}, Encrypt(""))
	assert.Equal(t, "", Decrypt(nil))
}
