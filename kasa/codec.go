// Package kasa speaks the TP-Link/Kasa smartplug protocol: a 4-byte
// big-endian length prefix followed by the payload obfuscated with an
// autokey XOR stream. The cipher is legacy obfuscation, not a security
// boundary.
package kasa

import "encoding/binary"

// Fixed accumulator seed of the autokey stream.
const cipherSeed byte = 171

const (
	prefixLength = 4
	// one bounded receive per transaction, same as the stock tools
	recvLimit = 2048
)

// Encrypt frames plain into a length-prefixed obfuscated request.
// The accumulator advances on each *output* byte.
func Encrypt(plain string) []byte {
	out := make([]byte, prefixLength+len(plain))
	binary.BigEndian.PutUint32(out, uint32(len(plain)))
	key := cipherSeed
	for i := 0; i < len(plain); i++ {
		b := key ^ plain[i]
		key = b
		out[prefixLength+i] = b
	}
	return out
}

// Decrypt deobfuscates a response payload with the length prefix already
// stripped. The accumulator advances on each *input* byte; the asymmetry
// against Encrypt is what makes both sides converge on the same key
// stream. Do not "fix" it.
func Decrypt(cipher []byte) string {
	out := make([]byte, len(cipher))
	key := cipherSeed
	for i, c := range cipher {
		out[i] = key ^ c
		key = c
	}
	return string(out)
}
