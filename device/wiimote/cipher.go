package wiimote

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Key is the per-device key material of the extension cipher. It is derived
// by the emulation core when the game writes the extension key; this package
// only applies it.
type Key struct {
	FT [8]byte
	SB [8]byte
}

// Encrypt transforms plaintext extension bytes in place. addr is the
// extension register address of data[0].
func (k *Key) Encrypt(data []byte, addr int) {
	for i := range data {
		j := (addr + i) & 7
		data[i] = (data[i] - k.FT[j]) ^ k.SB[j]
	}
}

// Decrypt is the exact inverse of Encrypt for the same key and address.
func (k *Key) Decrypt(data []byte, addr int) {
	for i := range data {
		j := (addr + i) & 7
		data[i] = (data[i] ^ k.SB[j]) + k.FT[j]
	}
}

// String formats the key as the 32 hex digits of FT followed by SB.
func (k Key) String() string {
	return hex.EncodeToString(k.FT[:]) + hex.EncodeToString(k.SB[:])
}

// ParseKey parses the format produced by Key.String. An empty string is the
// zero key.
func ParseKey(s string) (Key, error) {
	var k Key
	s = strings.TrimSpace(s)
	if s == "" {
		return k, nil
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return k, fmt.Errorf("parse key: %w", err)
	}
	if len(b) != len(k.FT)+len(k.SB) {
		return k, fmt.Errorf("parse key: want %d bytes, got %d", len(k.FT)+len(k.SB), len(b))
	}
	copy(k.FT[:], b[:8])
	copy(k.SB[:], b[8:])
	return k, nil
}
