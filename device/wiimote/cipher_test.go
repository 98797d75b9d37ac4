package wiimote_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/padscript/device/wiimote"
)

func randomKey(r *rand.Rand) wiimote.Key {
	var k wiimote.Key
	for i := range k.FT {
		k.FT[i] = byte(r.UintN(256))
		k.SB[i] = byte(r.UintN(256))
	}
	return k
}

func TestCipherRoundTrip(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for range 200 {
		key := randomKey(r)
		addr := r.IntN(0x100)
		p := make([]byte, 1+r.IntN(21))
		for i := range p {
			p[i] = byte(r.UintN(256))
		}

		c := append([]byte(nil), p...)
		key.Encrypt(c, addr)
		key.Decrypt(c, addr)
		assert.Equal(t, p, c, "decrypt(encrypt(p)) key=%s addr=%d", key, addr)

		d := append([]byte(nil), p...)
		key.Decrypt(d, addr)
		key.Encrypt(d, addr)
		assert.Equal(t, p, d, "encrypt(decrypt(c)) key=%s addr=%d", key, addr)
	}
}

func TestCipherZeroKeyIsIdentity(t *testing.T) {
	var key wiimote.Key
	p := []byte{0x80, 0x80, 0x7f, 0x81, 0x00, 0x03}
	c := append([]byte(nil), p...)
	key.Encrypt(c, 0)
	assert.Equal(t, p, c)
}

func TestCipherUsesAddress(t *testing.T) {
	key := wiimote.Key{FT: [8]byte{1, 2, 3, 4, 5, 6, 7, 8}}
	a := []byte{0x10, 0x10}
	b := []byte{0x10, 0x10}
	key.Encrypt(a, 0)
	key.Encrypt(b, 1)
	assert.Equal(t, []byte{0x0f, 0x0e}, a)
	assert.Equal(t, []byte{0x0e, 0x0d}, b)
}

func TestParseKey(t *testing.T) {
	key := wiimote.Key{
		FT: [8]byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77},
		SB: [8]byte{0x88, 0x99, 0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff},
	}
	got, err := wiimote.ParseKey(key.String())
	require.NoError(t, err)
	assert.Equal(t, key, got)

	got, err = wiimote.ParseKey("")
	require.NoError(t, err)
	assert.Equal(t, wiimote.Key{}, got)

	_, err = wiimote.ParseKey("0011")
	assert.Error(t, err)
	_, err = wiimote.ParseKey("zz")
	assert.Error(t, err)
}
