package protocol_test

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/nresnikov/chunked-ws/protocol"
)

func TestMaskInvolution(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, n := range []int{0, 1, 3, 4, 5, 125, 126, 1000} {
		payload := make([]byte, n)
		rng.Read(payload)
		var key [4]byte
		rng.Read(key[:])

		masked := protocol.MaskBytes(payload, int64(n), key)
		unmasked := protocol.Unmask(masked, int64(n), key)
		if !bytes.Equal(unmasked, payload) {
			t.Fatalf("mask involution broken for n=%d", n)
		}
	}
}

func TestUnmaskZeroKeyIsCopy(t *testing.T) {
	payload := []byte("plain payload")
	out := protocol.Unmask(payload, int64(len(payload)), [4]byte{})
	if !bytes.Equal(out, payload) {
		t.Fatalf("zero key must be a no-op, got %q", out)
	}
	out[0] ^= 0xFF
	if payload[0] == out[0] {
		t.Fatal("Unmask must allocate a fresh buffer")
	}
}

func TestUnmaskRespectsLength(t *testing.T) {
	raw := []byte{0x01, 0x02, 0x03, 0x04, 0x05}
	out := protocol.Unmask(raw, 3, [4]byte{0xFF, 0xFF, 0xFF, 0xFF})
	if len(out) != 3 {
		t.Fatalf("expected 3 output bytes, got %d", len(out))
	}
	want := []byte{0xFE, 0xFD, 0xFC}
	if !bytes.Equal(out, want) {
		t.Fatalf("got % x, want % x", out, want)
	}
}
