package protocol

import (
	"encoding/hex"
	"math/rand"
	"strings"
	"testing"
)

func TestCrc16KnownVectors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want uint16
	}{
		{
			// Standard XMODEM check string, but with the 0x1021 seed the
			// result differs from the textbook 0x31c3.
			name: "check string",
			data: []byte("123456789"),
			want: 0x5e86,
		},
		{
			name: "empty input returns seed",
			data: nil,
			want: 0x1021,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Crc16(tt.data); got != tt.want {
				t.Errorf("Crc16() = 0x%04x, want 0x%04x", got, tt.want)
			}
		})
	}
}

func TestSignPacketKnownVector(t *testing.T) {
	// Login packet for timestamp 0x65920080 (2024-01-01T00:00:00Z), with its
	// previously verified signature suffix.
	packet := BuildLoginPacket("65920080")

	signed, err := SignPacket(packet)
	if err != nil {
		t.Fatalf("SignPacket() error = %v", err)
	}

	if len(signed) != len(packet)+8 {
		t.Errorf("signed length = %d, want %d", len(signed), len(packet)+8)
	}
	if !strings.HasPrefix(signed, packet) {
		t.Error("signed packet does not start with original payload")
	}
	if got := signed[len(packet):]; got != "0b5f1d8e" {
		t.Errorf("signature = %q, want %q", got, "0b5f1d8e")
	}
}

func TestSignPacketDeterministic(t *testing.T) {
	packet := BuildGetStatePacket("deadbeef", "65920080", "9b5a2c")

	first, err := SignPacket(packet)
	if err != nil {
		t.Fatalf("SignPacket() error = %v", err)
	}
	second, err := SignPacket(packet)
	if err != nil {
		t.Fatalf("SignPacket() error = %v", err)
	}

	if first != second {
		t.Errorf("signing is not deterministic: %q != %q", first, second)
	}
}

func TestSignPacketRejectsInvalidHex(t *testing.T) {
	if _, err := SignPacket("not-hex"); err == nil {
		t.Error("SignPacket() accepted non-hex input")
	}
	if _, err := SignPacket("abc"); err == nil {
		t.Error("SignPacket() accepted odd-length hex")
	}
}

// TestSignPacketBitFlipSensitivity flips single bits in random payloads and
// checks that the packet-CRC segment changes. CRC-16 detects all single-bit
// errors, but the contract only promises a >=99% rate, so that is what we
// assert.
func TestSignPacketBitFlipSensitivity(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	const trials = 500
	changed := 0

	for i := 0; i < trials; i++ {
		payload := make([]byte, 16+rng.Intn(64))
		rng.Read(payload)

		original := hex.EncodeToString(payload)
		signedOrig, err := SignPacket(original)
		if err != nil {
			t.Fatalf("SignPacket() error = %v", err)
		}

		mutated := make([]byte, len(payload))
		copy(mutated, payload)
		bit := rng.Intn(len(mutated) * 8)
		mutated[bit/8] ^= 1 << (bit % 8)

		signedMut, err := SignPacket(hex.EncodeToString(mutated))
		if err != nil {
			t.Fatalf("SignPacket() error = %v", err)
		}

		origSig := signedOrig[len(original) : len(original)+4]
		mutSig := signedMut[len(original) : len(original)+4]
		if origSig != mutSig {
			changed++
		}
	}

	if changed < trials*99/100 {
		t.Errorf("packet CRC changed for %d/%d single-bit flips, want >= %d",
			changed, trials, trials*99/100)
	}
}
