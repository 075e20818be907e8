package protocol

import (
	"encoding/hex"
	"fmt"
)

const (
	// crcPolynomial is the CRC-16/XMODEM generator polynomial
	crcPolynomial = 0x1021

	// crcInitial seeds the CRC register. Switcher firmware seeds with the
	// polynomial value itself instead of the XMODEM-standard 0x0000; using
	// the standard seed produces signatures the device silently drops.
	crcInitial = 0x1021

	// keyPadByte fills the signing key buffer (ASCII '0', 32 of them)
	keyPadByte = 0x30
	keyPadLen  = 32
)

// Crc16 computes the Switcher variant of CRC-16/XMODEM over data.
func Crc16(data []byte) uint16 {
	crc := uint16(crcInitial)
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = (crc << 1) ^ crcPolynomial
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// SignPacket appends the two-stage CRC signature to a hex-encoded packet.
//
// Stage one digests the raw packet bytes. Stage two digests a 34-byte key
// buffer built from the byte-swapped stage-one digest plus 32 ASCII '0'
// bytes. Both digests are appended byte-swapped (low byte first), so the
// signed packet is exactly 8 hex characters longer than the input.
func SignPacket(hexPacket string) (string, error) {
	raw, err := hex.DecodeString(hexPacket)
	if err != nil {
		return "", fmt.Errorf("packet is not valid hex: %w", err)
	}

	packetCRC := Crc16(raw)

	// Key buffer: swapped packet CRC bytes followed by the '0' padding.
	key := make([]byte, 0, 2+keyPadLen)
	key = append(key, byte(packetCRC), byte(packetCRC>>8))
	for i := 0; i < keyPadLen; i++ {
		key = append(key, keyPadByte)
	}

	keyCRC := Crc16(key)

	return hexPacket + swappedHex(packetCRC) + swappedHex(keyCRC), nil
}

// swappedHex renders a 16-bit CRC as 4 hex characters with the two bytes
// swapped: the big-endian rendering's low byte comes first on the wire.
func swappedHex(crc uint16) string {
	s := fmt.Sprintf("%04x", crc)
	return s[2:4] + s[0:2]
}
