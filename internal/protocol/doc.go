// Package protocol implements the Switcher Power Plug binary protocol.
//
// This package handles construction and signing of the hex-textual command
// packets the device accepts over TCP, and the timestamp/name encodings those
// packets embed. It is pure: no I/O happens here.
//
// # Packet Format
//
// Every command is a fixed-layout hex string beginning with the 0xFE 0xF0
// magic, interpolating (depending on the command) a session id, an 8-hex-digit
// unix timestamp, the 6-hex-digit device id, and command-specific fields.
// Four packet types exist:
//   - Login: opens a session, no session id, returns one in the reply
//   - Get state: queries device state and power draw
//   - Control: turns the plug on ("1") or off ("0")
//   - Set name: writes a new 32-byte NUL-padded device name
//
// # Signing
//
// Before transmission every packet gets a two-stage CRC suffix:
//  1. CRC-16 (poly 0x1021, register seeded 0x1021 rather than the XMODEM
//     standard zero) over the raw packet bytes, rendered big-endian and
//     byte-swapped.
//  2. The same CRC over a 34-byte key buffer: the two swapped CRC bytes
//     followed by 32 ASCII '0' bytes.
//
// Both swapped digests are appended, 8 hex characters total. The device
// silently drops packets with a bad signature; there is no NACK. This is a
// conformance checksum, not a security mechanism.
//
// # Usage Example
//
//	ts := protocol.CurrentTimestamp()
//	packet := protocol.BuildControlPacket(sessionID, ts, deviceID, protocol.CommandOn)
//	signed, err := protocol.SignPacket(packet)
//	if err != nil {
//	    return err
//	}
//	raw, _ := hex.DecodeString(signed)
//	conn.Write(raw)
package protocol
