package protocol

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Control command digits embedded in control packets
const (
	CommandOn  = "1"
	CommandOff = "0"
)

// Device name length bounds (UTF-8 bytes)
const (
	MinNameLength = 2
	MaxNameLength = 32
)

// pad72Zeros is the fixed zero-padding run shared by the login, control and
// set-name packet layouts.
var pad72Zeros = strings.Repeat("0", 72)

// NameLengthError reports a device name whose UTF-8 byte length falls outside
// the [MinNameLength, MaxNameLength] range the packet layout can carry.
type NameLengthError struct {
	Length int
}

func (e *NameLengthError) Error() string {
	return fmt.Sprintf("device name must be %d-%d bytes, got %d",
		MinNameLength, MaxNameLength, e.Length)
}

// Timestamp renders t as the 8-hex-digit lowercase unix-seconds field the
// packet layouts embed.
func Timestamp(t time.Time) string {
	return fmt.Sprintf("%08x", t.Unix())
}

// CurrentTimestamp returns the timestamp field for the current wall clock.
func CurrentTimestamp() string {
	return Timestamp(time.Now())
}

// BuildLoginPacket constructs the unsigned login packet. Login carries no
// session id; the device issues one in its reply.
func BuildLoginPacket(timestamp string) string {
	return fmt.Sprintf(
		"fef052000232a10000000000340001000000000000000000%s00000000000000000000f0fe00%s00",
		timestamp, pad72Zeros)
}

// BuildControlPacket constructs the unsigned on/off packet. command must be
// CommandOn or CommandOff; it lands as a single ASCII digit at a fixed offset
// near the tail of the packet.
func BuildControlPacket(sessionID, timestamp, deviceID, command string) string {
	return fmt.Sprintf(
		"fef05d0002320102%s340001000000000000000000%s00000000000000000000f0fe%s%s000106000%s00%s",
		sessionID, timestamp, deviceID, pad72Zeros, command, "00000000")
}

// BuildGetStatePacket constructs the unsigned status-query packet.
func BuildGetStatePacket(sessionID, timestamp, deviceID string) string {
	return fmt.Sprintf(
		"fef0300002320103%s340001000000000000000000%s00000000000000000000f0fe%s00",
		sessionID, timestamp, deviceID)
}

// BuildSetNamePacket constructs the unsigned rename packet. The name is
// validated and encoded into the 32-byte NUL-padded name field; a
// *NameLengthError is returned before any packet is built if the name cannot
// fit.
func BuildSetNamePacket(sessionID, timestamp, deviceID, name string) (string, error) {
	nameHex, err := EncodeDeviceName(name)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"fef0740002320202%s340001000000000000000000%s00000000000000000000f0fe%s%s00%s",
		sessionID, timestamp, deviceID, pad72Zeros, nameHex), nil
}

// EncodeDeviceName hex-encodes a device name and right-pads it with NUL bytes
// to the fixed 64-hex-character name field. Names shorter than MinNameLength
// or longer than MaxNameLength bytes are rejected with *NameLengthError.
func EncodeDeviceName(name string) (string, error) {
	length := len(name)
	if length < MinNameLength || length > MaxNameLength {
		return "", &NameLengthError{Length: length}
	}

	encoded := hex.EncodeToString([]byte(name))
	return encoded + strings.Repeat("00", MaxNameLength-length), nil
}
