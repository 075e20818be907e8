package discovery

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strconv"
)

// DeviceState is the reported power state of a plug.
type DeviceState string

const (
	StateOn      DeviceState = "on"
	StateOff     DeviceState = "off"
	StateUnknown DeviceState = "unknown"
)

const (
	// DiscoveryPacketSize is the exact length of a Power Plug broadcast frame
	DiscoveryPacketSize = 165

	// PowerPlugTypeCode is the only device type this tool recognizes
	PowerPlugTypeCode = "01a8"

	// PowerPlugTypeLabel is the human label attached to decoded records
	PowerPlugTypeLabel = "Switcher Power Plug"
)

// Device represents one physical plug decoded from a discovery broadcast.
// Records are immutable value types; each broadcast produces a fresh one.
type Device struct {
	// DeviceID is the 3-byte device identifier, hex-encoded (6 chars)
	DeviceID string `yaml:"device_id" json:"device_id"`

	// DeviceKey is the 1-byte device key, hex-encoded
	DeviceKey string `yaml:"device_key" json:"device_key"`

	// IPAddress is the dotted-quad LAN address the device reported
	IPAddress string `yaml:"ip_address" json:"ip_address"`

	// MACAddress is the colon-separated uppercase hardware address
	MACAddress string `yaml:"mac_address" json:"mac_address"`

	// Name is the user-assigned device name (up to 32 bytes)
	Name string `yaml:"name" json:"name"`

	// DeviceType is always PowerPlugTypeLabel for decoded records
	DeviceType string `yaml:"device_type" json:"device_type"`

	// State is the power state carried in the broadcast
	State DeviceState `yaml:"state" json:"state"`

	// PowerConsumption is the reported draw in watts
	PowerConsumption uint16 `yaml:"power_consumption" json:"power_consumption"`
}

// String returns a human-readable one-line summary of the device.
func (d *Device) String() string {
	return fmt.Sprintf("%s (ID: %s) at %s [%s, %dW]",
		d.Name, d.DeviceID, d.IPAddress, d.State, d.PowerConsumption)
}

// ParseDiscoveryPacket decodes a broadcast payload into a Device record.
//
// A nil return is a non-match, not an error: broadcast UDP carries unrelated
// traffic by design, so anything that is not exactly a 165-byte Power Plug
// frame is silently skipped. The historical layout mixes byte offsets with
// hex-character offsets into the re-encoded packet; both are kept as-is
// because they are what the firmware emits.
func ParseDiscoveryPacket(data []byte) *Device {
	if len(data) != DiscoveryPacketSize || !bytes.HasPrefix(data, []byte{0xfe, 0xf0}) {
		return nil
	}

	hexData := hex.EncodeToString(data)

	deviceID := hex.EncodeToString(data[18:21])
	deviceKey := hex.EncodeToString(data[40:41])

	nameBytes := data[42:74]
	if end := bytes.IndexByte(nameBytes, 0); end >= 0 {
		nameBytes = nameBytes[:end]
	}
	name := string(nameBytes)

	// Only the Power Plug family broadcasts in this layout; other type codes
	// are unsupported models, skipped rather than mislabeled.
	if hex.EncodeToString(data[74:76]) != PowerPlugTypeCode {
		return nil
	}

	ip, ok := parseIPField(hexData)
	if !ok {
		return nil
	}
	mac, ok := parseMACField(hexData)
	if !ok {
		return nil
	}

	// Broadcast state decoding defaults unknown bytes to Off. The live
	// status path (internal/control) yields Unknown instead; both behaviors
	// are long-standing and callers may depend on either, so the asymmetry
	// stays.
	state := StateOff
	if len(hexData) >= 268 && hexData[266:268] == "01" {
		state = StateOn
	}

	power := parsePowerField(hexData)

	return &Device{
		DeviceID:         deviceID,
		DeviceKey:        deviceKey,
		IPAddress:        ip,
		MACAddress:       mac,
		Name:             name,
		DeviceType:       PowerPlugTypeLabel,
		State:            state,
		PowerConsumption: power,
	}
}

// parseIPField reads the 4-byte IP at hex offset 152..160. The field is
// byte-order reversed relative to dotted-quad order: the reassembled 32-bit
// value's low byte is the first octet.
func parseIPField(hexData string) (string, bool) {
	if len(hexData) < 160 {
		return "", false
	}
	h := hexData[152:160]
	v, err := strconv.ParseUint(h[6:8]+h[4:6]+h[2:4]+h[0:2], 16, 32)
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("%d.%d.%d.%d",
		v&0xff, (v>>8)&0xff, (v>>16)&0xff, (v>>24)&0xff), true
}

// parseMACField reads the 6-byte MAC at hex offset 160..172, printed in
// natural order.
func parseMACField(hexData string) (string, bool) {
	if len(hexData) < 172 {
		return "", false
	}
	h := hexData[160:172]
	raw, err := hex.DecodeString(h)
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X",
		raw[0], raw[1], raw[2], raw[3], raw[4], raw[5]), true
}

// parsePowerField reads the watts field at hex offset 270..278, low byte
// first. Unreadable fields degrade to zero rather than rejecting the record.
func parsePowerField(hexData string) uint16 {
	if len(hexData) < 278 {
		return 0
	}
	h := hexData[270:278]
	v, err := strconv.ParseUint(h[2:4]+h[0:2], 16, 16)
	if err != nil {
		return 0
	}
	return uint16(v)
}
