package discovery

import (
	"encoding/hex"
	"testing"
)

// fixturePacket is a reference 165-byte Power Plug announcement with
// previously verified field values (see TestParseDiscoveryPacketFixture).
const fixturePacket = "fef0000000000000000000000000000000009b5a2c0000000000000000000000" +
	"00000000000000001b004b69746368656e20506c756700000000000000000000" +
	"0000000000000000000001a8c0a8012aaabbccddeeff00000000000000000000" +
	"0000000000000000000000000000000000000000000000000000000000000000" +
	"000000000001002c010000000000000000000000000000000000000000000000" +
	"0000000000"

func fixtureBytes(t *testing.T) []byte {
	t.Helper()
	data, err := hex.DecodeString(fixturePacket)
	if err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	if len(data) != DiscoveryPacketSize {
		t.Fatalf("fixture length = %d, want %d", len(data), DiscoveryPacketSize)
	}
	return data
}

func TestParseDiscoveryPacketFixture(t *testing.T) {
	device := ParseDiscoveryPacket(fixtureBytes(t))
	if device == nil {
		t.Fatal("ParseDiscoveryPacket() returned nil for valid fixture")
	}

	tests := []struct {
		field string
		got   string
		want  string
	}{
		{"DeviceID", device.DeviceID, "9b5a2c"},
		{"DeviceKey", device.DeviceKey, "1b"},
		{"IPAddress", device.IPAddress, "192.168.1.42"},
		{"MACAddress", device.MACAddress, "AA:BB:CC:DD:EE:FF"},
		{"Name", device.Name, "Kitchen Plug"},
		{"DeviceType", device.DeviceType, PowerPlugTypeLabel},
		{"State", string(device.State), string(StateOn)},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.field, tt.got, tt.want)
		}
	}

	if device.PowerConsumption != 300 {
		t.Errorf("PowerConsumption = %d, want 300", device.PowerConsumption)
	}
}

func TestParseDiscoveryPacketRejections(t *testing.T) {
	valid := fixtureBytes(t)

	tests := []struct {
		name   string
		mutate func([]byte) []byte
	}{
		{
			name:   "too short",
			mutate: func(b []byte) []byte { return b[:164] },
		},
		{
			name:   "too long",
			mutate: func(b []byte) []byte { return append(b, 0x00) },
		},
		{
			name:   "empty",
			mutate: func(b []byte) []byte { return nil },
		},
		{
			name: "wrong magic",
			mutate: func(b []byte) []byte {
				b[0] = 0xff
				return b
			},
		},
		{
			name: "unsupported type code",
			mutate: func(b []byte) []byte {
				b[74], b[75] = 0x02, 0x99
				return b
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := make([]byte, len(valid))
			copy(data, valid)
			if got := ParseDiscoveryPacket(tt.mutate(data)); got != nil {
				t.Errorf("ParseDiscoveryPacket() = %+v, want nil", got)
			}
		})
	}
}

func TestParseDiscoveryPacketStateDefaultsToOff(t *testing.T) {
	// State byte 0x01 means On; anything else decodes as Off here. The live
	// status path reports Unknown instead, and that asymmetry is deliberate.
	tests := []struct {
		name  string
		value byte
		want  DeviceState
	}{
		{name: "explicit on", value: 0x01, want: StateOn},
		{name: "explicit off", value: 0x00, want: StateOff},
		{name: "unknown byte is off", value: 0x7f, want: StateOff},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := fixtureBytes(t)
			data[133] = tt.value // hex offset 266..268
			device := ParseDiscoveryPacket(data)
			if device == nil {
				t.Fatal("ParseDiscoveryPacket() returned nil")
			}
			if device.State != tt.want {
				t.Errorf("State = %q, want %q", device.State, tt.want)
			}
		})
	}
}

func TestParseDiscoveryPacketNameTruncation(t *testing.T) {
	data := fixtureBytes(t)
	device := ParseDiscoveryPacket(data)
	if device == nil {
		t.Fatal("ParseDiscoveryPacket() returned nil")
	}
	if device.Name != "Kitchen Plug" {
		t.Errorf("Name = %q, want truncation at first NUL", device.Name)
	}

	// A name filling the whole 32-byte field decodes without truncation.
	for i := 42; i < 74; i++ {
		data[i] = 'x'
	}
	device = ParseDiscoveryPacket(data)
	if device == nil {
		t.Fatal("ParseDiscoveryPacket() returned nil")
	}
	if len(device.Name) != 32 {
		t.Errorf("full-field name length = %d, want 32", len(device.Name))
	}
}

func TestDeviceString(t *testing.T) {
	device := &Device{
		DeviceID:         "9b5a2c",
		Name:             "Kitchen Plug",
		IPAddress:        "192.168.1.42",
		State:            StateOn,
		PowerConsumption: 300,
	}
	want := "Kitchen Plug (ID: 9b5a2c) at 192.168.1.42 [on, 300W]"
	if got := device.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
