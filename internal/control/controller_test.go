package control

import (
	"context"
	"encoding/binary"
	"errors"
	"net"
	"sync"
	"testing"
	"time"
)

// fakeDevice is a loopback TCP stand-in for a Power Plug. It speaks just
// enough of the protocol for controller tests: answer login with a session
// id, apply control packets to an internal state, and answer state queries.
type fakeDevice struct {
	ln net.Listener

	mu          sync.Mutex
	state       byte
	power       uint16
	ignoreCmds  bool // swallow on/off commands without changing state
	statusPolls int

	shortLogin  bool // reply to login with an undersized frame
	shortStatus bool // reply to state queries with an undersized frame
}

func newFakeDevice(t *testing.T) *fakeDevice {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	d := &fakeDevice{ln: ln, power: 300}
	go d.serve()
	t.Cleanup(func() { _ = ln.Close() })
	return d
}

// controller returns a Controller wired to this fake with test-friendly
// timeouts and no real confirmation delays.
func (d *fakeDevice) controller() *Controller {
	c := NewController("127.0.0.1", "9b5a2c")
	c.Port = d.ln.Addr().(*net.TCPAddr).Port
	c.ConnectTimeout = time.Second
	c.ReadTimeout = time.Second
	c.sleep = func(time.Duration) {}
	return c
}

func (d *fakeDevice) serve() {
	for {
		conn, err := d.ln.Accept()
		if err != nil {
			return
		}
		go d.handle(conn)
	}
}

func (d *fakeDevice) handle(conn net.Conn) {
	defer func() { _ = conn.Close() }()
	buf := make([]byte, 1024)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			return
		}
		if n < 3 || buf[0] != 0xfe || buf[1] != 0xf0 {
			return
		}

		// Byte 2 is the frame length marker and identifies the packet kind.
		switch buf[2] {
		case 0x52: // login
			if d.shortLogin {
				_, _ = conn.Write(make([]byte, 10))
				continue
			}
			resp := make([]byte, 24)
			copy(resp[16:20], []byte{0xde, 0xad, 0xbe, 0xef})
			_, _ = conn.Write(resp)

		case 0x5d: // on/off command, no reply
			d.mu.Lock()
			if !d.ignoreCmds {
				// Command digit is the low nibble of byte 83 ('0' or '1').
				d.state = buf[83] & 0x0f
			}
			d.mu.Unlock()

		case 0x30: // state query
			d.mu.Lock()
			d.statusPolls++
			state, power, short := d.state, d.power, d.shortStatus
			d.mu.Unlock()
			if short {
				_, _ = conn.Write(make([]byte, 30))
				continue
			}
			resp := make([]byte, 80)
			resp[75] = state
			binary.LittleEndian.PutUint16(resp[77:79], power)
			_, _ = conn.Write(resp)

		case 0x74: // rename
			_, _ = conn.Write(make([]byte, 24))

		default:
			return
		}
	}
}

func (d *fakeDevice) polls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.statusPolls
}

func TestGetStatus(t *testing.T) {
	device := newFakeDevice(t)
	device.state = 0x01

	status, err := device.controller().GetStatus(context.Background())
	if err != nil {
		t.Fatalf("GetStatus() error = %v", err)
	}
	if status.State != "on" {
		t.Errorf("State = %q, want on", status.State)
	}
	if status.PowerConsumption != 300 {
		t.Errorf("PowerConsumption = %d, want 300", status.PowerConsumption)
	}
}

func TestGetStatusOff(t *testing.T) {
	device := newFakeDevice(t)
	device.state = 0x00
	device.power = 0

	status, err := device.controller().GetStatus(context.Background())
	if err != nil {
		t.Fatalf("GetStatus() error = %v", err)
	}
	if status.State != "off" {
		t.Errorf("State = %q, want off", status.State)
	}
	if status.PowerConsumption != 0 {
		t.Errorf("PowerConsumption = %d, want 0", status.PowerConsumption)
	}
}

func TestGetStatusShortResponse(t *testing.T) {
	device := newFakeDevice(t)
	device.shortStatus = true

	_, err := device.controller().GetStatus(context.Background())
	if err == nil {
		t.Fatal("GetStatus() succeeded on undersized response")
	}
	var devErr *DeviceError
	if !errors.As(err, &devErr) || devErr.Type != ErrTypeInvalidDevice {
		t.Errorf("error = %v, want ErrTypeInvalidDevice", err)
	}
}

func TestLoginShortResponse(t *testing.T) {
	device := newFakeDevice(t)
	device.shortLogin = true

	_, err := device.controller().GetStatus(context.Background())
	if !IsLoginError(err) {
		t.Errorf("error = %v, want login error", err)
	}
}

func TestTurnOnConfirmsViaPoll(t *testing.T) {
	device := newFakeDevice(t)
	device.state = 0x00

	if err := device.controller().TurnOn(context.Background()); err != nil {
		t.Fatalf("TurnOn() error = %v", err)
	}
	if polls := device.polls(); polls != 1 {
		t.Errorf("status polls = %d, want 1 (device converged immediately)", polls)
	}
}

func TestTurnOffConfirmsViaPoll(t *testing.T) {
	device := newFakeDevice(t)
	device.state = 0x01

	if err := device.controller().TurnOff(context.Background()); err != nil {
		t.Fatalf("TurnOff() error = %v", err)
	}
}

func TestTurnOnNotConfirmed(t *testing.T) {
	device := newFakeDevice(t)
	device.state = 0x00
	device.ignoreCmds = true

	err := device.controller().TurnOn(context.Background())
	if !IsNotConfirmedError(err) {
		t.Fatalf("error = %v, want not-confirmed error", err)
	}
	// The sequence gives up after the second poll, never a third.
	if polls := device.polls(); polls != 2 {
		t.Errorf("status polls = %d, want exactly 2", polls)
	}
}

func TestSetName(t *testing.T) {
	device := newFakeDevice(t)

	if err := device.controller().SetName(context.Background(), "Kitchen Plug"); err != nil {
		t.Fatalf("SetName() error = %v", err)
	}
}

func TestSetNameValidatesBeforeDialing(t *testing.T) {
	// Unroutable address: any network attempt would fail with a connect
	// error, so a validation error proves no dial happened.
	c := NewController("240.0.0.1", "9b5a2c")
	c.ConnectTimeout = 100 * time.Millisecond
	c.sleep = func(time.Duration) {}

	err := c.SetName(context.Background(), "x")
	if !IsValidationError(err) {
		t.Errorf("error = %v, want validation error", err)
	}
}

func TestConnectRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	_ = ln.Close()

	c := NewController("127.0.0.1", "9b5a2c")
	c.Port = port
	c.ConnectTimeout = time.Second
	c.sleep = func(time.Duration) {}

	_, err = c.GetStatus(context.Background())
	if !IsConnectError(err) {
		t.Errorf("error = %v, want connect error", err)
	}
}
