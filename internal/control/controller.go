package control

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"net"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/nitzanw/switcherctl/internal/discovery"
	"github.com/nitzanw/switcherctl/internal/logging"
	"github.com/nitzanw/switcherctl/internal/protocol"
)

const (
	// DefaultPort is the TCP control port Switcher plugs listen on
	DefaultPort = 9957

	// DefaultConnectTimeout bounds the TCP dial on every operation
	DefaultConnectTimeout = 5 * time.Second

	// DefaultReadTimeout bounds each response read
	DefaultReadTimeout = 3 * time.Second

	// minLoginResponse is the shortest login reply carrying a session id
	minLoginResponse = 20

	// minStatusResponse is the shortest reply a real Power Plug returns for
	// a state query; anything shorter came from some other device
	minStatusResponse = 50

	// maxResponseSize bounds a single device reply
	maxResponseSize = 1024
)

// Status is the device state reported by a live query.
type Status struct {
	// State is the reported power state
	State discovery.DeviceState

	// PowerConsumption is the reported draw in watts
	PowerConsumption uint16
}

// Controller drives command sessions against one Power Plug. The zero value
// is not usable; construct with NewController.
type Controller struct {
	// IP is the device's LAN address
	IP string

	// DeviceID is the 6-hex-char device identifier from discovery or pairing
	DeviceID string

	// Port is the TCP control port (default 9957)
	Port int

	// ConnectTimeout bounds the TCP dial
	ConnectTimeout time.Duration

	// ReadTimeout bounds each response read
	ReadTimeout time.Duration

	// sleep is swappable so confirmation tests run without real delays
	sleep func(time.Duration)
}

// NewController creates a controller for the device at ip with the given id.
func NewController(ip, deviceID string) *Controller {
	return &Controller{
		IP:             ip,
		DeviceID:       deviceID,
		Port:           DefaultPort,
		ConnectTimeout: DefaultConnectTimeout,
		ReadTimeout:    DefaultReadTimeout,
		sleep:          time.Sleep,
	}
}

// TurnOn switches the plug on and waits for the device to report the new
// state. Returns a Command Not Confirmed error if the state never converges.
func (c *Controller) TurnOn(ctx context.Context) error {
	return c.setState(ctx, protocol.CommandOn, discovery.StateOn)
}

// TurnOff switches the plug off and waits for the device to report the new
// state. Returns a Command Not Confirmed error if the state never converges.
func (c *Controller) TurnOff(ctx context.Context) error {
	return c.setState(ctx, protocol.CommandOff, discovery.StateOff)
}

func (c *Controller) setState(ctx context.Context, command string, want discovery.DeviceState) error {
	// The device sends no reply to a plain on/off command; delivery is only
	// observable through the state polls that follow.
	_, err := c.runSession(ctx, false, func(sessionID, timestamp string) (string, error) {
		return protocol.BuildControlPacket(sessionID, timestamp, c.DeviceID, command), nil
	})
	if err != nil {
		return err
	}

	return c.awaitState(ctx, want)
}

// GetStatus queries the device for its current state and power draw.
func (c *Controller) GetStatus(ctx context.Context) (*Status, error) {
	resp, err := c.runSession(ctx, true, func(sessionID, timestamp string) (string, error) {
		return protocol.BuildGetStatePacket(sessionID, timestamp, c.DeviceID), nil
	})
	if err != nil {
		return nil, err
	}
	logging.LogRawBytes("status response", resp)

	if len(resp) < minStatusResponse {
		return nil, NewInvalidDeviceError(c.IP,
			fmt.Sprintf("status response too short (%d bytes), no or invalid device", len(resp)))
	}

	return decodeStatus(resp), nil
}

// SetName assigns a new name to the device. The name must be 2 to 32 bytes;
// validation happens before any network traffic.
func (c *Controller) SetName(ctx context.Context, name string) error {
	if _, err := protocol.EncodeDeviceName(name); err != nil {
		return NewValidationError(err.Error(), err)
	}

	resp, err := c.runSession(ctx, true, func(sessionID, timestamp string) (string, error) {
		return protocol.BuildSetNamePacket(sessionID, timestamp, c.DeviceID, name)
	})
	if err != nil {
		return err
	}
	logging.LogRawBytes("rename response", resp)

	if len(resp) < minLoginResponse {
		return NewNoResponseError(c.IP, "device did not acknowledge the rename")
	}
	return nil
}

// runSession performs one full connect/login/command exchange and returns the
// raw command response, or nil when wantReply is false. build receives the
// session id and a fresh timestamp and returns the unsigned command packet.
func (c *Controller) runSession(ctx context.Context, wantReply bool, build func(sessionID, timestamp string) (string, error)) ([]byte, error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = conn.Close()
		logging.LogConnection(c.addr(), "session_closed")
	}()
	logging.LogConnection(c.addr(), "session_opened")

	sessionID, err := c.login(conn)
	if err != nil {
		return nil, err
	}

	// Each command packet carries its own capture-time timestamp rather than
	// reusing the login one.
	packet, err := build(sessionID, protocol.CurrentTimestamp())
	if err != nil {
		return nil, NewValidationError(err.Error(), err)
	}

	signed, err := protocol.SignPacket(packet)
	if err != nil {
		return nil, NewValidationError("failed to sign command packet", err)
	}

	if !wantReply {
		if err := c.writePacket(conn, signed); err != nil {
			return nil, NewNoResponseError(c.IP, fmt.Sprintf("command write failed: %v", err))
		}
		return nil, nil
	}

	resp, err := c.exchange(conn, signed)
	if err != nil {
		return nil, NewNoResponseError(c.IP, fmt.Sprintf("command exchange failed: %v", err))
	}
	return resp, nil
}

func (c *Controller) addr() string {
	return net.JoinHostPort(c.IP, strconv.Itoa(c.Port))
}

func (c *Controller) dial(ctx context.Context) (net.Conn, error) {
	dialer := net.Dialer{Timeout: c.ConnectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", c.addr())
	if err != nil {
		return nil, NewConnectError(c.IP, err)
	}
	return conn, nil
}

// login sends the signed login packet and extracts the session id from the
// reply. The id lives in bytes 16..20 of the response.
func (c *Controller) login(conn net.Conn) (string, error) {
	packet := protocol.BuildLoginPacket(protocol.CurrentTimestamp())
	signed, err := protocol.SignPacket(packet)
	if err != nil {
		return "", NewValidationError("failed to sign login packet", err)
	}

	resp, err := c.exchange(conn, signed)
	if err != nil {
		return "", NewLoginError(c.IP, "login exchange failed", err)
	}
	logging.LogRawBytes("login response", resp)

	if len(resp) < minLoginResponse {
		return "", NewLoginError(c.IP,
			fmt.Sprintf("login response too short (%d bytes)", len(resp)), nil)
	}

	sessionID := hex.EncodeToString(resp[16:20])
	logging.Debug("login complete", zap.String("session_id", sessionID))
	return sessionID, nil
}

// writePacket writes one signed hex packet under the session deadline.
func (c *Controller) writePacket(conn net.Conn, signedHex string) error {
	raw, err := hex.DecodeString(signedHex)
	if err != nil {
		return fmt.Errorf("malformed packet hex: %w", err)
	}

	if err := conn.SetDeadline(time.Now().Add(c.ReadTimeout)); err != nil {
		return err
	}
	_, err = conn.Write(raw)
	return err
}

// exchange writes one signed hex packet and reads one reply frame.
func (c *Controller) exchange(conn net.Conn, signedHex string) ([]byte, error) {
	if err := c.writePacket(conn, signedHex); err != nil {
		return nil, err
	}

	buf := make([]byte, maxResponseSize)
	n, err := conn.Read(buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// decodeStatus reads the state and power fields out of a status reply. Fields
// beyond the guaranteed minimum length degrade individually: a reply without
// a state byte reports Unknown, a reply without a power field reports 0W.
func decodeStatus(resp []byte) *Status {
	status := &Status{State: discovery.StateUnknown}

	if len(resp) > 75 {
		switch resp[75] {
		case 0x01:
			status.State = discovery.StateOn
		case 0x00:
			status.State = discovery.StateOff
		}
	}

	if len(resp) >= 79 {
		status.PowerConsumption = binary.LittleEndian.Uint16(resp[77:79])
	}

	return status
}
