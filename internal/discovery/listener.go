package discovery

import (
	"context"
	"fmt"
	"net"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nitzanw/switcherctl/internal/logging"
)

const (
	// BroadcastAddr is where Power Plug devices broadcast announcements
	BroadcastAddr = "0.0.0.0:10002"

	// DefaultScanTimeout is the default listen window
	DefaultScanTimeout = 30 * time.Second

	// maxDatagramSize bounds a single received frame; announcement frames
	// are 165 bytes, anything larger is foreign traffic
	maxDatagramSize = 1024
)

// Scanner collects device broadcasts for a bounded duration.
type Scanner struct {
	// Addr is the UDP bind address; overridable for tests
	Addr string
}

// NewScanner creates a scanner bound to the standard broadcast port.
func NewScanner() *Scanner {
	return &Scanner{Addr: BroadcastAddr}
}

// Scan listens for device broadcasts until duration elapses or ctx is
// cancelled, and returns every distinct device heard, sorted by device id.
// Within one window the first broadcast for a given id wins; later frames
// from the same id are skipped. A bind failure is returned, not retried.
func (s *Scanner) Scan(ctx context.Context, duration time.Duration) ([]*Device, error) {
	udpAddr, err := net.ResolveUDPAddr("udp4", s.Addr)
	if err != nil {
		return nil, fmt.Errorf("invalid listen address %q: %w", s.Addr, err)
	}

	conn, err := net.ListenUDP("udp4", udpAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to bind UDP socket on %s: %w", s.Addr, err)
	}

	logging.Info("listening for device broadcasts",
		zap.String("addr", conn.LocalAddr().String()),
		zap.Duration("duration", duration),
	)

	set := newDeviceSet()

	// The receive loop runs independently so the duration wait and packet
	// consumption proceed concurrently. Closing the socket unblocks the
	// pending read, so cancellation cannot leak the socket.
	done := make(chan struct{})
	go func() {
		defer close(done)
		receiveLoop(conn, set)
	}()

	ctx, cancel := context.WithTimeout(ctx, duration)
	defer cancel()

	select {
	case <-ctx.Done():
	case <-done:
		// Socket error ended the loop before the window elapsed.
	}

	_ = conn.Close()
	<-done

	devices := set.list()
	logging.Info("discovery window closed", zap.Int("devices", len(devices)))
	return devices, nil
}

func receiveLoop(conn *net.UDPConn, set *deviceSet) {
	buf := make([]byte, maxDatagramSize)
	for {
		n, addr, err := conn.ReadFromUDP(buf)
		if err != nil {
			// Closed socket or transport error: either way the window is over.
			logging.Debug("receive loop ended", zap.Error(err))
			return
		}

		device := ParseDiscoveryPacket(buf[:n])
		if device == nil {
			logging.Debug("skipping non-matching datagram",
				zap.String("from", addr.String()),
				zap.Int("length", n),
			)
			continue
		}

		if set.add(device) {
			logging.Info("discovered device",
				zap.String("device_id", device.DeviceID),
				zap.String("name", device.Name),
				zap.String("ip", device.IPAddress),
			)
		} else {
			logging.Debug("device already seen this window",
				zap.String("device_id", device.DeviceID))
		}
	}
}

// deviceSet is the record set shared between the receive loop and the
// awaiting caller. The lock covers only the insert-or-skip decision, never
// a network wait.
type deviceSet struct {
	mu      sync.Mutex
	devices map[string]*Device
}

func newDeviceSet() *deviceSet {
	return &deviceSet{devices: make(map[string]*Device)}
}

// add inserts a device if its id has not been seen. Returns true on insert.
func (s *deviceSet) add(d *Device) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, seen := s.devices[d.DeviceID]; seen {
		return false
	}
	s.devices[d.DeviceID] = d
	return true
}

func (s *deviceSet) list() []*Device {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Device, 0, len(s.devices))
	for _, d := range s.devices {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DeviceID < out[j].DeviceID })
	return out
}
