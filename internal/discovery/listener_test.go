package discovery

import (
	"context"
	"net"
	"testing"
	"time"
)

func TestDeviceSetFirstSeenWins(t *testing.T) {
	set := newDeviceSet()

	first := &Device{DeviceID: "9b5a2c", Name: "Kitchen Plug"}
	second := &Device{DeviceID: "9b5a2c", Name: "Renamed Plug"}
	other := &Device{DeviceID: "112233", Name: "Heater"}

	if !set.add(first) {
		t.Error("add() = false for first sighting")
	}
	if set.add(second) {
		t.Error("add() = true for repeated device id")
	}
	if !set.add(other) {
		t.Error("add() = false for distinct device id")
	}

	devices := set.list()
	if len(devices) != 2 {
		t.Fatalf("list() returned %d devices, want 2", len(devices))
	}
	// Sorted by device id.
	if devices[0].DeviceID != "112233" || devices[1].DeviceID != "9b5a2c" {
		t.Errorf("list() order = [%s %s], want [112233 9b5a2c]",
			devices[0].DeviceID, devices[1].DeviceID)
	}
	if devices[1].Name != "Kitchen Plug" {
		t.Errorf("kept name = %q, want first sighting to win", devices[1].Name)
	}
}

func TestReceiveLoopCollectsAndDeduplicates(t *testing.T) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("ListenUDP() error = %v", err)
	}

	set := newDeviceSet()
	done := make(chan struct{})
	go func() {
		defer close(done)
		receiveLoop(conn, set)
	}()

	sender, err := net.DialUDP("udp4", nil, conn.LocalAddr().(*net.UDPAddr))
	if err != nil {
		t.Fatalf("DialUDP() error = %v", err)
	}
	defer sender.Close()

	valid := fixtureBytes(t)

	altered := fixtureBytes(t)
	altered[18], altered[19], altered[20] = 0x11, 0x22, 0x33

	for _, frame := range [][]byte{
		valid,
		valid, // duplicate, must not produce a second record
		altered,
		[]byte("not a discovery frame"),
	} {
		if _, err := sender.Write(frame); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}

	waitForDevices(t, set, 2)

	_ = conn.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("receive loop did not stop after socket close")
	}

	devices := set.list()
	if len(devices) != 2 {
		t.Fatalf("collected %d devices, want 2", len(devices))
	}
	if devices[0].DeviceID != "112233" {
		t.Errorf("devices[0].DeviceID = %q, want 112233", devices[0].DeviceID)
	}
	if devices[1].DeviceID != "9b5a2c" {
		t.Errorf("devices[1].DeviceID = %q, want 9b5a2c", devices[1].DeviceID)
	}
}

func TestScanReturnsEmptyOnQuietNetwork(t *testing.T) {
	scanner := &Scanner{Addr: "127.0.0.1:0"}

	start := time.Now()
	devices, err := scanner.Scan(context.Background(), 100*time.Millisecond)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(devices) != 0 {
		t.Errorf("Scan() returned %d devices on quiet loopback, want 0", len(devices))
	}
	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Errorf("Scan() returned after %v, before the window elapsed", elapsed)
	}
}

func TestScanHonorsContextCancellation(t *testing.T) {
	scanner := &Scanner{Addr: "127.0.0.1:0"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	if _, err := scanner.Scan(ctx, 30*time.Second); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Scan() took %v after cancellation, want prompt return", elapsed)
	}
}

func TestScanRejectsBadAddress(t *testing.T) {
	scanner := &Scanner{Addr: "not-an-address"}
	if _, err := scanner.Scan(context.Background(), time.Second); err == nil {
		t.Error("Scan() accepted an unparseable bind address")
	}
}

// waitForDevices polls the set until count devices are collected. UDP
// delivery over loopback is fast but not synchronous with Write returning.
func waitForDevices(t *testing.T, set *deviceSet, count int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(set.list()) >= count {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d devices, have %d", count, len(set.list()))
}
